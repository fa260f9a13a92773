package port

import (
	"context"
	"time"
)

// ClaimRender is the structured record handed to the renderer for a payment
// claim. The amount arrives pre-formatted; the core never lets the renderer
// do arithmetic.
type ClaimRender struct {
	ProjectName      string
	ClaimNumber      int64
	ReferenceDate    time.Time
	ClaimedAmount    string
	StatutoryWording string
}

// InvoiceRender is the structured record handed to the renderer for an
// invoice
type InvoiceRender struct {
	ProjectName   string
	InvoiceNumber int64
	ReferenceDate time.Time
	Amount        string
}

// DocumentRenderer produces a finished document as an opaque byte sequence.
// The core never inspects document internals.
type DocumentRenderer interface {
	RenderClaim(ctx context.Context, doc *ClaimRender) ([]byte, error)
	RenderInvoice(ctx context.Context, doc *InvoiceRender) ([]byte, error)
}

// ExtractedClause is one clause identified in a contract document
type ExtractedClause struct {
	ClauseRef  string `json:"clause_ref"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	RiskLevel  string `json:"risk_level"`
	PageNumber int    `json:"page_number"`
}

// ClauseExtractor identifies clauses and their risk levels in contract text
type ClauseExtractor interface {
	Extract(ctx context.Context, documentTitle, text string) ([]ExtractedClause, error)
}

// TextExtractor pulls plain text out of an uploaded document
type TextExtractor interface {
	ExtractText(content []byte) (string, error)
}

// AccessChecker answers whether a user may act on a project
type AccessChecker interface {
	HasAccess(ctx context.Context, projectID, userID string) (bool, error)
}
