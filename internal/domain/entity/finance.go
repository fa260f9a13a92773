package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyWorkRecord captures the value of work completed in a period
type MonthlyWorkRecord struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"projectId"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	CompletedValue decimal.Decimal `json:"completedValue"`
	Notes          *string         `json:"notes"`
	Status         ItemStatus      `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Variation is a contract variation; only approved variations count toward
// claimed amounts
type Variation struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      VariationStatus `json:"status"`
	SourceRef   *string         `json:"sourceRef"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PaymentClaim is a generated payment claim document. Claims are append-only:
// created once by the generation orchestrator, never updated or deleted, so
// claim numbers form a permanent audit trail.
type PaymentClaim struct {
	ID               string          `json:"id"`
	ProjectID        string          `json:"projectId"`
	ClaimNumber      int64           `json:"claimNumber"`
	ReferenceDate    time.Time       `json:"referenceDate"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	ClaimedAmount    decimal.Decimal `json:"claimedAmount"`
	StatutoryWording string          `json:"statutoryWording"`
	ServiceDate      *time.Time      `json:"serviceDate"`
	FileURL          string          `json:"fileUrl"`
	StorageKey       string          `json:"storageKey"`
	CreatedAt        time.Time       `json:"createdAt"`

	EvidenceIDs []string `json:"evidenceIds,omitempty"`
}

// Invoice is a generated invoice document, same append-only numbering
// contract as PaymentClaim
type Invoice struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	InvoiceNumber int64           `json:"invoiceNumber"`
	ReferenceDate time.Time       `json:"referenceDate"`
	Amount        decimal.Decimal `json:"amount"`
	FileURL       string          `json:"fileUrl"`
	StorageKey    string          `json:"storageKey"`
	CreatedAt     time.Time       `json:"createdAt"`
}
