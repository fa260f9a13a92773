package entity

// RiskLevel classifies contract clauses and projects
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ValidRiskLevel reports whether s is a known risk level
func ValidRiskLevel(s string) bool {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ItemStatus tracks the lifecycle of parsed records
// (scope items, programme items, clauses, work records, documents)
type ItemStatus string

const (
	StatusDraft     ItemStatus = "draft"
	StatusParsed    ItemStatus = "parsed"
	StatusConfirmed ItemStatus = "confirmed"
)

// ValidItemStatus reports whether s is a known item status
func ValidItemStatus(s string) bool {
	switch ItemStatus(s) {
	case StatusDraft, StatusParsed, StatusConfirmed:
		return true
	}
	return false
}

// VariationStatus tracks contract variation approval
type VariationStatus string

const (
	VariationDraft     VariationStatus = "draft"
	VariationSubmitted VariationStatus = "submitted"
	VariationApproved  VariationStatus = "approved"
	VariationRejected  VariationStatus = "rejected"
)

// ValidVariationStatus reports whether s is a known variation status
func ValidVariationStatus(s string) bool {
	switch VariationStatus(s) {
	case VariationDraft, VariationSubmitted, VariationApproved, VariationRejected:
		return true
	}
	return false
}

// DocumentClass is the category of generated financial document.
// Each class has its own numbering sequence per project.
type DocumentClass string

const (
	ClassClaim   DocumentClass = "claim"
	ClassInvoice DocumentClass = "invoice"
)

// Evidence types
const (
	EvidenceTypeUpload       = "upload"
	EvidenceTypeInboundEmail = "inbound_email"
)

// Project member roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)
