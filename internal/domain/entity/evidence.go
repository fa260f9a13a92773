package entity

import "time"

// Evidence is a supporting file linked to scope items, programme items and
// payment claims through independent many-to-many relations
type Evidence struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	InboundEmailID *string   `json:"inboundEmailId"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Title          string    `json:"title"`
	FileName       string    `json:"fileName"`
	FileURL        string    `json:"fileUrl"`
	StorageKey     string    `json:"storageKey"`
	UploadedAt     time.Time `json:"uploadedAt"`

	ScopeItemIDs    []string `json:"scopeItemIds,omitempty"`
	ProgrammeItemIDs []string `json:"programmeItemIds,omitempty"`
	PaymentClaimIDs []string `json:"paymentClaimIds,omitempty"`
}

// InboundEmail is a project mailbox message; its attachments become evidence
type InboundEmail struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`

	Evidence []*Evidence `json:"evidence,omitempty"`
}
