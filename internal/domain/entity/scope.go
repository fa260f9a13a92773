package entity

import "time"

// ScopeItem is a unit of contracted work scope
type ScopeItem struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"projectId"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Status           ItemStatus `json:"status"`
	Confidence       *float64   `json:"confidence"`
	AmbiguityFlag    bool       `json:"ambiguityFlag"`
	SourceDocumentID *string    `json:"sourceDocumentId"`
	SourceClauseID   *string    `json:"sourceClauseId"`
	SourcePage       *int       `json:"sourcePage"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Linked programme item and evidence IDs, populated on reads
	ProgrammeItemIDs []string `json:"programmeItemIds,omitempty"`
	EvidenceIDs      []string `json:"evidenceIds,omitempty"`
}

// ProgrammeItem is a scheduled activity in the construction programme
type ProgrammeItem struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"projectId"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	Status           ItemStatus `json:"status"`
	Confidence       *float64   `json:"confidence"`
	SourceDocumentID *string    `json:"sourceDocumentId"`
	SourcePage       *int       `json:"sourcePage"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	ScopeItemIDs []string `json:"scopeItemIds,omitempty"`
	EvidenceIDs  []string `json:"evidenceIds,omitempty"`
}
