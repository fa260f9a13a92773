package entity

import "time"

// ContractDocument is an uploaded contract file. Uploads start in draft and
// move to parsed once the clause extraction pipeline has run.
type ContractDocument struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	Title      string     `json:"title"`
	FileName   string     `json:"fileName"`
	FileURL    string     `json:"fileUrl"`
	StorageKey string     `json:"storageKey"`
	Status     ItemStatus `json:"status"`
	UploadedAt time.Time  `json:"uploadedAt"`
}

// Clause is a contract clause, usually produced by the parse pipeline
type Clause struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	DocumentID string     `json:"documentId"`
	ClauseRef  string     `json:"clauseRef"`
	Title      *string    `json:"title"`
	Body       string     `json:"body"`
	RiskLevel  RiskLevel  `json:"riskLevel"`
	Status     ItemStatus `json:"status"`
	PageNumber *int       `json:"pageNumber"`
	SourceRef  *string    `json:"sourceRef"`
	CreatedAt  time.Time  `json:"createdAt"`
}
