package entity

import "time"

// Project is the root entity owning every other record
type Project struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Code               *string    `json:"code"`
	Status             string     `json:"status"`
	OrganisationID     *string    `json:"organisationId,omitempty"`
	RiskLevel          RiskLevel  `json:"riskLevel"`
	InvoiceModeEnabled bool       `json:"invoiceModeEnabled"`
	NextClaimDate      *time.Time `json:"nextClaimDate"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ProjectMember grants a user access to a project
type ProjectMember struct {
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectSettingsPatch carries the settings update. Nil fields are left
// untouched; RiskLevel here is the manual override path, independent of the
// clause-derived value.
type ProjectSettingsPatch struct {
	InvoiceModeEnabled *bool      `json:"invoiceModeEnabled"`
	NextClaimDate      *time.Time `json:"nextClaimDate"`
	RiskLevel          *RiskLevel `json:"riskLevel"`
}
