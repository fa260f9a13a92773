package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sitelink/claimworks/internal/domain/entity"
)

// ProjectRepository defines persistence operations for Project
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	ListForUser(ctx context.Context, userID string) ([]*entity.Project, error)
	UpdateSettings(ctx context.Context, id string, patch *entity.ProjectSettingsPatch) (*entity.Project, error)
	AddMember(ctx context.Context, member *entity.ProjectMember) error
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// DocumentRepository defines persistence operations for ContractDocument
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.ContractDocument) error
	GetByID(ctx context.Context, id string) (*entity.ContractDocument, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.ContractDocument, error)
	ListPending(ctx context.Context, limit int) ([]*entity.ContractDocument, error)
	UpdateStatus(ctx context.Context, id string, status entity.ItemStatus) error
}

// ClauseRepository defines persistence operations for Clause
type ClauseRepository interface {
	Create(ctx context.Context, clause *entity.Clause) error
	ListByDocument(ctx context.Context, projectID, documentID string) ([]*entity.Clause, error)
	RiskLevelsByProject(ctx context.Context, projectID string) ([]entity.RiskLevel, error)
}

// ScopeRepository defines persistence operations for ScopeItem
type ScopeRepository interface {
	Create(ctx context.Context, item *entity.ScopeItem) error
	GetByID(ctx context.Context, projectID, id string) (*entity.ScopeItem, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.ScopeItem, error)
	Update(ctx context.Context, item *entity.ScopeItem) error
	Delete(ctx context.Context, projectID, id string) error
	StatusesByProject(ctx context.Context, projectID string) ([]entity.ItemStatus, error)
	CountByIDs(ctx context.Context, projectID string, ids []string) (int, error)
}

// ProgrammeRepository defines persistence operations for ProgrammeItem
type ProgrammeRepository interface {
	Create(ctx context.Context, item *entity.ProgrammeItem) error
	GetByID(ctx context.Context, projectID, id string) (*entity.ProgrammeItem, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.ProgrammeItem, error)
	Update(ctx context.Context, item *entity.ProgrammeItem) error
	Delete(ctx context.Context, projectID, id string) error
	ConfidencesByProject(ctx context.Context, projectID string) ([]*float64, error)
	CountByIDs(ctx context.Context, projectID string, ids []string) (int, error)
}

// EvidenceRepository defines persistence operations for Evidence
type EvidenceRepository interface {
	Create(ctx context.Context, ev *entity.Evidence) error
	GetByID(ctx context.Context, projectID, id string) (*entity.Evidence, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.Evidence, error)
	ListByEmail(ctx context.Context, emailID string) ([]*entity.Evidence, error)
	CountByIDs(ctx context.Context, projectID string, ids []string) (int, error)
}

// EmailRepository defines persistence operations for InboundEmail
type EmailRepository interface {
	Create(ctx context.Context, email *entity.InboundEmail) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.InboundEmail, error)
}

// WorkRecordRepository defines persistence operations for MonthlyWorkRecord
type WorkRecordRepository interface {
	Create(ctx context.Context, record *entity.MonthlyWorkRecord) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.MonthlyWorkRecord, error)
	// ValuesInPeriod returns completed values of records whose period falls
	// entirely within [start, end].
	ValuesInPeriod(ctx context.Context, projectID string, start, end time.Time) ([]decimal.Decimal, error)
}

// VariationRepository defines persistence operations for Variation
type VariationRepository interface {
	Create(ctx context.Context, variation *entity.Variation) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.Variation, error)
	ApprovedAmounts(ctx context.Context, projectID string) ([]decimal.Decimal, error)
}

// ClaimRepository defines persistence operations for PaymentClaim.
// Claims are append-only; there is no update or delete.
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.PaymentClaim) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.PaymentClaim, error)
	LatestReferenceDate(ctx context.Context, projectID string) (*time.Time, error)
	CountByIDs(ctx context.Context, projectID string, ids []string) (int, error)
}

// InvoiceRepository defines persistence operations for Invoice (append-only)
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.Invoice, error)
}

// SequenceAllocator issues per-project, per-class document numbers.
// Two concurrent calls never receive the same number and numbers strictly
// increase; a number consumed by an aborted generation is a permanent hole.
type SequenceAllocator interface {
	NextNumber(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error)
}

// RelationKind names a many-to-many relation direction. The first word is
// the owner side of a reconcile call.
type RelationKind string

const (
	RelScopeProgramme    RelationKind = "scope_programme"
	RelProgrammeScope    RelationKind = "programme_scope"
	RelEvidenceScope     RelationKind = "evidence_scope"
	RelEvidenceProgramme RelationKind = "evidence_programme"
	RelEvidenceClaim     RelationKind = "evidence_claim"
	RelScopeEvidence     RelationKind = "scope_evidence"
	RelProgrammeEvidence RelationKind = "programme_evidence"
	RelClaimEvidence     RelationKind = "claim_evidence"
)

// LinkRepository maintains the many-to-many join tables. Reconcile replaces
// the owner's link set with exactly desired in one transaction, inserting
// missing pairs and removing stale ones while leaving surviving rows
// untouched.
type LinkRepository interface {
	Reconcile(ctx context.Context, kind RelationKind, ownerID string, desired []string) error
	LinkedIDs(ctx context.Context, kind RelationKind, ownerID string) ([]string, error)
	Clear(ctx context.Context, kind RelationKind, ownerID string) error
}

// TransactionManager runs fn inside a database transaction; repository
// calls made with the derived context join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IsUniqueViolation reports whether err is a uniqueness-constraint failure,
// used by orchestrators to detect a lost allocation race.
type ConstraintChecker interface {
	IsUniqueViolation(err error) bool
}
