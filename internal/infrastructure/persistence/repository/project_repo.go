package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (id, name, code, status, organisation_id, risk_level,
			invoice_mode_enabled, next_claim_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Code,
		project.Status,
		project.OrganisationID,
		project.RiskLevel,
		project.InvoiceModeEnabled,
		project.NextClaimDate,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID; returns sql.ErrNoRows when absent
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	query := `
		SELECT id, name, code, status, organisation_id, risk_level,
			invoice_mode_enabled, next_claim_date, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	return r.scanProject(dbtx(ctx, r.db).QueryRowContext(ctx, query, id))
}

// ListForUser returns projects the user is a member of, newest first
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Project, error) {
	query := `
		SELECT p.id, p.name, p.code, p.status, p.organisation_id, p.risk_level,
			p.invoice_mode_enabled, p.next_claim_date, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = ?
		ORDER BY p.created_at DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := r.scanProjectRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateSettings applies a partial settings update and returns the updated
// project. Nil patch fields are left untouched; the risk level here is the
// manual override path and is written as-is, independent of the
// clause-derived value.
func (r *ProjectRepository) UpdateSettings(ctx context.Context, id string, patch *entity.ProjectSettingsPatch) (*entity.Project, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.InvoiceModeEnabled != nil {
		project.InvoiceModeEnabled = *patch.InvoiceModeEnabled
	}
	if patch.NextClaimDate != nil {
		project.NextClaimDate = patch.NextClaimDate
	}
	if patch.RiskLevel != nil {
		project.RiskLevel = *patch.RiskLevel
	}
	project.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects
		SET invoice_mode_enabled = ?, next_claim_date = ?, risk_level = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = dbtx(ctx, r.db).ExecContext(ctx, query,
		project.InvoiceModeEnabled,
		project.NextClaimDate,
		project.RiskLevel,
		project.UpdatedAt,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update project settings", zap.String("project_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update project settings: %w", err)
	}
	return project, nil
}

// AddMember grants a user access to a project
func (r *ProjectRepository) AddMember(ctx context.Context, member *entity.ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		member.ProjectID, member.UserID, member.Role, member.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

// IsMember reports whether the user has access to the project
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	query := `SELECT 1 FROM project_members WHERE project_id = ? AND user_id = ? LIMIT 1`
	var one int
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, projectID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// HasAccess implements port.AccessChecker
func (r *ProjectRepository) HasAccess(ctx context.Context, projectID, userID string) (bool, error) {
	return r.IsMember(ctx, projectID, userID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ProjectRepository) scanProject(row *sql.Row) (*entity.Project, error) {
	return scanProjectFrom(row)
}

func (r *ProjectRepository) scanProjectRows(rows *sql.Rows) (*entity.Project, error) {
	return scanProjectFrom(rows)
}

func scanProjectFrom(s rowScanner) (*entity.Project, error) {
	var project entity.Project
	var code, organisationID sql.NullString
	var riskLevel string
	var nextClaimDate sql.NullTime

	err := s.Scan(
		&project.ID,
		&project.Name,
		&code,
		&project.Status,
		&organisationID,
		&riskLevel,
		&project.InvoiceModeEnabled,
		&nextClaimDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if code.Valid {
		project.Code = &code.String
	}
	if organisationID.Valid {
		project.OrganisationID = &organisationID.String
	}
	project.RiskLevel = entity.RiskLevel(riskLevel)
	if nextClaimDate.Valid {
		t := nextClaimDate.Time
		project.NextClaimDate = &t
	}
	return &project, nil
}
