package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// EvidenceRepository handles evidence database operations
type EvidenceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEvidenceRepository creates a new evidence repository
func NewEvidenceRepository(db *database.DB, logger *zap.Logger) *EvidenceRepository {
	return &EvidenceRepository{db: db, logger: logger}
}

// Create inserts a new evidence record
func (r *EvidenceRepository) Create(ctx context.Context, ev *entity.Evidence) error {
	query := `
		INSERT INTO evidence (id, project_id, inbound_email_id, type, status, title,
			file_name, file_url, storage_key, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		ev.ID, ev.ProjectID, ev.InboundEmailID, ev.Type, ev.Status, ev.Title,
		ev.FileName, ev.FileURL, ev.StorageKey, ev.UploadedAt)
	if err != nil {
		r.logger.Error("Failed to create evidence", zap.Error(err))
		return fmt.Errorf("failed to create evidence: %w", err)
	}
	return nil
}

// GetByID retrieves an evidence record scoped to its project
func (r *EvidenceRepository) GetByID(ctx context.Context, projectID, id string) (*entity.Evidence, error) {
	query := `
		SELECT id, project_id, inbound_email_id, type, status, title,
			file_name, file_url, storage_key, uploaded_at
		FROM evidence
		WHERE project_id = ? AND id = ?
	`
	var ev entity.Evidence
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, projectID, id).Scan(
		&ev.ID, &ev.ProjectID, &ev.InboundEmailID, &ev.Type, &ev.Status, &ev.Title,
		&ev.FileName, &ev.FileURL, &ev.StorageKey, &ev.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListByProject returns a project's evidence, newest first
func (r *EvidenceRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Evidence, error) {
	query := `
		SELECT id, project_id, inbound_email_id, type, status, title,
			file_name, file_url, storage_key, uploaded_at
		FROM evidence
		WHERE project_id = ?
		ORDER BY uploaded_at DESC
	`
	return r.list(ctx, query, projectID)
}

// ListByEmail returns the evidence records created from an inbound email's
// attachments
func (r *EvidenceRepository) ListByEmail(ctx context.Context, emailID string) ([]*entity.Evidence, error) {
	query := `
		SELECT id, project_id, inbound_email_id, type, status, title,
			file_name, file_url, storage_key, uploaded_at
		FROM evidence
		WHERE inbound_email_id = ?
		ORDER BY uploaded_at ASC
	`
	return r.list(ctx, query, emailID)
}

func (r *EvidenceRepository) list(ctx context.Context, query string, arg interface{}) ([]*entity.Evidence, error) {
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	defer rows.Close()

	var items []*entity.Evidence
	for rows.Next() {
		var ev entity.Evidence
		if err := rows.Scan(&ev.ID, &ev.ProjectID, &ev.InboundEmailID, &ev.Type,
			&ev.Status, &ev.Title, &ev.FileName, &ev.FileURL, &ev.StorageKey,
			&ev.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, &ev)
	}
	return items, rows.Err()
}

// CountByIDs returns how many of ids exist within the project
func (r *EvidenceRepository) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return countByIDs(ctx, dbtx(ctx, r.db), "evidence", projectID, ids)
}
