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

// ProgrammeRepository handles programme item database operations
type ProgrammeRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewProgrammeRepository creates a new programme item repository
func NewProgrammeRepository(db *database.DB, logger *zap.Logger) *ProgrammeRepository {
	return &ProgrammeRepository{db: db, logger: logger}
}

// Create inserts a new programme item
func (r *ProgrammeRepository) Create(ctx context.Context, item *entity.ProgrammeItem) error {
	query := `
		INSERT INTO programme_items (id, project_id, title, description, start_date,
			end_date, status, confidence, source_document_id, source_page,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		item.ID, item.ProjectID, item.Title, item.Description, item.StartDate,
		item.EndDate, item.Status, item.Confidence, item.SourceDocumentID,
		item.SourcePage, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create programme item", zap.Error(err))
		return fmt.Errorf("failed to create programme item: %w", err)
	}
	return nil
}

// GetByID retrieves a programme item scoped to its project
func (r *ProgrammeRepository) GetByID(ctx context.Context, projectID, id string) (*entity.ProgrammeItem, error) {
	query := `
		SELECT id, project_id, title, description, start_date, end_date, status,
			confidence, source_document_id, source_page, created_at, updated_at
		FROM programme_items
		WHERE project_id = ? AND id = ?
	`
	var item entity.ProgrammeItem
	var startDate, endDate sql.NullTime
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, projectID, id).Scan(
		&item.ID, &item.ProjectID, &item.Title, &item.Description, &startDate,
		&endDate, &item.Status, &item.Confidence, &item.SourceDocumentID,
		&item.SourcePage, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		t := startDate.Time
		item.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		item.EndDate = &t
	}
	return &item, nil
}

// ListByProject returns a project's programme items ordered by start date,
// undated items last
func (r *ProgrammeRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.ProgrammeItem, error) {
	query := `
		SELECT id, project_id, title, description, start_date, end_date, status,
			confidence, source_document_id, source_page, created_at, updated_at
		FROM programme_items
		WHERE project_id = ?
		ORDER BY start_date IS NULL, start_date ASC, created_at ASC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list programme items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ProgrammeItem
	for rows.Next() {
		var item entity.ProgrammeItem
		var startDate, endDate sql.NullTime
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Title, &item.Description,
			&startDate, &endDate, &item.Status, &item.Confidence,
			&item.SourceDocumentID, &item.SourcePage, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if startDate.Valid {
			t := startDate.Time
			item.StartDate = &t
		}
		if endDate.Valid {
			t := endDate.Time
			item.EndDate = &t
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update rewrites a programme item's editable fields
func (r *ProgrammeRepository) Update(ctx context.Context, item *entity.ProgrammeItem) error {
	item.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE programme_items
		SET title = ?, description = ?, start_date = ?, end_date = ?, status = ?,
			confidence = ?, updated_at = ?
		WHERE project_id = ? AND id = ?
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		item.Title, item.Description, item.StartDate, item.EndDate, item.Status,
		item.Confidence, item.UpdatedAt, item.ProjectID, item.ID)
	if err != nil {
		r.logger.Error("Failed to update programme item", zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update programme item: %w", err)
	}
	return nil
}

// Delete removes a programme item
func (r *ProgrammeRepository) Delete(ctx context.Context, projectID, id string) error {
	query := `DELETE FROM programme_items WHERE project_id = ? AND id = ?`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query, projectID, id)
	if err != nil {
		return fmt.Errorf("failed to delete programme item: %w", err)
	}
	return nil
}

// ConfidencesByProject returns the confidence of every programme item in the
// project; a nil entry is an item with no recorded confidence
func (r *ProgrammeRepository) ConfidencesByProject(ctx context.Context, projectID string) ([]*float64, error) {
	query := `SELECT confidence FROM programme_items WHERE project_id = ?`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query programme confidences: %w", err)
	}
	defer rows.Close()

	var confidences []*float64
	for rows.Next() {
		var confidence *float64
		if err := rows.Scan(&confidence); err != nil {
			return nil, err
		}
		confidences = append(confidences, confidence)
	}
	return confidences, rows.Err()
}

// CountByIDs returns how many of ids exist within the project
func (r *ProgrammeRepository) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return countByIDs(ctx, dbtx(ctx, r.db), "programme_items", projectID, ids)
}
