package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// ScopeRepository handles scope item database operations
type ScopeRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewScopeRepository creates a new scope item repository
func NewScopeRepository(db *database.DB, logger *zap.Logger) *ScopeRepository {
	return &ScopeRepository{db: db, logger: logger}
}

// Create inserts a new scope item
func (r *ScopeRepository) Create(ctx context.Context, item *entity.ScopeItem) error {
	query := `
		INSERT INTO scope_items (id, project_id, title, description, status, confidence,
			ambiguity_flag, source_document_id, source_clause_id, source_page,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		item.ID, item.ProjectID, item.Title, item.Description, item.Status,
		item.Confidence, item.AmbiguityFlag, item.SourceDocumentID,
		item.SourceClauseID, item.SourcePage, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create scope item", zap.Error(err))
		return fmt.Errorf("failed to create scope item: %w", err)
	}
	return nil
}

// GetByID retrieves a scope item scoped to its project
func (r *ScopeRepository) GetByID(ctx context.Context, projectID, id string) (*entity.ScopeItem, error) {
	query := `
		SELECT id, project_id, title, description, status, confidence, ambiguity_flag,
			source_document_id, source_clause_id, source_page, created_at, updated_at
		FROM scope_items
		WHERE project_id = ? AND id = ?
	`
	var item entity.ScopeItem
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, projectID, id).Scan(
		&item.ID, &item.ProjectID, &item.Title, &item.Description, &item.Status,
		&item.Confidence, &item.AmbiguityFlag, &item.SourceDocumentID,
		&item.SourceClauseID, &item.SourcePage, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByProject returns a project's scope items, oldest first
func (r *ScopeRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.ScopeItem, error) {
	query := `
		SELECT id, project_id, title, description, status, confidence, ambiguity_flag,
			source_document_id, source_clause_id, source_page, created_at, updated_at
		FROM scope_items
		WHERE project_id = ?
		ORDER BY created_at ASC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scope items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ScopeItem
	for rows.Next() {
		var item entity.ScopeItem
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Title, &item.Description,
			&item.Status, &item.Confidence, &item.AmbiguityFlag, &item.SourceDocumentID,
			&item.SourceClauseID, &item.SourcePage, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update rewrites a scope item's editable fields
func (r *ScopeRepository) Update(ctx context.Context, item *entity.ScopeItem) error {
	item.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE scope_items
		SET title = ?, description = ?, status = ?, confidence = ?, ambiguity_flag = ?,
			updated_at = ?
		WHERE project_id = ? AND id = ?
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		item.Title, item.Description, item.Status, item.Confidence,
		item.AmbiguityFlag, item.UpdatedAt, item.ProjectID, item.ID)
	if err != nil {
		r.logger.Error("Failed to update scope item", zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update scope item: %w", err)
	}
	return nil
}

// Delete removes a scope item
func (r *ScopeRepository) Delete(ctx context.Context, projectID, id string) error {
	query := `DELETE FROM scope_items WHERE project_id = ? AND id = ?`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query, projectID, id)
	if err != nil {
		return fmt.Errorf("failed to delete scope item: %w", err)
	}
	return nil
}

// StatusesByProject returns the status of every scope item in the project,
// used for the completeness metric
func (r *ScopeRepository) StatusesByProject(ctx context.Context, projectID string) ([]entity.ItemStatus, error) {
	query := `SELECT status FROM scope_items WHERE project_id = ?`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scope statuses: %w", err)
	}
	defer rows.Close()

	var statuses []entity.ItemStatus
	for rows.Next() {
		var status entity.ItemStatus
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

// CountByIDs returns how many of ids exist within the project, used to
// validate link targets before reconciling
func (r *ScopeRepository) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return countByIDs(ctx, dbtx(ctx, r.db), "scope_items", projectID, ids)
}

// countByIDs is shared by the repositories that validate link targets
func countByIDs(ctx context.Context, q DBTX, table, projectID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE project_id = ? AND id IN (%s)`, table, placeholders)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, projectID)
	for _, id := range ids {
		args = append(args, id)
	}

	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s by ids: %w", table, err)
	}
	return count, nil
}
