package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// ClauseRepository handles clause database operations
type ClauseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewClauseRepository creates a new clause repository
func NewClauseRepository(db *database.DB, logger *zap.Logger) *ClauseRepository {
	return &ClauseRepository{db: db, logger: logger}
}

// Create inserts a new clause
func (r *ClauseRepository) Create(ctx context.Context, clause *entity.Clause) error {
	query := `
		INSERT INTO clauses (id, project_id, document_id, clause_ref, title, body,
			risk_level, status, page_number, source_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		clause.ID, clause.ProjectID, clause.DocumentID, clause.ClauseRef,
		clause.Title, clause.Body, clause.RiskLevel, clause.Status,
		clause.PageNumber, clause.SourceRef, clause.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create clause", zap.Error(err))
		return fmt.Errorf("failed to create clause: %w", err)
	}
	return nil
}

// ListByDocument returns a document's clauses in clause-reference order
func (r *ClauseRepository) ListByDocument(ctx context.Context, projectID, documentID string) ([]*entity.Clause, error) {
	query := `
		SELECT id, project_id, document_id, clause_ref, title, body,
			risk_level, status, page_number, source_ref, created_at
		FROM clauses
		WHERE project_id = ? AND document_id = ?
		ORDER BY clause_ref ASC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clauses: %w", err)
	}
	defer rows.Close()

	var clauses []*entity.Clause
	for rows.Next() {
		var c entity.Clause
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.DocumentID, &c.ClauseRef,
			&c.Title, &c.Body, &c.RiskLevel, &c.Status,
			&c.PageNumber, &c.SourceRef, &c.CreatedAt); err != nil {
			return nil, err
		}
		clauses = append(clauses, &c)
	}
	return clauses, rows.Err()
}

// RiskLevelsByProject returns the risk level of every clause in the project,
// used to fold the project-level risk rating
func (r *ClauseRepository) RiskLevelsByProject(ctx context.Context, projectID string) ([]entity.RiskLevel, error) {
	query := `SELECT risk_level FROM clauses WHERE project_id = ?`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clause risk levels: %w", err)
	}
	defer rows.Close()

	var levels []entity.RiskLevel
	for rows.Next() {
		var level entity.RiskLevel
		if err := rows.Scan(&level); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}
