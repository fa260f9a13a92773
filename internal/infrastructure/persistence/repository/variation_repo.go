package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// VariationRepository handles contract variation database operations
type VariationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewVariationRepository creates a new variation repository
func NewVariationRepository(db *database.DB, logger *zap.Logger) *VariationRepository {
	return &VariationRepository{db: db, logger: logger}
}

// Create inserts a new variation
func (r *VariationRepository) Create(ctx context.Context, variation *entity.Variation) error {
	query := `
		INSERT INTO variations (id, project_id, title, description, amount, status,
			source_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		variation.ID, variation.ProjectID, variation.Title, variation.Description,
		variation.Amount.String(), variation.Status, variation.SourceRef, variation.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create variation", zap.Error(err))
		return fmt.Errorf("failed to create variation: %w", err)
	}
	return nil
}

// ListByProject returns a project's variations, newest first
func (r *VariationRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Variation, error) {
	query := `
		SELECT id, project_id, title, description, amount, status, source_ref, created_at
		FROM variations
		WHERE project_id = ?
		ORDER BY created_at DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variations: %w", err)
	}
	defer rows.Close()

	var variations []*entity.Variation
	for rows.Next() {
		var v entity.Variation
		var amount string
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Title, &v.Description,
			&amount, &v.Status, &v.SourceRef, &v.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid variation amount for %s: %w", v.ID, err)
		}
		v.Amount = parsed
		variations = append(variations, &v)
	}
	return variations, rows.Err()
}

// ApprovedAmounts returns the amounts of all approved variations in the
// project, regardless of when they were approved
func (r *VariationRepository) ApprovedAmounts(ctx context.Context, projectID string) ([]decimal.Decimal, error) {
	query := `SELECT amount FROM variations WHERE project_id = ? AND status = ?`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID, entity.VariationApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved variations: %w", err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid variation amount: %w", err)
		}
		amounts = append(amounts, amount)
	}
	return amounts, rows.Err()
}
