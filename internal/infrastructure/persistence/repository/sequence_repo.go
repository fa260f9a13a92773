package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// SequenceRepository issues per-project, per-class document numbers from the
// document_counters table. The upsert increments and reads in a single
// statement, so two concurrent calls never observe the same number. A number
// handed to a generation that later aborts is a permanent hole; the unique
// index on the document tables is the backstop, not this counter.
type SequenceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence allocator
func NewSequenceRepository(db *database.DB, logger *zap.Logger) *SequenceRepository {
	return &SequenceRepository{db: db, logger: logger}
}

// NextNumber atomically increments and returns the counter for
// (projectID, class), starting at 1 for a fresh pair
func (r *SequenceRepository) NextNumber(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error) {
	query := `
		INSERT INTO document_counters (project_id, document_class, last_number)
		VALUES (?, ?, 1)
		ON CONFLICT (project_id, document_class)
		DO UPDATE SET last_number = last_number + 1
		RETURNING last_number
	`
	var number int64
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, projectID, class).Scan(&number)
	if err != nil {
		r.logger.Error("Failed to allocate document number",
			zap.String("project_id", projectID),
			zap.String("class", string(class)),
			zap.Error(err))
		return 0, fmt.Errorf("failed to allocate document number: %w", err)
	}
	return number, nil
}
