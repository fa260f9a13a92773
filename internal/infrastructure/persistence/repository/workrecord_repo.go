package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// WorkRecordRepository handles monthly work record database operations.
// Monetary values are stored as decimal strings, never floats.
type WorkRecordRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewWorkRecordRepository creates a new work record repository
func NewWorkRecordRepository(db *database.DB, logger *zap.Logger) *WorkRecordRepository {
	return &WorkRecordRepository{db: db, logger: logger}
}

// Create inserts a new monthly work record
func (r *WorkRecordRepository) Create(ctx context.Context, record *entity.MonthlyWorkRecord) error {
	query := `
		INSERT INTO monthly_work_records (id, project_id, period_start, period_end,
			completed_value, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		record.ID, record.ProjectID, record.PeriodStart, record.PeriodEnd,
		record.CompletedValue.String(), record.Notes, record.Status, record.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create work record", zap.Error(err))
		return fmt.Errorf("failed to create work record: %w", err)
	}
	return nil
}

// ListByProject returns a project's work records, most recent period first
func (r *WorkRecordRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.MonthlyWorkRecord, error) {
	query := `
		SELECT id, project_id, period_start, period_end, completed_value, notes,
			status, created_at
		FROM monthly_work_records
		WHERE project_id = ?
		ORDER BY period_start DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work records: %w", err)
	}
	defer rows.Close()

	var records []*entity.MonthlyWorkRecord
	for rows.Next() {
		var record entity.MonthlyWorkRecord
		var value string
		if err := rows.Scan(&record.ID, &record.ProjectID, &record.PeriodStart,
			&record.PeriodEnd, &value, &record.Notes, &record.Status,
			&record.CreatedAt); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid completed value for record %s: %w", record.ID, err)
		}
		record.CompletedValue = amount
		records = append(records, &record)
	}
	return records, rows.Err()
}

// ValuesInPeriod returns the completed values of records whose period falls
// entirely within [start, end]. Records straddling the boundary do not count.
func (r *WorkRecordRepository) ValuesInPeriod(ctx context.Context, projectID string, start, end time.Time) ([]decimal.Decimal, error) {
	query := `
		SELECT completed_value
		FROM monthly_work_records
		WHERE project_id = ? AND period_start >= ? AND period_end <= ?
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query period values: %w", err)
	}
	defer rows.Close()

	var values []decimal.Decimal
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid completed value: %w", err)
		}
		values = append(values, amount)
	}
	return values, rows.Err()
}
