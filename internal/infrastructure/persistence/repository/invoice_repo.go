package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// InvoiceRepository handles invoice database operations, append-only like
// payment claims
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, project_id, invoice_number, reference_date, amount,
			file_url, storage_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		invoice.ID, invoice.ProjectID, invoice.InvoiceNumber, invoice.ReferenceDate,
		invoice.Amount.String(), invoice.FileURL, invoice.StorageKey, invoice.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.String("project_id", invoice.ProjectID),
			zap.Int64("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// ListByProject returns a project's invoices, highest number first
func (r *InvoiceRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Invoice, error) {
	query := `
		SELECT id, project_id, invoice_number, reference_date, amount,
			file_url, storage_key, created_at
		FROM invoices
		WHERE project_id = ?
		ORDER BY invoice_number DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		var invoice entity.Invoice
		var amount string
		if err := rows.Scan(&invoice.ID, &invoice.ProjectID, &invoice.InvoiceNumber,
			&invoice.ReferenceDate, &amount, &invoice.FileURL,
			&invoice.StorageKey, &invoice.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid invoice amount for %s: %w", invoice.ID, err)
		}
		invoice.Amount = parsed
		invoices = append(invoices, &invoice)
	}
	return invoices, rows.Err()
}
