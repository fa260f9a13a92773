package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// DocumentRepository handles contract document database operations
type DocumentRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *database.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// Create inserts a new contract document
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.ContractDocument) error {
	query := `
		INSERT INTO contract_documents (id, project_id, title, file_name, file_url,
			storage_key, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		doc.ID, doc.ProjectID, doc.Title, doc.FileName, doc.FileURL,
		doc.StorageKey, doc.Status, doc.UploadedAt)
	if err != nil {
		r.logger.Error("Failed to create contract document", zap.Error(err))
		return fmt.Errorf("failed to create contract document: %w", err)
	}
	return nil
}

// GetByID retrieves a contract document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.ContractDocument, error) {
	query := `
		SELECT id, project_id, title, file_name, file_url, storage_key, status, uploaded_at
		FROM contract_documents
		WHERE id = ?
	`
	var doc entity.ContractDocument
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.ProjectID, &doc.Title, &doc.FileName, &doc.FileURL,
		&doc.StorageKey, &doc.Status, &doc.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByProject returns a project's contract documents, newest first
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.ContractDocument, error) {
	query := `
		SELECT id, project_id, title, file_name, file_url, storage_key, status, uploaded_at
		FROM contract_documents
		WHERE project_id = ?
		ORDER BY uploaded_at DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.ContractDocument
	for rows.Next() {
		var doc entity.ContractDocument
		if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Title, &doc.FileName,
			&doc.FileURL, &doc.StorageKey, &doc.Status, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// ListPending returns draft documents awaiting the parse pipeline, oldest
// first so uploads are processed in arrival order
func (r *DocumentRepository) ListPending(ctx context.Context, limit int) ([]*entity.ContractDocument, error) {
	query := `
		SELECT id, project_id, title, file_name, file_url, storage_key, status, uploaded_at
		FROM contract_documents
		WHERE status = ?
		ORDER BY uploaded_at ASC
		LIMIT ?
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, entity.StatusDraft, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.ContractDocument
	for rows.Next() {
		var doc entity.ContractDocument
		if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Title, &doc.FileName,
			&doc.FileURL, &doc.StorageKey, &doc.Status, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// UpdateStatus transitions a document's parse status
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status entity.ItemStatus) error {
	query := `UPDATE contract_documents SET status = ? WHERE id = ?`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}
