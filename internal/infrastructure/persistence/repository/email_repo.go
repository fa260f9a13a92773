package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// EmailRepository handles inbound email database operations
type EmailRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEmailRepository creates a new inbound email repository
func NewEmailRepository(db *database.DB, logger *zap.Logger) *EmailRepository {
	return &EmailRepository{db: db, logger: logger}
}

// Create inserts a new inbound email
func (r *EmailRepository) Create(ctx context.Context, email *entity.InboundEmail) error {
	query := `
		INSERT INTO inbound_emails (id, project_id, sender, subject, body, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		email.ID, email.ProjectID, email.Sender, email.Subject, email.Body, email.ReceivedAt)
	if err != nil {
		r.logger.Error("Failed to create inbound email", zap.Error(err))
		return fmt.Errorf("failed to create inbound email: %w", err)
	}
	return nil
}

// ListByProject returns a project's inbound emails, newest first
func (r *EmailRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.InboundEmail, error) {
	query := `
		SELECT id, project_id, sender, subject, body, received_at
		FROM inbound_emails
		WHERE project_id = ?
		ORDER BY received_at DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbound emails: %w", err)
	}
	defer rows.Close()

	var emails []*entity.InboundEmail
	for rows.Next() {
		var email entity.InboundEmail
		if err := rows.Scan(&email.ID, &email.ProjectID, &email.Sender,
			&email.Subject, &email.Body, &email.ReceivedAt); err != nil {
			return nil, err
		}
		emails = append(emails, &email)
	}
	return emails, rows.Err()
}
