package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// ClaimRepository handles payment claim database operations. Claims are
// append-only: there is no update or delete path, and (project_id,
// claim_number) is unique at the schema level.
type ClaimRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new payment claim repository
func NewClaimRepository(db *database.DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{db: db, logger: logger}
}

// Create inserts a new payment claim. A uniqueness failure on the claim
// number surfaces unwrapped so the caller can detect the allocation race.
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.PaymentClaim) error {
	query := `
		INSERT INTO payment_claims (id, project_id, claim_number, reference_date,
			period_start, period_end, claimed_amount, statutory_wording,
			service_date, file_url, storage_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		claim.ID, claim.ProjectID, claim.ClaimNumber, claim.ReferenceDate,
		claim.PeriodStart, claim.PeriodEnd, claim.ClaimedAmount.String(),
		claim.StatutoryWording, claim.ServiceDate, claim.FileURL,
		claim.StorageKey, claim.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create payment claim",
			zap.String("project_id", claim.ProjectID),
			zap.Int64("claim_number", claim.ClaimNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create payment claim: %w", err)
	}
	return nil
}

// ListByProject returns a project's payment claims, highest number first
func (r *ClaimRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.PaymentClaim, error) {
	query := `
		SELECT id, project_id, claim_number, reference_date, period_start, period_end,
			claimed_amount, statutory_wording, service_date, file_url, storage_key, created_at
		FROM payment_claims
		WHERE project_id = ?
		ORDER BY claim_number DESC
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment claims: %w", err)
	}
	defer rows.Close()

	var claims []*entity.PaymentClaim
	for rows.Next() {
		var claim entity.PaymentClaim
		var amount string
		var serviceDate sql.NullTime
		if err := rows.Scan(&claim.ID, &claim.ProjectID, &claim.ClaimNumber,
			&claim.ReferenceDate, &claim.PeriodStart, &claim.PeriodEnd,
			&amount, &claim.StatutoryWording, &serviceDate,
			&claim.FileURL, &claim.StorageKey, &claim.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid claimed amount for %s: %w", claim.ID, err)
		}
		claim.ClaimedAmount = parsed
		if serviceDate.Valid {
			t := serviceDate.Time
			claim.ServiceDate = &t
		}
		claims = append(claims, &claim)
	}
	return claims, rows.Err()
}

// LatestReferenceDate returns the reference date of the most recent claim,
// or nil when the project has no claims yet
func (r *ClaimRepository) LatestReferenceDate(ctx context.Context, projectID string) (*time.Time, error) {
	query := `
		SELECT reference_date FROM payment_claims
		WHERE project_id = ?
		ORDER BY claim_number DESC
		LIMIT 1
	`
	var ref time.Time
	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, projectID).Scan(&ref)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reference date: %w", err)
	}
	return &ref, nil
}

// CountByIDs returns how many of ids exist within the project
func (r *ClaimRepository) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return countByIDs(ctx, dbtx(ctx, r.db), "payment_claims", projectID, ids)
}
