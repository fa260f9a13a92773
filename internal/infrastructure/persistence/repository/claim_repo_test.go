package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
)

func newClaim(projectID string, number int64) *entity.PaymentClaim {
	return &entity.PaymentClaim{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		ClaimNumber:      number,
		ReferenceDate:    day(2026, 3, 31),
		PeriodStart:      day(2026, 3, 1),
		PeriodEnd:        day(2026, 3, 31),
		ClaimedAmount:    decimal.RequireFromString("400.25"),
		StatutoryWording: "This is a payment claim made under the Building and Construction Industry Security of Payment Act 1999 (NSW).",
		FileURL:          "http://localhost/files/claim-1.xlsx",
		StorageKey:       "claims/claim-1.xlsx",
		CreatedAt:        time.Now().UTC(),
	}
}

func TestClaimRepository_DuplicateNumberIsUniqueViolation(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewClaimRepository(db, zap.NewNop())
	txm := NewTxManager(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newClaim(projectID, 1)))

	err := repo.Create(ctx, newClaim(projectID, 1))
	require.Error(t, err)
	assert.True(t, txm.IsUniqueViolation(err), "duplicate claim number must surface as a unique violation")

	// a different project may reuse the number
	otherProject := seedProject(t, db)
	assert.NoError(t, repo.Create(ctx, newClaim(otherProject, 1)))
}

func TestClaimRepository_LatestReferenceDate(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewClaimRepository(db, zap.NewNop())
	ctx := context.Background()

	ref, err := repo.LatestReferenceDate(ctx, projectID)
	require.NoError(t, err)
	assert.Nil(t, ref, "no claims yet")

	first := newClaim(projectID, 1)
	first.ReferenceDate = day(2026, 2, 28)
	require.NoError(t, repo.Create(ctx, first))

	second := newClaim(projectID, 2)
	second.ReferenceDate = day(2026, 3, 31)
	require.NoError(t, repo.Create(ctx, second))

	ref, err = repo.LatestReferenceDate(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.True(t, ref.Equal(day(2026, 3, 31)))
}

func TestClaimRepository_ListByProject(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewClaimRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newClaim(projectID, 1)))
	require.NoError(t, repo.Create(ctx, newClaim(projectID, 2)))

	claims, err := repo.ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, int64(2), claims[0].ClaimNumber, "highest number first")
	assert.True(t, claims[0].ClaimedAmount.Equal(decimal.RequireFromString("400.25")))
}
