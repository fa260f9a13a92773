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

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWorkRecordRepository_ValuesInPeriod(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewWorkRecordRepository(db, zap.NewNop())
	ctx := context.Background()

	add := func(start, end time.Time, value string) {
		t.Helper()
		require.NoError(t, repo.Create(ctx, &entity.MonthlyWorkRecord{
			ID:             uuid.NewString(),
			ProjectID:      projectID,
			PeriodStart:    start,
			PeriodEnd:      end,
			CompletedValue: decimal.RequireFromString(value),
			Status:         entity.StatusConfirmed,
			CreatedAt:      time.Now().UTC(),
		}))
	}

	add(day(2026, 3, 1), day(2026, 3, 31), "100.10")
	add(day(2026, 3, 5), day(2026, 3, 20), "50.15")
	// straddles the start boundary, must not count
	add(day(2026, 2, 20), day(2026, 3, 10), "999")
	// straddles the end boundary, must not count
	add(day(2026, 3, 25), day(2026, 4, 5), "999")
	// outside entirely
	add(day(2026, 4, 1), day(2026, 4, 30), "999")

	values, err := repo.ValuesInPeriod(ctx, projectID, day(2026, 3, 1), day(2026, 3, 31))
	require.NoError(t, err)
	require.Len(t, values, 2)

	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("150.25")), "got %s", total)
}

func TestWorkRecordRepository_DecimalRoundTrip(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewWorkRecordRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.MonthlyWorkRecord{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		PeriodStart:    day(2026, 1, 1),
		PeriodEnd:      day(2026, 1, 31),
		CompletedValue: decimal.RequireFromString("0.1"),
		Status:         entity.StatusDraft,
		CreatedAt:      time.Now().UTC(),
	}))

	records, err := repo.ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].CompletedValue.Equal(decimal.RequireFromString("0.1")))
}
