package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

const testWording = "This is a payment claim made under the Building and Construction Industry Security of Payment Act 1999 (NSW)."

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type claimFixture struct {
	projects    *mockProjectRepo
	records     *mockWorkRecordRepo
	variations  *mockVariationRepo
	claims      *mockClaimRepo
	evidence    *mockEvidenceRepo
	links       *mockLinkRepo
	sequences   *mockSequenceAllocator
	renderer    *mockRenderer
	storage     *mockObjectStorage
	constraints uniqueViolationChecker
}

func newClaimFixture() *claimFixture {
	next := int64(0)
	return &claimFixture{
		projects: &mockProjectRepo{
			getByIDFn: func(ctx context.Context, id string) (*entity.Project, error) {
				return &entity.Project{ID: id, Name: "Riverside Apartments", RiskLevel: entity.RiskLow}, nil
			},
		},
		records: &mockWorkRecordRepo{
			valuesInPeriodFn: func(ctx context.Context, projectID string, start, end time.Time) ([]decimal.Decimal, error) {
				return []decimal.Decimal{decimal.RequireFromString("150.25")}, nil
			},
		},
		variations: &mockVariationRepo{
			// the repository query already excludes everything but approved
			approvedAmountsFn: func(ctx context.Context, projectID string) ([]decimal.Decimal, error) {
				return []decimal.Decimal{decimal.RequireFromString("250.00")}, nil
			},
		},
		claims: &mockClaimRepo{
			createFn: func(ctx context.Context, claim *entity.PaymentClaim) error { return nil },
			countByIDsFn: func(ctx context.Context, projectID string, ids []string) (int, error) {
				return len(ids), nil
			},
		},
		evidence: &mockEvidenceRepo{
			countByIDsFn: func(ctx context.Context, projectID string, ids []string) (int, error) {
				return len(ids), nil
			},
		},
		links: &mockLinkRepo{},
		sequences: &mockSequenceAllocator{
			nextNumberFn: func(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error) {
				next++
				return next, nil
			},
		},
		renderer: &mockRenderer{
			renderClaimFn: func(ctx context.Context, doc *port.ClaimRender) ([]byte, error) {
				return []byte("workbook"), nil
			},
		},
		storage:     &mockObjectStorage{},
		constraints: uniqueViolationChecker{},
	}
}

func (f *claimFixture) service() ClaimService {
	return NewClaimService(
		f.projects, f.records, f.variations, f.claims, f.evidence, f.links,
		f.sequences, f.renderer, f.storage, passthroughTxManager{},
		f.constraints, testWording, nopLogger{})
}

func validRequest() *GenerateClaimRequest {
	return &GenerateClaimRequest{
		ReferenceDate: day(2026, 3, 31),
		PeriodStart:   day(2026, 3, 1),
		PeriodEnd:     day(2026, 3, 31),
	}
}

func TestClaimService_Generate(t *testing.T) {
	f := newClaimFixture()
	var persisted *entity.PaymentClaim
	f.claims.createFn = func(ctx context.Context, claim *entity.PaymentClaim) error {
		persisted = claim
		return nil
	}

	claim, err := f.service().Generate(context.Background(), "proj-1", validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), claim.ClaimNumber, "first claim in a fresh project is number 1")
	assert.True(t, claim.ClaimedAmount.Equal(decimal.RequireFromString("400.25")),
		"in-period work plus approved variations, got %s", claim.ClaimedAmount)
	assert.Equal(t, testWording, claim.StatutoryWording)
	assert.NotEmpty(t, claim.FileURL)
	require.NotNil(t, persisted)
	assert.Equal(t, claim.ID, persisted.ID)
}

func TestClaimService_GenerateCustomWording(t *testing.T) {
	f := newClaimFixture()
	req := validRequest()
	wording := "Custom act reference."
	req.StatutoryWording = &wording

	claim, err := f.service().Generate(context.Background(), "proj-1", req)
	require.NoError(t, err)
	assert.Equal(t, wording, claim.StatutoryWording)
}

func TestClaimService_GenerateInvalidPeriod(t *testing.T) {
	f := newClaimFixture()
	req := validRequest()
	req.PeriodEnd = day(2026, 2, 1)

	_, err := f.service().Generate(context.Background(), "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestClaimService_GenerateRenderFailureLeavesNoRow(t *testing.T) {
	f := newClaimFixture()
	f.renderer.renderClaimFn = func(ctx context.Context, doc *port.ClaimRender) ([]byte, error) {
		return nil, errors.New("render exploded")
	}
	created := false
	f.claims.createFn = func(ctx context.Context, claim *entity.PaymentClaim) error {
		created = true
		return nil
	}

	_, err := f.service().Generate(context.Background(), "proj-1", validRequest())
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.False(t, created, "no claim row may exist after a render failure")
}

func TestClaimService_GenerateRetriesOnUniqueViolation(t *testing.T) {
	f := newClaimFixture()
	raceErr := errors.New("UNIQUE constraint failed: payment_claims.claim_number")
	f.constraints = uniqueViolationChecker{isUniqueFn: func(err error) bool {
		return errors.Is(err, raceErr)
	}}

	attempts := 0
	f.claims.createFn = func(ctx context.Context, claim *entity.PaymentClaim) error {
		attempts++
		if attempts == 1 {
			return raceErr
		}
		return nil
	}

	claim, err := f.service().Generate(context.Background(), "proj-1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(2), claim.ClaimNumber, "the lost number stays a hole")
}

func TestClaimService_GenerateConflictAfterExhaustedRetries(t *testing.T) {
	f := newClaimFixture()
	raceErr := errors.New("UNIQUE constraint failed")
	f.constraints = uniqueViolationChecker{isUniqueFn: func(err error) bool { return true }}
	f.claims.createFn = func(ctx context.Context, claim *entity.PaymentClaim) error {
		return raceErr
	}

	_, err := f.service().Generate(context.Background(), "proj-1", validRequest())
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestClaimService_GenerateEvidenceLinks(t *testing.T) {
	t.Run("absent evidenceIds touches no links", func(t *testing.T) {
		f := newClaimFixture()
		f.links.reconcileFn = func(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
			t.Fatal("no reconcile expected")
			return nil
		}
		_, err := f.service().Generate(context.Background(), "proj-1", validRequest())
		require.NoError(t, err)
	})

	t.Run("present evidenceIds reconcile within the claim tx", func(t *testing.T) {
		f := newClaimFixture()
		var reconciled []string
		f.links.reconcileFn = func(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
			assert.Equal(t, port.RelClaimEvidence, kind)
			reconciled = desired
			return nil
		}
		f.links.linkedIDsFn = func(ctx context.Context, kind port.RelationKind, ownerID string) ([]string, error) {
			return reconciled, nil
		}

		req := validRequest()
		ids := []string{"ev-1", "ev-2"}
		req.EvidenceIDs = &ids

		claim, err := f.service().Generate(context.Background(), "proj-1", req)
		require.NoError(t, err)
		assert.Equal(t, []string{"ev-1", "ev-2"}, claim.EvidenceIDs)
	})

	t.Run("unknown evidence id is a validation error", func(t *testing.T) {
		f := newClaimFixture()
		f.evidence.countByIDsFn = func(ctx context.Context, projectID string, ids []string) (int, error) {
			return 0, nil
		}

		req := validRequest()
		ids := []string{"ev-missing"}
		req.EvidenceIDs = &ids

		_, err := f.service().Generate(context.Background(), "proj-1", req)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestClaimService_GenerateEmptyProject(t *testing.T) {
	f := newClaimFixture()
	f.records.valuesInPeriodFn = func(ctx context.Context, projectID string, start, end time.Time) ([]decimal.Decimal, error) {
		return nil, nil
	}
	f.variations.approvedAmountsFn = func(ctx context.Context, projectID string) ([]decimal.Decimal, error) {
		return nil, nil
	}

	claim, err := f.service().Generate(context.Background(), "proj-1", validRequest())
	require.NoError(t, err)
	assert.True(t, claim.ClaimedAmount.IsZero(), "no inputs folds to zero, not an error")
}
