package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

func newEvidenceService(links *mockLinkRepo) EvidenceService {
	return NewEvidenceService(
		&mockEvidenceRepo{
			getByIDFn: func(ctx context.Context, projectID, id string) (*entity.Evidence, error) {
				return &entity.Evidence{ID: id, ProjectID: projectID}, nil
			},
			countByIDsFn: func(ctx context.Context, projectID string, ids []string) (int, error) {
				return len(ids), nil
			},
		},
		nil,
		&mockScopeCounter{}, &mockProgrammeCounter{},
		&mockClaimRepo{countByIDsFn: func(ctx context.Context, projectID string, ids []string) (int, error) {
			return len(ids), nil
		}},
		links,
		&mockObjectStorage{},
		passthroughTxManager{},
		nopLogger{},
	)
}

type mockScopeCounter struct {
	port.ScopeRepository
}

func (m *mockScopeCounter) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return len(ids), nil
}

type mockProgrammeCounter struct {
	port.ProgrammeRepository
}

func (m *mockProgrammeCounter) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return len(ids), nil
}

func TestEvidenceService_LinkAbsentVsEmpty(t *testing.T) {
	t.Run("absent keys touch nothing", func(t *testing.T) {
		links := &mockLinkRepo{
			reconcileFn: func(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
				t.Fatalf("unexpected reconcile of %s", kind)
				return nil
			},
		}
		_, err := newEvidenceService(links).Link(context.Background(), "proj-1", "ev-1", &LinkEvidenceRequest{})
		require.NoError(t, err)
	})

	t.Run("empty slice clears that relation only", func(t *testing.T) {
		var calls []port.RelationKind
		links := &mockLinkRepo{
			reconcileFn: func(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
				calls = append(calls, kind)
				assert.Empty(t, desired)
				return nil
			},
		}

		empty := []string{}
		_, err := newEvidenceService(links).Link(context.Background(), "proj-1", "ev-1", &LinkEvidenceRequest{
			ScopeItemIDs: &empty,
		})
		require.NoError(t, err)
		assert.Equal(t, []port.RelationKind{port.RelEvidenceScope}, calls,
			"only the supplied relation is reconciled")
	})

	t.Run("all three relations reconcile independently", func(t *testing.T) {
		var calls []port.RelationKind
		links := &mockLinkRepo{
			reconcileFn: func(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
				calls = append(calls, kind)
				return nil
			},
		}

		scope := []string{"s-1"}
		programme := []string{"p-1"}
		claims := []string{"c-1"}
		_, err := newEvidenceService(links).Link(context.Background(), "proj-1", "ev-1", &LinkEvidenceRequest{
			ScopeItemIDs:     &scope,
			ProgrammeItemIDs: &programme,
			PaymentClaimIDs:  &claims,
		})
		require.NoError(t, err)
		assert.Equal(t, []port.RelationKind{
			port.RelEvidenceScope, port.RelEvidenceProgramme, port.RelEvidenceClaim,
		}, calls)
	})
}

func TestEvidenceService_CreateInboundEmail(t *testing.T) {
	var createdEvidence []*entity.Evidence
	svc := NewEvidenceService(
		&mockEvidenceRepo{
			EvidenceRepository: &evidenceCreateRecorder{created: &createdEvidence},
		},
		&emailCreateRecorder{},
		&mockScopeCounter{}, &mockProgrammeCounter{},
		&mockClaimRepo{},
		&mockLinkRepo{},
		&mockObjectStorage{},
		passthroughTxManager{},
		nopLogger{},
	)

	email, err := svc.CreateInboundEmail(context.Background(), "proj-1", &CreateInboundEmailRequest{
		Sender:  "site@example.com",
		Subject: "Progress photos",
		Attachments: []InboundAttachmentReference{
			{FileName: "slab.jpg", FileURL: "http://files/slab.jpg", StorageKey: "mail/slab.jpg"},
			{FileName: "steel.jpg", FileURL: "http://files/steel.jpg", StorageKey: "mail/steel.jpg"},
		},
	})
	require.NoError(t, err)

	require.Len(t, email.Evidence, 2)
	require.Len(t, createdEvidence, 2)
	assert.Equal(t, entity.EvidenceTypeInboundEmail, createdEvidence[0].Type)
	require.NotNil(t, createdEvidence[0].InboundEmailID)
	assert.Equal(t, email.ID, *createdEvidence[0].InboundEmailID)
}

type evidenceCreateRecorder struct {
	port.EvidenceRepository
	created *[]*entity.Evidence
}

func (r *evidenceCreateRecorder) Create(ctx context.Context, ev *entity.Evidence) error {
	*r.created = append(*r.created, ev)
	return nil
}

type emailCreateRecorder struct {
	port.EmailRepository
}

func (r *emailCreateRecorder) Create(ctx context.Context, email *entity.InboundEmail) error {
	return nil
}
