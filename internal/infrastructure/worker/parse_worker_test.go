package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

type mockDocumentRepo struct {
	port.DocumentRepository
	listPendingFn  func(ctx context.Context, limit int) ([]*entity.ContractDocument, error)
	updateStatusFn func(ctx context.Context, id string, status entity.ItemStatus) error
}

func (m *mockDocumentRepo) ListPending(ctx context.Context, limit int) ([]*entity.ContractDocument, error) {
	return m.listPendingFn(ctx, limit)
}

func (m *mockDocumentRepo) UpdateStatus(ctx context.Context, id string, status entity.ItemStatus) error {
	return m.updateStatusFn(ctx, id, status)
}

type mockClauseRepo struct {
	port.ClauseRepository
	createFn func(ctx context.Context, clause *entity.Clause) error
}

func (m *mockClauseRepo) Create(ctx context.Context, clause *entity.Clause) error {
	return m.createFn(ctx, clause)
}

type mockStorage struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
}

func (m *mockStorage) Put(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error) {
	return &port.StoredObject{Key: key}, nil
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFn(ctx, key)
}

type mockTextExtractor struct {
	extractFn func(content []byte) (string, error)
}

func (m *mockTextExtractor) ExtractText(content []byte) (string, error) {
	return m.extractFn(content)
}

type mockClauseExtractor struct {
	extractFn func(ctx context.Context, documentTitle, text string) ([]port.ExtractedClause, error)
}

func (m *mockClauseExtractor) Extract(ctx context.Context, documentTitle, text string) ([]port.ExtractedClause, error) {
	return m.extractFn(ctx, documentTitle, text)
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func pendingDoc() *entity.ContractDocument {
	return &entity.ContractDocument{
		ID:         "doc-1",
		ProjectID:  "proj-1",
		Title:      "Head Contract",
		FileName:   "contract.pdf",
		StorageKey: "contracts/doc-1.pdf",
		Status:     entity.StatusDraft,
		UploadedAt: time.Now().UTC(),
	}
}

func TestParseWorker_Run(t *testing.T) {
	var created []*entity.Clause
	var statusUpdates []entity.ItemStatus

	w := NewParseWorker(
		&mockDocumentRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]*entity.ContractDocument, error) {
				return []*entity.ContractDocument{pendingDoc()}, nil
			},
			updateStatusFn: func(ctx context.Context, id string, status entity.ItemStatus) error {
				statusUpdates = append(statusUpdates, status)
				return nil
			},
		},
		&mockClauseRepo{
			createFn: func(ctx context.Context, clause *entity.Clause) error {
				created = append(created, clause)
				return nil
			},
		},
		&mockStorage{getFn: func(ctx context.Context, key string) ([]byte, error) {
			return []byte("pdf bytes"), nil
		}},
		&mockTextExtractor{extractFn: func(content []byte) (string, error) {
			return "clause text", nil
		}},
		&mockClauseExtractor{extractFn: func(ctx context.Context, title, text string) ([]port.ExtractedClause, error) {
			return []port.ExtractedClause{
				{ClauseRef: "14.2", Title: "Time bar", Body: "The Contractor shall...", RiskLevel: "high", PageNumber: 3},
				{ClauseRef: "15.1", Body: "Liquidated damages apply.", RiskLevel: "medium", PageNumber: 4},
			}, nil
		}},
		passthroughTxManager{},
		5,
		zap.NewNop(),
	)

	require.NoError(t, w.Run(context.Background()))

	require.Len(t, created, 2)
	assert.Equal(t, "14.2", created[0].ClauseRef)
	assert.Equal(t, entity.RiskHigh, created[0].RiskLevel)
	assert.Equal(t, entity.StatusParsed, created[0].Status)
	require.NotNil(t, created[0].Title)
	assert.Equal(t, "Time bar", *created[0].Title)
	assert.Nil(t, created[1].Title)

	require.Len(t, statusUpdates, 1)
	assert.Equal(t, entity.StatusParsed, statusUpdates[0])
}

func TestParseWorker_ExtractionFailureLeavesDraft(t *testing.T) {
	statusUpdated := false

	w := NewParseWorker(
		&mockDocumentRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]*entity.ContractDocument, error) {
				return []*entity.ContractDocument{pendingDoc()}, nil
			},
			updateStatusFn: func(ctx context.Context, id string, status entity.ItemStatus) error {
				statusUpdated = true
				return nil
			},
		},
		&mockClauseRepo{createFn: func(ctx context.Context, clause *entity.Clause) error {
			t.Fatal("no clause should be created")
			return nil
		}},
		&mockStorage{getFn: func(ctx context.Context, key string) ([]byte, error) {
			return []byte("pdf bytes"), nil
		}},
		&mockTextExtractor{extractFn: func(content []byte) (string, error) {
			return "clause text", nil
		}},
		&mockClauseExtractor{extractFn: func(ctx context.Context, title, text string) ([]port.ExtractedClause, error) {
			return nil, errors.New("model unavailable")
		}},
		passthroughTxManager{},
		5,
		zap.NewNop(),
	)

	// a failed document is logged and skipped, not fatal for the batch
	require.NoError(t, w.Run(context.Background()))
	assert.False(t, statusUpdated, "document must stay draft for retry")
}
