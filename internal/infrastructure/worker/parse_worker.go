package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// ParseWorker moves uploaded contract documents from draft to parsed: it
// fetches the stored file, extracts its text, asks the clause extractor to
// identify clauses, and persists them. A document that fails stays in draft
// and is retried on a later tick.
type ParseWorker struct {
	documents port.DocumentRepository
	clauses   port.ClauseRepository
	storage   port.ObjectStorage
	text      port.TextExtractor
	extractor port.ClauseExtractor
	txManager port.TransactionManager
	batchSize int
	logger    *zap.Logger
}

// NewParseWorker creates the contract parse worker
func NewParseWorker(
	documents port.DocumentRepository,
	clauses port.ClauseRepository,
	storage port.ObjectStorage,
	text port.TextExtractor,
	extractor port.ClauseExtractor,
	txManager port.TransactionManager,
	batchSize int,
	logger *zap.Logger,
) *ParseWorker {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &ParseWorker{
		documents: documents,
		clauses:   clauses,
		storage:   storage,
		text:      text,
		extractor: extractor,
		txManager: txManager,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Name identifies the worker in logs
func (w *ParseWorker) Name() string { return "contract-parse" }

// Run processes one batch of pending documents
func (w *ParseWorker) Run(ctx context.Context) error {
	pending, err := w.documents.ListPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending documents: %w", err)
	}

	for _, doc := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.processDocument(ctx, doc); err != nil {
			w.logger.Error("Failed to parse contract document",
				zap.String("document_id", doc.ID),
				zap.String("project_id", doc.ProjectID),
				zap.Error(err))
			continue
		}
	}
	return nil
}

func (w *ParseWorker) processDocument(ctx context.Context, doc *entity.ContractDocument) error {
	content, err := w.storage.Get(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document content: %w", err)
	}

	text, err := w.text.ExtractText(content)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	extracted, err := w.extractor.Extract(ctx, doc.Title, text)
	if err != nil {
		return fmt.Errorf("failed to extract clauses: %w", err)
	}

	now := time.Now().UTC()
	err = w.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, c := range extracted {
			page := c.PageNumber
			clause := &entity.Clause{
				ID:         uuid.NewString(),
				ProjectID:  doc.ProjectID,
				DocumentID: doc.ID,
				ClauseRef:  c.ClauseRef,
				Body:       c.Body,
				RiskLevel:  entity.RiskLevel(c.RiskLevel),
				Status:     entity.StatusParsed,
				PageNumber: &page,
				CreatedAt:  now,
			}
			if c.Title != "" {
				title := c.Title
				clause.Title = &title
			}
			if err := w.clauses.Create(ctx, clause); err != nil {
				return err
			}
		}
		return w.documents.UpdateStatus(ctx, doc.ID, entity.StatusParsed)
	})
	if err != nil {
		return err
	}

	w.logger.Info("Parsed contract document",
		zap.String("document_id", doc.ID),
		zap.Int("clauses", len(extracted)))
	return nil
}
