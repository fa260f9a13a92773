package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// GenerateInvoiceRequest is the payload for generating an invoice. The
// amount is caller-supplied, as a decimal string.
type GenerateInvoiceRequest struct {
	ReferenceDate time.Time `json:"referenceDate" binding:"required"`
	Amount        string    `json:"amount" binding:"required"`
}

// InvoiceService generates and lists invoices. Generation is gated on the
// project's invoice mode.
type InvoiceService interface {
	Generate(ctx context.Context, projectID string, req *GenerateInvoiceRequest) (*entity.Invoice, error)
	List(ctx context.Context, projectID string) ([]*entity.Invoice, error)
}

type invoiceService struct {
	projects    port.ProjectRepository
	invoices    port.InvoiceRepository
	sequences   port.SequenceAllocator
	renderer    port.DocumentRenderer
	storage     port.ObjectStorage
	txManager   port.TransactionManager
	constraints port.ConstraintChecker
	logger      Logger
}

// NewInvoiceService creates the invoice service
func NewInvoiceService(
	projects port.ProjectRepository,
	invoices port.InvoiceRepository,
	sequences port.SequenceAllocator,
	renderer port.DocumentRenderer,
	storage port.ObjectStorage,
	txManager port.TransactionManager,
	constraints port.ConstraintChecker,
	logger Logger,
) InvoiceService {
	return &invoiceService{
		projects:    projects,
		invoices:    invoices,
		sequences:   sequences,
		renderer:    renderer,
		storage:     storage,
		txManager:   txManager,
		constraints: constraints,
		logger:      logger,
	}
}

// Generate produces the next invoice for the project, mirroring claim
// generation with a caller-supplied amount and the invoice-mode gate
func (s *invoiceService) Generate(ctx context.Context, projectID string, req *GenerateInvoiceRequest) (*entity.Invoice, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, apperror.ValidationFields("invalid invoice request", map[string]string{
			"amount": err.Error(),
		})
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("project")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load project: %w", err))
	}
	if !project.InvoiceModeEnabled {
		return nil, apperror.Precondition("invoice mode is not enabled for this project")
	}

	var invoice *entity.Invoice
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		number, err := s.sequences.NextNumber(ctx, projectID, entity.ClassInvoice)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to allocate invoice number: %w", err))
		}

		content, err := s.renderer.RenderInvoice(ctx, &port.InvoiceRender{
			ProjectName:   project.Name,
			InvoiceNumber: number,
			ReferenceDate: req.ReferenceDate,
			Amount:        amount.StringFixed(2),
		})
		if err != nil {
			return nil, apperror.Upstream("failed to render invoice document", err)
		}

		key := fmt.Sprintf("projects/%s/invoices/invoice-%d.xlsx", projectID, number)
		stored, err := s.storage.Put(ctx, key, content, workbookContentType)
		if err != nil {
			return nil, apperror.Upstream("failed to store invoice document", err)
		}

		candidate := &entity.Invoice{
			ID:            uuid.NewString(),
			ProjectID:     projectID,
			InvoiceNumber: number,
			ReferenceDate: req.ReferenceDate,
			Amount:        amount,
			FileURL:       stored.URL,
			StorageKey:    stored.Key,
			CreatedAt:     time.Now().UTC(),
		}

		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			return s.invoices.Create(ctx, candidate)
		})
		if err == nil {
			invoice = candidate
			break
		}
		if !s.constraints.IsUniqueViolation(err) {
			return nil, apperror.Internal(fmt.Errorf("failed to persist invoice: %w", err))
		}
		s.logger.Warnw("Invoice number lost allocation race, retrying",
			"project_id", projectID, "invoice_number", number, "attempt", attempt)
	}
	if invoice == nil {
		return nil, apperror.Conflict("could not allocate an invoice number, please retry")
	}

	s.logger.Infow("Generated invoice",
		"project_id", projectID,
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"amount", invoice.Amount.String())
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, projectID string) ([]*entity.Invoice, error) {
	invoices, err := s.invoices.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list invoices: %w", err))
	}
	return invoices, nil
}
