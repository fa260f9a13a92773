package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// UploadEvidenceRequest carries an uploaded evidence file
type UploadEvidenceRequest struct {
	Title       string
	FileName    string
	ContentType string
	Content     []byte
}

// LinkEvidenceRequest reconciles an evidence record's relations. A nil
// slice leaves that relation untouched; an empty slice clears it.
type LinkEvidenceRequest struct {
	ScopeItemIDs     *[]string `json:"scopeItemIds"`
	ProgrammeItemIDs *[]string `json:"programmeItemIds"`
	PaymentClaimIDs  *[]string `json:"paymentClaimIds"`
}

// CreateInboundEmailRequest is an inbound project mailbox message. Each
// attachment reference becomes an evidence row.
type CreateInboundEmailRequest struct {
	Sender      string                       `json:"sender" binding:"required"`
	Subject     string                       `json:"subject"`
	Body        string                       `json:"body"`
	Attachments []InboundAttachmentReference `json:"attachments"`
}

// InboundAttachmentReference points at an attachment already persisted by
// the mail ingestion edge
type InboundAttachmentReference struct {
	FileName   string `json:"fileName" binding:"required"`
	FileURL    string `json:"fileUrl" binding:"required"`
	StorageKey string `json:"storageKey" binding:"required"`
}

// EvidenceService manages evidence files, their links and inbound emails
type EvidenceService interface {
	Upload(ctx context.Context, projectID string, req *UploadEvidenceRequest) (*entity.Evidence, error)
	List(ctx context.Context, projectID string) ([]*entity.Evidence, error)
	Link(ctx context.Context, projectID, evidenceID string, req *LinkEvidenceRequest) (*entity.Evidence, error)
	CreateInboundEmail(ctx context.Context, projectID string, req *CreateInboundEmailRequest) (*entity.InboundEmail, error)
	ListInboundEmails(ctx context.Context, projectID string) ([]*entity.InboundEmail, error)
}

type evidenceService struct {
	evidence  port.EvidenceRepository
	emails    port.EmailRepository
	scope     port.ScopeRepository
	programme port.ProgrammeRepository
	claims    port.ClaimRepository
	links     port.LinkRepository
	storage   port.ObjectStorage
	txManager port.TransactionManager
	logger    Logger
}

// NewEvidenceService creates the evidence service
func NewEvidenceService(
	evidence port.EvidenceRepository,
	emails port.EmailRepository,
	scope port.ScopeRepository,
	programme port.ProgrammeRepository,
	claims port.ClaimRepository,
	links port.LinkRepository,
	storage port.ObjectStorage,
	txManager port.TransactionManager,
	logger Logger,
) EvidenceService {
	return &evidenceService{
		evidence:  evidence,
		emails:    emails,
		scope:     scope,
		programme: programme,
		claims:    claims,
		links:     links,
		storage:   storage,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *evidenceService) Upload(ctx context.Context, projectID string, req *UploadEvidenceRequest) (*entity.Evidence, error) {
	if req.FileName == "" || len(req.Content) == 0 {
		return nil, apperror.Validation("evidence file is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.FileName
	}

	id := uuid.NewString()
	key := fmt.Sprintf("projects/%s/evidence/%s%s", projectID, id, path.Ext(req.FileName))
	stored, err := s.storage.Put(ctx, key, req.Content, req.ContentType)
	if err != nil {
		return nil, apperror.Upstream("failed to store evidence file", err)
	}

	ev := &entity.Evidence{
		ID:         id,
		ProjectID:  projectID,
		Type:       entity.EvidenceTypeUpload,
		Status:     "active",
		Title:      title,
		FileName:   req.FileName,
		FileURL:    stored.URL,
		StorageKey: stored.Key,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.evidence.Create(ctx, ev); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create evidence: %w", err))
	}

	s.logger.Infow("Uploaded evidence", "project_id", projectID, "evidence_id", id)
	return ev, nil
}

func (s *evidenceService) List(ctx context.Context, projectID string) ([]*entity.Evidence, error) {
	items, err := s.evidence.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list evidence: %w", err))
	}
	for _, ev := range items {
		if err := s.populateLinks(ctx, ev); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *evidenceService) Link(ctx context.Context, projectID, evidenceID string, req *LinkEvidenceRequest) (*entity.Evidence, error) {
	ev, err := s.evidence.GetByID(ctx, projectID, evidenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("evidence")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load evidence: %w", err))
	}

	if err := s.validateTargets(ctx, projectID, req); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if req.ScopeItemIDs != nil {
			if err := s.links.Reconcile(ctx, port.RelEvidenceScope, evidenceID, *req.ScopeItemIDs); err != nil {
				return err
			}
		}
		if req.ProgrammeItemIDs != nil {
			if err := s.links.Reconcile(ctx, port.RelEvidenceProgramme, evidenceID, *req.ProgrammeItemIDs); err != nil {
				return err
			}
		}
		if req.PaymentClaimIDs != nil {
			if err := s.links.Reconcile(ctx, port.RelEvidenceClaim, evidenceID, *req.PaymentClaimIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to reconcile evidence links: %w", err))
	}

	if err := s.populateLinks(ctx, ev); err != nil {
		return nil, err
	}
	s.logger.Infow("Reconciled evidence links", "project_id", projectID, "evidence_id", evidenceID)
	return ev, nil
}

func (s *evidenceService) CreateInboundEmail(ctx context.Context, projectID string, req *CreateInboundEmailRequest) (*entity.InboundEmail, error) {
	if strings.TrimSpace(req.Sender) == "" {
		return nil, apperror.Validation("sender is required")
	}

	now := time.Now().UTC()
	email := &entity.InboundEmail{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Sender:     req.Sender,
		Subject:    req.Subject,
		Body:       req.Body,
		ReceivedAt: now,
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.emails.Create(ctx, email); err != nil {
			return err
		}
		for _, att := range req.Attachments {
			emailID := email.ID
			ev := &entity.Evidence{
				ID:             uuid.NewString(),
				ProjectID:      projectID,
				InboundEmailID: &emailID,
				Type:           entity.EvidenceTypeInboundEmail,
				Status:         "active",
				Title:          att.FileName,
				FileName:       att.FileName,
				FileURL:        att.FileURL,
				StorageKey:     att.StorageKey,
				UploadedAt:     now,
			}
			if err := s.evidence.Create(ctx, ev); err != nil {
				return err
			}
			email.Evidence = append(email.Evidence, ev)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create inbound email: %w", err))
	}

	s.logger.Infow("Recorded inbound email",
		"project_id", projectID, "email_id", email.ID, "attachments", len(req.Attachments))
	return email, nil
}

func (s *evidenceService) ListInboundEmails(ctx context.Context, projectID string) ([]*entity.InboundEmail, error) {
	emails, err := s.emails.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list inbound emails: %w", err))
	}
	for _, email := range emails {
		evidence, err := s.evidence.ListByEmail(ctx, email.ID)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to load email evidence: %w", err))
		}
		email.Evidence = evidence
	}
	return emails, nil
}

func (s *evidenceService) validateTargets(ctx context.Context, projectID string, req *LinkEvidenceRequest) error {
	check := func(field string, ids *[]string, count func(context.Context, string, []string) (int, error)) error {
		if ids == nil {
			return nil
		}
		desired := dedup(*ids)
		n, err := count(ctx, projectID, desired)
		if err != nil {
			return apperror.Internal(fmt.Errorf("failed to validate %s: %w", field, err))
		}
		if n != len(desired) {
			return apperror.ValidationFields("invalid link targets", map[string]string{
				field: "contains unknown ids",
			})
		}
		return nil
	}

	if err := check("scopeItemIds", req.ScopeItemIDs, s.scope.CountByIDs); err != nil {
		return err
	}
	if err := check("programmeItemIds", req.ProgrammeItemIDs, s.programme.CountByIDs); err != nil {
		return err
	}
	return check("paymentClaimIds", req.PaymentClaimIDs, s.claims.CountByIDs)
}

func (s *evidenceService) populateLinks(ctx context.Context, ev *entity.Evidence) error {
	scopeIDs, err := s.links.LinkedIDs(ctx, port.RelEvidenceScope, ev.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load scope links: %w", err))
	}
	programmeIDs, err := s.links.LinkedIDs(ctx, port.RelEvidenceProgramme, ev.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load programme links: %w", err))
	}
	claimIDs, err := s.links.LinkedIDs(ctx, port.RelEvidenceClaim, ev.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load claim links: %w", err))
	}
	ev.ScopeItemIDs = scopeIDs
	ev.ProgrammeItemIDs = programmeIDs
	ev.PaymentClaimIDs = claimIDs
	return nil
}
