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
	"github.com/sitelink/claimworks/internal/domain/aggregate"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// maxAllocationAttempts bounds retries when a freshly allocated number loses
// the insert race to a concurrent generation
const maxAllocationAttempts = 3

// workbookContentType is the MIME type of generated claim and invoice files
const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GenerateClaimRequest is the payload for generating a payment claim.
// EvidenceIDs nil leaves claim-evidence links untouched; an empty slice
// clears them.
type GenerateClaimRequest struct {
	ReferenceDate    time.Time  `json:"referenceDate" binding:"required"`
	PeriodStart      time.Time  `json:"periodStart" binding:"required"`
	PeriodEnd        time.Time  `json:"periodEnd" binding:"required"`
	ServiceDate      *time.Time `json:"serviceDate"`
	StatutoryWording *string    `json:"statutoryWording"`
	EvidenceIDs      *[]string  `json:"evidenceIds"`
}

// ClaimService generates and lists payment claims
type ClaimService interface {
	Generate(ctx context.Context, projectID string, req *GenerateClaimRequest) (*entity.PaymentClaim, error)
	List(ctx context.Context, projectID string) ([]*entity.PaymentClaim, error)
}

type claimService struct {
	projects    port.ProjectRepository
	records     port.WorkRecordRepository
	variations  port.VariationRepository
	claims      port.ClaimRepository
	evidence    port.EvidenceRepository
	links       port.LinkRepository
	sequences   port.SequenceAllocator
	renderer    port.DocumentRenderer
	storage     port.ObjectStorage
	txManager   port.TransactionManager
	constraints port.ConstraintChecker
	wording     string
	logger      Logger
}

// NewClaimService creates the payment claim service. defaultWording is used
// when a request carries no statutory wording.
func NewClaimService(
	projects port.ProjectRepository,
	records port.WorkRecordRepository,
	variations port.VariationRepository,
	claims port.ClaimRepository,
	evidence port.EvidenceRepository,
	links port.LinkRepository,
	sequences port.SequenceAllocator,
	renderer port.DocumentRenderer,
	storage port.ObjectStorage,
	txManager port.TransactionManager,
	constraints port.ConstraintChecker,
	defaultWording string,
	logger Logger,
) ClaimService {
	return &claimService{
		projects:    projects,
		records:     records,
		variations:  variations,
		claims:      claims,
		evidence:    evidence,
		links:       links,
		sequences:   sequences,
		renderer:    renderer,
		storage:     storage,
		txManager:   txManager,
		constraints: constraints,
		wording:     defaultWording,
		logger:      logger,
	}
}

// Generate produces the next payment claim for the project: it folds the
// claimed amount from in-period work records and all approved variations,
// allocates the next claim number, renders and stores the claim document,
// and persists the row. Losing the number race to a concurrent generation
// retries with a fresh number; numbers consumed by aborted attempts stay
// unused. Either the full claim becomes visible or nothing does.
func (s *claimService) Generate(ctx context.Context, projectID string, req *GenerateClaimRequest) (*entity.PaymentClaim, error) {
	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, apperror.ValidationFields("invalid claim request", map[string]string{
			"periodEnd": "must not be before periodStart",
		})
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("project")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load project: %w", err))
	}

	if req.EvidenceIDs != nil {
		desired := dedup(*req.EvidenceIDs)
		count, err := s.evidence.CountByIDs(ctx, projectID, desired)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to validate evidence: %w", err))
		}
		if count != len(desired) {
			return nil, apperror.ValidationFields("invalid claim request", map[string]string{
				"evidenceIds": "contains unknown evidence",
			})
		}
	}

	workValues, err := s.records.ValuesInPeriod(ctx, projectID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load work records: %w", err))
	}
	approved, err := s.variations.ApprovedAmounts(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load variations: %w", err))
	}
	amount := aggregate.ClaimedAmount(workValues, approved)

	wording := s.wording
	if req.StatutoryWording != nil && *req.StatutoryWording != "" {
		wording = *req.StatutoryWording
	}

	var claim *entity.PaymentClaim
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		number, err := s.sequences.NextNumber(ctx, projectID, entity.ClassClaim)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to allocate claim number: %w", err))
		}

		content, err := s.renderer.RenderClaim(ctx, &port.ClaimRender{
			ProjectName:      project.Name,
			ClaimNumber:      number,
			ReferenceDate:    req.ReferenceDate,
			ClaimedAmount:    amount.StringFixed(2),
			StatutoryWording: wording,
		})
		if err != nil {
			return nil, apperror.Upstream("failed to render claim document", err)
		}

		key := fmt.Sprintf("projects/%s/claims/claim-%d.xlsx", projectID, number)
		stored, err := s.storeWithRetry(ctx, key, content)
		if err != nil {
			return nil, apperror.Upstream("failed to store claim document", err)
		}

		candidate := &entity.PaymentClaim{
			ID:               uuid.NewString(),
			ProjectID:        projectID,
			ClaimNumber:      number,
			ReferenceDate:    req.ReferenceDate,
			PeriodStart:      req.PeriodStart,
			PeriodEnd:        req.PeriodEnd,
			ClaimedAmount:    amount,
			StatutoryWording: wording,
			ServiceDate:      req.ServiceDate,
			FileURL:          stored.URL,
			StorageKey:       stored.Key,
			CreatedAt:        time.Now().UTC(),
		}

		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.claims.Create(ctx, candidate); err != nil {
				return err
			}
			if req.EvidenceIDs != nil {
				return s.links.Reconcile(ctx, port.RelClaimEvidence, candidate.ID, *req.EvidenceIDs)
			}
			return nil
		})
		if err == nil {
			claim = candidate
			break
		}
		if !s.constraints.IsUniqueViolation(err) {
			return nil, apperror.Internal(fmt.Errorf("failed to persist claim: %w", err))
		}
		s.logger.Warnw("Claim number lost allocation race, retrying",
			"project_id", projectID, "claim_number", number, "attempt", attempt)
	}
	if claim == nil {
		return nil, apperror.Conflict("could not allocate a claim number, please retry")
	}

	if req.EvidenceIDs != nil {
		ids, err := s.links.LinkedIDs(ctx, port.RelClaimEvidence, claim.ID)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to load claim evidence: %w", err))
		}
		claim.EvidenceIDs = ids
	}

	s.logger.Infow("Generated payment claim",
		"project_id", projectID,
		"claim_id", claim.ID,
		"claim_number", claim.ClaimNumber,
		"amount", claim.ClaimedAmount.String())
	return claim, nil
}

func (s *claimService) List(ctx context.Context, projectID string) ([]*entity.PaymentClaim, error) {
	claims, err := s.claims.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list claims: %w", err))
	}
	for _, claim := range claims {
		ids, err := s.links.LinkedIDs(ctx, port.RelClaimEvidence, claim.ID)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to load claim evidence: %w", err))
		}
		claim.EvidenceIDs = ids
	}
	return claims, nil
}

// storeWithRetry retries a Put twice on failure. Keys embed the claim
// number, so re-putting after a partial failure overwrites safely.
func (s *claimService) storeWithRetry(ctx context.Context, key string, content []byte) (*port.StoredObject, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		stored, err := s.storage.Put(ctx, key, content, workbookContentType)
		if err == nil {
			return stored, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}
