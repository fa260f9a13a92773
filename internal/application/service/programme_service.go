package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// CreateProgrammeItemRequest is the payload for creating a programme item
type CreateProgrammeItemRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      *string    `json:"status"`
	Confidence  *float64   `json:"confidence"`
}

// UpdateProgrammeItemRequest is the PATCH payload for a programme item,
// mirroring the scope side: nil ScopeItemIDs leaves links untouched, an
// empty slice clears them
type UpdateProgrammeItemRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Status       *string    `json:"status"`
	Confidence   *float64   `json:"confidence"`
	ScopeItemIDs *[]string  `json:"scopeItemIds"`
}

// ProgrammeService manages programme items and their scope links
type ProgrammeService interface {
	Create(ctx context.Context, projectID string, req *CreateProgrammeItemRequest) (*entity.ProgrammeItem, error)
	List(ctx context.Context, projectID string) ([]*entity.ProgrammeItem, error)
	Update(ctx context.Context, projectID, id string, req *UpdateProgrammeItemRequest) (*entity.ProgrammeItem, error)
	Delete(ctx context.Context, projectID, id string) error
}

type programmeService struct {
	programme port.ProgrammeRepository
	scope     port.ScopeRepository
	links     port.LinkRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewProgrammeService creates the programme item service
func NewProgrammeService(
	programme port.ProgrammeRepository,
	scope port.ScopeRepository,
	links port.LinkRepository,
	txManager port.TransactionManager,
	logger Logger,
) ProgrammeService {
	return &programmeService{
		programme: programme,
		scope:     scope,
		links:     links,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *programmeService) Create(ctx context.Context, projectID string, req *CreateProgrammeItemRequest) (*entity.ProgrammeItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.Validation("programme item title is required")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperror.ValidationFields("invalid programme item", map[string]string{
			"endDate": "must not be before startDate",
		})
	}
	status := entity.StatusDraft
	if req.Status != nil {
		if !entity.ValidItemStatus(*req.Status) {
			return nil, apperror.ValidationFields("invalid programme item", map[string]string{
				"status": "must be draft, parsed or confirmed",
			})
		}
		status = entity.ItemStatus(*req.Status)
	}

	now := time.Now().UTC()
	item := &entity.ProgrammeItem{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
		Confidence:  req.Confidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.programme.Create(ctx, item); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create programme item: %w", err))
	}

	s.logger.Infow("Created programme item", "project_id", projectID, "programme_item_id", item.ID)
	return item, nil
}

func (s *programmeService) List(ctx context.Context, projectID string) ([]*entity.ProgrammeItem, error) {
	items, err := s.programme.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list programme items: %w", err))
	}
	for _, item := range items {
		if err := s.populateLinks(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *programmeService) Update(ctx context.Context, projectID, id string, req *UpdateProgrammeItemRequest) (*entity.ProgrammeItem, error) {
	item, err := s.programme.GetByID(ctx, projectID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("programme item")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load programme item: %w", err))
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperror.Validation("programme item title cannot be empty")
		}
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.StartDate != nil {
		item.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		item.EndDate = req.EndDate
	}
	if item.StartDate != nil && item.EndDate != nil && item.EndDate.Before(*item.StartDate) {
		return nil, apperror.ValidationFields("invalid programme item", map[string]string{
			"endDate": "must not be before startDate",
		})
	}
	if req.Status != nil {
		if !entity.ValidItemStatus(*req.Status) {
			return nil, apperror.ValidationFields("invalid programme item", map[string]string{
				"status": "must be draft, parsed or confirmed",
			})
		}
		item.Status = entity.ItemStatus(*req.Status)
	}
	if req.Confidence != nil {
		item.Confidence = req.Confidence
	}

	if req.ScopeItemIDs != nil {
		desired := dedup(*req.ScopeItemIDs)
		count, err := s.scope.CountByIDs(ctx, projectID, desired)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to validate scope links: %w", err))
		}
		if count != len(desired) {
			return nil, apperror.ValidationFields("invalid programme item", map[string]string{
				"scopeItemIds": "contains unknown scope items",
			})
		}
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.programme.Update(ctx, item); err != nil {
			return err
		}
		if req.ScopeItemIDs != nil {
			return s.links.Reconcile(ctx, port.RelProgrammeScope, item.ID, *req.ScopeItemIDs)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to update programme item: %w", err))
	}

	if err := s.populateLinks(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Infow("Updated programme item", "project_id", projectID, "programme_item_id", id)
	return item, nil
}

func (s *programmeService) Delete(ctx context.Context, projectID, id string) error {
	if _, err := s.programme.GetByID(ctx, projectID, id); errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("programme item")
	} else if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load programme item: %w", err))
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.links.Clear(ctx, port.RelProgrammeScope, id); err != nil {
			return err
		}
		if err := s.links.Clear(ctx, port.RelProgrammeEvidence, id); err != nil {
			return err
		}
		return s.programme.Delete(ctx, projectID, id)
	})
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to delete programme item: %w", err))
	}

	s.logger.Infow("Deleted programme item", "project_id", projectID, "programme_item_id", id)
	return nil
}

func (s *programmeService) populateLinks(ctx context.Context, item *entity.ProgrammeItem) error {
	scopeIDs, err := s.links.LinkedIDs(ctx, port.RelProgrammeScope, item.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load scope links: %w", err))
	}
	evidenceIDs, err := s.links.LinkedIDs(ctx, port.RelProgrammeEvidence, item.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load evidence links: %w", err))
	}
	item.ScopeItemIDs = scopeIDs
	item.EvidenceIDs = evidenceIDs
	return nil
}
