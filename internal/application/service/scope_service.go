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

// CreateScopeItemRequest is the payload for creating a scope item
type CreateScopeItemRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Confidence  *float64 `json:"confidence"`
}

// UpdateScopeItemRequest is the PATCH payload for a scope item. Nil fields
// are left untouched. ProgrammeItemIDs nil means links untouched; an empty
// slice clears them.
type UpdateScopeItemRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	Status           *string   `json:"status"`
	Confidence       *float64  `json:"confidence"`
	AmbiguityFlag    *bool     `json:"ambiguityFlag"`
	ProgrammeItemIDs *[]string `json:"programmeItemIds"`
}

// ScopeService manages scope items and their programme links
type ScopeService interface {
	Create(ctx context.Context, projectID string, req *CreateScopeItemRequest) (*entity.ScopeItem, error)
	List(ctx context.Context, projectID string) ([]*entity.ScopeItem, error)
	Update(ctx context.Context, projectID, id string, req *UpdateScopeItemRequest) (*entity.ScopeItem, error)
	Delete(ctx context.Context, projectID, id string) error
}

type scopeService struct {
	scope     port.ScopeRepository
	programme port.ProgrammeRepository
	links     port.LinkRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewScopeService creates the scope item service
func NewScopeService(
	scope port.ScopeRepository,
	programme port.ProgrammeRepository,
	links port.LinkRepository,
	txManager port.TransactionManager,
	logger Logger,
) ScopeService {
	return &scopeService{
		scope:     scope,
		programme: programme,
		links:     links,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *scopeService) Create(ctx context.Context, projectID string, req *CreateScopeItemRequest) (*entity.ScopeItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.Validation("scope item title is required")
	}
	status := entity.StatusDraft
	if req.Status != nil {
		if !entity.ValidItemStatus(*req.Status) {
			return nil, apperror.ValidationFields("invalid scope item", map[string]string{
				"status": "must be draft, parsed or confirmed",
			})
		}
		status = entity.ItemStatus(*req.Status)
	}

	now := time.Now().UTC()
	item := &entity.ScopeItem{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Confidence:  req.Confidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.scope.Create(ctx, item); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create scope item: %w", err))
	}

	s.logger.Infow("Created scope item", "project_id", projectID, "scope_item_id", item.ID)
	return item, nil
}

func (s *scopeService) List(ctx context.Context, projectID string) ([]*entity.ScopeItem, error) {
	items, err := s.scope.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list scope items: %w", err))
	}
	for _, item := range items {
		if err := s.populateLinks(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *scopeService) Update(ctx context.Context, projectID, id string, req *UpdateScopeItemRequest) (*entity.ScopeItem, error) {
	item, err := s.scope.GetByID(ctx, projectID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("scope item")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load scope item: %w", err))
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperror.Validation("scope item title cannot be empty")
		}
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Status != nil {
		if !entity.ValidItemStatus(*req.Status) {
			return nil, apperror.ValidationFields("invalid scope item", map[string]string{
				"status": "must be draft, parsed or confirmed",
			})
		}
		item.Status = entity.ItemStatus(*req.Status)
	}
	if req.Confidence != nil {
		item.Confidence = req.Confidence
	}
	if req.AmbiguityFlag != nil {
		item.AmbiguityFlag = *req.AmbiguityFlag
	}

	if req.ProgrammeItemIDs != nil {
		desired := dedup(*req.ProgrammeItemIDs)
		count, err := s.programme.CountByIDs(ctx, projectID, desired)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to validate programme links: %w", err))
		}
		if count != len(desired) {
			return nil, apperror.ValidationFields("invalid scope item", map[string]string{
				"programmeItemIds": "contains unknown programme items",
			})
		}
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.scope.Update(ctx, item); err != nil {
			return err
		}
		if req.ProgrammeItemIDs != nil {
			return s.links.Reconcile(ctx, port.RelScopeProgramme, item.ID, *req.ProgrammeItemIDs)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to update scope item: %w", err))
	}

	if err := s.populateLinks(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Infow("Updated scope item", "project_id", projectID, "scope_item_id", id)
	return item, nil
}

func (s *scopeService) Delete(ctx context.Context, projectID, id string) error {
	if _, err := s.scope.GetByID(ctx, projectID, id); errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("scope item")
	} else if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load scope item: %w", err))
	}

	// link rows go first so no orphan pairs survive the delete
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.links.Clear(ctx, port.RelScopeProgramme, id); err != nil {
			return err
		}
		if err := s.links.Clear(ctx, port.RelScopeEvidence, id); err != nil {
			return err
		}
		return s.scope.Delete(ctx, projectID, id)
	})
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to delete scope item: %w", err))
	}

	s.logger.Infow("Deleted scope item", "project_id", projectID, "scope_item_id", id)
	return nil
}

func (s *scopeService) populateLinks(ctx context.Context, item *entity.ScopeItem) error {
	programmeIDs, err := s.links.LinkedIDs(ctx, port.RelScopeProgramme, item.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load programme links: %w", err))
	}
	evidenceIDs, err := s.links.LinkedIDs(ctx, port.RelScopeEvidence, item.ID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load evidence links: %w", err))
	}
	item.ProgrammeItemIDs = programmeIDs
	item.EvidenceIDs = evidenceIDs
	return nil
}

// dedup removes duplicate IDs preserving first occurrence order
func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
