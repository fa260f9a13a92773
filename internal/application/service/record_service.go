package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// CreateWorkRecordRequest is the payload for a monthly work record. The
// completed value travels as a decimal string to keep it exact.
type CreateWorkRecordRequest struct {
	PeriodStart    time.Time `json:"periodStart" binding:"required"`
	PeriodEnd      time.Time `json:"periodEnd" binding:"required"`
	CompletedValue string    `json:"completedValue" binding:"required"`
	Notes          *string   `json:"notes"`
}

// CreateVariationRequest is the payload for a contract variation
type CreateVariationRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Amount      string  `json:"amount" binding:"required"`
	Status      *string `json:"status"`
	SourceRef   *string `json:"sourceRef"`
}

// RecordService manages monthly work records and contract variations, the
// financial inputs to claim generation
type RecordService interface {
	CreateWorkRecord(ctx context.Context, projectID string, req *CreateWorkRecordRequest) (*entity.MonthlyWorkRecord, error)
	ListWorkRecords(ctx context.Context, projectID string) ([]*entity.MonthlyWorkRecord, error)
	CreateVariation(ctx context.Context, projectID string, req *CreateVariationRequest) (*entity.Variation, error)
	ListVariations(ctx context.Context, projectID string) ([]*entity.Variation, error)
}

type recordService struct {
	records    port.WorkRecordRepository
	variations port.VariationRepository
	logger     Logger
}

// NewRecordService creates the financial record service
func NewRecordService(records port.WorkRecordRepository, variations port.VariationRepository, logger Logger) RecordService {
	return &recordService{records: records, variations: variations, logger: logger}
}

func (s *recordService) CreateWorkRecord(ctx context.Context, projectID string, req *CreateWorkRecordRequest) (*entity.MonthlyWorkRecord, error) {
	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, apperror.ValidationFields("invalid work record", map[string]string{
			"periodEnd": "must not be before periodStart",
		})
	}
	value, err := parseAmount(req.CompletedValue)
	if err != nil {
		return nil, apperror.ValidationFields("invalid work record", map[string]string{
			"completedValue": err.Error(),
		})
	}

	record := &entity.MonthlyWorkRecord{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		CompletedValue: value,
		Notes:          req.Notes,
		Status:         entity.StatusConfirmed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create work record: %w", err))
	}

	s.logger.Infow("Created work record",
		"project_id", projectID, "record_id", record.ID, "value", value.String())
	return record, nil
}

func (s *recordService) ListWorkRecords(ctx context.Context, projectID string) ([]*entity.MonthlyWorkRecord, error) {
	records, err := s.records.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list work records: %w", err))
	}
	return records, nil
}

func (s *recordService) CreateVariation(ctx context.Context, projectID string, req *CreateVariationRequest) (*entity.Variation, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.Validation("variation title is required")
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, apperror.ValidationFields("invalid variation", map[string]string{
			"amount": err.Error(),
		})
	}
	status := entity.VariationDraft
	if req.Status != nil {
		if !entity.ValidVariationStatus(*req.Status) {
			return nil, apperror.ValidationFields("invalid variation", map[string]string{
				"status": "must be draft, submitted, approved or rejected",
			})
		}
		status = entity.VariationStatus(*req.Status)
	}

	variation := &entity.Variation{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Amount:      amount,
		Status:      status,
		SourceRef:   req.SourceRef,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.variations.Create(ctx, variation); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create variation: %w", err))
	}

	s.logger.Infow("Created variation",
		"project_id", projectID, "variation_id", variation.ID, "status", status)
	return variation, nil
}

func (s *recordService) ListVariations(ctx context.Context, projectID string) ([]*entity.Variation, error) {
	variations, err := s.variations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list variations: %w", err))
	}
	return variations, nil
}

// parseAmount parses a nonnegative decimal string
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be a decimal number")
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return amount, nil
}
