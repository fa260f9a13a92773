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
	"github.com/sitelink/claimworks/internal/domain/aggregate"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name           string  `json:"name" binding:"required"`
	Code           *string `json:"code"`
	OrganisationID *string `json:"organisationId"`
}

// ProjectDetail is a project plus its derived aggregates
type ProjectDetail struct {
	*entity.Project
	DerivedRiskLevel    entity.RiskLevel            `json:"derivedRiskLevel"`
	RiskCounts          aggregate.RiskCounts        `json:"riskCounts"`
	ScopeCompleteness   aggregate.ScopeCompleteness `json:"scopeCompleteness"`
	ProgrammeConfidence float64                     `json:"programmeConfidence"`
}

// LaunchpadProject is the per-project summary on the launchpad
type LaunchpadProject struct {
	*entity.Project
	DerivedRiskLevel entity.RiskLevel `json:"derivedRiskLevel"`
	NextClaimDate    *time.Time       `json:"nextClaimDate"`
}

// ProjectService manages projects, their settings and derived summaries
type ProjectService interface {
	Create(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.Project, error)
	List(ctx context.Context, userID string) ([]*entity.Project, error)
	Detail(ctx context.Context, projectID string) (*ProjectDetail, error)
	UpdateSettings(ctx context.Context, projectID string, patch *entity.ProjectSettingsPatch) (*entity.Project, error)
	Launchpad(ctx context.Context, userID string) ([]*LaunchpadProject, error)
}

type projectService struct {
	projects  port.ProjectRepository
	clauses   port.ClauseRepository
	scope     port.ScopeRepository
	programme port.ProgrammeRepository
	claims    port.ClaimRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewProjectService creates the project service
func NewProjectService(
	projects port.ProjectRepository,
	clauses port.ClauseRepository,
	scope port.ScopeRepository,
	programme port.ProgrammeRepository,
	claims port.ClaimRepository,
	txManager port.TransactionManager,
	logger Logger,
) ProjectService {
	return &projectService{
		projects:  projects,
		clauses:   clauses,
		scope:     scope,
		programme: programme,
		claims:    claims,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *projectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("project name is required")
	}

	now := time.Now().UTC()
	project := &entity.Project{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		Code:               req.Code,
		Status:             "active",
		OrganisationID:     req.OrganisationID,
		RiskLevel:          entity.RiskLow,
		InvoiceModeEnabled: false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// the creator becomes the first member, in the same transaction
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.projects.Create(ctx, project); err != nil {
			return err
		}
		return s.projects.AddMember(ctx, &entity.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      entity.RoleOwner,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create project: %w", err))
	}

	s.logger.Infow("Created project", "project_id", project.ID, "user_id", userID)
	return project, nil
}

func (s *projectService) List(ctx context.Context, userID string) ([]*entity.Project, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list projects: %w", err))
	}
	return projects, nil
}

func (s *projectService) Detail(ctx context.Context, projectID string) (*ProjectDetail, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("project")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load project: %w", err))
	}

	levels, err := s.clauses.RiskLevelsByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load clause risk levels: %w", err))
	}
	statuses, err := s.scope.StatusesByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load scope statuses: %w", err))
	}
	confidences, err := s.programme.ConfidencesByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load programme confidences: %w", err))
	}

	return &ProjectDetail{
		Project:             project,
		DerivedRiskLevel:    effectiveRisk(project, levels),
		RiskCounts:          aggregate.CountRisk(levels),
		ScopeCompleteness:   aggregate.Completeness(statuses),
		ProgrammeConfidence: aggregate.AverageConfidence(confidences),
	}, nil
}

func (s *projectService) UpdateSettings(ctx context.Context, projectID string, patch *entity.ProjectSettingsPatch) (*entity.Project, error) {
	if patch.RiskLevel != nil && !entity.ValidRiskLevel(string(*patch.RiskLevel)) {
		return nil, apperror.ValidationFields("invalid settings", map[string]string{
			"riskLevel": "must be low, medium or high",
		})
	}

	project, err := s.projects.UpdateSettings(ctx, projectID, patch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("project")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to update project settings: %w", err))
	}

	s.logger.Infow("Updated project settings", "project_id", projectID)
	return project, nil
}

func (s *projectService) Launchpad(ctx context.Context, userID string) ([]*LaunchpadProject, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list projects: %w", err))
	}

	out := make([]*LaunchpadProject, 0, len(projects))
	for _, project := range projects {
		levels, err := s.clauses.RiskLevelsByProject(ctx, project.ID)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to load clause risk levels: %w", err))
		}

		nextClaim := project.NextClaimDate
		if nextClaim == nil {
			latest, err := s.claims.LatestReferenceDate(ctx, project.ID)
			if err != nil {
				return nil, apperror.Internal(fmt.Errorf("failed to load latest claim date: %w", err))
			}
			nextClaim = latest
		}

		out = append(out, &LaunchpadProject{
			Project:          project,
			DerivedRiskLevel: effectiveRisk(project, levels),
			NextClaimDate:    nextClaim,
		})
	}
	return out, nil
}

// effectiveRisk prefers a manual override above low; otherwise the
// clause-derived fold decides
func effectiveRisk(project *entity.Project, levels []entity.RiskLevel) entity.RiskLevel {
	if project.RiskLevel != entity.RiskLow {
		return project.RiskLevel
	}
	return aggregate.RiskLevel(levels)
}
