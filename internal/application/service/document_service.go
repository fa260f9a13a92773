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

// UploadDocumentRequest carries an uploaded contract document
type UploadDocumentRequest struct {
	Title       string
	FileName    string
	ContentType string
	Content     []byte
}

// CreateClauseRequest is the payload for manually adding a clause
type CreateClauseRequest struct {
	ClauseRef  string  `json:"clauseRef" binding:"required"`
	Title      *string `json:"title"`
	Body       string  `json:"body" binding:"required"`
	RiskLevel  string  `json:"riskLevel" binding:"required"`
	PageNumber *int    `json:"pageNumber"`
	SourceRef  *string `json:"sourceRef"`
}

// DocumentService manages contract documents and their clauses. Uploads
// land in draft; the background parse worker moves them to parsed.
type DocumentService interface {
	Upload(ctx context.Context, projectID string, req *UploadDocumentRequest) (*entity.ContractDocument, error)
	List(ctx context.Context, projectID string) ([]*entity.ContractDocument, error)
	ListClauses(ctx context.Context, projectID, documentID string) ([]*entity.Clause, error)
	CreateClause(ctx context.Context, projectID, documentID string, req *CreateClauseRequest) (*entity.Clause, error)
}

type documentService struct {
	documents port.DocumentRepository
	clauses   port.ClauseRepository
	storage   port.ObjectStorage
	logger    Logger
}

// NewDocumentService creates the contract document service
func NewDocumentService(
	documents port.DocumentRepository,
	clauses port.ClauseRepository,
	storage port.ObjectStorage,
	logger Logger,
) DocumentService {
	return &documentService{
		documents: documents,
		clauses:   clauses,
		storage:   storage,
		logger:    logger,
	}
}

func (s *documentService) Upload(ctx context.Context, projectID string, req *UploadDocumentRequest) (*entity.ContractDocument, error) {
	if req.FileName == "" || len(req.Content) == 0 {
		return nil, apperror.Validation("contract document file is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.FileName
	}

	id := uuid.NewString()
	key := fmt.Sprintf("projects/%s/contracts/%s%s", projectID, id, path.Ext(req.FileName))
	stored, err := s.storage.Put(ctx, key, req.Content, req.ContentType)
	if err != nil {
		return nil, apperror.Upstream("failed to store contract document", err)
	}

	doc := &entity.ContractDocument{
		ID:         id,
		ProjectID:  projectID,
		Title:      title,
		FileName:   req.FileName,
		FileURL:    stored.URL,
		StorageKey: stored.Key,
		Status:     entity.StatusDraft,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create contract document: %w", err))
	}

	s.logger.Infow("Uploaded contract document", "project_id", projectID, "document_id", id)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, projectID string) ([]*entity.ContractDocument, error) {
	docs, err := s.documents.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list contract documents: %w", err))
	}
	return docs, nil
}

func (s *documentService) ListClauses(ctx context.Context, projectID, documentID string) ([]*entity.Clause, error) {
	if err := s.checkDocument(ctx, projectID, documentID); err != nil {
		return nil, err
	}
	clauses, err := s.clauses.ListByDocument(ctx, projectID, documentID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list clauses: %w", err))
	}
	return clauses, nil
}

func (s *documentService) CreateClause(ctx context.Context, projectID, documentID string, req *CreateClauseRequest) (*entity.Clause, error) {
	if err := s.checkDocument(ctx, projectID, documentID); err != nil {
		return nil, err
	}
	if !entity.ValidRiskLevel(req.RiskLevel) {
		return nil, apperror.ValidationFields("invalid clause", map[string]string{
			"riskLevel": "must be low, medium or high",
		})
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, apperror.Validation("clause body is required")
	}

	clause := &entity.Clause{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		DocumentID: documentID,
		ClauseRef:  req.ClauseRef,
		Title:      req.Title,
		Body:       req.Body,
		RiskLevel:  entity.RiskLevel(req.RiskLevel),
		Status:     entity.StatusConfirmed,
		PageNumber: req.PageNumber,
		SourceRef:  req.SourceRef,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.clauses.Create(ctx, clause); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create clause: %w", err))
	}

	s.logger.Infow("Created clause",
		"project_id", projectID, "document_id", documentID, "clause_id", clause.ID)
	return clause, nil
}

func (s *documentService) checkDocument(ctx context.Context, projectID, documentID string) error {
	doc, err := s.documents.GetByID(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("contract document")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load contract document: %w", err))
	}
	if doc.ProjectID != projectID {
		return apperror.NotFound("contract document")
	}
	return nil
}
