package http

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/service"
)

// maxUploadBytes bounds multipart uploads
const maxUploadBytes = 32 << 20

// ContractHandler serves contract document and clause routes
type ContractHandler struct {
	documents service.DocumentService
}

// NewContractHandler creates a contract document handler
func NewContractHandler(documents service.DocumentService) *ContractHandler {
	return &ContractHandler{documents: documents}
}

func (h *ContractHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"documents": docs})
}

func (h *ContractHandler) Upload(c *gin.Context) {
	title, fileName, contentType, content, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	doc, err := h.documents.Upload(c.Request.Context(), currentProject(c), &service.UploadDocumentRequest{
		Title:       title,
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, doc)
}

func (h *ContractHandler) ListClauses(c *gin.Context) {
	clauses, err := h.documents.ListClauses(c.Request.Context(), currentProject(c), c.Param("documentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"clauses": clauses})
}

func (h *ContractHandler) CreateClause(c *gin.Context) {
	var req service.CreateClauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	clause, err := h.documents.CreateClause(c.Request.Context(), currentProject(c), c.Param("documentId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, clause)
}

// readUpload pulls the file and optional title out of a multipart form
func readUpload(c *gin.Context) (title, fileName, contentType string, content []byte, err error) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", "", nil, apperror.Validation("expected a multipart upload")
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return "", "", "", nil, apperror.ValidationFields("invalid upload", map[string]string{
			"file": "file is required",
		})
	}
	defer file.Close()

	content, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", "", "", nil, apperror.Internal(err)
	}
	return c.Request.FormValue("title"), header.Filename, header.Header.Get("Content-Type"), content, nil
}
