package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/application/service"
)

// EvidenceHandler serves evidence and inbound email routes
type EvidenceHandler struct {
	evidence service.EvidenceService
}

// NewEvidenceHandler creates an evidence handler
func NewEvidenceHandler(evidence service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidence: evidence}
}

func (h *EvidenceHandler) List(c *gin.Context) {
	items, err := h.evidence.List(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"evidence": items})
}

func (h *EvidenceHandler) Upload(c *gin.Context) {
	title, fileName, contentType, content, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ev, err := h.evidence.Upload(c.Request.Context(), currentProject(c), &service.UploadEvidenceRequest{
		Title:       title,
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, ev)
}

func (h *EvidenceHandler) Link(c *gin.Context) {
	var req service.LinkEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	ev, err := h.evidence.Link(c.Request.Context(), currentProject(c), c.Param("evidenceId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ev)
}

func (h *EvidenceHandler) ListEmails(c *gin.Context) {
	emails, err := h.evidence.ListInboundEmails(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"emails": emails})
}

func (h *EvidenceHandler) CreateEmail(c *gin.Context) {
	var req service.CreateInboundEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	email, err := h.evidence.CreateInboundEmail(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, email)
}
