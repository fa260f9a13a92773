package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/application/service"
)

// ScopeHandler serves scope item and programme item routes
type ScopeHandler struct {
	scope     service.ScopeService
	programme service.ProgrammeService
}

// NewScopeHandler creates a scope and programme handler
func NewScopeHandler(scope service.ScopeService, programme service.ProgrammeService) *ScopeHandler {
	return &ScopeHandler{scope: scope, programme: programme}
}

func (h *ScopeHandler) ListScope(c *gin.Context) {
	items, err := h.scope.List(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"scopeItems": items})
}

func (h *ScopeHandler) CreateScope(c *gin.Context) {
	var req service.CreateScopeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	item, err := h.scope.Create(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item)
}

func (h *ScopeHandler) UpdateScope(c *gin.Context) {
	var req service.UpdateScopeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	item, err := h.scope.Update(c.Request.Context(), currentProject(c), c.Param("scopeId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (h *ScopeHandler) DeleteScope(c *gin.Context) {
	if err := h.scope.Delete(c.Request.Context(), currentProject(c), c.Param("scopeId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *ScopeHandler) ListProgramme(c *gin.Context) {
	items, err := h.programme.List(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"programmeItems": items})
}

func (h *ScopeHandler) CreateProgramme(c *gin.Context) {
	var req service.CreateProgrammeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	item, err := h.programme.Create(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item)
}

func (h *ScopeHandler) UpdateProgramme(c *gin.Context) {
	var req service.UpdateProgrammeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	item, err := h.programme.Update(c.Request.Context(), currentProject(c), c.Param("programmeId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (h *ScopeHandler) DeleteProgramme(c *gin.Context) {
	if err := h.programme.Delete(c.Request.Context(), currentProject(c), c.Param("programmeId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
