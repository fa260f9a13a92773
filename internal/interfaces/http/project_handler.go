package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/application/service"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// ProjectHandler serves project, launchpad and settings routes
type ProjectHandler struct {
	projects service.ProjectService
}

// NewProjectHandler creates a project handler
func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Launchpad(c *gin.Context) {
	out, err := h.projects.Launchpad(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"projects": out})
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"projects": projects})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	project, err := h.projects.Create(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, project)
}

func (h *ProjectHandler) Detail(c *gin.Context) {
	detail, err := h.projects.Detail(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, detail)
}

func (h *ProjectHandler) UpdateSettings(c *gin.Context) {
	var patch entity.ProjectSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidation(c, err)
		return
	}
	project, err := h.projects.UpdateSettings(c.Request.Context(), currentProject(c), &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}
