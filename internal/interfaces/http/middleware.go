package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
)

const (
	userIDHeader = "X-User-Id"
	userIDKey    = "userID"
	projectIDKey = "projectID"
	projectParam = "projectId"
)

// RequireUser extracts the caller identity from the X-User-Id header
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			respondError(c, apperror.Unauthorized())
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequireProjectAccess checks the caller is a member of the project named in
// the route
func RequireProjectAccess(checker port.AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param(projectParam)
		if projectID == "" {
			respondError(c, apperror.NotFound("project"))
			return
		}
		ok, err := checker.HasAccess(c.Request.Context(), projectID, c.GetString(userIDKey))
		if err != nil {
			respondError(c, apperror.Internal(err))
			return
		}
		if !ok {
			respondError(c, apperror.Forbidden())
			return
		}
		c.Set(projectIDKey, projectID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func currentProject(c *gin.Context) string {
	return c.GetString(projectIDKey)
}
