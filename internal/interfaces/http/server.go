// Package http wires the gin router: identity and project-access middleware,
// route registration, and the stable error envelope.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/config"
)

// Handlers bundles the route handlers the server mounts
type Handlers struct {
	Projects *ProjectHandler
	Contract *ContractHandler
	Scope    *ScopeHandler
	Evidence *EvidenceHandler
	Finance  *FinanceHandler
}

// NewRouter builds the gin engine with all routes mounted
func NewRouter(cfg config.ServerConfig, access port.AccessChecker, h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, userIDHeader)
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", RequireUser())
	api.GET("/launchpad", h.Projects.Launchpad)
	api.GET("/projects", h.Projects.List)
	api.POST("/projects", h.Projects.Create)

	project := api.Group("/projects/:projectId", RequireProjectAccess(access))
	project.GET("", h.Projects.Detail)
	project.PATCH("/settings", h.Projects.UpdateSettings)

	project.GET("/contract-documents", h.Contract.List)
	project.POST("/contract-documents", h.Contract.Upload)
	project.GET("/contract-documents/:documentId/clauses", h.Contract.ListClauses)
	project.POST("/contract-documents/:documentId/clauses", h.Contract.CreateClause)

	project.GET("/evidence", h.Evidence.List)
	project.POST("/evidence/upload", h.Evidence.Upload)
	project.POST("/evidence/:evidenceId/link", h.Evidence.Link)
	project.GET("/inbound-emails", h.Evidence.ListEmails)
	project.POST("/inbound-emails", h.Evidence.CreateEmail)

	project.GET("/scope", h.Scope.ListScope)
	project.POST("/scope", h.Scope.CreateScope)
	project.PATCH("/scope/:scopeId", h.Scope.UpdateScope)
	project.DELETE("/scope/:scopeId", h.Scope.DeleteScope)

	project.GET("/programme", h.Scope.ListProgramme)
	project.POST("/programme", h.Scope.CreateProgramme)
	project.PATCH("/programme/:programmeId", h.Scope.UpdateProgramme)
	project.DELETE("/programme/:programmeId", h.Scope.DeleteProgramme)

	project.GET("/monthly-work-records", h.Finance.ListWorkRecords)
	project.POST("/monthly-work-records", h.Finance.CreateWorkRecord)
	project.GET("/variations", h.Finance.ListVariations)
	project.POST("/variations", h.Finance.CreateVariation)

	project.GET("/payment-claims", h.Finance.ListClaims)
	project.POST("/payment-claims/generate", h.Finance.GenerateClaim)
	project.GET("/invoices", h.Finance.ListInvoices)
	project.POST("/invoices/generate", h.Finance.GenerateInvoice)

	return r
}

// requestLogger logs each request after it completes
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}
