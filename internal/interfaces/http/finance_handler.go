package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/application/service"
)

// FinanceHandler serves work record, variation, payment claim and invoice
// routes
type FinanceHandler struct {
	records  service.RecordService
	claims   service.ClaimService
	invoices service.InvoiceService
}

// NewFinanceHandler creates a finance handler
func NewFinanceHandler(records service.RecordService, claims service.ClaimService, invoices service.InvoiceService) *FinanceHandler {
	return &FinanceHandler{records: records, claims: claims, invoices: invoices}
}

func (h *FinanceHandler) ListWorkRecords(c *gin.Context) {
	records, err := h.records.ListWorkRecords(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"workRecords": records})
}

func (h *FinanceHandler) CreateWorkRecord(c *gin.Context) {
	var req service.CreateWorkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	record, err := h.records.CreateWorkRecord(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, record)
}

func (h *FinanceHandler) ListVariations(c *gin.Context) {
	variations, err := h.records.ListVariations(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"variations": variations})
}

func (h *FinanceHandler) CreateVariation(c *gin.Context) {
	var req service.CreateVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	variation, err := h.records.CreateVariation(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, variation)
}

func (h *FinanceHandler) ListClaims(c *gin.Context) {
	claims, err := h.claims.List(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"claims": claims})
}

func (h *FinanceHandler) GenerateClaim(c *gin.Context) {
	var req service.GenerateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	claim, err := h.claims.Generate(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, claim)
}

func (h *FinanceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoices.List(c.Request.Context(), currentProject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"invoices": invoices})
}

func (h *FinanceHandler) GenerateInvoice(c *gin.Context) {
	var req service.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	invoice, err := h.invoices.Generate(c.Request.Context(), currentProject(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, invoice)
}
