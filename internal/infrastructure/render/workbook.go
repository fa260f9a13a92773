package render

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
)

// ContentType is the MIME type of rendered workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2 January 2006"

// WorkbookRenderer renders payment claims and invoices as xlsx workbooks.
// Amounts arrive pre-formatted as strings and are written verbatim.
type WorkbookRenderer struct {
	logger *zap.Logger
}

// NewWorkbookRenderer creates a new workbook renderer
func NewWorkbookRenderer(logger *zap.Logger) *WorkbookRenderer {
	return &WorkbookRenderer{logger: logger}
}

// RenderClaim produces a payment claim workbook
func (r *WorkbookRenderer) RenderClaim(ctx context.Context, doc *port.ClaimRender) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][2]string{
		{"Payment Claim", ""},
		{"Project", doc.ProjectName},
		{"Claim Number", fmt.Sprintf("%d", doc.ClaimNumber)},
		{"Reference Date", doc.ReferenceDate.Format(dateLayout)},
		{"Claimed Amount", doc.ClaimedAmount},
		{"", ""},
		{doc.StatutoryWording, ""},
	}
	if err := r.writeRows(f, sheet, rows); err != nil {
		return nil, err
	}

	if err := r.applyTitleStyle(f, sheet); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize claim workbook: %w", err)
	}
	r.logger.Debug("Rendered payment claim", zap.Int64("claim_number", doc.ClaimNumber))
	return buf.Bytes(), nil
}

// RenderInvoice produces an invoice workbook
func (r *WorkbookRenderer) RenderInvoice(ctx context.Context, doc *port.InvoiceRender) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][2]string{
		{"Tax Invoice", ""},
		{"Project", doc.ProjectName},
		{"Invoice Number", fmt.Sprintf("%d", doc.InvoiceNumber)},
		{"Reference Date", doc.ReferenceDate.Format(dateLayout)},
		{"Amount", doc.Amount},
	}
	if err := r.writeRows(f, sheet, rows); err != nil {
		return nil, err
	}

	if err := r.applyTitleStyle(f, sheet); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize invoice workbook: %w", err)
	}
	r.logger.Debug("Rendered invoice", zap.Int64("invoice_number", doc.InvoiceNumber))
	return buf.Bytes(), nil
}

func (r *WorkbookRenderer) writeRows(f *excelize.File, sheet string, rows [][2]string) error {
	for i, row := range rows {
		cellA, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cellA, row[0]); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cellA, err)
		}
		if row[1] == "" {
			continue
		}
		cellB, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cellB, row[1]); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cellB, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 48); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func (r *WorkbookRenderer) applyTitleStyle(f *excelize.File, sheet string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", style); err != nil {
		return fmt.Errorf("failed to apply title style: %w", err)
	}
	return nil
}
