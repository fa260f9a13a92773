package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
)

func TestWorkbookRenderer_RenderClaim(t *testing.T) {
	r := NewWorkbookRenderer(zap.NewNop())

	content, err := r.RenderClaim(context.Background(), &port.ClaimRender{
		ProjectName:      "Riverside Apartments",
		ClaimNumber:      3,
		ReferenceDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		ClaimedAmount:    "400.25",
		StatutoryWording: "This is a payment claim made under the Building and Construction Industry Security of Payment Act 1999 (NSW).",
	})
	require.NoError(t, err)
	require.NotEmpty(t, content)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payment Claim", title)

	number, err := f.GetCellValue(sheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", number)

	amount, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "400.25", amount, "amount is written verbatim")

	wording, err := f.GetCellValue(sheet, "A7")
	require.NoError(t, err)
	assert.Contains(t, wording, "Security of Payment Act 1999 (NSW)")
}

func TestWorkbookRenderer_RenderInvoice(t *testing.T) {
	r := NewWorkbookRenderer(zap.NewNop())

	content, err := r.RenderInvoice(context.Background(), &port.InvoiceRender{
		ProjectName:   "Riverside Apartments",
		InvoiceNumber: 12,
		ReferenceDate: time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		Amount:        "1050.00",
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Tax Invoice", title)

	amount, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "1050.00", amount)
}

func TestWorkbookRenderer_CancelledContext(t *testing.T) {
	r := NewWorkbookRenderer(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderClaim(ctx, &port.ClaimRender{})
	assert.Error(t, err)
}
