package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelink/claimworks/internal/apperror"
	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

type invoiceFixture struct {
	projects  *mockProjectRepo
	invoices  *mockInvoiceRepo
	sequences *mockSequenceAllocator
	renderer  *mockRenderer
	storage   *mockObjectStorage
}

func newInvoiceFixture(invoiceMode bool) *invoiceFixture {
	next := int64(0)
	return &invoiceFixture{
		projects: &mockProjectRepo{
			getByIDFn: func(ctx context.Context, id string) (*entity.Project, error) {
				return &entity.Project{
					ID:                 id,
					Name:               "Riverside Apartments",
					InvoiceModeEnabled: invoiceMode,
				}, nil
			},
		},
		invoices: &mockInvoiceRepo{
			createFn: func(ctx context.Context, invoice *entity.Invoice) error { return nil },
		},
		sequences: &mockSequenceAllocator{
			nextNumberFn: func(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error) {
				next++
				return next, nil
			},
		},
		renderer: &mockRenderer{
			renderInvoiceFn: func(ctx context.Context, doc *port.InvoiceRender) ([]byte, error) {
				return []byte("workbook"), nil
			},
		},
		storage: &mockObjectStorage{},
	}
}

func (f *invoiceFixture) service() InvoiceService {
	return NewInvoiceService(
		f.projects, f.invoices, f.sequences, f.renderer, f.storage,
		passthroughTxManager{}, uniqueViolationChecker{}, nopLogger{})
}

func TestInvoiceService_Generate(t *testing.T) {
	f := newInvoiceFixture(true)

	invoice, err := f.service().Generate(context.Background(), "proj-1", &GenerateInvoiceRequest{
		ReferenceDate: day(2026, 4, 30),
		Amount:        "1050.00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), invoice.InvoiceNumber)
	assert.True(t, invoice.Amount.Equal(decimal.RequireFromString("1050.00")))
}

func TestInvoiceService_GenerateGatedOnInvoiceMode(t *testing.T) {
	f := newInvoiceFixture(false)
	allocated := false
	f.sequences.nextNumberFn = func(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error) {
		allocated = true
		return 1, nil
	}

	_, err := f.service().Generate(context.Background(), "proj-1", &GenerateInvoiceRequest{
		ReferenceDate: day(2026, 4, 30),
		Amount:        "1050.00",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindPrecondition, apperror.KindOf(err))
	assert.False(t, allocated, "the gate must not consume a number")
}

func TestInvoiceService_GenerateInvalidAmount(t *testing.T) {
	f := newInvoiceFixture(true)

	for _, amount := range []string{"", "abc", "-5"} {
		_, err := f.service().Generate(context.Background(), "proj-1", &GenerateInvoiceRequest{
			ReferenceDate: day(2026, 4, 30),
			Amount:        amount,
		})
		require.Error(t, err, "amount %q", amount)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
}
