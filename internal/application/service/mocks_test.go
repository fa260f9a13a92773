package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

// nopLogger satisfies Logger for tests
type nopLogger struct{}

func (nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

type mockProjectRepo struct {
	port.ProjectRepository
	getByIDFn        func(ctx context.Context, id string) (*entity.Project, error)
	listForUserFn    func(ctx context.Context, userID string) ([]*entity.Project, error)
	createFn         func(ctx context.Context, project *entity.Project) error
	addMemberFn      func(ctx context.Context, member *entity.ProjectMember) error
	updateSettingsFn func(ctx context.Context, id string, patch *entity.ProjectSettingsPatch) (*entity.Project, error)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockProjectRepo) ListForUser(ctx context.Context, userID string) ([]*entity.Project, error) {
	return m.listForUserFn(ctx, userID)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	return m.createFn(ctx, project)
}

func (m *mockProjectRepo) AddMember(ctx context.Context, member *entity.ProjectMember) error {
	return m.addMemberFn(ctx, member)
}

func (m *mockProjectRepo) UpdateSettings(ctx context.Context, id string, patch *entity.ProjectSettingsPatch) (*entity.Project, error) {
	return m.updateSettingsFn(ctx, id, patch)
}

type mockWorkRecordRepo struct {
	port.WorkRecordRepository
	valuesInPeriodFn func(ctx context.Context, projectID string, start, end time.Time) ([]decimal.Decimal, error)
}

func (m *mockWorkRecordRepo) ValuesInPeriod(ctx context.Context, projectID string, start, end time.Time) ([]decimal.Decimal, error) {
	return m.valuesInPeriodFn(ctx, projectID, start, end)
}

type mockVariationRepo struct {
	port.VariationRepository
	approvedAmountsFn func(ctx context.Context, projectID string) ([]decimal.Decimal, error)
}

func (m *mockVariationRepo) ApprovedAmounts(ctx context.Context, projectID string) ([]decimal.Decimal, error) {
	return m.approvedAmountsFn(ctx, projectID)
}

type mockClaimRepo struct {
	port.ClaimRepository
	createFn     func(ctx context.Context, claim *entity.PaymentClaim) error
	countByIDsFn func(ctx context.Context, projectID string, ids []string) (int, error)
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *entity.PaymentClaim) error {
	return m.createFn(ctx, claim)
}

func (m *mockClaimRepo) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return m.countByIDsFn(ctx, projectID, ids)
}

type mockInvoiceRepo struct {
	port.InvoiceRepository
	createFn func(ctx context.Context, invoice *entity.Invoice) error
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	return m.createFn(ctx, invoice)
}

type mockEvidenceRepo struct {
	port.EvidenceRepository
	countByIDsFn func(ctx context.Context, projectID string, ids []string) (int, error)
	getByIDFn    func(ctx context.Context, projectID, id string) (*entity.Evidence, error)
}

func (m *mockEvidenceRepo) CountByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	return m.countByIDsFn(ctx, projectID, ids)
}

func (m *mockEvidenceRepo) GetByID(ctx context.Context, projectID, id string) (*entity.Evidence, error) {
	return m.getByIDFn(ctx, projectID, id)
}

type mockLinkRepo struct {
	reconcileFn func(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error
	linkedIDsFn func(ctx context.Context, kind port.RelationKind, ownerID string) ([]string, error)
	clearFn     func(ctx context.Context, kind port.RelationKind, ownerID string) error
}

func (m *mockLinkRepo) Reconcile(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
	if m.reconcileFn == nil {
		return nil
	}
	return m.reconcileFn(ctx, kind, ownerID, desired)
}

func (m *mockLinkRepo) LinkedIDs(ctx context.Context, kind port.RelationKind, ownerID string) ([]string, error) {
	if m.linkedIDsFn == nil {
		return nil, nil
	}
	return m.linkedIDsFn(ctx, kind, ownerID)
}

func (m *mockLinkRepo) Clear(ctx context.Context, kind port.RelationKind, ownerID string) error {
	if m.clearFn == nil {
		return nil
	}
	return m.clearFn(ctx, kind, ownerID)
}

type mockSequenceAllocator struct {
	nextNumberFn func(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error)
}

func (m *mockSequenceAllocator) NextNumber(ctx context.Context, projectID string, class entity.DocumentClass) (int64, error) {
	return m.nextNumberFn(ctx, projectID, class)
}

type mockRenderer struct {
	renderClaimFn   func(ctx context.Context, doc *port.ClaimRender) ([]byte, error)
	renderInvoiceFn func(ctx context.Context, doc *port.InvoiceRender) ([]byte, error)
}

func (m *mockRenderer) RenderClaim(ctx context.Context, doc *port.ClaimRender) ([]byte, error) {
	return m.renderClaimFn(ctx, doc)
}

func (m *mockRenderer) RenderInvoice(ctx context.Context, doc *port.InvoiceRender) ([]byte, error) {
	return m.renderInvoiceFn(ctx, doc)
}

type mockObjectStorage struct {
	putFn func(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error)
	getFn func(ctx context.Context, key string) ([]byte, error)
}

func (m *mockObjectStorage) Put(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error) {
	if m.putFn == nil {
		return &port.StoredObject{Key: key, URL: "http://localhost/files/" + key}, nil
	}
	return m.putFn(ctx, key, content, contentType)
}

func (m *mockObjectStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFn(ctx, key)
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// uniqueViolationChecker flags errors matching a predicate as unique
// violations
type uniqueViolationChecker struct {
	isUniqueFn func(err error) bool
}

func (c uniqueViolationChecker) IsUniqueViolation(err error) bool {
	if c.isUniqueFn == nil {
		return false
	}
	return c.isUniqueFn(err)
}
