package transfer

import (
	"context"
	"testing"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/internal/repository/repotest"
	"regdesk-be/pkg/admin/category"
	adminEvents "regdesk-be/pkg/admin/events"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *repotest.Store
	workflow  *Workflow
	publisher *adminEvents.Recorder
	reg       *entity.Registration
	from      *entity.Category
	to        *entity.Category
	inactive  *entity.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	publisher := &adminEvents.Recorder{}
	directory := category.NewDirectory(store.Factory(), logger.NewNop())

	f := &fixture{
		store:     store,
		publisher: publisher,
		workflow:  NewWorkflow(directory, publisher, metrics.New(prometheus.NewRegistry()), logger.NewNop()),
		from:      store.AddCategory(&entity.Category{NameEnglish: "Farmer", ExpiryDays: 30, IsActive: true}),
		to:        store.AddCategory(&entity.Category{NameEnglish: "Fisher", ExpiryDays: 30, IsActive: true}),
		inactive:  store.AddCategory(&entity.Category{NameEnglish: "Retired", ExpiryDays: 30, IsActive: false}),
	}
	f.reg = store.AddRegistration(&entity.Registration{
		CustomerId:   "CUST-77",
		FullName:     "Suresh M",
		MobileNumber: "9847077777",
		CategoryId:   f.from.Id,
		Status:       entity.RegistrationStatusApproved,
	})
	return f
}

func (f *fixture) uow() *repotest.UnitOfWork {
	return f.store.Factory().NewUnitOfWork(context.Background()).(*repotest.UnitOfWork)
}

func TestSubmitSnapshotsRegistrant(t *testing.T) {
	f := newFixture(t)

	req, err := f.workflow.Submit(context.Background(), f.uow(), f.reg.Id, f.to.Id, "  moved to coast  ")
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusPending, req.Status)
	assert.Equal(t, f.from.Id, req.FromCategoryId)
	assert.Equal(t, "CUST-77", req.CustomerId)
	assert.Equal(t, "9847077777", req.MobileNumber)
	assert.Equal(t, "moved to coast", req.Reason)
	assert.Equal(t, []string{"CATEGORY_TRANSFER_REQUESTED"}, f.publisher.Types())

	// Registration is untouched
	assert.Equal(t, f.from.Id, f.store.Registration(f.reg.Id).CategoryId)
}

func TestSubmitRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.workflow.Submit(ctx, f.uow(), uuid.New(), f.to.Id, "")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.from.Id, "")
	assert.ErrorIs(t, err, ErrSameCategory)

	_, err = f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.inactive.Id, "")
	assert.ErrorIs(t, err, ErrCategoryUnavailable)

	_, err = f.workflow.Submit(ctx, f.uow(), f.reg.Id, uuid.New(), "")
	assert.ErrorIs(t, err, ErrCategoryUnavailable)

	_, err = f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.to.Id, "")
	require.NoError(t, err)
	_, err = f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.to.Id, "again")
	assert.ErrorIs(t, err, ErrDuplicateTransfer)
}

func TestResolveTouchesOnlyTheRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.to.Id, "")
	require.NoError(t, err)

	resolved, err := f.workflow.Resolve(ctx, f.uow(), req.Id, true, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "admin@example.com", *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	stored := f.store.Registration(f.reg.Id)
	assert.Equal(t, f.from.Id, stored.CategoryId)
	assert.Equal(t, entity.RegistrationStatusApproved, stored.Status)

	_, err = f.workflow.Resolve(ctx, f.uow(), req.Id, false, "admin@example.com")
	assert.ErrorIs(t, err, ErrTransferAlreadyResolved)

	_, err = f.workflow.Resolve(ctx, f.uow(), uuid.New(), false, "admin@example.com")
	assert.ErrorIs(t, err, ErrTransferNotFound)
}

func TestSubmitLosingRaceReportsDuplicate(t *testing.T) {
	f := newFixture(t)

	// A second admin's request lands after our pending check
	f.store.BeforeWrite = func() {
		f.store.BeforeWrite = nil
		f.store.AddTransfer(&entity.CategoryTransferRequest{
			RegistrationId: f.reg.Id,
			FromCategoryId: f.from.Id,
			ToCategoryId:   f.to.Id,
			Status:         entity.TransferStatusPending,
		})
	}

	_, err := f.workflow.Submit(context.Background(), f.uow(), f.reg.Id, f.to.Id, "")
	assert.ErrorIs(t, err, ErrDuplicateTransfer)
	assert.Empty(t, f.publisher.Types())
}

func TestResolveLosingRaceReportsAlreadyResolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.to.Id, "")
	require.NoError(t, err)

	f.store.BeforeWrite = func() {
		f.store.SetTransferStatus(req.Id, entity.TransferStatusRejected)
	}

	_, err = f.workflow.Resolve(ctx, f.uow(), req.Id, true, "admin@example.com")
	assert.ErrorIs(t, err, ErrTransferAlreadyResolved)
	assert.Equal(t, []string{"CATEGORY_TRANSFER_REQUESTED"}, f.publisher.Types())
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.to.Id, "")
	require.NoError(t, err)
	_, err = f.workflow.Resolve(ctx, f.uow(), first.Id, false, "admin@example.com")
	require.NoError(t, err)
	_, err = f.workflow.Submit(ctx, f.uow(), f.reg.Id, f.to.Id, "second try")
	require.NoError(t, err)

	pending, err := f.workflow.List(ctx, f.uow(), "pending", 1, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "second try", pending[0].Reason)
	require.NotNil(t, pending[0].ToCategory)
	assert.Equal(t, "Fisher", pending[0].ToCategory.NameEnglish)

	all, err := f.workflow.List(ctx, f.uow(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
