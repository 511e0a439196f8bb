package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/internal/repository/repotest"
	"regdesk-be/pkg/admin/category"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/lifecycle"
	"regdesk-be/pkg/changefeed"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func ptrInt(n int) *int { return &n }

type registrationFixture struct {
	store   *repotest.Store
	svc     IRegistrationService
	farmer  *entity.Category
	weaver  *entity.Category
	kottayi *entity.Panchayath
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	store := repotest.NewStore()
	directory := category.NewDirectory(store.Factory(), logger.NewNop())
	manager := lifecycle.NewManager(directory, &changefeed.Counter{}, &adminEvents.Recorder{},
		metrics.New(prometheus.NewRegistry()), logger.NewNop()).
		WithClock(func() time.Time { return fixedNow })

	svc := NewRegistrationService(store.Factory(), manager, expiry.NewClassifier(3), time.UTC, logger.NewNop())
	svc.(*registrationService).now = func() time.Time { return fixedNow }

	f := &registrationFixture{
		store:   store,
		svc:     svc,
		farmer:  store.AddCategory(&entity.Category{NameEnglish: "Farmer", NameMalayalam: "കർഷകൻ", ExpiryDays: 30, IsActive: true}),
		weaver:  store.AddCategory(&entity.Category{NameEnglish: "Weaver", NameMalayalam: "നെയ്ത്തുകാരൻ", ExpiryDays: 60, IsActive: true}),
		kottayi: store.AddPanchayath(&entity.Panchayath{Name: "Kottayi", District: "Palakkad", IsActive: true}),
	}
	return f
}

func (f *registrationFixture) add(name string, status entity.RegistrationStatus, cat *entity.Category, created time.Time, exp *time.Time) *entity.Registration {
	return f.store.AddRegistration(&entity.Registration{
		CustomerId:   "C-" + uuid.NewString()[:8],
		FullName:     name,
		MobileNumber: "98470" + uuid.NewString()[:5],
		CategoryId:   cat.Id,
		Status:       status,
		CreatedAt:    created,
		ExpiryDate:   exp,
	})
}

func names(rows []*dto.RegistrationListResponse) []string {
	res := make([]string, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.FullName)
	}
	return res
}

func TestListFiltersByExpiryThreshold(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.add("Expired", entity.RegistrationStatusPending, f.farmer, fixedNow.Add(-40*24*time.Hour), ptrTime(fixedNow.Add(-2*24*time.Hour)))
	f.add("Soon", entity.RegistrationStatusPending, f.farmer, fixedNow.Add(-20*24*time.Hour), ptrTime(fixedNow.Add(2*24*time.Hour)))
	f.add("Later", entity.RegistrationStatusPending, f.farmer, fixedNow.Add(-10*24*time.Hour), ptrTime(fixedNow.Add(20*24*time.Hour)))
	f.add("Approved", entity.RegistrationStatusApproved, f.farmer, fixedNow.Add(-5*24*time.Hour), ptrTime(fixedNow.Add(-1*24*time.Hour)))
	f.add("NoExpiry", entity.RegistrationStatusPending, f.farmer, fixedNow.Add(-1*24*time.Hour), nil)

	tests := []struct {
		name      string
		threshold *int
		want      []string
	}{
		{name: "no threshold", threshold: nil, want: []string{"NoExpiry", "Approved", "Later", "Soon", "Expired"}},
		{name: "zero means already expired", threshold: ptrInt(0), want: []string{"Expired"}},
		{name: "within three days", threshold: ptrInt(3), want: []string{"Soon"}},
		{name: "within thirty days", threshold: ptrInt(30), want: []string{"Later", "Soon"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := f.svc.List(ctx, dto.RegistrationFilter{ExpiryDays: tc.threshold})
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(rows))
		})
	}
}

func TestListDerivesViewFields(t *testing.T) {
	f := newRegistrationFixture(t)
	reg := f.add("Soon", entity.RegistrationStatusPending, f.farmer, fixedNow.Add(-time.Hour), ptrTime(fixedNow.Add(36*time.Hour)))
	reg.PanchayathId = &f.kottayi.Id

	rows, err := f.svc.List(context.Background(), dto.RegistrationFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.DaysRemaining)
	assert.Equal(t, 2, *row.DaysRemaining)
	assert.Equal(t, string(expiry.BucketExpiringSoon), row.ExpiryBucket)
	assert.Equal(t, category.Color("Farmer"), row.CategoryColor)
	require.NotNil(t, row.Category)
	assert.Equal(t, "Farmer", row.Category.NameEnglish)
	require.NotNil(t, row.Panchayath)
	assert.Equal(t, "Kottayi", row.Panchayath.Name)
}

func TestListSearchStatusCategoryAndSort(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.add("anil kumar", entity.RegistrationStatusPending, f.farmer, fixedNow.Add(-3*time.Hour), ptrTime(fixedNow.Add(10*24*time.Hour)))
	f.add("Beena", entity.RegistrationStatusPending, f.weaver, fixedNow.Add(-2*time.Hour), nil)
	f.add("Anitha", entity.RegistrationStatusRejected, f.farmer, fixedNow.Add(-1*time.Hour), ptrTime(fixedNow.Add(5*24*time.Hour)))

	rows, err := f.svc.List(ctx, dto.RegistrationFilter{Query: "ANI"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"anil kumar", "Anitha"}, names(rows))

	rows, err = f.svc.List(ctx, dto.RegistrationFilter{Status: "pending", CategoryId: f.farmer.Id.String()})
	require.NoError(t, err)
	assert.Equal(t, []string{"anil kumar"}, names(rows))

	rows, err = f.svc.List(ctx, dto.RegistrationFilter{Sort: "full_name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"anil kumar", "Anitha", "Beena"}, names(rows))

	rows, err = f.svc.List(ctx, dto.RegistrationFilter{Sort: "expiry_date", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anitha", "anil kumar", "Beena"}, names(rows))

	rows, err = f.svc.List(ctx, dto.RegistrationFilter{Sort: "expiry_date", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"anil kumar", "Anitha", "Beena"}, names(rows))

	rows, err = f.svc.List(ctx, dto.RegistrationFilter{Sort: "created_at", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"anil kumar", "Beena", "Anitha"}, names(rows))
}

func TestExportWritesFilteredCSV(t *testing.T) {
	f := newRegistrationFixture(t)
	reg := f.add("Nair, Anil", entity.RegistrationStatusPending, f.farmer,
		time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC), ptrTime(time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC)))
	reg.MobileNumber = "9847000001"
	f.add("Other", entity.RegistrationStatusApproved, f.weaver, fixedNow.Add(-time.Hour), nil)

	var buf bytes.Buffer
	name, err := f.svc.Export(context.Background(), dto.RegistrationFilter{Status: "pending"}, &buf)
	require.NoError(t, err)

	assert.Equal(t, "registrations-export-2026-03-10.csv", name)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Mobile Number,Panchayath,Category,Registered Date,Expiry Date", strings.TrimSpace(lines[0]))
	assert.Equal(t, `"Nair, Anil",9847000001,N/A,Farmer,05/01/2026,04/02/2026`, strings.TrimSpace(lines[1]))
}

func TestApproveReturnsDetailWithBackfilledExpiry(t *testing.T) {
	f := newRegistrationFixture(t)
	reg := f.add("Pending", entity.RegistrationStatusPending, f.weaver, fixedNow.Add(-24*time.Hour), nil)

	res, err := f.svc.Approve(context.Background(), reg.Id, "admin@example.com")
	require.NoError(t, err)

	assert.Equal(t, "approved", res.Status)
	assert.Equal(t, string(expiry.BucketApprovedExempt), res.ExpiryBucket)
	require.NotNil(t, res.ExpiryDate)
	assert.True(t, reg.CreatedAt.Add(60*24*time.Hour).Equal(*res.ExpiryDate))
	require.NotNil(t, res.ApprovedBy)
	assert.Equal(t, "admin@example.com", *res.ApprovedBy)

	events, err := f.svc.Events(context.Background(), reg.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "approved", events[0].Action)
}

func TestDetailUnknownRegistration(t *testing.T) {
	f := newRegistrationFixture(t)
	_, err := f.svc.Detail(context.Background(), uuid.New())
	assert.ErrorIs(t, err, lifecycle.ErrRegistrationNotFound)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newRegistrationFixture(t)
	reg := f.add("Gone", entity.RegistrationStatusRejected, f.farmer, fixedNow, nil)

	err := f.svc.Delete(context.Background(), reg.Id, "admin@example.com", false)
	assert.ErrorIs(t, err, lifecycle.ErrConfirmationRequired)
	assert.NotNil(t, f.store.Registration(reg.Id))

	require.NoError(t, f.svc.Delete(context.Background(), reg.Id, "admin@example.com", true))
	assert.Nil(t, f.store.Registration(reg.Id))
}
