package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/changefeed"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	day         = 24 * time.Hour
	testDelay   = 40 * time.Millisecond
	settleDelay = 4 * testDelay
)

var now = time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu    sync.Mutex
	regs  []*entity.Registration
	err   error
	calls int32
}

func (s *fakeSource) set(regs []*entity.Registration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs, s.err = regs, err
}

func (s *fakeSource) PendingRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs, s.err
}

type recordingSurfacer struct {
	mu      sync.Mutex
	batches [][]Alert
}

func (r *recordingSurfacer) Surface(ctx context.Context, alerts []Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, alerts)
}

func (r *recordingSurfacer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *recordingSurfacer) last() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func pending(name string, offset time.Duration) *entity.Registration {
	exp := now.Add(offset)
	return &entity.Registration{
		Id:         uuid.New(),
		FullName:   name,
		Status:     entity.RegistrationStatusPending,
		ExpiryDate: &exp,
		Category:   &entity.Category{NameEnglish: "Farmer"},
	}
}

type trackingFeed struct {
	signals      chan struct{}
	unsubscribed int32
}

func newTrackingFeed() *trackingFeed {
	return &trackingFeed{signals: make(chan struct{})}
}

func (f *trackingFeed) Notify(ctx context.Context) {}

func (f *trackingFeed) Subscribe(ctx context.Context) (<-chan struct{}, changefeed.Unsubscribe, error) {
	return f.signals, func() { atomic.AddInt32(&f.unsubscribed, 1) }, nil
}

func newAggregator(source Source, feed changefeed.Feed, sink Surfacer) (*Aggregator, *metrics.Metrics) {
	return newPollingAggregator(source, feed, sink, time.Hour)
}

func newPollingAggregator(source Source, feed changefeed.Feed, sink Surfacer, poll time.Duration) (*Aggregator, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	a := NewAggregator(source, feed, sink, Config{
		PollInterval: poll,
		SurfaceDelay: testDelay,
		Classifier:   expiry.NewClassifier(3),
	}, m, logger.NewNop()).WithClock(func() time.Time { return now })
	return a, m
}

func TestRefreshPartitionsAndSorts(t *testing.T) {
	approvedExp := now.Add(-10 * day)
	source := &fakeSource{regs: []*entity.Registration{
		pending("soon-3", 3*day),
		pending("normal", 10*day),
		pending("overdue-1", -day),
		pending("soon-1", 12*time.Hour),
		pending("overdue-9", -9*day),
		{Id: uuid.New(), FullName: "approved", Status: entity.RegistrationStatusApproved, ExpiryDate: &approvedExp},
		{Id: uuid.New(), FullName: "undated", Status: entity.RegistrationStatusPending},
	}}
	a, m := newAggregator(source, &changefeed.Counter{}, nil)
	defer a.Close()

	require.NoError(t, a.Refresh(context.Background()))

	s := a.Summary()
	assert.Equal(t, 2, s.ExpiredCount)
	assert.Equal(t, 2, s.ExpiringSoonCount)
	names := make([]string, 0, len(s.Alerts))
	for _, al := range s.Alerts {
		names = append(names, al.FullName)
	}
	assert.Equal(t, []string{"overdue-9", "overdue-1", "soon-1", "soon-3"}, names)
	assert.Equal(t, "Farmer", s.Alerts[0].CategoryName)
	assert.Equal(t, -9, s.Alerts[0].DaysRemaining)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ExpiredRegistrations))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ExpiringSoon))
}

func TestAutoSurfaceThenAcknowledge(t *testing.T) {
	source := &fakeSource{regs: []*entity.Registration{
		pending("soon", 2*day),
		pending("overdue", -2*day),
	}}
	sink := &recordingSurfacer{}
	a, _ := newAggregator(source, &changefeed.Counter{}, sink)
	defer a.Close()

	require.NoError(t, a.Refresh(context.Background()))
	assert.Equal(t, 0, sink.count(), "surfacing waits for the delay")

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	surfaced := sink.last()
	require.Len(t, surfaced, 2)
	assert.Equal(t, expiry.BucketExpired, surfaced[0].Bucket)
	assert.Equal(t, expiry.BucketExpiringSoon, surfaced[1].Bucket)

	a.Acknowledge()

	// A later change that keeps both buckets non-empty stays quiet
	source.set(append(source.regs, pending("another", -day)), nil)
	require.NoError(t, a.Refresh(context.Background()))
	time.Sleep(settleDelay)
	assert.Equal(t, 1, sink.count())

	s := a.Summary()
	assert.True(t, s.Acknowledged)
	assert.Equal(t, 2, s.ExpiredCount)
	assert.Len(t, a.Open(), 3)
}

func TestRepeatedRefreshDoesNotReArm(t *testing.T) {
	source := &fakeSource{regs: []*entity.Registration{pending("overdue", -day)}}
	sink := &recordingSurfacer{}
	a, _ := newAggregator(source, &changefeed.Counter{}, sink)
	defer a.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Refresh(context.Background()))
	}
	time.Sleep(settleDelay)
	require.NoError(t, a.Refresh(context.Background()))
	time.Sleep(settleDelay)

	assert.Equal(t, 1, sink.count())
}

func TestTimerCancelledWhenConditionClears(t *testing.T) {
	source := &fakeSource{regs: []*entity.Registration{pending("overdue", -day)}}
	sink := &recordingSurfacer{}
	a, _ := newAggregator(source, &changefeed.Counter{}, sink)
	defer a.Close()

	require.NoError(t, a.Refresh(context.Background()))
	source.set(nil, nil)
	require.NoError(t, a.Refresh(context.Background()))

	time.Sleep(settleDelay)
	assert.Equal(t, 0, sink.count())

	// Condition returns: a fresh timer is armed
	source.set([]*entity.Registration{pending("soon", day)}, nil)
	require.NoError(t, a.Refresh(context.Background()))
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAcknowledgeCancelsPendingTimer(t *testing.T) {
	source := &fakeSource{regs: []*entity.Registration{pending("overdue", -day)}}
	sink := &recordingSurfacer{}
	a, _ := newAggregator(source, &changefeed.Counter{}, sink)
	defer a.Close()

	require.NoError(t, a.Refresh(context.Background()))
	a.Acknowledge()
	time.Sleep(settleDelay)
	assert.Equal(t, 0, sink.count())
	assert.Len(t, a.Open(), 1)
}

func TestCloseCancelsPendingTimer(t *testing.T) {
	source := &fakeSource{regs: []*entity.Registration{pending("overdue", -day)}}
	sink := &recordingSurfacer{}
	a, _ := newAggregator(source, &changefeed.Counter{}, sink)

	require.NoError(t, a.Refresh(context.Background()))
	a.Close()
	a.Close()

	time.Sleep(settleDelay)
	assert.Equal(t, 0, sink.count())
}

func TestRefreshErrorKeepsPreviousSnapshot(t *testing.T) {
	source := &fakeSource{regs: []*entity.Registration{pending("overdue", -day), pending("soon", day)}}
	a, m := newAggregator(source, &changefeed.Counter{}, nil)
	defer a.Close()

	require.NoError(t, a.Refresh(context.Background()))

	readErr := errors.New("connection refused")
	source.set(nil, readErr)
	err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, readErr)

	s := a.Summary()
	assert.Equal(t, 1, s.ExpiredCount)
	assert.Equal(t, 1, s.ExpiringSoonCount)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AlertRefreshFailures))
}

func TestStartRefreshesOnChangeFeed(t *testing.T) {
	pubSub := changefeed.NewGoChannel()
	defer pubSub.Close()
	feed := changefeed.NewWatermillFeed(pubSub, logger.NewNop())

	source := &fakeSource{}
	a, _ := newAggregator(source, feed, nil)
	require.NoError(t, a.Start(context.Background()))
	defer a.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))

	source.set([]*entity.Registration{pending("overdue", -day)}, nil)
	feed.Notify(context.Background())

	require.Eventually(t, func() bool {
		return a.Summary().ExpiredCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartPollsUntilClosed(t *testing.T) {
	feed := newTrackingFeed()
	source := &fakeSource{}
	a, _ := newPollingAggregator(source, feed, nil, 20*time.Millisecond)
	require.NoError(t, a.Start(context.Background()))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&source.calls) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	a.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&feed.unsubscribed))

	stopped := atomic.LoadInt32(&source.calls)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&source.calls))
}

func TestSurfacersFanOut(t *testing.T) {
	first, second := &recordingSurfacer{}, &recordingSurfacer{}
	var called bool
	sinks := Surfacers{first, nil, SurfacerFunc(func(ctx context.Context, alerts []Alert) { called = true }), second}

	sinks.Surface(context.Background(), []Alert{{FullName: "x"}})
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
	assert.True(t, called)
}
