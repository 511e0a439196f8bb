package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/mailer"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/notify"
	"regdesk-be/pkg/events"
	pktNats "regdesk-be/pkg/nats"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type broadcast struct {
	msgType string
	payload interface{}
}

type fakeDelivery struct {
	mu   sync.Mutex
	sent []broadcast
}

func (d *fakeDelivery) Broadcast(msgType string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, broadcast{msgType: msgType, payload: payload})
}

type fakeLocalDelivery struct {
	fakeDelivery
	local []broadcast
}

func (d *fakeLocalDelivery) BroadcastLocal(msgType string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.local = append(d.local, broadcast{msgType: msgType, payload: payload})
}

type fakeMailer struct {
	mu      sync.Mutex
	to      string
	expired []mailer.DigestLine
	soon    []mailer.DigestLine
	calls   int
}

func (m *fakeMailer) SendExpiryDigest(toEmail string, expired, expiringSoon []mailer.DigestLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to, m.expired, m.soon = toEmail, expired, expiringSoon
	m.calls++
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeAlertView struct {
	summary      notify.Summary
	acknowledged bool
}

func (v *fakeAlertView) Summary() notify.Summary {
	s := v.summary
	s.Acknowledged = v.acknowledged
	return s
}
func (v *fakeAlertView) Acknowledge()         { v.acknowledged = true }
func (v *fakeAlertView) Open() []notify.Alert { return v.summary.Alerts }

func sampleAlerts() []notify.Alert {
	exp := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return []notify.Alert{
		{RegistrationId: uuid.New(), FullName: "Expired One", CategoryName: "Farmer", ExpiryDate: exp, DaysRemaining: -1, Bucket: expiry.BucketExpired},
		{RegistrationId: uuid.New(), FullName: "Soon One", CategoryName: "Weaver", ExpiryDate: exp, DaysRemaining: 2, Bucket: expiry.BucketExpiringSoon},
		{RegistrationId: uuid.New(), FullName: "Soon Two", CategoryName: "Weaver", ExpiryDate: exp, DaysRemaining: 3, Bucket: expiry.BucketExpiringSoon},
	}
}

func TestNotificationServiceSummaryAndAcknowledge(t *testing.T) {
	alerts := sampleAlerts()
	view := &fakeAlertView{summary: notify.Summary{ExpiredCount: 1, ExpiringSoonCount: 2, Alerts: alerts}}
	svc := NewNotificationService(view, logger.NewNop())
	ctx := context.Background()

	sum := svc.Summary(ctx)
	assert.Equal(t, 1, sum.ExpiredCount)
	assert.Equal(t, 2, sum.ExpiringSoonCount)
	assert.False(t, sum.Acknowledged)
	assert.Nil(t, sum.RefreshedAt)
	require.Len(t, sum.Alerts, 3)
	assert.Equal(t, "expired", sum.Alerts[0].Bucket)

	acked := svc.Acknowledge(ctx, "admin@example.com")
	assert.True(t, acked.Acknowledged)

	// Manual open still lists everything after acknowledgement
	assert.Len(t, svc.Open(ctx), 3)
}

func TestHubSurfacerBroadcastsAlertListLocally(t *testing.T) {
	delivery := &fakeLocalDelivery{}
	HubSurfacer(delivery).Surface(context.Background(), sampleAlerts())

	assert.Empty(t, delivery.sent)
	require.Len(t, delivery.local, 1)
	assert.Equal(t, MessageExpiryAlerts, delivery.local[0].msgType)
	payload, ok := delivery.local[0].payload.([]dto.ExpiryAlert)
	require.True(t, ok)
	assert.Len(t, payload, 3)
}

func TestEventSurfacerPublishesCounts(t *testing.T) {
	recorder := &adminEvents.Recorder{}
	EventSurfacer(recorder).Surface(context.Background(), sampleAlerts())

	assert.Equal(t, []string{events.ExpiryAlertsSurfaced}, recorder.Types())
}

func TestEmailSurfacerSplitsBuckets(t *testing.T) {
	m := &fakeMailer{}
	EmailSurfacer(m, "desk@example.com", nil, time.UTC, logger.NewNop()).Surface(context.Background(), sampleAlerts())

	require.Eventually(t, func() bool { return m.count() == 1 }, time.Second, 5*time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, "desk@example.com", m.to)
	require.Len(t, m.expired, 1)
	assert.Len(t, m.soon, 2)
	assert.Equal(t, "01/04/2026", m.expired[0].ExpiryDate)
}

func TestEmailSurfacerWithoutRecipientIsNoop(t *testing.T) {
	m := &fakeMailer{}
	EmailSurfacer(m, "", nil, time.UTC, logger.NewNop()).Surface(context.Background(), sampleAlerts())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, m.count())
}

func TestEmailSurfacerSendsOneDigestAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	m := &fakeMailer{}
	alerts := sampleAlerts()
	first := EmailSurfacer(m, "desk@example.com", NewRedisDigestGate(rdb, "instance-a", logger.NewNop()), time.UTC, logger.NewNop())
	second := EmailSurfacer(m, "desk@example.com", NewRedisDigestGate(rdb, "instance-b", logger.NewNop()), time.UTC, logger.NewNop())

	first.Surface(context.Background(), alerts)
	second.Surface(context.Background(), alerts)

	require.Eventually(t, func() bool { return m.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, m.count())

	// A different alert set is a new digest
	second.Surface(context.Background(), alerts[:1])
	require.Eventually(t, func() bool { return m.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDigestGateClaimsRegardlessOfOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	alerts := sampleAlerts()
	reversed := []notify.Alert{alerts[2], alerts[1], alerts[0]}

	gate := NewRedisDigestGate(rdb, "instance-a", logger.NewNop())
	assert.True(t, gate.Claim(context.Background(), alerts))
	assert.False(t, gate.Claim(context.Background(), reversed))
	assert.True(t, mr.Exists(digestKey(alerts)))
}

func TestDigestGateWithoutRedisAlwaysClaims(t *testing.T) {
	gate := NewRedisDigestGate(nil, "solo", logger.NewNop())
	assert.True(t, gate.Claim(context.Background(), sampleAlerts()))
	assert.True(t, gate.Claim(context.Background(), sampleAlerts()))
}

type fakeSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) (func(), error) {
	s.subject, s.durable, s.handler = subject, durableName, handler
	return func() {}, nil
}

func TestActivityRelayForwardsEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	delivery := &fakeDelivery{}
	relay := NewActivityRelay(sub, delivery, logger.NewNop())

	stop, err := relay.Start(context.Background())
	require.NoError(t, err)
	defer stop()

	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, activityDurable, sub.durable)

	at := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, sub.handler(context.Background(), events.BaseEvent{
		Type:       events.RegistrationApproved,
		Data:       map[string]interface{}{"registration_id": "abc"},
		OccurredAt: at,
	}))

	require.Len(t, delivery.sent, 1)
	assert.Equal(t, MessageActivity, delivery.sent[0].msgType)
	msg, ok := delivery.sent[0].payload.(dto.ActivityMessage)
	require.True(t, ok)
	assert.Equal(t, events.RegistrationApproved, msg.Type)
	assert.Equal(t, "abc", msg.Data["registration_id"])
	assert.True(t, at.Equal(msg.OccurredAt))
}
