package changefeed

import (
	"context"
	"testing"
	"time"

	"regdesk-be/internal/pkg/logger"
	"regdesk-be/pkg/events"
	pktNats "regdesk-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillFeedDeliversAndCoalesces(t *testing.T) {
	pubSub := NewGoChannel()
	defer pubSub.Close()
	feed := NewWatermillFeed(pubSub, logger.NewNop())

	signals, unsubscribe, err := feed.Subscribe(context.Background())
	require.NoError(t, err)
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		feed.Notify(context.Background())
	}

	select {
	case <-signals:
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal received")
	}
	// Buffer of one: never more than one queued signal at a time
	assert.LessOrEqual(t, len(signals), 1)
}

func TestWatermillFeedUnsubscribeClosesChannel(t *testing.T) {
	pubSub := NewGoChannel()
	defer pubSub.Close()
	feed := NewWatermillFeed(pubSub, logger.NewNop())

	signals, unsubscribe, err := feed.Subscribe(context.Background())
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-signals:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

type fakeListener struct {
	subject string
	handler pktNats.EventHandler
}

func (l *fakeListener) Listen(ctx context.Context, subject string, handler pktNats.EventHandler) (func(), error) {
	l.subject = subject
	l.handler = handler
	return func() {}, nil
}

func TestBridgeForwardsRemoteRegistrationEvents(t *testing.T) {
	feed := &Counter{}
	listener := &fakeListener{}
	bridge := NewBridge(listener, feed, "instance-a", logger.NewNop())

	stop, err := bridge.Start(context.Background())
	require.NoError(t, err)
	defer stop()
	assert.Equal(t, "events.*", listener.subject)

	ctx := context.Background()
	require.NoError(t, listener.handler(ctx, events.BaseEvent{Type: events.RegistrationApproved, Origin: "instance-b"}))
	require.NoError(t, listener.handler(ctx, events.BaseEvent{Type: events.RegistrationDeleted, Origin: "instance-a"}))
	require.NoError(t, listener.handler(ctx, events.BaseEvent{Type: events.CategoryTransferRequested, Origin: "instance-b"}))

	assert.Equal(t, 1, feed.Count())
}
