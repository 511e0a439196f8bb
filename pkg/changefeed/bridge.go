package changefeed

import (
	"context"

	"regdesk-be/internal/pkg/logger"
	"regdesk-be/pkg/events"
	pktNats "regdesk-be/pkg/nats"
)

// Listener is the part of the NATS subscriber the bridge needs
type Listener interface {
	Listen(ctx context.Context, subject string, handler pktNats.EventHandler) (func(), error)
}

// Bridge turns registration events published by other instances into local
// change signals. Events carrying this instance's origin are skipped because
// the local writer has already notified the feed.
type Bridge struct {
	listener Listener
	feed     Feed
	origin   string
	logger   logger.ILogger
}

func NewBridge(listener Listener, feed Feed, origin string, logger logger.ILogger) *Bridge {
	return &Bridge{listener: listener, feed: feed, origin: origin, logger: logger}
}

// Start subscribes and returns the stop function
func (b *Bridge) Start(ctx context.Context) (func(), error) {
	// NATS wildcards match whole tokens only, so filter the prefix here
	stop, err := b.listener.Listen(ctx, events.SubjectPrefix+"*", b.handle)
	if err != nil {
		return nil, err
	}
	b.logger.Info("CHANGEFEED", "Bridging remote registration events", map[string]interface{}{"origin": b.origin})
	return stop, nil
}

func (b *Bridge) handle(ctx context.Context, evt events.Event) error {
	if !events.IsRegistrationChange(evt.EventType()) {
		return nil
	}
	if base, ok := evt.(events.BaseEvent); ok && base.Origin == b.origin {
		return nil
	}
	b.feed.Notify(ctx)
	return nil
}
