// Package changefeed carries the payload-free "registrations changed" signal
// from writers to whoever needs to re-read the store.
package changefeed

import (
	"context"
	"sync"

	"regdesk-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "registrations.changed"

// Unsubscribe stops delivery and closes the signal channel. Safe to call twice.
type Unsubscribe func()

type Feed interface {
	Notify(ctx context.Context)
	Subscribe(ctx context.Context) (<-chan struct{}, Unsubscribe, error)
}

// WatermillFeed is the in-process feed on a watermill gochannel.
type WatermillFeed struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewWatermillFeed(pubSub *gochannel.GoChannel, logger logger.ILogger) *WatermillFeed {
	return &WatermillFeed{pubSub: pubSub, logger: logger}
}

// NewGoChannel builds the pub/sub used by the feed
func NewGoChannel() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NewStdLogger(false, false),
	)
}

func (f *WatermillFeed) Notify(ctx context.Context) {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	msg.SetContext(ctx)
	if err := f.pubSub.Publish(Topic, msg); err != nil {
		f.logger.Warn("CHANGEFEED", "Failed to publish change signal", map[string]interface{}{"error": err.Error()})
	}
}

// Subscribe coalesces bursts: the returned channel holds at most one pending
// signal, so a slow reader sees "changed" once rather than once per write.
func (f *WatermillFeed) Subscribe(ctx context.Context) (<-chan struct{}, Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	messages, err := f.pubSub.Subscribe(subCtx, Topic)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	return out, Unsubscribe(cancel), nil
}

// Counter is a Feed that only counts notifications. Subscribers never fire.
type Counter struct {
	mu    sync.Mutex
	count int
}

func (c *Counter) Notify(ctx context.Context) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Counter) Subscribe(ctx context.Context) (<-chan struct{}, Unsubscribe, error) {
	return make(chan struct{}), func() {}, nil
}
