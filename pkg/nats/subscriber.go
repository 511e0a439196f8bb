package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"regdesk-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewSubscriber(nc *nats.Conn) (*Subscriber, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &Subscriber{nc: nc, js: js}, nil
}

func decode(subject string, header nats.Header, data []byte) (events.BaseEvent, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return events.BaseEvent{}, err
	}
	evt := events.BaseEvent{
		Type:       events.TypeFromSubject(subject),
		Data:       payload,
		OccurredAt: time.Now(),
	}
	if header != nil {
		evt.Origin = header.Get(OriginHeader)
	}
	if ts, ok := payload["occurred_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			evt.OccurredAt = parsed
		}
	}
	return evt, nil
}

// Subscribe registers a durable JetStream consumer. One instance in the
// cluster receives each message; failed handlers are redelivered.
func (s *Subscriber) Subscribe(ctx context.Context, subject string, durableName string, handler EventHandler) (func(), error) {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		evt, err := decode(msg.Subject(), msg.Headers(), msg.Data())
		if err != nil {
			log.Printf("Error unmarshalling event data: %v", err)
			// Poison message, redelivery cannot fix it
			msg.Term()
			return
		}

		if err := handler(ctx, evt); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return cc.Stop, nil
}

// Listen is a plain core subscription: every instance sees every message
// published while it is connected, nothing is replayed.
func (s *Subscriber) Listen(ctx context.Context, subject string, handler EventHandler) (func(), error) {
	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		evt, err := decode(msg.Subject, msg.Header, msg.Data)
		if err != nil {
			log.Printf("Error unmarshalling event data: %v", err)
			return
		}
		if err := handler(ctx, evt); err != nil {
			log.Printf("Listener failed for event %s: %v", msg.Subject, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
