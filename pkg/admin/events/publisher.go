package events

import (
	"context"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	pkgEvents "regdesk-be/pkg/events"
	pktNats "regdesk-be/pkg/nats"
)

// Publisher abstracts event publishing for admin operations
type Publisher interface {
	PublishRegistrationChanged(ctx context.Context, eventType string, reg *entity.Registration, actor string)
	PublishTransferRequested(ctx context.Context, req *entity.CategoryTransferRequest)
	PublishTransferResolved(ctx context.Context, req *entity.CategoryTransferRequest)
	PublishExpiryAlertsSurfaced(ctx context.Context, expiredCount, expiringSoonCount int)
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher creates a new NATS-based event publisher. A nil publisher
// turns every method into a no-op, which is how the service runs without NATS.
func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	data["occurred_at"] = now.Format(time.RFC3339Nano)
	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("ADMIN", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishRegistrationChanged emits one of the REGISTRATION_* lifecycle events
func (p *NatsPublisher) PublishRegistrationChanged(ctx context.Context, eventType string, reg *entity.Registration, actor string) {
	data := map[string]interface{}{
		"registration_id": reg.Id.String(),
		"customer_id":     reg.CustomerId,
		"full_name":       reg.FullName,
		"status":          string(reg.Status),
		"actor":           actor,
		"entity_type":     "registration",
		"entity_id":       reg.Id.String(),
	}
	if reg.ExpiryDate != nil {
		data["expiry_date"] = reg.ExpiryDate.Format(time.RFC3339)
	}
	p.publish(ctx, eventType, data)
}

// PublishTransferRequested emits CATEGORY_TRANSFER_REQUESTED
func (p *NatsPublisher) PublishTransferRequested(ctx context.Context, req *entity.CategoryTransferRequest) {
	p.publish(ctx, pkgEvents.CategoryTransferRequested, map[string]interface{}{
		"transfer_id":      req.Id.String(),
		"registration_id":  req.RegistrationId.String(),
		"customer_id":      req.CustomerId,
		"full_name":        req.FullName,
		"from_category_id": req.FromCategoryId.String(),
		"to_category_id":   req.ToCategoryId.String(),
		"entity_type":      "transfer",
		"entity_id":        req.Id.String(),
	})
}

// PublishTransferResolved emits CATEGORY_TRANSFER_RESOLVED
func (p *NatsPublisher) PublishTransferResolved(ctx context.Context, req *entity.CategoryTransferRequest) {
	data := map[string]interface{}{
		"transfer_id":     req.Id.String(),
		"registration_id": req.RegistrationId.String(),
		"status":          string(req.Status),
		"to_category_id":  req.ToCategoryId.String(),
		"entity_type":     "transfer",
		"entity_id":       req.Id.String(),
	}
	if req.ResolvedBy != nil {
		data["actor"] = *req.ResolvedBy
	}
	p.publish(ctx, pkgEvents.CategoryTransferResolved, data)
}

// PublishExpiryAlertsSurfaced emits EXPIRY_ALERTS_SURFACED with bucket counts only
func (p *NatsPublisher) PublishExpiryAlertsSurfaced(ctx context.Context, expiredCount, expiringSoonCount int) {
	p.publish(ctx, pkgEvents.ExpiryAlertsSurfaced, map[string]interface{}{
		"expired_count":       expiredCount,
		"expiring_soon_count": expiringSoonCount,
	})
}
