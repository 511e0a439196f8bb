package service

import (
	"context"
	"fmt"
	"time"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/mailer"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/mapper"
	"regdesk-be/pkg/admin/notify"
	"regdesk-be/pkg/events"
	pktNats "regdesk-be/pkg/nats"
)

// Websocket message types pushed to dashboards
const (
	MessageExpiryAlerts = "expiry_alerts"
	MessageActivity     = "activity"
)

const activityDurable = "regdesk-activity-relay"

// NotificationDelivery pushes real-time updates to connected admins.
// Implemented by the websocket hub.
type NotificationDelivery interface {
	Broadcast(msgType string, payload interface{})
}

// LocalDelivery reaches only the sockets held by this instance
type LocalDelivery interface {
	BroadcastLocal(msgType string, payload interface{})
}

// AlertView is the read side of the expiry alert aggregator
type AlertView interface {
	Summary() notify.Summary
	Acknowledge()
	Open() []notify.Alert
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) (func(), error)
}

type INotificationService interface {
	Summary(ctx context.Context) *dto.NotificationSummary
	Acknowledge(ctx context.Context, actor string) *dto.NotificationSummary
	Open(ctx context.Context) []dto.ExpiryAlert
}

type NotificationService struct {
	alerts AlertView
	logger logger.ILogger
}

func NewNotificationService(alerts AlertView, log logger.ILogger) *NotificationService {
	return &NotificationService{alerts: alerts, logger: log}
}

func (s *NotificationService) Summary(ctx context.Context) *dto.NotificationSummary {
	return mapper.SummaryToResponse(s.alerts.Summary())
}

// Acknowledge silences auto-surfacing for the lifetime of the process.
func (s *NotificationService) Acknowledge(ctx context.Context, actor string) *dto.NotificationSummary {
	s.alerts.Acknowledge()
	s.logger.Info("ALERTS", "Expiry alerts acknowledged", map[string]interface{}{"actor": actor})
	return s.Summary(ctx)
}

// Open is the manual view and ignores acknowledgement.
func (s *NotificationService) Open(ctx context.Context) []dto.ExpiryAlert {
	return mapper.AlertsToResponse(s.alerts.Open())
}

// HubSurfacer pushes surfaced alerts to the dashboards connected here.
// Every instance runs its own aggregator, so alerts never cross the redis fan-out.
func HubSurfacer(delivery LocalDelivery) notify.Surfacer {
	return notify.SurfacerFunc(func(ctx context.Context, alerts []notify.Alert) {
		delivery.BroadcastLocal(MessageExpiryAlerts, mapper.AlertsToResponse(alerts))
	})
}

// EventSurfacer announces a surfacing on the bus, counts only
func EventSurfacer(publisher adminEvents.Publisher) notify.Surfacer {
	return notify.SurfacerFunc(func(ctx context.Context, alerts []notify.Alert) {
		expired, soon := countBuckets(alerts)
		publisher.PublishExpiryAlertsSurfaced(ctx, expired, soon)
	})
}

// EmailSurfacer mails the digest. It is a no-op without a recipient.
// The gate lets one instance claim a given alert set so the desk gets one mail.
func EmailSurfacer(emails mailer.IEmailService, recipient string, gate DigestGate, loc *time.Location, log logger.ILogger) notify.Surfacer {
	if loc == nil {
		loc = time.UTC
	}
	return notify.SurfacerFunc(func(ctx context.Context, alerts []notify.Alert) {
		if emails == nil || recipient == "" || len(alerts) == 0 {
			return
		}
		if gate != nil && !gate.Claim(ctx, alerts) {
			log.Debug("ALERTS", "Expiry digest already claimed by another instance", nil)
			return
		}
		var expired, soon []mailer.DigestLine
		for _, a := range alerts {
			line := mailer.DigestLine{
				FullName:      a.FullName,
				MobileNumber:  a.MobileNumber,
				CategoryName:  a.CategoryName,
				ExpiryDate:    a.ExpiryDate.In(loc).Format("02/01/2006"),
				DaysRemaining: a.DaysRemaining,
			}
			if a.Bucket == expiry.BucketExpired {
				expired = append(expired, line)
			} else {
				soon = append(soon, line)
			}
		}
		// SMTP can be slow, keep the aggregator timer goroutine free
		go func() {
			if err := emails.SendExpiryDigest(recipient, expired, soon); err != nil {
				log.Error("ALERTS", "Failed to send expiry digest", map[string]interface{}{"error": err})
				return
			}
			log.Info("ALERTS", "Expiry digest sent", map[string]interface{}{
				"recipient":     recipient,
				"expired":       len(expired),
				"expiring_soon": len(soon),
			})
		}()
	})
}

func countBuckets(alerts []notify.Alert) (expired, soon int) {
	for _, a := range alerts {
		if a.Bucket == expiry.BucketExpired {
			expired++
		} else {
			soon++
		}
	}
	return expired, soon
}

// ActivityRelay forwards every domain event from the bus to the dashboards.
// The durable consumer is shared by all instances; the hub fans out over redis.
type ActivityRelay struct {
	subscriber EventSubscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewActivityRelay(sub EventSubscriber, delivery NotificationDelivery, log logger.ILogger) *ActivityRelay {
	return &ActivityRelay{subscriber: sub, delivery: delivery, logger: log}
}

func (r *ActivityRelay) Start(ctx context.Context) (func(), error) {
	stop, err := r.subscriber.Subscribe(ctx, events.SubjectPrefix+">", activityDurable, r.handleEvent)
	if err != nil {
		r.logger.Error("NotificationService", "Failed to start activity relay", map[string]interface{}{"error": err})
		return nil, err
	}
	r.logger.Info("NotificationService", "Activity relay started, listening to events.>", nil)
	return stop, nil
}

func (r *ActivityRelay) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := events.TypeFromSubject(event.EventType())
	r.logger.Debug("NotificationService", fmt.Sprintf("Relaying event: %s", typeCode), nil)

	r.delivery.Broadcast(MessageActivity, dto.ActivityMessage{
		Type:       typeCode,
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	return nil
}
