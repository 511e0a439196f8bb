package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/internal/repository/contract"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/changefeed"
	pkgEvents "regdesk-be/pkg/events"

	"github.com/google/uuid"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")
	ErrActorRequired        = errors.New("acting admin identity is required")
)

// ExpiryLookup resolves the default validity period of a category
type ExpiryLookup interface {
	ExpiryDaysFor(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// Manager enforces registration status transitions:
//
//	pending -> approved | rejected
//	approved | rejected -> pending (restore)
//	any -> gone (delete, confirmed)
//
// Writes go to the store first; the returned registration and every side
// effect reflect only what the store accepted.
type Manager struct {
	expiry    ExpiryLookup
	feed      changefeed.Feed
	publisher adminEvents.Publisher
	metrics   *metrics.Metrics
	logger    logger.ILogger
	now       func() time.Time
}

func NewManager(
	expiry ExpiryLookup,
	feed changefeed.Feed,
	publisher adminEvents.Publisher,
	metrics *metrics.Metrics,
	logger logger.ILogger,
) *Manager {
	return &Manager{
		expiry:    expiry,
		feed:      feed,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

type transition struct {
	action    entity.RegistrationAction
	eventType string
	from      []entity.RegistrationStatus
	to        entity.RegistrationStatus
}

var (
	approveTransition = transition{
		action:    entity.RegistrationActionApproved,
		eventType: pkgEvents.RegistrationApproved,
		// re-approval is accepted and leaves expiry alone
		from: []entity.RegistrationStatus{entity.RegistrationStatusPending, entity.RegistrationStatusApproved},
		to:   entity.RegistrationStatusApproved,
	}
	rejectTransition = transition{
		action:    entity.RegistrationActionRejected,
		eventType: pkgEvents.RegistrationRejected,
		from:      []entity.RegistrationStatus{entity.RegistrationStatusPending},
		to:        entity.RegistrationStatusRejected,
	}
	restoreTransition = transition{
		action:    entity.RegistrationActionRestored,
		eventType: pkgEvents.RegistrationRestored,
		from:      []entity.RegistrationStatus{entity.RegistrationStatusApproved, entity.RegistrationStatusRejected},
		to:        entity.RegistrationStatusPending,
	}
)

func (t transition) allowed(from entity.RegistrationStatus) bool {
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}

// Approve stamps approval and backfills expiry_date from the category when
// none is set. An existing expiry_date is never overwritten.
func (m *Manager) Approve(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, actor string) (*entity.Registration, error) {
	return m.apply(ctx, uow, id, actor, approveTransition, func(reg *entity.Registration, now time.Time) (map[string]interface{}, map[string]interface{}, error) {
		approvedBy := actor
		fields := map[string]interface{}{
			"status":        string(entity.RegistrationStatusApproved),
			"approved_date": &now,
			"approved_by":   &approvedBy,
		}
		details := map[string]interface{}{}

		if reg.ExpiryDate == nil {
			days, err := m.expiry.ExpiryDaysFor(ctx, reg.CategoryId)
			if err != nil {
				return nil, nil, err
			}
			// Whole 24h days; AddDate would shift by an hour across a DST change
			expiry := reg.CreatedAt.Add(time.Duration(days) * 24 * time.Hour)
			fields["expiry_date"] = &expiry
			details["expiry_backfilled"] = true
			details["expiry_days"] = days
		}
		return fields, details, nil
	})
}

// Reject leaves expiry_date untouched
func (m *Manager) Reject(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, actor string) (*entity.Registration, error) {
	return m.apply(ctx, uow, id, actor, rejectTransition, func(reg *entity.Registration, now time.Time) (map[string]interface{}, map[string]interface{}, error) {
		return map[string]interface{}{
			"status": string(entity.RegistrationStatusRejected),
		}, nil, nil
	})
}

// Restore returns a decided registration to pending and clears the approval
// stamp. expiry_date is kept as is, even if it was computed at approval.
func (m *Manager) Restore(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, actor string) (*entity.Registration, error) {
	return m.apply(ctx, uow, id, actor, restoreTransition, func(reg *entity.Registration, now time.Time) (map[string]interface{}, map[string]interface{}, error) {
		return map[string]interface{}{
			"status":        string(entity.RegistrationStatusPending),
			"approved_date": (*time.Time)(nil),
			"approved_by":   (*string)(nil),
		}, nil, nil
	})
}

type mutation func(reg *entity.Registration, now time.Time) (fields map[string]interface{}, details map[string]interface{}, err error)

func (m *Manager) apply(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, actor string, t transition, mutate mutation) (reg *entity.Registration, err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveLifecycle(string(t.action), start, err) }()

	if actor == "" {
		return nil, ErrActorRequired
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.RegistrationRepository()
	current, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	if current == nil {
		return nil, ErrRegistrationNotFound
	}
	if !t.allowed(current.Status) {
		return nil, fmt.Errorf("%w: cannot %s a %s registration", ErrInvalidTransition, verb(t.action), current.Status)
	}

	now := m.now()
	fields, details, err := mutate(current, now)
	if err != nil {
		return nil, err
	}

	if err := repo.UpdateFields(ctx, id, []string{string(current.Status)}, fields); err != nil {
		if errors.Is(err, contract.ErrStaleWrite) {
			return nil, fmt.Errorf("%w: registration changed while it was being updated", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update registration: %w", err)
	}
	if err := repo.CreateEvent(ctx, &entity.RegistrationEvent{
		Id:             uuid.New(),
		RegistrationId: id,
		Action:         t.action,
		Actor:          actor,
		FromStatus:     current.Status,
		ToStatus:       t.to,
		Details:        details,
		CreatedAt:      now,
	}); err != nil {
		return nil, fmt.Errorf("record %s event: %w", t.action, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	from := current.Status
	applyFields(current, fields)
	m.afterMutation(ctx, t.eventType, current, actor, "Registration "+string(t.action), map[string]interface{}{
		"registration_id": id.String(),
		"action":          string(t.action),
		"from":            string(from),
		"to":              string(t.to),
		"actor":           actor,
	})
	return current, nil
}

// Delete permanently removes a registration. Its audit history is kept.
func (m *Manager) Delete(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, actor string, confirm bool) (err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveLifecycle(string(entity.RegistrationActionDeleted), start, err) }()

	if !confirm {
		return ErrConfirmationRequired
	}
	if actor == "" {
		return ErrActorRequired
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.RegistrationRepository()
	current, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return fmt.Errorf("load registration: %w", err)
	}
	if current == nil {
		return ErrRegistrationNotFound
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if err := repo.CreateEvent(ctx, &entity.RegistrationEvent{
		Id:             uuid.New(),
		RegistrationId: id,
		Action:         entity.RegistrationActionDeleted,
		Actor:          actor,
		FromStatus:     current.Status,
		Details: map[string]interface{}{
			"customer_id": current.CustomerId,
			"full_name":   current.FullName,
		},
		CreatedAt: m.now(),
	}); err != nil {
		return fmt.Errorf("record delete event: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	m.afterMutation(ctx, pkgEvents.RegistrationDeleted, current, actor, "Registration deleted", map[string]interface{}{
		"registration_id": id.String(),
		"customer_id":     current.CustomerId,
		"actor":           actor,
	})
	return nil
}

func (m *Manager) afterMutation(ctx context.Context, eventType string, reg *entity.Registration, actor, message string, logDetails map[string]interface{}) {
	m.feed.Notify(ctx)
	m.publisher.PublishRegistrationChanged(ctx, eventType, reg, actor)
	m.logger.Info("LIFECYCLE", message, logDetails)
}

func applyFields(reg *entity.Registration, fields map[string]interface{}) {
	if v, ok := fields["status"].(string); ok {
		reg.Status = entity.RegistrationStatus(v)
	}
	if v, ok := fields["approved_date"]; ok {
		reg.ApprovedDate, _ = v.(*time.Time)
	}
	if v, ok := fields["approved_by"]; ok {
		reg.ApprovedBy, _ = v.(*string)
	}
	if v, ok := fields["expiry_date"].(*time.Time); ok {
		reg.ExpiryDate = v
	}
}

func verb(action entity.RegistrationAction) string {
	switch action {
	case entity.RegistrationActionApproved:
		return "approve"
	case entity.RegistrationActionRejected:
		return "reject"
	case entity.RegistrationActionRestored:
		return "restore"
	case entity.RegistrationActionDeleted:
		return "delete"
	}
	return string(action)
}
