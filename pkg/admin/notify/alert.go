package notify

import (
	"context"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/pkg/admin/expiry"

	"github.com/google/uuid"
)

// Alert is one registration needing attention because of its expiry date
type Alert struct {
	RegistrationId uuid.UUID
	CustomerId     string
	FullName       string
	MobileNumber   string
	CategoryName   string
	ExpiryDate     time.Time
	DaysRemaining  int
	Bucket         expiry.Bucket
}

type Summary struct {
	ExpiredCount      int
	ExpiringSoonCount int
	// Alerts lists expired entries first, then expiring-soon, each most urgent first
	Alerts       []Alert
	Acknowledged bool
	RefreshedAt  time.Time
}

// Surfacer receives the combined alert list when it surfaces on its own
type Surfacer interface {
	Surface(ctx context.Context, alerts []Alert)
}

type SurfacerFunc func(ctx context.Context, alerts []Alert)

func (f SurfacerFunc) Surface(ctx context.Context, alerts []Alert) {
	f(ctx, alerts)
}

// Surfacers delivers to each sink in order
type Surfacers []Surfacer

func (s Surfacers) Surface(ctx context.Context, alerts []Alert) {
	for _, sink := range s {
		if sink != nil {
			sink.Surface(ctx, alerts)
		}
	}
}

// Source yields the registrations the aggregator classifies
type Source interface {
	PendingRegistrations(ctx context.Context) ([]*entity.Registration, error)
}

// StoreSource reads pending registrations, with category names, from the store
type StoreSource struct {
	factory unitofwork.RepositoryFactory
}

func NewStoreSource(factory unitofwork.RepositoryFactory) *StoreSource {
	return &StoreSource{factory: factory}
}

func (s *StoreSource) PendingRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	uow := s.factory.NewUnitOfWork(ctx)
	return uow.RegistrationRepository().FindAllWithDetails(ctx,
		specification.ByStatus{Status: string(entity.RegistrationStatusPending)},
	)
}
