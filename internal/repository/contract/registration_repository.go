package contract

import (
	"context"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RegistrationRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Registration, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Registration, error)
	// FindAllWithDetails preloads category, preference category and panchayath
	FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.Registration, error)
	FindOneWithDetails(ctx context.Context, specs ...specification.Specification) (*entity.Registration, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	// UpdateFields writes only while the row is still in one of fromStatuses.
	// No match yields ErrStaleWrite.
	UpdateFields(ctx context.Context, id uuid.UUID, fromStatuses []string, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateEvent(ctx context.Context, event *entity.RegistrationEvent) error
	FindEvents(ctx context.Context, registrationId uuid.UUID) ([]*entity.RegistrationEvent, error)
}
