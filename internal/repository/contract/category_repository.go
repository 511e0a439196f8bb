package contract

import (
	"context"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/repository/specification"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
}

type PanchayathRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Panchayath, error)
}
