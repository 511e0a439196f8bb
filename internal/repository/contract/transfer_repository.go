package contract

import (
	"context"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/repository/specification"
)

type TransferRequestRepository interface {
	// Create reports a second pending request for a registration as ErrDuplicate
	Create(ctx context.Context, request *entity.CategoryTransferRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CategoryTransferRequest, error)
	FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.CategoryTransferRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ResolvePending writes the resolution only while the request is pending.
	// No match yields ErrStaleWrite.
	ResolvePending(ctx context.Context, request *entity.CategoryTransferRequest) error
}
