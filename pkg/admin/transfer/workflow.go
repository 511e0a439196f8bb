package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/internal/repository/contract"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/admin/lifecycle"

	"github.com/google/uuid"
)

var (
	ErrRegistrationNotFound    = lifecycle.ErrRegistrationNotFound
	ErrTransferNotFound        = errors.New("transfer request not found")
	ErrTransferAlreadyResolved = errors.New("transfer request already resolved")
	ErrSameCategory            = errors.New("target category equals current category")
	ErrCategoryUnavailable     = errors.New("target category is unknown or inactive")
	ErrDuplicateTransfer       = errors.New("a pending transfer request already exists for this registration")
)

// CategoryLookup resolves categories, active or not
type CategoryLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Category, error)
}

// Workflow runs the category transfer queue. Resolving a request only
// changes the request row; moving the registration is handled elsewhere.
type Workflow struct {
	categories CategoryLookup
	publisher  adminEvents.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	now        func() time.Time
}

func NewWorkflow(categories CategoryLookup, publisher adminEvents.Publisher, metrics *metrics.Metrics, logger logger.ILogger) *Workflow {
	return &Workflow{
		categories: categories,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit queues a pending request carrying a snapshot of the registrant's
// contact fields as they are right now.
func (w *Workflow) Submit(ctx context.Context, uow unitofwork.UnitOfWork, registrationID, toCategoryID uuid.UUID, reason string) (*entity.CategoryTransferRequest, error) {
	reg, err := uow.RegistrationRepository().FindOne(ctx, specification.ByID{ID: registrationID})
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	if reg.CategoryId == toCategoryID {
		return nil, ErrSameCategory
	}

	target, err := w.categories.Get(ctx, toCategoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if target == nil || !target.IsActive {
		return nil, ErrCategoryUnavailable
	}

	existing, err := uow.TransferRequestRepository().FindOne(ctx,
		specification.ByRegistration{RegistrationID: registrationID},
		specification.ByStatus{Status: string(entity.TransferStatusPending)},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateTransfer
	}

	req := &entity.CategoryTransferRequest{
		Id:             uuid.New(),
		RegistrationId: reg.Id,
		FromCategoryId: reg.CategoryId,
		ToCategoryId:   toCategoryID,
		MobileNumber:   reg.MobileNumber,
		CustomerId:     reg.CustomerId,
		FullName:       reg.FullName,
		Reason:         strings.TrimSpace(reason),
		Status:         entity.TransferStatusPending,
	}
	if err := uow.TransferRequestRepository().Create(ctx, req); err != nil {
		// Lost a race with a concurrent submit for the same registration
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, ErrDuplicateTransfer
		}
		return nil, fmt.Errorf("create transfer request: %w", err)
	}

	w.metrics.IncrementTransfer("submitted")
	w.publisher.PublishTransferRequested(ctx, req)
	w.logger.Info("TRANSFER", "Category transfer requested", map[string]interface{}{
		"transfer_id":     req.Id.String(),
		"registration_id": reg.Id.String(),
		"to_category_id":  toCategoryID.String(),
	})
	return req, nil
}

// List retrieves paginated transfer requests with optional status filter
func (w *Workflow) List(ctx context.Context, uow unitofwork.UnitOfWork, status string, page, limit int) ([]*entity.CategoryTransferRequest, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var specs []specification.Specification
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})

	return uow.TransferRequestRepository().FindAllWithDetails(ctx, specs...)
}

// Resolve moves a pending request to approved or rejected
func (w *Workflow) Resolve(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, approve bool, actor string) (*entity.CategoryTransferRequest, error) {
	if actor == "" {
		return nil, lifecycle.ErrActorRequired
	}

	req, err := uow.TransferRequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrTransferNotFound
	}
	if req.Status != entity.TransferStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrTransferAlreadyResolved, req.Status)
	}

	now := w.now()
	resolvedBy := actor
	req.Status = entity.TransferStatusRejected
	if approve {
		req.Status = entity.TransferStatusApproved
	}
	req.ResolvedBy = &resolvedBy
	req.ResolvedAt = &now

	if err := uow.TransferRequestRepository().ResolvePending(ctx, req); err != nil {
		if errors.Is(err, contract.ErrStaleWrite) {
			return nil, fmt.Errorf("%w: resolved concurrently", ErrTransferAlreadyResolved)
		}
		return nil, fmt.Errorf("update transfer request: %w", err)
	}

	w.metrics.IncrementTransfer(string(req.Status))
	w.publisher.PublishTransferResolved(ctx, req)
	w.logger.Info("TRANSFER", "Category transfer resolved", map[string]interface{}{
		"transfer_id": req.Id.String(),
		"status":      string(req.Status),
		"actor":       actor,
	})
	return req, nil
}
