package service

import (
	"context"
	"errors"
	"fmt"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/entity"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/pkg/admin/category"
	"regdesk-be/pkg/admin/mapper"
	"regdesk-be/pkg/admin/transfer"

	"github.com/google/uuid"
)

var ErrInvalidStatusFilter = errors.New("invalid status filter")

type ITransferService interface {
	List(ctx context.Context, status string, page, limit int) ([]*dto.TransferResponse, error)
	Submit(ctx context.Context, req dto.TransferSubmitRequest) (*dto.TransferResponse, error)
	Approve(ctx context.Context, id uuid.UUID, actor string) (*dto.TransferResponse, error)
	Reject(ctx context.Context, id uuid.UUID, actor string) (*dto.TransferResponse, error)
}

type transferService struct {
	uowFactory unitofwork.RepositoryFactory
	workflow   *transfer.Workflow
	directory  *category.Directory
}

func NewTransferService(uowFactory unitofwork.RepositoryFactory, workflow *transfer.Workflow, directory *category.Directory) ITransferService {
	return &transferService{
		uowFactory: uowFactory,
		workflow:   workflow,
		directory:  directory,
	}
}

// withCategories fills the category refs for rows that were not preloaded
func (s *transferService) withCategories(ctx context.Context, req *entity.CategoryTransferRequest) *dto.TransferResponse {
	if req.FromCategory == nil {
		req.FromCategory, _ = s.directory.Get(ctx, req.FromCategoryId)
	}
	if req.ToCategory == nil {
		req.ToCategory, _ = s.directory.Get(ctx, req.ToCategoryId)
	}
	return mapper.TransferToResponse(req)
}

func (s *transferService) List(ctx context.Context, status string, page, limit int) ([]*dto.TransferResponse, error) {
	if status != "" && status != string(entity.TransferStatusPending) &&
		status != string(entity.TransferStatusApproved) && status != string(entity.TransferStatusRejected) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, status)
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	reqs, err := s.workflow.List(ctx, uow, status, page, limit)
	if err != nil {
		return nil, err
	}
	return mapper.TransfersToResponse(reqs), nil
}

func (s *transferService) Submit(ctx context.Context, req dto.TransferSubmitRequest) (*dto.TransferResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	created, err := s.workflow.Submit(ctx, uow, req.RegistrationId, req.ToCategoryId, req.Reason)
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, created), nil
}

func (s *transferService) resolve(ctx context.Context, id uuid.UUID, approve bool, actor string) (*dto.TransferResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	resolved, err := s.workflow.Resolve(ctx, uow, id, approve, actor)
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, resolved), nil
}

func (s *transferService) Approve(ctx context.Context, id uuid.UUID, actor string) (*dto.TransferResponse, error) {
	return s.resolve(ctx, id, true, actor)
}

func (s *transferService) Reject(ctx context.Context, id uuid.UUID, actor string) (*dto.TransferResponse, error) {
	return s.resolve(ctx, id, false, actor)
}
