package service

import (
	"context"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/pkg/admin/category"
	"regdesk-be/pkg/admin/mapper"

	"github.com/google/uuid"
)

type ICategoryService interface {
	// ListCategories returns only active categories unless includeInactive is set
	ListCategories(ctx context.Context, includeInactive bool) ([]*dto.CategoryResponse, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	DeactivateCategory(ctx context.Context, id uuid.UUID) error
	ListPanchayaths(ctx context.Context, district string) ([]*dto.PanchayathResponse, error)
}

type categoryService struct {
	uowFactory unitofwork.RepositoryFactory
	directory  *category.Directory
}

func NewCategoryService(uowFactory unitofwork.RepositoryFactory, directory *category.Directory) ICategoryService {
	return &categoryService{
		uowFactory: uowFactory,
		directory:  directory,
	}
}

func toInput(req dto.CategoryRequest) category.Input {
	return category.Input{
		NameEnglish:   req.NameEnglish,
		NameMalayalam: req.NameMalayalam,
		ExpiryDays:    req.ExpiryDays,
		IsActive:      req.IsActive,
	}
}

func (s *categoryService) ListCategories(ctx context.Context, includeInactive bool) ([]*dto.CategoryResponse, error) {
	list := s.directory.ListActive
	if includeInactive {
		list = s.directory.ListAll
	}
	cats, err := list(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.CategoriesToResponse(cats), nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	c, err := s.directory.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, category.ErrCategoryNotFound
	}
	return mapper.CategoryToResponse(c), nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.directory.Create(ctx, toInput(req))
	if err != nil {
		return nil, err
	}
	return mapper.CategoryToResponse(c), nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.directory.Update(ctx, id, toInput(req))
	if err != nil {
		return nil, err
	}
	return mapper.CategoryToResponse(c), nil
}

func (s *categoryService) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	return s.directory.Deactivate(ctx, id)
}

func (s *categoryService) ListPanchayaths(ctx context.Context, district string) ([]*dto.PanchayathResponse, error) {
	specs := []specification.Specification{specification.ActiveOnly{}}
	if district != "" {
		specs = append(specs, specification.ByDistrict{District: district})
	}
	specs = append(specs, specification.OrderBy{Field: "name"})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ps, err := uow.PanchayathRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return mapper.PanchayathsToResponse(ps), nil
}
