package implementation

import (
	"context"
	"errors"
	"fmt"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/mapper"
	"regdesk-be/internal/model"
	"regdesk-be/internal/repository/contract"
	"regdesk-be/internal/repository/specification"

	"gorm.io/gorm"
)

type transferRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TransferMapper
}

func NewTransferRequestRepository(db *gorm.DB) contract.TransferRequestRepository {
	return &transferRequestRepositoryImpl{db: db, mapper: mapper.NewTransferMapper()}
}

func (r *transferRequestRepositoryImpl) Create(ctx context.Context, request *entity.CategoryTransferRequest) error {
	row := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", contract.ErrDuplicate, err)
		}
		return err
	}
	request.Id = row.Id
	request.CreatedAt = row.CreatedAt
	request.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *transferRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CategoryTransferRequest, error) {
	var row model.CategoryTransferRequest
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

// FindAllWithDetails returns requests with preloaded from/to categories
func (r *transferRequestRepositoryImpl) FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.CategoryTransferRequest, error) {
	var rows []*model.CategoryTransferRequest
	query := r.db.WithContext(ctx).
		Preload("FromCategory").
		Preload("ToCategory")
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]*entity.CategoryTransferRequest, 0, len(rows))
	for _, row := range rows {
		res = append(res, r.mapper.ToEntity(row))
	}
	return res, nil
}

func (r *transferRequestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.CategoryTransferRequest{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *transferRequestRepositoryImpl) ResolvePending(ctx context.Context, request *entity.CategoryTransferRequest) error {
	result := r.db.WithContext(ctx).Model(&model.CategoryTransferRequest{}).
		Where("id = ? AND status = ?", request.Id, string(entity.TransferStatusPending)).
		Updates(map[string]interface{}{
			"status":      string(request.Status),
			"resolved_by": request.ResolvedBy,
			"resolved_at": request.ResolvedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrStaleWrite
	}
	return nil
}
