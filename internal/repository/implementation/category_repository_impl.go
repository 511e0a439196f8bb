package implementation

import (
	"context"
	"errors"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/mapper"
	"regdesk-be/internal/model"
	"regdesk-be/internal/repository/contract"
	"regdesk-be/internal/repository/specification"

	"gorm.io/gorm"
)

type categoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CategoryMapper
}

func NewCategoryRepository(db *gorm.DB) contract.CategoryRepository {
	return &categoryRepositoryImpl{db: db, mapper: mapper.NewCategoryMapper()}
}

func (r *categoryRepositoryImpl) Create(ctx context.Context, category *entity.Category) error {
	row := r.mapper.ToModel(category)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	category.Id = row.Id
	category.CreatedAt = row.CreatedAt
	category.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *categoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error) {
	var row model.Category
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

func (r *categoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	var rows []*model.Category
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]*entity.Category, 0, len(rows))
	for _, row := range rows {
		res = append(res, r.mapper.ToEntity(row))
	}
	return res, nil
}

func (r *categoryRepositoryImpl) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", category.Id).
		Updates(map[string]interface{}{
			"name_english":   category.NameEnglish,
			"name_malayalam": category.NameMalayalam,
			"expiry_days":    category.ExpiryDays,
			"is_active":      category.IsActive,
		}).Error
}

type panchayathRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CategoryMapper
}

func NewPanchayathRepository(db *gorm.DB) contract.PanchayathRepository {
	return &panchayathRepositoryImpl{db: db, mapper: mapper.NewCategoryMapper()}
}

func (r *panchayathRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Panchayath, error) {
	var rows []*model.Panchayath
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]*entity.Panchayath, 0, len(rows))
	for _, row := range rows {
		res = append(res, r.mapper.PanchayathToEntity(row))
	}
	return res, nil
}
