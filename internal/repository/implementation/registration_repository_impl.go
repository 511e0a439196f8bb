package implementation

import (
	"context"
	"errors"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/mapper"
	"regdesk-be/internal/model"
	"regdesk-be/internal/repository/contract"
	"regdesk-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registrationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RegistrationMapper
}

func NewRegistrationRepository(db *gorm.DB) contract.RegistrationRepository {
	return &registrationRepositoryImpl{db: db, mapper: mapper.NewRegistrationMapper()}
}

func (r *registrationRepositoryImpl) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category").
		Preload("PreferenceCategory").
		Preload("Panchayath")
}

func (r *registrationRepositoryImpl) findOne(query *gorm.DB, specs []specification.Specification) (*entity.Registration, error) {
	var row model.Registration
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

func (r *registrationRepositoryImpl) findAll(query *gorm.DB, specs []specification.Specification) ([]*entity.Registration, error) {
	var rows []*model.Registration
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *registrationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Registration, error) {
	return r.findOne(r.db.WithContext(ctx), specs)
}

func (r *registrationRepositoryImpl) FindOneWithDetails(ctx context.Context, specs ...specification.Specification) (*entity.Registration, error) {
	return r.findOne(r.withDetails(r.db.WithContext(ctx)), specs)
}

func (r *registrationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Registration, error) {
	return r.findAll(r.db.WithContext(ctx), specs)
}

func (r *registrationRepositoryImpl) FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.Registration, error) {
	return r.findAll(r.withDetails(r.db.WithContext(ctx)), specs)
}

func (r *registrationRepositoryImpl) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// UpdateFields writes a partial column set guarded by the status the caller
// read, so two admins racing on one record cannot both succeed.
func (r *registrationRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fromStatuses []string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrStaleWrite
	}
	return nil
}

func (r *registrationRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Registration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepositoryImpl) CreateEvent(ctx context.Context, event *entity.RegistrationEvent) error {
	row, err := r.mapper.EventToModel(event)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *registrationRepositoryImpl) FindEvents(ctx context.Context, registrationId uuid.UUID) ([]*entity.RegistrationEvent, error) {
	var rows []*model.RegistrationEvent
	err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationId).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	events := make([]*entity.RegistrationEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, r.mapper.EventToEntity(row))
	}
	return events, nil
}
