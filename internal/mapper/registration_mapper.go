package mapper

import (
	"encoding/json"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/model"

	"gorm.io/datatypes"
)

type RegistrationMapper struct {
	categories *CategoryMapper
}

func NewRegistrationMapper() *RegistrationMapper {
	return &RegistrationMapper{categories: NewCategoryMapper()}
}

func (m *RegistrationMapper) ToEntity(r *model.Registration) *entity.Registration {
	if r == nil {
		return nil
	}
	return &entity.Registration{
		Id:                   r.Id,
		CustomerId:           r.CustomerId,
		FullName:             r.FullName,
		MobileNumber:         r.MobileNumber,
		Address:              r.Address,
		Ward:                 r.Ward,
		PanchayathId:         r.PanchayathId,
		CategoryId:           r.CategoryId,
		PreferenceCategoryId: r.PreferenceCategoryId,
		Status:               entity.RegistrationStatus(r.Status),
		Fee:                  r.Fee,
		ApprovedDate:         r.ApprovedDate,
		ApprovedBy:           r.ApprovedBy,
		ExpiryDate:           r.ExpiryDate,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		Category:             m.categories.ToEntity(r.Category),
		PreferenceCategory:   m.categories.ToEntity(r.PreferenceCategory),
		Panchayath:           m.categories.PanchayathToEntity(r.Panchayath),
	}
}

func (m *RegistrationMapper) ToEntities(rows []*model.Registration) []*entity.Registration {
	res := make([]*entity.Registration, 0, len(rows))
	for _, r := range rows {
		res = append(res, m.ToEntity(r))
	}
	return res
}

// ToModel drops the joined relations; they are never written through a registration.
func (m *RegistrationMapper) ToModel(r *entity.Registration) *model.Registration {
	if r == nil {
		return nil
	}
	return &model.Registration{
		Id:                   r.Id,
		CustomerId:           r.CustomerId,
		FullName:             r.FullName,
		MobileNumber:         r.MobileNumber,
		Address:              r.Address,
		Ward:                 r.Ward,
		PanchayathId:         r.PanchayathId,
		CategoryId:           r.CategoryId,
		PreferenceCategoryId: r.PreferenceCategoryId,
		Status:               string(r.Status),
		Fee:                  r.Fee,
		ApprovedDate:         r.ApprovedDate,
		ApprovedBy:           r.ApprovedBy,
		ExpiryDate:           r.ExpiryDate,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func (m *RegistrationMapper) EventToModel(e *entity.RegistrationEvent) (*model.RegistrationEvent, error) {
	var details datatypes.JSON
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		details = datatypes.JSON(raw)
	}
	return &model.RegistrationEvent{
		Id:             e.Id,
		RegistrationId: e.RegistrationId,
		Action:         string(e.Action),
		Actor:          e.Actor,
		FromStatus:     string(e.FromStatus),
		ToStatus:       string(e.ToStatus),
		Details:        details,
		CreatedAt:      e.CreatedAt,
	}, nil
}

func (m *RegistrationMapper) EventToEntity(e *model.RegistrationEvent) *entity.RegistrationEvent {
	if e == nil {
		return nil
	}
	var details map[string]interface{}
	if len(e.Details) > 0 {
		// Malformed history rows are still returned, just without details
		_ = json.Unmarshal(e.Details, &details)
	}
	return &entity.RegistrationEvent{
		Id:             e.Id,
		RegistrationId: e.RegistrationId,
		Action:         entity.RegistrationAction(e.Action),
		Actor:          e.Actor,
		FromStatus:     entity.RegistrationStatus(e.FromStatus),
		ToStatus:       entity.RegistrationStatus(e.ToStatus),
		Details:        details,
		CreatedAt:      e.CreatedAt,
	}
}
