package mapper

import (
	"regdesk-be/internal/entity"
	"regdesk-be/internal/model"
)

type CategoryMapper struct{}

func NewCategoryMapper() *CategoryMapper {
	return &CategoryMapper{}
}

func (m *CategoryMapper) ToEntity(c *model.Category) *entity.Category {
	if c == nil {
		return nil
	}
	return &entity.Category{
		Id:            c.Id,
		NameEnglish:   c.NameEnglish,
		NameMalayalam: c.NameMalayalam,
		ExpiryDays:    c.ExpiryDays,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *CategoryMapper) ToModel(c *entity.Category) *model.Category {
	if c == nil {
		return nil
	}
	return &model.Category{
		Id:            c.Id,
		NameEnglish:   c.NameEnglish,
		NameMalayalam: c.NameMalayalam,
		ExpiryDays:    c.ExpiryDays,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *CategoryMapper) PanchayathToEntity(p *model.Panchayath) *entity.Panchayath {
	if p == nil {
		return nil
	}
	return &entity.Panchayath{
		Id:       p.Id,
		Name:     p.Name,
		District: p.District,
		IsActive: p.IsActive,
	}
}
