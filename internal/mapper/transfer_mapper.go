package mapper

import (
	"regdesk-be/internal/entity"
	"regdesk-be/internal/model"
)

type TransferMapper struct {
	categories *CategoryMapper
}

func NewTransferMapper() *TransferMapper {
	return &TransferMapper{categories: NewCategoryMapper()}
}

func (m *TransferMapper) ToEntity(t *model.CategoryTransferRequest) *entity.CategoryTransferRequest {
	if t == nil {
		return nil
	}
	return &entity.CategoryTransferRequest{
		Id:             t.Id,
		RegistrationId: t.RegistrationId,
		FromCategoryId: t.FromCategoryId,
		ToCategoryId:   t.ToCategoryId,
		MobileNumber:   t.MobileNumber,
		CustomerId:     t.CustomerId,
		FullName:       t.FullName,
		Reason:         t.Reason,
		Status:         entity.TransferStatus(t.Status),
		ResolvedBy:     t.ResolvedBy,
		ResolvedAt:     t.ResolvedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		FromCategory:   m.categories.ToEntity(t.FromCategory),
		ToCategory:     m.categories.ToEntity(t.ToCategory),
	}
}

func (m *TransferMapper) ToModel(t *entity.CategoryTransferRequest) *model.CategoryTransferRequest {
	if t == nil {
		return nil
	}
	return &model.CategoryTransferRequest{
		Id:             t.Id,
		RegistrationId: t.RegistrationId,
		FromCategoryId: t.FromCategoryId,
		ToCategoryId:   t.ToCategoryId,
		MobileNumber:   t.MobileNumber,
		CustomerId:     t.CustomerId,
		FullName:       t.FullName,
		Reason:         t.Reason,
		Status:         string(t.Status),
		ResolvedBy:     t.ResolvedBy,
		ResolvedAt:     t.ResolvedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
