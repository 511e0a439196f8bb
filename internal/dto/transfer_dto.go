package dto

import (
	"time"

	"github.com/google/uuid"
)

type TransferSubmitRequest struct {
	RegistrationId uuid.UUID `json:"registration_id" validate:"required"`
	ToCategoryId   uuid.UUID `json:"to_category_id" validate:"required"`
	Reason         string    `json:"reason" validate:"max=1000"`
}

type TransferResponse struct {
	Id             uuid.UUID    `json:"id"`
	RegistrationId uuid.UUID    `json:"registration_id"`
	CustomerId     string       `json:"customer_id"`
	FullName       string       `json:"full_name"`
	MobileNumber   string       `json:"mobile_number"`
	FromCategory   *CategoryRef `json:"from_category"`
	ToCategory     *CategoryRef `json:"to_category"`
	Reason         string       `json:"reason"`
	Status         string       `json:"status"`
	ResolvedBy     *string      `json:"resolved_by"`
	ResolvedAt     *time.Time   `json:"resolved_at"`
	CreatedAt      time.Time    `json:"created_at"`
}
