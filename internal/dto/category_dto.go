package dto

import (
	"time"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	NameEnglish   string `json:"name_english" validate:"required"`
	NameMalayalam string `json:"name_malayalam" validate:"required"`
	ExpiryDays    int    `json:"expiry_days" validate:"required,gt=0"`
	IsActive      *bool  `json:"is_active"`
}

type CategoryResponse struct {
	Id            uuid.UUID `json:"id"`
	NameEnglish   string    `json:"name_english"`
	NameMalayalam string    `json:"name_malayalam"`
	ExpiryDays    int       `json:"expiry_days"`
	IsActive      bool      `json:"is_active"`
	Color         string    `json:"color"`
	CreatedAt     time.Time `json:"created_at"`
}

type PanchayathResponse struct {
	Id       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	District string    `json:"district"`
}
