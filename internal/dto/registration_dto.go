package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationFilter is bound from the list/export query string.
type RegistrationFilter struct {
	Query        string `query:"q"`
	Status       string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	CategoryId   string `query:"category_id" validate:"omitempty,uuid"`
	PanchayathId string `query:"panchayath_id" validate:"omitempty,uuid"`
	// ExpiryDays is a threshold in days; nil means no expiry filter
	ExpiryDays *int   `query:"expiry_days" validate:"omitempty,min=0"`
	Sort       string `query:"sort" validate:"omitempty,oneof=created_at full_name expiry_date"`
	Order      string `query:"order" validate:"omitempty,oneof=asc desc"`
}

type CategoryRef struct {
	Id            uuid.UUID `json:"id"`
	NameEnglish   string    `json:"name_english"`
	NameMalayalam string    `json:"name_malayalam"`
}

type PanchayathRef struct {
	Id       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	District string    `json:"district"`
}

type RegistrationListResponse struct {
	Id            uuid.UUID      `json:"id"`
	CustomerId    string         `json:"customer_id"`
	FullName      string         `json:"full_name"`
	MobileNumber  string         `json:"mobile_number"`
	Status        string         `json:"status"`
	Category      *CategoryRef   `json:"category"`
	CategoryColor string         `json:"category_color"`
	Panchayath    *PanchayathRef `json:"panchayath"`
	ExpiryDate    *time.Time     `json:"expiry_date"`
	DaysRemaining *int           `json:"days_remaining"`
	ExpiryBucket  string         `json:"expiry_bucket"`
	CreatedAt     time.Time      `json:"created_at"`
}

type RegistrationDetailResponse struct {
	RegistrationListResponse
	Address            string       `json:"address"`
	Ward               string       `json:"ward"`
	Fee                float64      `json:"fee"`
	PreferenceCategory *CategoryRef `json:"preference_category"`
	ApprovedDate       *time.Time   `json:"approved_date"`
	ApprovedBy         *string      `json:"approved_by"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

type RegistrationEventResponse struct {
	Id         uuid.UUID              `json:"id"`
	Action     string                 `json:"action"`
	Actor      string                 `json:"actor"`
	FromStatus string                 `json:"from_status"`
	ToStatus   string                 `json:"to_status"`
	Details    map[string]interface{} `json:"details"`
	CreatedAt  time.Time              `json:"created_at"`
}
