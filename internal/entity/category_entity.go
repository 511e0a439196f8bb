package entity

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	Id            uuid.UUID
	NameEnglish   string
	NameMalayalam string
	ExpiryDays    int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Panchayath is an administrative area, used for display and filtering only.
type Panchayath struct {
	Id       uuid.UUID
	Name     string
	District string
	IsActive bool
}
