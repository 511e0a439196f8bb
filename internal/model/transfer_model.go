package model

import (
	"time"

	"github.com/google/uuid"
)

type CategoryTransferRequest struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegistrationId uuid.UUID `gorm:"type:uuid;not null;index"`
	FromCategoryId uuid.UUID `gorm:"type:uuid;not null"`
	ToCategoryId   uuid.UUID `gorm:"type:uuid;not null"`
	MobileNumber   string    `gorm:"type:varchar(20);not null"`
	CustomerId     string    `gorm:"type:varchar(50);not null"`
	FullName       string    `gorm:"type:varchar(200);not null"`
	Reason         string    `gorm:"type:text"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending';index"` // pending, approved, rejected
	ResolvedBy     *string   `gorm:"type:varchar(150)"`
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Relations
	Registration *Registration `gorm:"foreignKey:RegistrationId;constraint:OnDelete:CASCADE;"`
	FromCategory *Category     `gorm:"foreignKey:FromCategoryId"`
	ToCategory   *Category     `gorm:"foreignKey:ToCategoryId"`
}

func (CategoryTransferRequest) TableName() string {
	return "category_transfer_requests"
}
