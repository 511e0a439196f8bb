package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Registration struct {
	Id                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerId           string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	FullName             string     `gorm:"type:varchar(200);not null"`
	MobileNumber         string     `gorm:"type:varchar(20);not null;index"`
	Address              string     `gorm:"type:text"`
	Ward                 string     `gorm:"type:varchar(50)"`
	PanchayathId         *uuid.UUID `gorm:"type:uuid;index"`
	CategoryId           uuid.UUID  `gorm:"type:uuid;not null;index"`
	PreferenceCategoryId *uuid.UUID `gorm:"type:uuid"`
	Status               string     `gorm:"type:varchar(20);not null;default:'pending';index"` // pending, approved, rejected
	Fee                  float64    `gorm:"type:decimal(10,2);not null;default:0"`
	ApprovedDate         *time.Time
	ApprovedBy           *string    `gorm:"type:varchar(150)"`
	ExpiryDate           *time.Time `gorm:"index"`
	CreatedAt            time.Time  `gorm:"not null;index"`
	UpdatedAt            time.Time

	// Relations
	Category           *Category   `gorm:"foreignKey:CategoryId"`
	PreferenceCategory *Category   `gorm:"foreignKey:PreferenceCategoryId"`
	Panchayath         *Panchayath `gorm:"foreignKey:PanchayathId"`
}

func (Registration) TableName() string {
	return "registrations"
}

// RegistrationEvent is the append-only lifecycle history. It intentionally has
// no foreign key so history survives a hard delete of the registration.
type RegistrationEvent struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegistrationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action         string         `gorm:"type:varchar(20);not null"`
	Actor          string         `gorm:"type:varchar(150);not null"`
	FromStatus     string         `gorm:"type:varchar(20)"`
	ToStatus       string         `gorm:"type:varchar(20)"`
	Details        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null;index"`
}

func (RegistrationEvent) TableName() string {
	return "registration_events"
}
