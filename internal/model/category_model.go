package model

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NameEnglish   string    `gorm:"type:varchar(150);not null"`
	NameMalayalam string    `gorm:"type:varchar(150);not null"`
	ExpiryDays    int       `gorm:"not null;default:30"`
	IsActive      bool      `gorm:"not null;default:true;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Category) TableName() string {
	return "categories"
}

type Panchayath struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(150);not null"`
	District  string    `gorm:"type:varchar(100);not null;index"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Panchayath) TableName() string {
	return "panchayaths"
}
