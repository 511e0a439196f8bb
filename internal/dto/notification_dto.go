package dto

import (
	"time"

	"github.com/google/uuid"
)

type ExpiryAlert struct {
	RegistrationId uuid.UUID `json:"registration_id"`
	CustomerId     string    `json:"customer_id"`
	FullName       string    `json:"full_name"`
	MobileNumber   string    `json:"mobile_number"`
	CategoryName   string    `json:"category_name"`
	ExpiryDate     time.Time `json:"expiry_date"`
	DaysRemaining  int       `json:"days_remaining"`
	Bucket         string    `json:"bucket"`
}

type NotificationSummary struct {
	ExpiredCount      int           `json:"expired_count"`
	ExpiringSoonCount int           `json:"expiring_soon_count"`
	Alerts            []ExpiryAlert `json:"alerts"`
	Acknowledged      bool          `json:"acknowledged"`
	RefreshedAt       *time.Time    `json:"refreshed_at"`
}
