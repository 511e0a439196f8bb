package entity

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusApproved, RegistrationStatusRejected:
		return true
	}
	return false
}

// Registration is one enrollment record. ApprovedDate and ApprovedBy are
// either both nil or both set.
type Registration struct {
	Id                   uuid.UUID
	CustomerId           string
	FullName             string
	MobileNumber         string
	Address              string
	Ward                 string
	PanchayathId         *uuid.UUID
	CategoryId           uuid.UUID
	PreferenceCategoryId *uuid.UUID
	Status               RegistrationStatus
	Fee                  float64
	ApprovedDate         *time.Time
	ApprovedBy           *string
	ExpiryDate           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined display data, populated by the *WithDetails finders
	Category           *Category
	PreferenceCategory *Category
	Panchayath         *Panchayath
}

// RegistrationAction names a lifecycle transition for the audit trail.
type RegistrationAction string

const (
	RegistrationActionApproved RegistrationAction = "approved"
	RegistrationActionRejected RegistrationAction = "rejected"
	RegistrationActionRestored RegistrationAction = "restored"
	RegistrationActionDeleted  RegistrationAction = "deleted"
)

type RegistrationEvent struct {
	Id             uuid.UUID
	RegistrationId uuid.UUID
	Action         RegistrationAction
	Actor          string
	FromStatus     RegistrationStatus
	ToStatus       RegistrationStatus
	Details        map[string]interface{}
	CreatedAt      time.Time
}
