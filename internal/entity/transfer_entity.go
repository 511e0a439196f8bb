package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"
	TransferStatusApproved TransferStatus = "approved"
	TransferStatusRejected TransferStatus = "rejected"
)

// CategoryTransferRequest asks to move a registration to another category.
// Its status is independent of the registration's own status; MobileNumber,
// CustomerId and FullName are a snapshot taken when the request was made.
type CategoryTransferRequest struct {
	Id             uuid.UUID
	RegistrationId uuid.UUID
	FromCategoryId uuid.UUID
	ToCategoryId   uuid.UUID
	MobileNumber   string
	CustomerId     string
	FullName       string
	Reason         string
	Status         TransferStatus
	ResolvedBy     *string
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	FromCategory *Category
	ToCategory   *Category
}
