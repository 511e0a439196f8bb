package unitofwork

import (
	"context"

	"regdesk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RegistrationRepository() contract.RegistrationRepository
	CategoryRepository() contract.CategoryRepository
	PanchayathRepository() contract.PanchayathRepository
	TransferRequestRepository() contract.TransferRequestRepository
}
