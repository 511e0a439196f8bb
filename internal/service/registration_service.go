package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/export"
	"regdesk-be/pkg/admin/lifecycle"
	"regdesk-be/pkg/admin/mapper"

	"github.com/google/uuid"
)

type IRegistrationService interface {
	List(ctx context.Context, filter dto.RegistrationFilter) ([]*dto.RegistrationListResponse, error)
	Detail(ctx context.Context, id uuid.UUID) (*dto.RegistrationDetailResponse, error)
	Events(ctx context.Context, id uuid.UUID) ([]*dto.RegistrationEventResponse, error)
	// Export writes the filtered view as CSV and returns the download file name
	Export(ctx context.Context, filter dto.RegistrationFilter, w io.Writer) (string, error)

	Approve(ctx context.Context, id uuid.UUID, actor string) (*dto.RegistrationDetailResponse, error)
	Reject(ctx context.Context, id uuid.UUID, actor string) (*dto.RegistrationDetailResponse, error)
	Restore(ctx context.Context, id uuid.UUID, actor string) (*dto.RegistrationDetailResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor string, confirm bool) error
}

type registrationService struct {
	uowFactory unitofwork.RepositoryFactory
	lifecycle  *lifecycle.Manager
	classifier expiry.Classifier
	location   *time.Location
	logger     logger.ILogger
	now        func() time.Time
}

func NewRegistrationService(
	uowFactory unitofwork.RepositoryFactory,
	lifecycle *lifecycle.Manager,
	classifier expiry.Classifier,
	location *time.Location,
	logger logger.ILogger,
) IRegistrationService {
	if location == nil {
		location = time.UTC
	}
	return &registrationService{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		classifier: classifier,
		location:   location,
		logger:     logger,
		now:        time.Now,
	}
}

// filtered applies the store-side filters, then the expiry threshold and the
// sort order in memory, because both depend on "now".
func (s *registrationService) filtered(ctx context.Context, filter dto.RegistrationFilter, now time.Time) ([]*entity.Registration, error) {
	var specs []specification.Specification
	if q := strings.TrimSpace(filter.Query); q != "" {
		specs = append(specs, specification.RegistrationSearch{Query: q})
	}
	if filter.Status != "" {
		specs = append(specs, specification.ByStatus{Status: filter.Status})
	}
	if id, err := uuid.Parse(filter.CategoryId); err == nil {
		specs = append(specs, specification.ByCategory{CategoryID: id})
	}
	if id, err := uuid.Parse(filter.PanchayathId); err == nil {
		specs = append(specs, specification.ByPanchayath{PanchayathID: id})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	regs, err := uow.RegistrationRepository().FindAllWithDetails(ctx, specs...)
	if err != nil {
		return nil, err
	}

	if filter.ExpiryDays != nil {
		kept := regs[:0]
		for _, r := range regs {
			if expiry.MatchesThreshold(r.Status, r.ExpiryDate, now, *filter.ExpiryDays) {
				kept = append(kept, r)
			}
		}
		regs = kept
	}

	sortRegistrations(regs, filter.Sort, filter.Order)
	return regs, nil
}

// sortRegistrations defaults to newest first; other fields default to
// ascending. Missing expiry dates sort last in either direction.
func sortRegistrations(regs []*entity.Registration, field, order string) {
	if field == "" {
		field = "created_at"
	}
	desc := order == "desc" || (order == "" && field == "created_at")

	sort.SliceStable(regs, func(i, j int) bool {
		a, b := regs[i], regs[j]
		switch field {
		case "full_name":
			x, y := strings.ToLower(a.FullName), strings.ToLower(b.FullName)
			if desc {
				return x > y
			}
			return x < y
		case "expiry_date":
			if a.ExpiryDate == nil || b.ExpiryDate == nil {
				return a.ExpiryDate != nil && b.ExpiryDate == nil
			}
			if desc {
				return a.ExpiryDate.After(*b.ExpiryDate)
			}
			return a.ExpiryDate.Before(*b.ExpiryDate)
		default:
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func (s *registrationService) List(ctx context.Context, filter dto.RegistrationFilter) ([]*dto.RegistrationListResponse, error) {
	now := s.now()
	regs, err := s.filtered(ctx, filter, now)
	if err != nil {
		return nil, err
	}
	return mapper.RegistrationsToListResponse(regs, s.classifier, now), nil
}

func (s *registrationService) detail(ctx context.Context, id uuid.UUID) (*dto.RegistrationDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	reg, err := uow.RegistrationRepository().FindOneWithDetails(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, lifecycle.ErrRegistrationNotFound
	}
	return mapper.RegistrationToDetailResponse(reg, s.classifier, s.now()), nil
}

func (s *registrationService) Detail(ctx context.Context, id uuid.UUID) (*dto.RegistrationDetailResponse, error) {
	return s.detail(ctx, id)
}

// Events returns the audit trail, which outlives a deleted registration.
func (s *registrationService) Events(ctx context.Context, id uuid.UUID) ([]*dto.RegistrationEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	events, err := uow.RegistrationRepository().FindEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.EventsToResponse(events), nil
}

func (s *registrationService) Export(ctx context.Context, filter dto.RegistrationFilter, w io.Writer) (string, error) {
	now := s.now()
	regs, err := s.filtered(ctx, filter, now)
	if err != nil {
		return "", err
	}
	if err := export.WriteCSV(w, regs, s.location); err != nil {
		return "", err
	}
	s.logger.Info("ADMIN", "Registrations exported", map[string]interface{}{"rows": len(regs)})
	return export.Filename(now, s.location), nil
}

type transitionFunc func(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, actor string) (*entity.Registration, error)

// transition runs a lifecycle operation and re-reads the row with its joins
func (s *registrationService) transition(ctx context.Context, id uuid.UUID, actor string, run transitionFunc) (*dto.RegistrationDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := run(ctx, uow, id, actor); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *registrationService) Approve(ctx context.Context, id uuid.UUID, actor string) (*dto.RegistrationDetailResponse, error) {
	return s.transition(ctx, id, actor, s.lifecycle.Approve)
}

func (s *registrationService) Reject(ctx context.Context, id uuid.UUID, actor string) (*dto.RegistrationDetailResponse, error) {
	return s.transition(ctx, id, actor, s.lifecycle.Reject)
}

func (s *registrationService) Restore(ctx context.Context, id uuid.UUID, actor string) (*dto.RegistrationDetailResponse, error) {
	return s.transition(ctx, id, actor, s.lifecycle.Restore)
}

func (s *registrationService) Delete(ctx context.Context, id uuid.UUID, actor string, confirm bool) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.lifecycle.Delete(ctx, uow, id, actor, confirm)
}
