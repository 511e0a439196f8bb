package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultExpiryDays applies when a category is unknown or has no usable expiry_days.
const DefaultExpiryDays = 30

const activeListKey = "active"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidCategory  = errors.New("invalid category")
)

// Input carries the admin editable fields of a category
type Input struct {
	NameEnglish   string
	NameMalayalam string
	ExpiryDays    int
	IsActive      *bool
}

// Directory is the category lookup used by approval, transfers and the UI.
// Reads are cached; every admin write invalidates the cache.
type Directory struct {
	factory unitofwork.RepositoryFactory
	cache   *cache.Cache
	logger  logger.ILogger
}

func NewDirectory(factory unitofwork.RepositoryFactory, logger logger.ILogger) *Directory {
	return &Directory{
		factory: factory,
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		logger:  logger,
	}
}

// ListActive returns selectable categories ordered by English name
func (d *Directory) ListActive(ctx context.Context) ([]*entity.Category, error) {
	if x, found := d.cache.Get(activeListKey); found {
		return x.([]*entity.Category), nil
	}

	uow := d.factory.NewUnitOfWork(ctx)
	categories, err := uow.CategoryRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.OrderBy{Field: "name_english"},
	)
	if err != nil {
		return nil, err
	}
	d.cache.Set(activeListKey, categories, cache.DefaultExpiration)
	return categories, nil
}

// ListAll includes inactive categories, for the admin directory screen
func (d *Directory) ListAll(ctx context.Context) ([]*entity.Category, error) {
	uow := d.factory.NewUnitOfWork(ctx)
	return uow.CategoryRepository().FindAll(ctx, specification.OrderBy{Field: "name_english"})
}

// Get resolves any category, active or not, so existing registrations keep
// their display names. Returns nil, nil when the id is unknown.
func (d *Directory) Get(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	key := id.String()
	if x, found := d.cache.Get(key); found {
		return x.(*entity.Category), nil
	}

	uow := d.factory.NewUnitOfWork(ctx)
	c, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if c != nil {
		d.cache.Set(key, c, cache.DefaultExpiration)
	}
	return c, nil
}

// ExpiryDaysFor falls back to DefaultExpiryDays for a missing category or a
// non-positive value. Store failures are returned, not defaulted.
func (d *Directory) ExpiryDaysFor(ctx context.Context, id uuid.UUID) (int, error) {
	c, err := d.Get(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("lookup category %s: %w", id, err)
	}
	if c == nil || c.ExpiryDays <= 0 {
		return DefaultExpiryDays, nil
	}
	return c.ExpiryDays, nil
}

func (d *Directory) Invalidate() {
	d.cache.Flush()
}

func validate(in Input) error {
	if strings.TrimSpace(in.NameEnglish) == "" || strings.TrimSpace(in.NameMalayalam) == "" {
		return fmt.Errorf("%w: both names are required", ErrInvalidCategory)
	}
	if in.ExpiryDays <= 0 {
		return fmt.Errorf("%w: expiry_days must be positive", ErrInvalidCategory)
	}
	return nil
}

func (d *Directory) Create(ctx context.Context, in Input) (*entity.Category, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	c := &entity.Category{
		Id:            uuid.New(),
		NameEnglish:   strings.TrimSpace(in.NameEnglish),
		NameMalayalam: strings.TrimSpace(in.NameMalayalam),
		ExpiryDays:    in.ExpiryDays,
		IsActive:      true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	uow := d.factory.NewUnitOfWork(ctx)
	if err := uow.CategoryRepository().Create(ctx, c); err != nil {
		return nil, err
	}
	d.Invalidate()

	d.logger.Info("CATEGORY", "Category created", map[string]interface{}{
		"category_id": c.Id.String(),
		"name":        c.NameEnglish,
		"expiry_days": c.ExpiryDays,
	})
	return c, nil
}

func (d *Directory) Update(ctx context.Context, id uuid.UUID, in Input) (*entity.Category, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	uow := d.factory.NewUnitOfWork(ctx)
	c, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}

	c.NameEnglish = strings.TrimSpace(in.NameEnglish)
	c.NameMalayalam = strings.TrimSpace(in.NameMalayalam)
	c.ExpiryDays = in.ExpiryDays
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	if err := uow.CategoryRepository().Update(ctx, c); err != nil {
		return nil, err
	}
	d.Invalidate()

	d.logger.Info("CATEGORY", "Category updated", map[string]interface{}{
		"category_id": c.Id.String(),
		"expiry_days": c.ExpiryDays,
		"is_active":   c.IsActive,
	})
	return c, nil
}

// Deactivate is the only form of category delete. Existing registrations
// keep pointing at the row.
func (d *Directory) Deactivate(ctx context.Context, id uuid.UUID) error {
	uow := d.factory.NewUnitOfWork(ctx)
	c, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}
	if !c.IsActive {
		return nil
	}

	c.IsActive = false
	if err := uow.CategoryRepository().Update(ctx, c); err != nil {
		return err
	}
	d.Invalidate()

	d.logger.Info("CATEGORY", "Category deactivated", map[string]interface{}{
		"category_id": id.String(),
	})
	return nil
}
