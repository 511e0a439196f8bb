// Package repotest holds in-memory repositories for service and domain tests.
// They understand the typed specifications from the specification package
// and ignore anything else.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/repository/contract"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the shared backing data. Every unit of work created by the
// factory reads and writes the same maps.
type Store struct {
	mu            sync.Mutex
	Registrations map[uuid.UUID]*entity.Registration
	Events        []*entity.RegistrationEvent
	Categories    map[uuid.UUID]*entity.Category
	Panchayaths   map[uuid.UUID]*entity.Panchayath
	Transfers     map[uuid.UUID]*entity.CategoryTransferRequest

	// Injected failures, returned by the matching operation when set
	FindErr   error
	UpdateErr error
	CreateErr error

	// BeforeWrite runs ahead of every guarded write, outside the lock.
	// Tests use it to change a row between a read and the write.
	BeforeWrite func()

	Commits   int
	Rollbacks int
}

func NewStore() *Store {
	return &Store{
		Registrations: make(map[uuid.UUID]*entity.Registration),
		Categories:    make(map[uuid.UUID]*entity.Category),
		Panchayaths:   make(map[uuid.UUID]*entity.Panchayath),
		Transfers:     make(map[uuid.UUID]*entity.CategoryTransferRequest),
	}
}

func (s *Store) AddRegistration(r *entity.Registration) *entity.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Id == uuid.Nil {
		r.Id = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.Registrations[r.Id] = r
	return r
}

// SetRegistrationStatus changes a row as a concurrent writer would
func (s *Store) SetRegistrationStatus(id uuid.UUID, status entity.RegistrationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, ok := s.Registrations[id]; ok {
		reg.Status = status
	}
}

func (s *Store) AddTransfer(t *entity.CategoryTransferRequest) *entity.CategoryTransferRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.Transfers[t.Id] = t
	return t
}

// SetTransferStatus changes a request as a concurrent writer would
func (s *Store) SetTransferStatus(id uuid.UUID, status entity.TransferStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.Transfers[id]; ok {
		t.Status = status
	}
}

func (s *Store) beforeWrite() {
	if s.BeforeWrite != nil {
		s.BeforeWrite()
	}
}

func (s *Store) AddCategory(c *entity.Category) *entity.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	s.Categories[c.Id] = c
	return c
}

func (s *Store) AddPanchayath(p *entity.Panchayath) *entity.Panchayath {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	s.Panchayaths[p.Id] = p
	return p
}

// Registration returns a copy of the stored row, or nil.
func (s *Store) Registration(id uuid.UUID) *entity.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Registrations[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (s *Store) EventsFor(id uuid.UUID) []*entity.RegistrationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []*entity.RegistrationEvent
	for _, e := range s.Events {
		if e.RegistrationId == id {
			res = append(res, e)
		}
	}
	return res
}

// Factory returns a RepositoryFactory over this store.
func (s *Store) Factory() unitofwork.RepositoryFactory {
	return factory{store: s}
}

type factory struct {
	store *Store
}

func (f factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type UnitOfWork struct {
	store  *Store
	active bool
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.active = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	u.store.mu.Lock()
	u.store.Commits++
	u.store.mu.Unlock()
	u.active = false
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.store.mu.Lock()
	u.store.Rollbacks++
	u.store.mu.Unlock()
	u.active = false
	return nil
}

func (u *UnitOfWork) RegistrationRepository() contract.RegistrationRepository {
	return &registrationRepo{s: u.store}
}

func (u *UnitOfWork) CategoryRepository() contract.CategoryRepository {
	return &categoryRepo{s: u.store}
}

func (u *UnitOfWork) PanchayathRepository() contract.PanchayathRepository {
	return &panchayathRepo{s: u.store}
}

func (u *UnitOfWork) TransferRequestRepository() contract.TransferRequestRepository {
	return &transferRepo{s: u.store}
}

type registrationRepo struct{ s *Store }

func (r *registrationRepo) matches(reg *entity.Registration, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if reg.Id != sp.ID {
				return false
			}
		case specification.ByStatus:
			if string(reg.Status) != sp.Status {
				return false
			}
		case specification.ByCategory:
			if reg.CategoryId != sp.CategoryID {
				return false
			}
		case specification.ByPanchayath:
			if reg.PanchayathId == nil || *reg.PanchayathId != sp.PanchayathID {
				return false
			}
		case specification.RegistrationSearch:
			q := strings.ToLower(strings.TrimSpace(sp.Query))
			if !strings.Contains(strings.ToLower(reg.FullName), q) &&
				!strings.Contains(strings.ToLower(reg.MobileNumber), q) &&
				!strings.Contains(strings.ToLower(reg.CustomerId), q) {
				return false
			}
		}
	}
	return true
}

func (r *registrationRepo) withDetails(reg *entity.Registration) *entity.Registration {
	if c, ok := r.s.Categories[reg.CategoryId]; ok {
		cp := *c
		reg.Category = &cp
	}
	if reg.PreferenceCategoryId != nil {
		if c, ok := r.s.Categories[*reg.PreferenceCategoryId]; ok {
			cp := *c
			reg.PreferenceCategory = &cp
		}
	}
	if reg.PanchayathId != nil {
		if p, ok := r.s.Panchayaths[*reg.PanchayathId]; ok {
			cp := *p
			reg.Panchayath = &cp
		}
	}
	return reg
}

func (r *registrationRepo) list(specs []specification.Specification, details bool) ([]*entity.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	res := make([]*entity.Registration, 0)
	for _, reg := range r.s.Registrations {
		if !r.matches(reg, specs) {
			continue
		}
		cp := *reg
		if details {
			r.withDetails(&cp)
		}
		res = append(res, &cp)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (r *registrationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Registration, error) {
	res, err := r.list(specs, false)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

func (r *registrationRepo) FindOneWithDetails(ctx context.Context, specs ...specification.Specification) (*entity.Registration, error) {
	res, err := r.list(specs, true)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

func (r *registrationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Registration, error) {
	return r.list(specs, false)
}

func (r *registrationRepo) FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.Registration, error) {
	return r.list(specs, true)
}

func (r *registrationRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	res, err := r.list([]specification.Specification{specification.ByStatus{Status: status}}, false)
	return int64(len(res)), err
}

func (r *registrationRepo) UpdateFields(ctx context.Context, id uuid.UUID, fromStatuses []string, fields map[string]interface{}) error {
	r.s.beforeWrite()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpdateErr != nil {
		return r.s.UpdateErr
	}
	reg, ok := r.s.Registrations[id]
	if !ok || !containsStatus(fromStatuses, string(reg.Status)) {
		return contract.ErrStaleWrite
	}
	for k, v := range fields {
		switch k {
		case "status":
			reg.Status = entity.RegistrationStatus(v.(string))
		case "approved_date":
			reg.ApprovedDate, _ = v.(*time.Time)
		case "approved_by":
			reg.ApprovedBy, _ = v.(*string)
		case "expiry_date":
			reg.ExpiryDate, _ = v.(*time.Time)
		case "category_id":
			reg.CategoryId = v.(uuid.UUID)
		}
	}
	reg.UpdatedAt = time.Now()
	return nil
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *registrationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpdateErr != nil {
		return r.s.UpdateErr
	}
	if _, ok := r.s.Registrations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.Registrations, id)
	return nil
}

func (r *registrationRepo) CreateEvent(ctx context.Context, event *entity.RegistrationEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateErr != nil {
		return r.s.CreateErr
	}
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	r.s.Events = append(r.s.Events, event)
	return nil
}

func (r *registrationRepo) FindEvents(ctx context.Context, registrationId uuid.UUID) ([]*entity.RegistrationEvent, error) {
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	return r.s.EventsFor(registrationId), nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(ctx context.Context, category *entity.Category) error {
	if r.s.CreateErr != nil {
		return r.s.CreateErr
	}
	r.s.AddCategory(category)
	return nil
}

func (r *categoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error) {
	res, err := r.FindAll(ctx, specs...)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

func (r *categoryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	res := make([]*entity.Category, 0)
	for _, c := range r.s.Categories {
		keep := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByID:
				keep = keep && c.Id == sp.ID
			case specification.ActiveOnly:
				keep = keep && c.IsActive
			}
		}
		if keep {
			cp := *c
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].NameEnglish < res[j].NameEnglish })
	return res, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpdateErr != nil {
		return r.s.UpdateErr
	}
	cp := *category
	r.s.Categories[category.Id] = &cp
	return nil
}

type panchayathRepo struct{ s *Store }

func (r *panchayathRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Panchayath, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	res := make([]*entity.Panchayath, 0)
	for _, p := range r.s.Panchayaths {
		keep := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ActiveOnly:
				keep = keep && p.IsActive
			case specification.ByDistrict:
				keep = keep && p.District == sp.District
			}
		}
		if keep {
			cp := *p
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(ctx context.Context, request *entity.CategoryTransferRequest) error {
	r.s.beforeWrite()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateErr != nil {
		return r.s.CreateErr
	}
	// Mirrors ux_transfer_one_pending
	if request.Status == entity.TransferStatusPending {
		for _, t := range r.s.Transfers {
			if t.RegistrationId == request.RegistrationId && t.Status == entity.TransferStatusPending {
				return contract.ErrDuplicate
			}
		}
	}
	if request.Id == uuid.Nil {
		request.Id = uuid.New()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	cp := *request
	r.s.Transfers[request.Id] = &cp
	return nil
}

func (r *transferRepo) list(specs []specification.Specification) ([]*entity.CategoryTransferRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FindErr != nil {
		return nil, r.s.FindErr
	}
	res := make([]*entity.CategoryTransferRequest, 0)
	for _, t := range r.s.Transfers {
		keep := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByID:
				keep = keep && t.Id == sp.ID
			case specification.ByStatus:
				keep = keep && string(t.Status) == sp.Status
			case specification.ByRegistration:
				keep = keep && t.RegistrationId == sp.RegistrationID
			}
		}
		if keep {
			cp := *t
			if c, ok := r.s.Categories[t.FromCategoryId]; ok {
				cc := *c
				cp.FromCategory = &cc
			}
			if c, ok := r.s.Categories[t.ToCategoryId]; ok {
				cc := *c
				cp.ToCategory = &cc
			}
			res = append(res, &cp)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })

	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(res) {
				return []*entity.CategoryTransferRequest{}, nil
			}
			end := p.Offset + p.Limit
			if p.Limit <= 0 || end > len(res) {
				end = len(res)
			}
			res = res[p.Offset:end]
		}
	}
	return res, nil
}

func (r *transferRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CategoryTransferRequest, error) {
	res, err := r.list(specs)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

func (r *transferRepo) FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.CategoryTransferRequest, error) {
	return r.list(specs)
}

func (r *transferRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	res, err := r.list(specs)
	return int64(len(res)), err
}

func (r *transferRepo) ResolvePending(ctx context.Context, request *entity.CategoryTransferRequest) error {
	r.s.beforeWrite()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpdateErr != nil {
		return r.s.UpdateErr
	}
	t, ok := r.s.Transfers[request.Id]
	if !ok || t.Status != entity.TransferStatusPending {
		return contract.ErrStaleWrite
	}
	t.Status = request.Status
	t.ResolvedBy = request.ResolvedBy
	t.ResolvedAt = request.ResolvedAt
	return nil
}
