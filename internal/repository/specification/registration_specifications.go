package specification

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByCategory struct {
	CategoryID uuid.UUID
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}

type ByPanchayath struct {
	PanchayathID uuid.UUID
}

func (s ByPanchayath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("panchayath_id = ?", s.PanchayathID)
}

// RegistrationSearch matches a substring of name, mobile number or customer id.
type RegistrationSearch struct {
	Query string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern wraps q for a substring match with its own wildcards escaped
func LikePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

func (s RegistrationSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := LikePattern(s.Query)
	// ILIKE keeps the match case-insensitive on Postgres
	return db.Where(`full_name ILIKE ? ESCAPE '\' OR mobile_number ILIKE ? ESCAPE '\' OR customer_id ILIKE ? ESCAPE '\'`, pattern, pattern, pattern)
}

type ByRegistration struct {
	RegistrationID uuid.UUID
}

func (s ByRegistration) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("registration_id = ?", s.RegistrationID)
}

type ByDistrict struct {
	District string
}

func (s ByDistrict) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("district = ?", s.District)
}
