// Package passport holds identity documents submitted for verification.
package passport

import (
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
)

var (
	ErrPassportNotFound  = domain.NewError(domain.ErrNotFound, "passport not found")
	ErrAlreadySubmitted  = domain.NewError(domain.ErrStateConflict, "user already has an actual passport")
	ErrAlreadyVerified   = domain.NewError(domain.ErrStateConflict, "user is already verified")
	ErrInvalidGender     = domain.NewFieldError("gender", "gender must be one of м, ж")
	ErrIssueBeforeBirth  = domain.NewFieldError("issue_date", "issue date must be after the birth date")
	ErrBirthDateInFuture = domain.NewFieldError("birth_date", "birth date must be in the past")
	ErrSeriesDigits      = domain.NewFieldError("series", "series must contain 4 digits")
	ErrNumberDigits      = domain.NewFieldError("number", "number must contain 6 digits")
)

// Passport is an identity document of a client. At most one passport per
// user is actual.
type Passport struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	UserID            int64     `gorm:"not null;index" json:"user_id"`
	LastName          string    `gorm:"size:50;not null" json:"last_name"`
	FirstName         string    `gorm:"size:50;not null" json:"first_name"`
	MiddleName        string    `gorm:"size:50" json:"middle_name"`
	Series            string    `gorm:"size:4;not null" json:"series"`
	Number            string    `gorm:"size:6;not null" json:"number"`
	Gender            string    `gorm:"size:1;not null" json:"gender"`
	BirthDate         time.Time `gorm:"not null" json:"birth_date"`
	BirthPlace        string    `gorm:"size:100;not null" json:"birth_place"`
	RegistrationPlace string    `gorm:"size:150;not null" json:"registration_place"`
	IssueDate         time.Time `gorm:"not null" json:"issue_date"`
	IssuedBy          string    `gorm:"size:150;not null" json:"issued_by"`
	IsActual          bool      `gorm:"not null;default:true" json:"is_actual"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (Passport) TableName() string { return "passports" }

// Normalize trims text fields, maps latin gender letters and checks the
// document's internal consistency.
func (p *Passport) Normalize(now time.Time) error {
	for _, f := range []*string{
		&p.LastName, &p.FirstName, &p.MiddleName, &p.Series, &p.Number,
		&p.BirthPlace, &p.RegistrationPlace, &p.IssuedBy,
	} {
		*f = strings.TrimSpace(*f)
	}
	switch strings.ToLower(strings.TrimSpace(p.Gender)) {
	case "м", "m":
		p.Gender = "м"
	case "ж", "f":
		p.Gender = "ж"
	default:
		return ErrInvalidGender
	}
	if !digits(p.Series, 4) {
		return ErrSeriesDigits
	}
	if !digits(p.Number, 6) {
		return ErrNumberDigits
	}
	if !p.BirthDate.Before(now) {
		return ErrBirthDateInFuture
	}
	if !p.IssueDate.After(p.BirthDate) {
		return ErrIssueBeforeBirth
	}
	p.IsActual = true
	return nil
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
