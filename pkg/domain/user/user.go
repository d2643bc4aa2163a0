package user

import (
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
)

// Verification status ids seeded by the initial migration.
const (
	VerificationUnverified int64 = 1
	VerificationPending    int64 = 2
	VerificationVerified   int64 = 3
)

// BlockStatusActive is the default user_restriction_status of new users.
const BlockStatusActive int64 = 1

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = domain.NewError(domain.ErrNotFound, "user not found")
	// ErrInvalidCredentials is returned on unknown login or wrong password.
	ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "invalid login or password")
	// ErrBanned is returned when a banned user tries to log in.
	ErrBanned = domain.NewError(domain.ErrForbidden, "user is banned")
	// ErrLoginTaken is returned when the login belongs to another user.
	ErrLoginTaken = domain.NewError(domain.ErrAlreadyExists, "login already taken")
	// ErrEmailTaken is returned when the email belongs to another user.
	ErrEmailTaken = domain.NewError(domain.ErrAlreadyExists, "email already registered")
	// ErrOtherUser is returned when a client asks about somebody else.
	ErrOtherUser = domain.NewError(domain.ErrForbidden, "access to another user's data is forbidden")
	// ErrUnknownVerificationStatus is returned for a verification status id that does not exist.
	ErrUnknownVerificationStatus = domain.NewFieldError("verification_status_id", "verification status not found")
	// ErrUnknownBlockStatus is returned for a block status id that does not exist.
	ErrUnknownBlockStatus = domain.NewFieldError("block_status_id", "block status not found")
)

// User is a brokerage client.
type User struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	Login                string    `gorm:"size:50;not null;uniqueIndex" json:"login"`
	Email                string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash         string    `gorm:"size:255;not null" json:"-"`
	RegistrationDate     time.Time `gorm:"not null" json:"registration_date"`
	VerificationStatusID int64     `gorm:"not null" json:"verification_status_id"`
	BlockStatusID        int64     `gorm:"not null" json:"block_status_id"`
}

func (User) TableName() string { return "users" }

// New creates an unverified, active user. passwordHash must already be hashed.
func New(login, email, passwordHash string) *User {
	return &User{
		Login:                strings.TrimSpace(login),
		Email:                strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:         passwordHash,
		RegistrationDate:     time.Now().UTC(),
		VerificationStatusID: VerificationUnverified,
		BlockStatusID:        BlockStatusActive,
	}
}

// IsVerified reports whether the user's passport has been verified.
func (u *User) IsVerified() bool {
	return u.VerificationStatusID == VerificationVerified
}
