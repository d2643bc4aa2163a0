// Package user provides business logic for client registration and for the
// staff-side maintenance of client records.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/amirasaad/brokerage/pkg/utils"
)

const (
	MinLoginLength    = 3
	MaxLoginLength    = 50
	MinPasswordLength = 6
)

var (
	ErrInvalidLogin    = domain.NewFieldError("login", "login must be 3 to 50 characters long")
	ErrInvalidEmail    = domain.NewFieldError("email", "invalid email address")
	ErrInvalidPassword = domain.NewFieldError("password", "password must be at least 6 characters and at most 72 bytes")

	// ErrAlreadyRegistered is reported when a concurrent registration won the unique index.
	ErrAlreadyRegistered = domain.NewError(domain.ErrAlreadyExists, "login or email already registered")
)

// Service provides client operations.
type Service struct {
	uow    repository.UnitOfWork
	roles  *config.Roles
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	roles *config.Roles,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		roles:  roles,
		logger: logger,
	}
}

// ValidateLogin checks the login length in characters.
func ValidateLogin(login string) error {
	n := utf8.RuneCountInString(login)
	if n < MinLoginLength || n > MaxLoginLength {
		return ErrInvalidLogin
	}
	return nil
}

// ValidatePassword checks the length bounds bcrypt can honour.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength || len(password) > utils.MaxPasswordBytes {
		return ErrInvalidPassword
	}
	return nil
}

// Register creates an unverified, active client.
func (s *Service) Register(
	ctx context.Context,
	in dto.UserCreate,
) (u *user.User, err error) {
	log := s.logger.With("context", "Register", "login", in.Login)
	login := strings.TrimSpace(in.Login)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err = ValidateLogin(login); err != nil {
		return nil, err
	}
	if !utils.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err = ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		log.Error("Password hashing failed", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Users()
		if taken, err := repo.ExistsByLogin(ctx, login, 0); err != nil {
			return err
		} else if taken {
			return user.ErrLoginTaken
		}
		if taken, err := repo.ExistsByEmail(ctx, email, 0); err != nil {
			return err
		} else if taken {
			return user.ErrEmailTaken
		}
		u = user.New(login, email, hash)
		return repo.Create(ctx, u)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) && !isDomainError(err) {
			err = ErrAlreadyRegistered
		}
		log.Warn("Registration failed", "error", err)
		return nil, err
	}
	log.Info("User registered", "user_id", u.ID)
	return u, nil
}

// UpdateByStaff applies a staff edit to a client record.
func (s *Service) UpdateByStaff(
	ctx context.Context,
	userID int64,
	patch dto.UserUpdate,
) (u *user.User, err error) {
	log := s.logger.With("context", "UpdateByStaff", "user_id", userID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Users()
		u, err = repo.GetForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return user.ErrUserNotFound
			}
			return err
		}
		if v := trimmed(patch.Login); v != "" {
			if err := ValidateLogin(v); err != nil {
				return err
			}
			if taken, err := repo.ExistsByLogin(ctx, v, u.ID); err != nil {
				return err
			} else if taken {
				return user.ErrLoginTaken
			}
			u.Login = v
		}
		if v := strings.ToLower(trimmed(patch.Email)); v != "" {
			if !utils.IsEmail(v) {
				return ErrInvalidEmail
			}
			if taken, err := repo.ExistsByEmail(ctx, v, u.ID); err != nil {
				return err
			} else if taken {
				return user.ErrEmailTaken
			}
			u.Email = v
		}
		if patch.Password != nil && *patch.Password != "" {
			if err := ValidatePassword(*patch.Password); err != nil {
				return err
			}
			hash, err := utils.HashPassword(*patch.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		lookups := uow.Lookups()
		if patch.VerificationStatusID != nil {
			ok, err := lookups.Exists(ctx, reference.TableVerificationStatuses, *patch.VerificationStatusID)
			if err != nil {
				return err
			}
			if !ok {
				return user.ErrUnknownVerificationStatus
			}
			u.VerificationStatusID = *patch.VerificationStatusID
		}
		if patch.BlockStatusID != nil {
			ok, err := lookups.Exists(ctx, reference.TableUserRestrictionStatuses, *patch.BlockStatusID)
			if err != nil {
				return err
			}
			if !ok {
				return user.ErrUnknownBlockStatus
			}
			u.BlockStatusID = *patch.BlockStatusID
		}
		return repo.Update(ctx, u)
	})
	if err != nil {
		log.Warn("User update failed", "error", err)
		return nil, err
	}
	log.Info("User updated")
	return u, nil
}

// VerificationStatus reports whether the caller's passport is verified.
func (s *Service) VerificationStatus(
	ctx context.Context,
	caller identity.Identity,
	userID int64,
) (*dto.VerificationStatus, error) {
	u, err := s.self(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	return &dto.VerificationStatus{IsVerified: u.IsVerified()}, nil
}

// BanStatus reports whether the caller is banned.
func (s *Service) BanStatus(
	ctx context.Context,
	caller identity.Identity,
	userID int64,
) (*dto.BanStatus, error) {
	u, err := s.self(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BanStatus{IsBanned: u.BlockStatusID == s.roles.UserBannedStatus}, nil
}

func (s *Service) self(ctx context.Context, caller identity.Identity, userID int64) (*user.User, error) {
	if !caller.IsClient() || caller.ID != userID {
		return nil, user.ErrOtherUser
	}
	u, err := s.uow.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, user.ErrUserNotFound
		}
		s.logger.Error("User lookup failed", "user_id", userID, "error", err)
		return nil, err
	}
	return u, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func isDomainError(err error) bool {
	var de *domain.Error
	return errors.As(err, &de)
}
