// Package passport handles identity document submission and verification.
// Verification opens the client's depository account, which is what allows
// the client to trade.
package passport

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/passport"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/repository"
)

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger, now: time.Now}
}

// Submit stores the user's actual passport and marks the user as pending
// verification. Submissions of one user are serialized on the user row.
func (s *Service) Submit(ctx context.Context, userID int64, p *passport.Passport) (*passport.Passport, error) {
	log := s.logger.With("context", "SubmitPassport", "user_id", userID)
	now := s.now()
	if err := p.Normalize(now); err != nil {
		return nil, err
	}
	p.UserID = userID
	p.CreatedAt = now.UTC()

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		u, err := uow.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return notFound(err, user.ErrUserNotFound)
		}
		exists, err := uow.Passports().HasActual(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			return passport.ErrAlreadySubmitted
		}
		if err := uow.Passports().Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return passport.ErrAlreadySubmitted
			}
			return err
		}
		if u.IsVerified() {
			return nil
		}
		u.VerificationStatusID = user.VerificationPending
		return uow.Users().Update(ctx, u)
	})
	if err != nil {
		log.Warn("Passport submission failed", "error", err)
		return nil, err
	}
	log.Info("Passport submitted", "passport_id", p.ID)
	return p, nil
}

// Verify confirms the user's actual passport and opens the depository account.
func (s *Service) Verify(ctx context.Context, userID int64) (*depository.Account, error) {
	log := s.logger.With("context", "VerifyPassport", "user_id", userID)
	var acc *depository.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		u, err := uow.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return notFound(err, user.ErrUserNotFound)
		}
		exists, err := uow.Passports().HasActual(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return passport.ErrPassportNotFound
		}
		if u.IsVerified() {
			return passport.ErrAlreadyVerified
		}
		u.VerificationStatusID = user.VerificationVerified
		if err := uow.Users().Update(ctx, u); err != nil {
			return err
		}

		acc, err = uow.Depository().GetAccountByUser(ctx, userID)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		acc = depository.NewAccount(userID, s.now())
		return uow.Depository().CreateAccount(ctx, acc)
	})
	if err != nil {
		log.Warn("Passport verification failed", "error", err)
		return nil, err
	}
	log.Info("User verified", "depository_account_id", acc.ID, "contract", acc.ContractNumber)
	return acc, nil
}

// GetActual returns the user's actual passport.
func (s *Service) GetActual(ctx context.Context, userID int64) (*passport.Passport, error) {
	p, err := s.uow.Passports().GetActual(ctx, userID)
	if err != nil {
		return nil, notFound(err, passport.ErrPassportNotFound)
	}
	return p, nil
}

// DeleteActual removes the user's actual passport. The verification status
// is left as it is.
func (s *Service) DeleteActual(ctx context.Context, userID int64) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		p, err := uow.Passports().GetActual(ctx, userID)
		if err != nil {
			return notFound(err, passport.ErrPassportNotFound)
		}
		return uow.Passports().Delete(ctx, p.ID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Passport deleted", "user_id", userID)
	return nil
}

func notFound(err, specific error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return specific
	}
	return err
}
