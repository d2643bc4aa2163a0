package reference

import (
	"context"
	"strings"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
)

var (
	ErrInvalidBankName = domain.NewFieldError("name", "bank name must be 1 to 255 characters long")
	ErrInvalidBankINN  = domain.NewFieldError("inn", "bank INN must contain 10 or 12 digits")
	ErrInvalidOGRN     = domain.NewFieldError("ogrn", "OGRN must contain 13 digits")
	ErrInvalidBIK      = domain.NewFieldError("bik", "BIK must contain 9 digits")
	ErrInvalidLicense  = domain.NewFieldError("license_expiry_date", "license expiry date is required")
)

func (s *Service) ListBanks(ctx context.Context) ([]reference.Bank, error) {
	return s.uow.Banks().List(ctx)
}

// CreateBank registers a bank. INN, OGRN and BIK are unique.
func (s *Service) CreateBank(ctx context.Context, in dto.BankWrite) (*reference.Bank, error) {
	b := &reference.Bank{
		Name:              strings.TrimSpace(in.Name),
		INN:               strings.TrimSpace(in.INN),
		OGRN:              strings.TrimSpace(in.OGRN),
		BIK:               strings.TrimSpace(in.BIK),
		LicenseExpiryDate: in.LicenseExpiryDate,
	}
	if err := validateBank(b); err != nil {
		return nil, err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := checkBankUnique(ctx, uow.Banks(), b); err != nil {
			return err
		}
		return uow.Banks().Create(ctx, b)
	})
	if err != nil {
		s.logger.Warn("Bank creation failed", "inn", b.INN, "error", err)
		return nil, err
	}
	s.logger.Info("Bank created", "bank_id", b.ID, "name", b.Name)
	return b, nil
}

// UpdateBank changes the non-empty fields of in.
func (s *Service) UpdateBank(ctx context.Context, id int64, in dto.BankWrite) (*reference.Bank, error) {
	if strings.TrimSpace(in.Name+in.INN+in.OGRN+in.BIK) == "" && in.LicenseExpiryDate.IsZero() {
		return nil, ErrNothingToUpdate
	}
	var b *reference.Bank
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		b, err = uow.Banks().Get(ctx, id)
		if err != nil {
			return notFound(err, reference.ErrBankNotFound)
		}
		for _, f := range []struct {
			dst *string
			src string
		}{
			{&b.Name, in.Name},
			{&b.INN, in.INN},
			{&b.OGRN, in.OGRN},
			{&b.BIK, in.BIK},
		} {
			if v := strings.TrimSpace(f.src); v != "" {
				*f.dst = v
			}
		}
		if !in.LicenseExpiryDate.IsZero() {
			b.LicenseExpiryDate = in.LicenseExpiryDate
		}
		if err := validateBank(b); err != nil {
			return err
		}
		if err := checkBankUnique(ctx, uow.Banks(), b); err != nil {
			return err
		}
		return uow.Banks().Update(ctx, b)
	})
	if err != nil {
		s.logger.Warn("Bank update failed", "bank_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("Bank updated", "bank_id", id)
	return b, nil
}

// DeleteBank removes a bank no brokerage account refers to.
func (s *Service) DeleteBank(ctx context.Context, id int64) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Banks().Get(ctx, id); err != nil {
			return notFound(err, reference.ErrBankNotFound)
		}
		used, err := uow.Banks().InUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return reference.ErrBankReferenced
		}
		return uow.Banks().Delete(ctx, id)
	})
	if err != nil {
		s.logger.Warn("Bank deletion failed", "bank_id", id, "error", err)
		return err
	}
	s.logger.Info("Bank deleted", "bank_id", id)
	return nil
}

func validateBank(b *reference.Bank) error {
	if b.Name == "" || len([]rune(b.Name)) > 255 {
		return ErrInvalidBankName
	}
	if account.ValidateINN(b.INN) != nil {
		return ErrInvalidBankINN
	}
	if !digits(b.OGRN, 13) {
		return ErrInvalidOGRN
	}
	if !digits(b.BIK, 9) {
		return ErrInvalidBIK
	}
	if b.LicenseExpiryDate.IsZero() {
		return ErrInvalidLicense
	}
	return nil
}

func checkBankUnique(ctx context.Context, repo repository.BankRepository, b *reference.Bank) error {
	checks := []struct {
		exists func(context.Context, string, int64) (bool, error)
		value  string
		err    error
	}{
		{repo.ExistsByINN, b.INN, reference.ErrBankINNTaken},
		{repo.ExistsByOGRN, b.OGRN, reference.ErrBankOGRNTaken},
		{repo.ExistsByBIK, b.BIK, reference.ErrBankBIKTaken},
	}
	for _, c := range checks {
		taken, err := c.exists(ctx, c.value, b.ID)
		if err != nil {
			return err
		}
		if taken {
			return c.err
		}
	}
	return nil
}
