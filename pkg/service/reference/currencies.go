package reference

import (
	"context"
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/shopspring/decimal"
)

var ErrInvalidSymbol = domain.NewFieldError("symbol", "currency symbol must be 1 to 10 characters long")

// Rates are stored as numeric(18,6).
const rateDigits = 6

var maxRate = decimal.New(1, 18-rateDigits)

func (s *Service) ListCurrencies(ctx context.Context) ([]dto.CurrencyRead, error) {
	return s.uow.Currencies().List(ctx)
}

// CreateCurrency adds a currency and its rate for today.
func (s *Service) CreateCurrency(ctx context.Context, in dto.CurrencyCreate) (*dto.CurrencyRead, error) {
	code, err := reference.NormalizeCode(in.Code)
	if err != nil {
		return nil, err
	}
	symbol, err := validSymbol(in.Symbol)
	if err != nil {
		return nil, err
	}
	if err := validRate(in.RateToBase); err != nil {
		return nil, err
	}

	c := &reference.Currency{Code: code, Symbol: symbol}
	day := reference.Day(s.now())
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Currencies()
		if taken, err := repo.ExistsByCode(ctx, code, 0); err != nil {
			return err
		} else if taken {
			return reference.ErrCurrencyCodeTaken
		}
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		return repo.SaveRate(ctx, &reference.CurrencyRate{CurrencyID: c.ID, RateDate: day, Rate: in.RateToBase})
	})
	if err != nil {
		s.logger.Warn("Currency creation failed", "code", code, "error", err)
		return nil, err
	}
	s.logger.Info("Currency created", "currency_id", c.ID, "code", code)
	s.invalidateRates(ctx)
	return &dto.CurrencyRead{
		ID:         c.ID,
		Code:       c.Code,
		Symbol:     c.Symbol,
		RateToBase: decimal.NewNullDecimal(in.RateToBase),
		RateDate:   &day,
	}, nil
}

// UpdateCurrency changes code and symbol; a new rate is stored for today.
func (s *Service) UpdateCurrency(ctx context.Context, id int64, in dto.CurrencyUpdate) error {
	if in.Code == nil && in.Symbol == nil && in.RateToBase == nil {
		return ErrNothingToUpdate
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Currencies()
		c, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, reference.ErrCurrencyNotFound)
		}
		if in.Code != nil {
			code, err := reference.NormalizeCode(*in.Code)
			if err != nil {
				return err
			}
			if taken, err := repo.ExistsByCode(ctx, code, id); err != nil {
				return err
			} else if taken {
				return reference.ErrCurrencyCodeTaken
			}
			c.Code = code
		}
		if in.Symbol != nil {
			if c.Symbol, err = validSymbol(*in.Symbol); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		if in.RateToBase == nil {
			return nil
		}
		if err := validRate(*in.RateToBase); err != nil {
			return err
		}
		return repo.SaveRate(ctx, &reference.CurrencyRate{
			CurrencyID: id,
			RateDate:   reference.Day(s.now()),
			Rate:       *in.RateToBase,
		})
	})
	if err != nil {
		s.logger.Warn("Currency update failed", "currency_id", id, "error", err)
		return err
	}
	s.logger.Info("Currency updated", "currency_id", id)
	if in.RateToBase != nil {
		s.invalidateRates(ctx)
	}
	return nil
}

// AddRate stores the rate of a currency for the day of at, replacing a rate
// already recorded for that day.
func (s *Service) AddRate(ctx context.Context, id int64, rate decimal.Decimal, at time.Time) error {
	if err := validRate(rate); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Currencies().Get(ctx, id); err != nil {
			return notFound(err, reference.ErrCurrencyNotFound)
		}
		return uow.Currencies().SaveRate(ctx, &reference.CurrencyRate{
			CurrencyID: id,
			RateDate:   reference.Day(at),
			Rate:       rate,
		})
	})
	if err != nil {
		return err
	}
	s.invalidateRates(ctx)
	return nil
}

// ArchiveCurrency hides a currency from new accounts and securities.
func (s *Service) ArchiveCurrency(ctx context.Context, id int64) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		c, err := uow.Currencies().Get(ctx, id)
		if err != nil {
			return notFound(err, reference.ErrCurrencyNotFound)
		}
		if c.Archived {
			return reference.ErrAlreadyArchived
		}
		c.Archived = true
		return uow.Currencies().Update(ctx, c)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Currency archived", "currency_id", id)
	return nil
}

// DeleteCurrency removes an unreferenced currency with its rates.
func (s *Service) DeleteCurrency(ctx context.Context, id int64) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Currencies()
		if _, err := repo.Get(ctx, id); err != nil {
			return notFound(err, reference.ErrCurrencyNotFound)
		}
		used, err := repo.InUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return reference.ErrCurrencyInUse
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Warn("Currency deletion failed", "currency_id", id, "error", err)
		return err
	}
	s.logger.Info("Currency deleted", "currency_id", id)
	s.invalidateRates(ctx)
	return nil
}

func validSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if n := len([]rune(symbol)); n == 0 || n > 10 {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}

func validRate(rate decimal.Decimal) error {
	if !rate.IsPositive() || rate.GreaterThanOrEqual(maxRate) || !rate.Equal(rate.Round(rateDigits)) {
		return money.ErrInvalidRate
	}
	return nil
}

// invalidateRates drops the cached rate snapshot. On failure the old snapshot
// lives until it expires.
func (s *Service) invalidateRates(ctx context.Context) {
	if err := s.rates.Invalidate(ctx); err != nil {
		s.logger.Warn("Rate cache invalidation failed", "error", err)
	}
}
