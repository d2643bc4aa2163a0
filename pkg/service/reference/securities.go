package reference

import (
	"context"
	"errors"
	"strings"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTicker       = domain.NewFieldError("ticker", "ticker must be 1 to 12 characters long")
	ErrInvalidSecurityName = domain.NewFieldError("name", "security name must be at most 255 characters long")
)

// ListStocks returns the exchange screen. Archived securities are included
// only on request.
func (s *Service) ListStocks(ctx context.Context, includeArchived bool) ([]dto.StockRead, error) {
	return s.uow.Securities().List(ctx, includeArchived)
}

// CreateStock lists a security and records its first price on behalf of
// in.StaffID.
func (s *Service) CreateStock(ctx context.Context, in dto.StockCreate) (*reference.Security, error) {
	ticker, err := validTicker(in.Ticker)
	if err != nil {
		return nil, err
	}
	isin, err := reference.NormalizeISIN(in.ISIN)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = ticker
	}
	if len([]rune(name)) > 255 {
		return nil, ErrInvalidSecurityName
	}
	if in.LotSize <= 0 {
		return nil, reference.ErrInvalidLotSize
	}
	if err := money.ValidatePrice(in.Price); err != nil {
		return nil, err
	}

	sec := &reference.Security{
		Name:          name,
		Ticker:        ticker,
		ISIN:          isin,
		LotSize:       in.LotSize,
		CurrencyID:    in.CurrencyID,
		PaysDividends: in.PaysDividends,
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := activeCurrency(ctx, uow, in.CurrencyID); err != nil {
			return err
		}
		repo := uow.Securities()
		if err := checkSecurityUnique(ctx, repo, sec); err != nil {
			return err
		}
		if err := repo.Create(ctx, sec); err != nil {
			return err
		}
		return repo.AddPrice(ctx, s.price(sec.ID, in.Price, in.StaffID))
	})
	if err != nil {
		s.logger.Warn("Security creation failed", "ticker", ticker, "error", err)
		return nil, err
	}
	s.logger.Info("Security listed", "security_id", sec.ID, "ticker", ticker, "isin", isin)
	return sec, nil
}

// UpdateStock changes the non-nil fields of in. A new price is appended to
// the price history.
func (s *Service) UpdateStock(ctx context.Context, id int64, in dto.StockUpdate) (*reference.Security, error) {
	if in.Name == nil && in.Ticker == nil && in.ISIN == nil && in.LotSize == nil &&
		in.Price == nil && in.CurrencyID == nil && in.PaysDividends == nil {
		return nil, ErrNothingToUpdate
	}
	var sec *reference.Security
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Securities()
		var err error
		sec, err = repo.Get(ctx, id)
		if err != nil {
			return notFound(err, reference.ErrSecurityNotFound)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" || len([]rune(name)) > 255 {
				return ErrInvalidSecurityName
			}
			sec.Name = name
		}
		if in.Ticker != nil {
			if sec.Ticker, err = validTicker(*in.Ticker); err != nil {
				return err
			}
		}
		if in.ISIN != nil {
			if sec.ISIN, err = reference.NormalizeISIN(*in.ISIN); err != nil {
				return err
			}
		}
		if in.LotSize != nil {
			if *in.LotSize <= 0 {
				return reference.ErrInvalidLotSize
			}
			sec.LotSize = *in.LotSize
		}
		if in.CurrencyID != nil && *in.CurrencyID != sec.CurrencyID {
			if err := activeCurrency(ctx, uow, *in.CurrencyID); err != nil {
				return err
			}
			sec.CurrencyID = *in.CurrencyID
		}
		if in.PaysDividends != nil {
			sec.PaysDividends = *in.PaysDividends
		}
		if err := checkSecurityUnique(ctx, repo, sec); err != nil {
			return err
		}
		if err := repo.Update(ctx, sec); err != nil {
			return err
		}
		if in.Price == nil {
			return nil
		}
		if err := money.ValidatePrice(*in.Price); err != nil {
			return err
		}
		return repo.AddPrice(ctx, s.price(sec.ID, *in.Price, in.StaffID))
	})
	if err != nil {
		s.logger.Warn("Security update failed", "security_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("Security updated", "security_id", id)
	return sec, nil
}

// ArchiveStock delists a security. The archiving staff member is recorded
// on a price history row carrying the current price.
func (s *Service) ArchiveStock(ctx context.Context, id, staffID int64) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Securities()
		sec, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, reference.ErrSecurityNotFound)
		}
		if sec.Archived {
			return reference.ErrAlreadyArchived
		}
		sec.Archived = true
		if err := repo.Update(ctx, sec); err != nil {
			return err
		}
		price, err := repo.CurrentPrice(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		return repo.AddPrice(ctx, s.price(id, price, staffID))
	})
	if err != nil {
		s.logger.Warn("Security archiving failed", "security_id", id, "error", err)
		return err
	}
	s.logger.Info("Security archived", "security_id", id, "staff_id", staffID)
	return nil
}

// DeleteStock removes a security that was never traded, with its price history.
func (s *Service) DeleteStock(ctx context.Context, id int64) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Securities()
		if _, err := repo.Get(ctx, id); err != nil {
			return notFound(err, reference.ErrSecurityNotFound)
		}
		used, err := repo.InUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return reference.ErrSecurityInUse
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Warn("Security deletion failed", "security_id", id, "error", err)
		return err
	}
	s.logger.Info("Security deleted", "security_id", id)
	return nil
}

func (s *Service) price(securityID int64, price decimal.Decimal, staffID int64) *reference.PriceHistory {
	p := &reference.PriceHistory{
		SecurityID: securityID,
		Price:      price,
		RecordedAt: s.now().UTC(),
	}
	if staffID != 0 {
		p.StaffID = &staffID
	}
	return p
}

func activeCurrency(ctx context.Context, uow repository.UnitOfWork, id int64) error {
	c, err := uow.Currencies().Get(ctx, id)
	if err != nil {
		return notFound(err, reference.ErrCurrencyNotFound)
	}
	if c.Archived {
		return reference.ErrCurrencyArchived
	}
	return nil
}

func checkSecurityUnique(ctx context.Context, repo repository.SecurityRepository, sec *reference.Security) error {
	if taken, err := repo.ExistsByTicker(ctx, sec.Ticker, sec.ID); err != nil {
		return err
	} else if taken {
		return reference.ErrTickerTaken
	}
	if taken, err := repo.ExistsByISIN(ctx, sec.ISIN, sec.ID); err != nil {
		return err
	} else if taken {
		return reference.ErrISINTaken
	}
	return nil
}

func validTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || len(ticker) > 12 {
		return "", ErrInvalidTicker
	}
	return ticker, nil
}
