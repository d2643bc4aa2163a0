// Package account provides business logic for brokerage (cash) accounts:
// opening and closing them, moving money in and out, and valuing a client's
// whole position in one currency.
//
// Balance changes follow a two-step protocol. A cheap optimistic check runs
// outside any transaction and rejects obviously invalid requests; the
// authoritative check runs again on the row locked with SELECT ... FOR UPDATE
// inside the transaction that writes the new balance and its ledger row.
package account

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"time"

	"github.com/amirasaad/brokerage/pkg/cache"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/eventbus"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrCurrencyUnavailable is returned when an account is opened in an unknown or archived currency.
var ErrCurrencyUnavailable = domain.NewError(domain.ErrNotFound, "currency not found or archived")

// Service provides business logic for brokerage accounts.
type Service struct {
	uow      repository.UnitOfWork
	eventBus eventbus.Bus
	roles    *config.Roles
	ledger   *config.Ledger
	rates    cache.RateCache
	ratesTTL time.Duration
	loading  singleflight.Group
	logger   *slog.Logger
}

// New creates a new Service with the provided dependencies.
func New(
	uow repository.UnitOfWork,
	eventBus eventbus.Bus,
	roles *config.Roles,
	ledger *config.Ledger,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:      uow,
		eventBus: eventBus,
		roles:    roles,
		ledger:   ledger,
		rates:    cache.Nop{},
		logger:   logger,
	}
}

// WithRateCache makes TotalValue read the latest rates through rates, keeping
// a loaded snapshot for ttl.
func (s *Service) WithRateCache(rates cache.RateCache, ttl time.Duration) *Service {
	if rates != nil && ttl > 0 {
		s.rates, s.ratesTTL = rates, ttl
	}
	return s
}

func (s *Service) latestRates(ctx context.Context) (map[int64]decimal.Decimal, error) {
	rates, ok, err := s.rates.Get(ctx)
	if err != nil {
		s.logger.Warn("Rate cache read failed", "error", err)
	}
	if ok {
		return rates, nil
	}
	v, err, _ := s.loading.Do("latest_rates", func() (any, error) {
		loaded, err := s.uow.Currencies().LatestRates(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.rates.Set(ctx, loaded, s.ratesTTL); err != nil {
			s.logger.Warn("Rate cache write failed", "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing one load get the same map.
	return maps.Clone(v.(map[int64]decimal.Decimal)), nil
}

// Create opens an empty account for the user.
func (s *Service) Create(ctx context.Context, in dto.AccountCreate) (a *dto.AccountRead, err error) {
	log := s.logger.With("context", "CreateAccount", "user_id", in.UserID)
	acc, err := account.New(in.UserID, in.BankID, in.CurrencyID, in.INN)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Banks().Get(ctx, in.BankID); err != nil {
			return notFound(err, reference.ErrBankNotFound)
		}
		c, err := uow.Currencies().Get(ctx, in.CurrencyID)
		if err != nil {
			return notFound(err, ErrCurrencyUnavailable)
		}
		if c.Archived {
			return ErrCurrencyUnavailable
		}
		repo := uow.Accounts()
		if taken, err := repo.ExistsByINN(ctx, acc.INN); err != nil {
			return err
		} else if taken {
			return account.ErrINNTaken
		}
		if err := repo.Create(ctx, acc); err != nil {
			return err
		}
		a, err = repo.GetRead(ctx, acc.ID)
		return err
	})
	if err != nil {
		log.Warn("Account creation failed", "error", err)
		return nil, err
	}
	log.Info("Account opened", "account_id", a.AccountID)
	return a, nil
}

// List returns the user's accounts.
func (s *Service) List(ctx context.Context, userID int64) ([]dto.AccountRead, error) {
	return s.uow.Accounts().ListByUser(ctx, userID)
}

// Get returns one of the user's accounts. Accounts of other users are reported as missing.
func (s *Service) Get(ctx context.Context, userID, accountID int64) (*dto.AccountRead, error) {
	a, err := s.uow.Accounts().GetRead(ctx, accountID)
	if err != nil {
		return nil, notFound(err, account.ErrAccountNotFound)
	}
	if a.UserID != userID {
		return nil, account.ErrAccountNotFound
	}
	return a, nil
}

// Operations returns the ledger of one of the user's accounts, newest first.
func (s *Service) Operations(ctx context.Context, userID, accountID int64) ([]dto.OperationRead, error) {
	if _, err := s.owned(ctx, s.uow.Accounts(), userID, accountID, false); err != nil {
		return nil, err
	}
	return s.uow.Accounts().Operations(ctx, accountID)
}

// Delete closes an account. The balance must be zero and no proposal on the
// account may be pending; its ledger and settled proposals go with it.
func (s *Service) Delete(ctx context.Context, userID, accountID int64) error {
	log := s.logger.With("context", "DeleteAccount", "user_id", userID, "account_id", accountID)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err := s.owned(ctx, uow.Accounts(), userID, accountID, true)
		if err != nil {
			return err
		}
		if err := acc.CanClose(); err != nil {
			return err
		}
		pending, err := uow.Proposals().CountPending(ctx, acc.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return account.ErrPendingProposals
		}
		if err := uow.Proposals().DeleteByAccount(ctx, acc.ID); err != nil {
			return err
		}
		return uow.Accounts().Delete(ctx, acc.ID)
	})
	if err != nil {
		log.Warn("Account deletion failed", "error", err)
		return err
	}
	log.Info("Account closed")
	return nil
}

// ChangeBalance deposits (positive amount) or withdraws (negative amount) money.
func (s *Service) ChangeBalance(
	ctx context.Context,
	userID, accountID int64,
	amount decimal.Decimal,
) (*dto.BalanceChange, error) {
	log := s.logger.With("context", "ChangeBalance", "user_id", userID, "account_id", accountID, "amount", amount)
	if err := money.ValidateChange(amount); err != nil {
		return nil, err
	}

	current, err := s.owned(ctx, s.uow.Accounts(), userID, accountID, false)
	if err != nil {
		return nil, err
	}
	if current.Balance.Add(amount).IsNegative() {
		log.Warn("Rejected by optimistic check", "balance", current.Balance)
		return nil, account.ErrInsufficientFunds
	}

	opType := s.ledger.Increase
	if amount.IsNegative() {
		opType = s.ledger.Decrease
	}
	var op *account.Operation
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Accounts()
		acc, err := s.owned(ctx, repo, userID, accountID, true)
		if err != nil {
			return err
		}
		if err := acc.Apply(amount); err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, acc); err != nil {
			return err
		}
		op = &account.Operation{
			BrokerageAccountID: acc.ID,
			Amount:             amount,
			BalanceAfter:       acc.Balance,
			OperationTypeID:    opType,
			StaffID:            s.roles.SystemStaffID,
			CreatedAt:          time.Now().UTC(),
		}
		return repo.AppendOperation(ctx, op)
	})
	if err != nil {
		log.Warn("Balance change failed", "error", err)
		return nil, err
	}

	log.Info("Balance changed", "operation_id", op.ID, "balance", op.BalanceAfter)
	eventbus.EmitAll(ctx, s.eventBus, s.logger,
		events.NewBalanceChanged(accountID, userID, amount, op.BalanceAfter, op.ID, opType))
	return &dto.BalanceChange{
		AccountID:   accountID,
		OperationID: op.ID,
		Amount:      amount,
		NewBalance:  op.BalanceAfter,
	}, nil
}

// TotalValue sums the user's cash and securities in the target currency.
// Securities are valued at their latest price; every amount is converted
// through the latest rate of its currency against the base currency.
func (s *Service) TotalValue(ctx context.Context, userID, currencyID int64) (*dto.TotalValue, error) {
	target, err := s.uow.Currencies().Get(ctx, currencyID)
	if err != nil {
		return nil, notFound(err, reference.ErrCurrencyNotFound)
	}
	rates, err := s.latestRates(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.uow.Accounts().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.uow.Depository().Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	prices, err := s.uow.Securities().CurrentPrices(ctx)
	if err != nil {
		return nil, err
	}

	convert := func(amount decimal.Decimal, from int64) (decimal.Decimal, error) {
		fromRate, ok := rates[from]
		if !ok {
			return decimal.Zero, reference.ErrRateNotFound
		}
		toRate, ok := rates[target.ID]
		if !ok {
			return decimal.Zero, reference.ErrRateNotFound
		}
		return money.Convert(amount, fromRate, toRate)
	}

	cash := decimal.Zero
	for _, a := range accounts {
		v, err := convert(a.Balance, a.CurrencyID)
		if err != nil {
			return nil, err
		}
		cash = cash.Add(v)
	}
	securities := decimal.Zero
	for _, h := range holdings {
		price, ok := prices[h.SecurityID]
		if !ok {
			continue
		}
		v, err := convert(price.Mul(h.Amount), h.CurrencyID)
		if err != nil {
			return nil, err
		}
		securities = securities.Add(v)
	}

	return &dto.TotalValue{
		CurrencyID:     target.ID,
		CurrencyCode:   target.Code,
		CurrencySymbol: target.Symbol,
		Cash:           money.Round(cash),
		Securities:     money.Round(securities),
		Total:          money.Round(cash.Add(securities)),
	}, nil
}

// owned loads an account of the user, optionally locking it.
func (s *Service) owned(
	ctx context.Context,
	repo repository.AccountRepository,
	userID, accountID int64,
	lock bool,
) (*account.BrokerageAccount, error) {
	get := repo.Get
	if lock {
		get = repo.GetForUpdate
	}
	acc, err := get(ctx, accountID)
	if err != nil {
		return nil, notFound(err, account.ErrAccountNotFound)
	}
	if acc.UserID != userID {
		return nil, account.ErrAccountNotFound
	}
	return acc, nil
}

// notFound replaces a bare not-found error with a specific one.
func notFound(err, specific error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return specific
	}
	return err
}
