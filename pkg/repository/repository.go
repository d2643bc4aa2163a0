package repository

import (
	"context"

	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/passport"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/shopspring/decimal"
)

// Methods named ...ForUpdate lock the returned row until the surrounding
// transaction ends. Lookups of a missing row return domain.ErrNotFound.

// UserRepository defines the interface for client data access operations.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*user.User, error)
	GetForUpdate(ctx context.Context, id int64) (*user.User, error)
	GetByLogin(ctx context.Context, login string) (*user.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// ExistsByLogin ignores the row with id exceptID (0 ignores nothing).
	ExistsByLogin(ctx context.Context, login string, exceptID int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, exceptID int64) (bool, error)
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id int64) error
}

// StaffRepository defines the interface for staff data access operations.
type StaffRepository interface {
	Get(ctx context.Context, id int64) (*staff.Staff, error)
	GetRead(ctx context.Context, id int64) (*dto.StaffRead, error)
	GetByLogin(ctx context.Context, login string) (*staff.Staff, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByLogin(ctx context.Context, login string, exceptID int64) (bool, error)
	ExistsByContract(ctx context.Context, contract string, exceptID int64) (bool, error)
	Create(ctx context.Context, s *staff.Staff) error
	Update(ctx context.Context, s *staff.Staff) error
	Delete(ctx context.Context, id int64) error
}

// LookupRepository serves the {id, name} dictionaries named by reference.Table* constants.
type LookupRepository interface {
	List(ctx context.Context, table string) ([]reference.Lookup, error)
	Get(ctx context.Context, table string, id int64) (*reference.Lookup, error)
	Exists(ctx context.Context, table string, id int64) (bool, error)
	ExistsByName(ctx context.Context, table, name string, exceptID int64) (bool, error)
	Create(ctx context.Context, table string, l *reference.Lookup) error
	Update(ctx context.Context, table string, l *reference.Lookup) error
	Delete(ctx context.Context, table string, id int64) error
	// InUse reports whether any row references the entry.
	InUse(ctx context.Context, table string, id int64) (bool, error)
}

// BankRepository defines the interface for bank data access operations.
type BankRepository interface {
	List(ctx context.Context) ([]reference.Bank, error)
	Get(ctx context.Context, id int64) (*reference.Bank, error)
	ExistsByINN(ctx context.Context, inn string, exceptID int64) (bool, error)
	ExistsByOGRN(ctx context.Context, ogrn string, exceptID int64) (bool, error)
	ExistsByBIK(ctx context.Context, bik string, exceptID int64) (bool, error)
	Create(ctx context.Context, b *reference.Bank) error
	Update(ctx context.Context, b *reference.Bank) error
	Delete(ctx context.Context, id int64) error
	InUse(ctx context.Context, id int64) (bool, error)
}

// CurrencyRepository defines the interface for currency and rate data access operations.
type CurrencyRepository interface {
	List(ctx context.Context) ([]dto.CurrencyRead, error)
	Get(ctx context.Context, id int64) (*reference.Currency, error)
	ExistsByCode(ctx context.Context, code string, exceptID int64) (bool, error)
	Create(ctx context.Context, c *reference.Currency) error
	Update(ctx context.Context, c *reference.Currency) error
	// Delete removes the currency together with its rates.
	Delete(ctx context.Context, id int64) error
	// InUse reports whether accounts or securities reference the currency.
	InUse(ctx context.Context, id int64) (bool, error)
	// SaveRate stores the rate for its currency and day, replacing a rate of the same day.
	SaveRate(ctx context.Context, r *reference.CurrencyRate) error
	// LatestRates returns the most recent rate per currency id.
	LatestRates(ctx context.Context) (map[int64]decimal.Decimal, error)
}

// SecurityRepository defines the interface for security and price data access operations.
type SecurityRepository interface {
	List(ctx context.Context, includeArchived bool) ([]dto.StockRead, error)
	Get(ctx context.Context, id int64) (*reference.Security, error)
	ExistsByTicker(ctx context.Context, ticker string, exceptID int64) (bool, error)
	ExistsByISIN(ctx context.Context, isin string, exceptID int64) (bool, error)
	Create(ctx context.Context, s *reference.Security) error
	Update(ctx context.Context, s *reference.Security) error
	// Delete removes the security together with its price history.
	Delete(ctx context.Context, id int64) error
	InUse(ctx context.Context, id int64) (bool, error)
	AddPrice(ctx context.Context, p *reference.PriceHistory) error
	// CurrentPrice returns the latest recorded price or domain.ErrNotFound.
	CurrentPrice(ctx context.Context, securityID int64) (decimal.Decimal, error)
	CurrentPrices(ctx context.Context) (map[int64]decimal.Decimal, error)
}

// AccountRepository defines the interface for brokerage account and ledger data access.
type AccountRepository interface {
	Create(ctx context.Context, a *account.BrokerageAccount) error
	Get(ctx context.Context, id int64) (*account.BrokerageAccount, error)
	GetForUpdate(ctx context.Context, id int64) (*account.BrokerageAccount, error)
	GetRead(ctx context.Context, id int64) (*dto.AccountRead, error)
	ListByUser(ctx context.Context, userID int64) ([]dto.AccountRead, error)
	ExistsByINN(ctx context.Context, inn string) (bool, error)
	// UpdateBalance persists a.Balance.
	UpdateBalance(ctx context.Context, a *account.BrokerageAccount) error
	// Delete removes the account together with its ledger rows.
	Delete(ctx context.Context, id int64) error
	AppendOperation(ctx context.Context, op *account.Operation) error
	// Operations returns ledger rows newest first.
	Operations(ctx context.Context, accountID int64) ([]dto.OperationRead, error)
}

// ProposalRepository defines the interface for proposal data access operations.
type ProposalRepository interface {
	Create(ctx context.Context, p *proposal.Proposal) error
	Get(ctx context.Context, id int64) (*proposal.Proposal, error)
	GetForUpdate(ctx context.Context, id int64) (*proposal.Proposal, error)
	GetRead(ctx context.Context, id int64) (*dto.ProposalRead, error)
	Update(ctx context.Context, p *proposal.Proposal) error
	ListByUser(ctx context.Context, userID int64) ([]dto.ProposalRead, error)
	List(ctx context.Context) ([]dto.ProposalRead, error)
	CountPending(ctx context.Context, accountID int64) (int64, error)
	// DeleteByAccount removes the proposals of an account and detaches them
	// from both history tables.
	DeleteByAccount(ctx context.Context, accountID int64) error
}

// DepositoryRepository defines the interface for depository accounts, holdings and history.
type DepositoryRepository interface {
	GetAccountByUser(ctx context.Context, userID int64) (*depository.Account, error)
	// GetAccountByUserForUpdate locks the account row, serializing holding creation.
	GetAccountByUserForUpdate(ctx context.Context, userID int64) (*depository.Account, error)
	CreateAccount(ctx context.Context, a *depository.Account) error
	// GetHoldingForUpdate returns domain.ErrNotFound when nothing was ever held.
	GetHoldingForUpdate(ctx context.Context, accountID, securityID int64) (*depository.Holding, error)
	GetHolding(ctx context.Context, accountID, securityID int64) (*depository.Holding, error)
	SaveHolding(ctx context.Context, h *depository.Holding) error
	AppendOperation(ctx context.Context, op *depository.Operation) error
	// Holdings returns positive positions of a user.
	Holdings(ctx context.Context, userID int64) ([]dto.HoldingRead, error)
	// Operations returns the user's depository history newest first.
	Operations(ctx context.Context, userID int64) ([]dto.HoldingOperationRead, error)
	OperationsSummary(ctx context.Context) ([]dto.OperationSummary, error)
}

// PassportRepository defines the interface for passport data access operations.
type PassportRepository interface {
	GetActual(ctx context.Context, userID int64) (*passport.Passport, error)
	HasActual(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, p *passport.Passport) error
	Delete(ctx context.Context, id int64) error
}

// TableRepository dumps whole tables by name.
type TableRepository interface {
	// Dump returns every row of table ordered by id or reference.ErrTableNotFound.
	Dump(ctx context.Context, table string) (any, error)
	Names() []string
}
