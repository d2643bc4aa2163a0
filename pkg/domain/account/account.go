// Package account models brokerage (cash) accounts and their ledger.
package account

import (
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound   = domain.NewError(domain.ErrNotFound, "brokerage account not found")
	ErrInsufficientFunds = domain.NewError(domain.ErrStateConflict, "insufficient funds")
	ErrNonZeroBalance    = domain.NewError(domain.ErrStateConflict, "account balance must be zero to close the account")
	ErrPendingProposals  = domain.NewError(domain.ErrStateConflict, "account has pending proposals")
	ErrINNTaken          = domain.NewError(domain.ErrAlreadyExists, "account INN already in use")
	ErrInvalidINN        = domain.NewFieldError("inn", "INN must contain 10 or 12 digits")
)

// BrokerageAccount holds a client's cash in a single currency.
type BrokerageAccount struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	UserID     int64           `gorm:"not null;index" json:"user_id"`
	BankID     int64           `gorm:"not null" json:"bank_id"`
	CurrencyID int64           `gorm:"not null" json:"currency_id"`
	INN        string          `gorm:"column:inn;size:12;not null;uniqueIndex" json:"inn"`
	Balance    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
	OpenedAt   time.Time       `gorm:"not null" json:"opened_at"`
}

func (BrokerageAccount) TableName() string { return "brokerage_accounts" }

// New opens an empty account.
func New(userID, bankID, currencyID int64, inn string) (*BrokerageAccount, error) {
	inn = strings.TrimSpace(inn)
	if err := ValidateINN(inn); err != nil {
		return nil, err
	}
	return &BrokerageAccount{
		UserID:     userID,
		BankID:     bankID,
		CurrencyID: currencyID,
		INN:        inn,
		Balance:    decimal.Zero,
		OpenedAt:   time.Now().UTC(),
	}, nil
}

// Apply adds delta to the balance. The balance never goes below zero or
// past money.MaxBalance.
func (a *BrokerageAccount) Apply(delta decimal.Decimal) error {
	next := money.Round(a.Balance.Add(delta))
	if next.IsNegative() {
		return ErrInsufficientFunds
	}
	if err := money.CheckBalance(next); err != nil {
		return err
	}
	a.Balance = next
	return nil
}

// CanClose reports whether the account may be deleted.
func (a *BrokerageAccount) CanClose() error {
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	return nil
}

// Operation is one row of the brokerage account ledger.
type Operation struct {
	ID                 int64           `gorm:"primaryKey" json:"id"`
	BrokerageAccountID int64           `gorm:"not null;index" json:"brokerage_account_id"`
	Amount             decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	BalanceAfter       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance_after"`
	OperationTypeID    int64           `gorm:"not null" json:"operation_type_id"`
	StaffID            int64           `gorm:"not null" json:"staff_id"`
	ProposalID         *int64          `json:"proposal_id,omitempty"`
	CreatedAt          time.Time       `gorm:"not null" json:"created_at"`
}

func (Operation) TableName() string { return "brokerage_account_history" }

// ValidateINN accepts 10 (legal entity) or 12 (individual) digit taxpayer numbers.
func ValidateINN(inn string) error {
	if len(inn) != 10 && len(inn) != 12 {
		return ErrInvalidINN
	}
	for _, r := range inn {
		if r < '0' || r > '9' {
			return ErrInvalidINN
		}
	}
	return nil
}
