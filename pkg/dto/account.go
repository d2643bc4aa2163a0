package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRead is a read-optimized view of a brokerage account joined with its
// bank and currency.
type AccountRead struct {
	AccountID      int64           `json:"account_id"`
	UserID         int64           `json:"user_id"`
	Balance        decimal.Decimal `json:"balance"`
	INN            string          `json:"inn"`
	BankID         int64           `json:"bank_id"`
	BankName       string          `json:"bank_name"`
	BIK            string          `json:"bik"`
	CurrencyID     int64           `json:"currency_id"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencySymbol string          `json:"currency_symbol"`
	OpenedAt       time.Time       `json:"opened_at"`
}

// AccountCreate carries the fields a client supplies to open an account.
type AccountCreate struct {
	UserID     int64
	BankID     int64
	CurrencyID int64
	INN        string
}

// OperationRead is one ledger row of a brokerage account.
type OperationRead struct {
	ID              int64           `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	OperationTypeID int64           `json:"operation_type_id"`
	OperationType   string          `json:"operation_type"`
	StaffID         int64           `json:"staff_id"`
	ProposalID      *int64          `json:"proposal_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BalanceChange is the outcome of a committed balance change.
type BalanceChange struct {
	AccountID   int64           `json:"account_id"`
	OperationID int64           `json:"operation_id"`
	Amount      decimal.Decimal `json:"amount"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

// TotalValue is the value of everything a client owns expressed in one currency.
type TotalValue struct {
	CurrencyID     int64           `json:"currency_id"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencySymbol string          `json:"currency_symbol"`
	Cash           decimal.Decimal `json:"cash"`
	Securities     decimal.Decimal `json:"securities"`
	Total          decimal.Decimal `json:"total"`
}
