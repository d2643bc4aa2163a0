// Package depository models the securities side of a client: one depository
// account per verified user, a balance per security and its movement history.
package depository

import (
	"fmt"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound        = domain.NewError(domain.ErrNotFound, "depository account not found")
	ErrInsufficientSecurities = domain.NewError(domain.ErrStateConflict, "insufficient securities")
)

// Account is a client's depository account.
type Account struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	ContractNumber string    `gorm:"size:50;not null;uniqueIndex" json:"contract_number"`
	OpenedAt       time.Time `gorm:"not null" json:"opened_at"`
}

func (Account) TableName() string { return "depository_accounts" }

// NewAccount opens a depository account for userID.
func NewAccount(userID int64, at time.Time) *Account {
	at = at.UTC()
	return &Account{
		UserID:         userID,
		ContractNumber: fmt.Sprintf("DEP-%d-%s", userID, at.Format("20060102")),
		OpenedAt:       at,
	}
}

// Holding is the number of units of one security held on a depository account.
type Holding struct {
	ID                  int64           `gorm:"primaryKey" json:"id"`
	DepositoryAccountID int64           `gorm:"not null;uniqueIndex:idx_holdings_account_security" json:"depository_account_id"`
	UserID              int64           `gorm:"not null;index" json:"user_id"`
	SecurityID          int64           `gorm:"not null;uniqueIndex:idx_holdings_account_security" json:"security_id"`
	Amount              decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"amount"`
}

func (Holding) TableName() string { return "depository_account_balances" }

// Apply adds delta units. Holdings never go below zero.
func (h *Holding) Apply(delta decimal.Decimal) error {
	next := h.Amount.Add(delta)
	if next.IsNegative() {
		return ErrInsufficientSecurities
	}
	if err := money.CheckBalance(next); err != nil {
		return err
	}
	h.Amount = next
	return nil
}

// Operation is one row of the depository history.
type Operation struct {
	ID                  int64           `gorm:"primaryKey" json:"id"`
	DepositoryAccountID int64           `gorm:"not null;index" json:"depository_account_id"`
	UserID              int64           `gorm:"not null" json:"user_id"`
	SecurityID          int64           `gorm:"not null" json:"security_id"`
	Amount              decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	OperationTypeID     int64           `gorm:"not null" json:"operation_type_id"`
	ProposalID          *int64          `json:"proposal_id,omitempty"`
	StaffID             int64           `gorm:"not null" json:"staff_id"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
}

func (Operation) TableName() string { return "depository_account_history" }
