// Package proposal implements the buy/sell request lifecycle:
//
//	pending -> approved | rejected | cancelled
//
// Terminal states never change again.
package proposal

import (
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrProposalNotFound  = domain.NewError(domain.ErrNotFound, "proposal not found")
	ErrAlreadyProcessed  = domain.NewError(domain.ErrStateConflict, "proposal already processed")
	ErrNotVerified       = domain.NewError(domain.ErrStateConflict, "user is not verified")
	ErrCurrencyMismatch  = domain.NewError(domain.ErrValidation, "account currency does not match security currency")
	ErrInvalidType       = domain.NewFieldError("proposal_type_id", "proposal type must be 1 (buy) or 2 (sell)")
	ErrInvalidQuantity   = domain.NewFieldError("quantity", "quantity must be a positive number of lots")
	ErrInvalidResolution = domain.Validation("unknown proposal resolution")
)

// Type is the proposal direction.
type Type int64

const (
	Buy  Type = 1
	Sell Type = 2
)

func (t Type) Valid() bool { return t == Buy || t == Sell }

func (t Type) String() string {
	switch t {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state.
type Status int64

const (
	Pending   Status = 1
	Approved  Status = 2
	Rejected  Status = 3
	Cancelled Status = 4
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s Status) IsTerminal() bool { return s != Pending }

// Resolution is the outcome requested for a pending proposal.
type Resolution string

const (
	Approve Resolution = "approved"
	Reject  Resolution = "rejected"
	Cancel  Resolution = "cancelled"
)

// Target returns the status a resolution moves a proposal into.
func (r Resolution) Target() (Status, error) {
	switch r {
	case Approve:
		return Approved, nil
	case Reject:
		return Rejected, nil
	case Cancel:
		return Cancelled, nil
	default:
		return 0, ErrInvalidResolution
	}
}

// ResolutionFor maps the staff "verify" flag to a resolution.
func ResolutionFor(verify bool) Resolution {
	if verify {
		return Approve
	}
	return Reject
}

// Proposal is a client's request to buy or sell a number of lots.
type Proposal struct {
	ID                 int64               `gorm:"primaryKey" json:"id"`
	UserID             int64               `gorm:"not null;index" json:"user_id"`
	BrokerageAccountID int64               `gorm:"not null;index" json:"brokerage_account_id"`
	SecurityID         int64               `gorm:"not null" json:"security_id"`
	TypeID             Type                `gorm:"column:proposal_type_id;not null" json:"proposal_type_id"`
	StatusID           Status              `gorm:"column:proposal_status_id;not null" json:"proposal_status_id"`
	Lots               int64               `gorm:"not null" json:"quantity"`
	Price              decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"price"`
	Total              decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"total"`
	CreatedAt          time.Time           `gorm:"not null" json:"created_at"`
	ProcessedAt        *time.Time          `json:"processed_at,omitempty"`
	ProcessedBy        *int64              `json:"processed_by,omitempty"`
}

func (Proposal) TableName() string { return "proposals" }

// New creates a pending proposal.
func New(userID, accountID, securityID int64, t Type, lots int64) (*Proposal, error) {
	if !t.Valid() {
		return nil, ErrInvalidType
	}
	if lots <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Proposal{
		UserID:             userID,
		BrokerageAccountID: accountID,
		SecurityID:         securityID,
		TypeID:             t,
		StatusID:           Pending,
		Lots:               lots,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

// Units is the number of security units the proposal moves.
func (p *Proposal) Units(lotSize int64) decimal.Decimal {
	return decimal.NewFromInt(p.Lots).Mul(decimal.NewFromInt(lotSize))
}

// Resolve moves a pending proposal into the terminal state of r.
// It fails with ErrAlreadyProcessed once the proposal left pending.
func (p *Proposal) Resolve(r Resolution, staffID int64, at time.Time) error {
	target, err := r.Target()
	if err != nil {
		return err
	}
	if p.StatusID != Pending {
		return ErrAlreadyProcessed
	}
	at = at.UTC()
	p.StatusID = target
	p.ProcessedBy = &staffID
	p.ProcessedAt = &at
	return nil
}

// Execute records the settlement price and total of an approved proposal.
func (p *Proposal) Execute(price, total decimal.Decimal) {
	p.Price = decimal.NewNullDecimal(price)
	p.Total = decimal.NewNullDecimal(total)
}
