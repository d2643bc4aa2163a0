package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a published event.
type EventType string

const (
	EventTypeBalanceChanged    EventType = "balance.changed"
	EventTypeProposalCreated   EventType = "proposal.created"
	EventTypeProposalProcessed EventType = "proposal.processed"
)

func (et EventType) String() string { return string(et) }

// Event is implemented by everything the ledger publishes.
type Event interface {
	Type() string
}

// Meta is embedded in every event.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newMeta() Meta {
	return Meta{ID: uuid.New(), OccurredAt: time.Now().UTC()}
}

// BalanceChanged is emitted after a committed brokerage account movement.
type BalanceChanged struct {
	Meta
	AccountID       int64           `json:"account_id"`
	UserID          int64           `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	OperationID     int64           `json:"operation_id"`
	OperationTypeID int64           `json:"operation_type_id"`
	ProposalID      *int64          `json:"proposal_id,omitempty"`
}

func (BalanceChanged) Type() string { return EventTypeBalanceChanged.String() }

// ProposalCreated is emitted once a pending proposal is stored.
type ProposalCreated struct {
	Meta
	ProposalID int64 `json:"proposal_id"`
	UserID     int64 `json:"user_id"`
	AccountID  int64 `json:"account_id"`
	SecurityID int64 `json:"security_id"`
	TypeID     int64 `json:"proposal_type_id"`
	Lots       int64 `json:"quantity"`
}

func (ProposalCreated) Type() string { return EventTypeProposalCreated.String() }

// ProposalProcessed is emitted when a proposal leaves the pending state.
type ProposalProcessed struct {
	Meta
	ProposalID int64               `json:"proposal_id"`
	UserID     int64               `json:"user_id"`
	Action     string              `json:"action"`
	StatusID   int64               `json:"proposal_status_id"`
	StaffID    int64               `json:"staff_id"`
	Price      decimal.NullDecimal `json:"price"`
	Total      decimal.NullDecimal `json:"total"`
}

func (ProposalProcessed) Type() string { return EventTypeProposalProcessed.String() }

type BalanceChangedOpt func(*BalanceChanged)

func WithProposal(id int64) BalanceChangedOpt {
	return func(e *BalanceChanged) { e.ProposalID = &id }
}

func NewBalanceChanged(
	accountID, userID int64,
	amount, balanceAfter decimal.Decimal,
	operationID, operationTypeID int64,
	opts ...BalanceChangedOpt,
) *BalanceChanged {
	e := &BalanceChanged{
		Meta:            newMeta(),
		AccountID:       accountID,
		UserID:          userID,
		Amount:          amount,
		BalanceAfter:    balanceAfter,
		OperationID:     operationID,
		OperationTypeID: operationTypeID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewProposalCreated(proposalID, userID, accountID, securityID, typeID, lots int64) *ProposalCreated {
	return &ProposalCreated{
		Meta:       newMeta(),
		ProposalID: proposalID,
		UserID:     userID,
		AccountID:  accountID,
		SecurityID: securityID,
		TypeID:     typeID,
		Lots:       lots,
	}
}

func NewProposalProcessed(
	proposalID, userID int64,
	action string,
	statusID, staffID int64,
	price, total decimal.NullDecimal,
) *ProposalProcessed {
	return &ProposalProcessed{
		Meta:       newMeta(),
		ProposalID: proposalID,
		UserID:     userID,
		Action:     action,
		StatusID:   statusID,
		StaffID:    staffID,
		Price:      price,
		Total:      total,
	}
}
