package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposalCreate is a client's buy or sell request.
type ProposalCreate struct {
	UserID     int64
	AccountID  int64
	SecurityID int64
	Lots       int64
	TypeID     int64
}

// ProposalRead is a proposal joined with its security.
type ProposalRead struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"user_id"`
	AccountID      int64               `json:"account_id"`
	SecurityID     int64               `json:"security_id"`
	SecurityName   string              `json:"security_name"`
	SecurityISIN   string              `json:"security_isin"`
	OfferTypeID    int64               `json:"offer_type_id"`
	OfferType      string              `json:"offer_type"`
	Quantity       int64               `json:"quantity"`
	StatusID       int64               `json:"proposal_status_id"`
	ProposalStatus string              `json:"proposal_status"`
	Price          decimal.NullDecimal `json:"price"`
	Total          decimal.NullDecimal `json:"total"`
	CreatedAt      time.Time           `json:"created_at"`
	ProcessedAt    *time.Time          `json:"processed_at,omitempty"`
	ProcessedBy    *int64              `json:"processed_by,omitempty"`
}

// ProposalResult is returned by process and cancel.
type ProposalResult struct {
	ProposalID int64               `json:"proposal_id"`
	Action     string              `json:"action"`
	StaffID    int64               `json:"staff_id"`
	Price      decimal.NullDecimal `json:"price"`
	Total      decimal.NullDecimal `json:"total"`
}
