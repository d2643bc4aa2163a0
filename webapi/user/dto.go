package user

import "github.com/shopspring/decimal"

// AccountInput opens a brokerage account.
type AccountInput struct {
	BankID     int64  `json:"bank_id" validate:"required,gt=0"`
	CurrencyID int64  `json:"currency_id" validate:"required,gt=0"`
	INN        string `json:"inn" validate:"required,numeric"`
}

// BalanceChangeInput deposits a positive amount or withdraws a negative one.
type BalanceChangeInput struct {
	Amount decimal.Decimal `json:"amount"`
}

// OfferInput is a buy or sell request for whole lots.
type OfferInput struct {
	AccountID      int64 `json:"account_id" validate:"required,gt=0"`
	SecurityID     int64 `json:"security_id" validate:"required,gt=0"`
	Quantity       int64 `json:"quantity" validate:"required,gt=0"`
	ProposalTypeID int64 `json:"proposal_type_id" validate:"required,oneof=1 2"`
}

// PassportInput is a passport submitted for verification. Dates use the
// YYYY-MM-DD layout.
type PassportInput struct {
	LastName          string `json:"last_name" validate:"required,min=2,max=50"`
	FirstName         string `json:"first_name" validate:"required,min=2,max=50"`
	MiddleName        string `json:"middle_name" validate:"omitempty,min=2,max=50"`
	Series            string `json:"series" validate:"required,len=4,numeric"`
	Number            string `json:"number" validate:"required,len=6,numeric"`
	Gender            string `json:"gender" validate:"required"`
	BirthDate         string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	BirthPlace        string `json:"birth_place" validate:"required,min=3,max=100"`
	RegistrationPlace string `json:"registration_place" validate:"required,min=5,max=150"`
	IssueDate         string `json:"issue_date" validate:"required,datetime=2006-01-02"`
	IssuedBy          string `json:"issued_by" validate:"required,min=5,max=150"`
}
