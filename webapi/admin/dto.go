package admin

import "github.com/shopspring/decimal"

// BankInput carries bank fields. On update blank fields are left alone.
// Dates use the YYYY-MM-DD layout.
type BankInput struct {
	Name              string `json:"name" validate:"max=255"`
	INN               string `json:"inn" validate:"omitempty,numeric"`
	OGRN              string `json:"ogrn" validate:"omitempty,numeric,len=13"`
	BIK               string `json:"bik" validate:"omitempty,numeric,len=9"`
	LicenseExpiryDate string `json:"license_expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

type CurrencyInput struct {
	Code       string          `json:"code" validate:"required"`
	Symbol     string          `json:"symbol" validate:"required,max=10"`
	RateToBase decimal.Decimal `json:"rate_to_base"`
}

type CurrencyUpdateInput struct {
	Code       *string          `json:"code"`
	Symbol     *string          `json:"symbol" validate:"omitempty,max=10"`
	RateToBase *decimal.Decimal `json:"rate_to_base"`
}

// RateInput records a dated exchange rate. Date defaults to today.
type RateInput struct {
	Rate decimal.Decimal `json:"rate"`
	Date string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type StockInput struct {
	Ticker        string          `json:"ticker" validate:"required,max=12"`
	ISIN          string          `json:"isin" validate:"required,len=12"`
	Name          string          `json:"name" validate:"max=255"`
	LotSize       int64           `json:"lot_size" validate:"required,gt=0"`
	Price         decimal.Decimal `json:"price"`
	CurrencyID    int64           `json:"currency_id" validate:"required,gt=0"`
	PaysDividends bool            `json:"pays_dividends"`
}

type StockUpdateInput struct {
	Ticker        *string          `json:"ticker" validate:"omitempty,max=12"`
	ISIN          *string          `json:"isin" validate:"omitempty,len=12"`
	Name          *string          `json:"name" validate:"omitempty,max=255"`
	LotSize       *int64           `json:"lot_size" validate:"omitempty,gt=0"`
	Price         *decimal.Decimal `json:"price"`
	CurrencyID    *int64           `json:"currency_id" validate:"omitempty,gt=0"`
	PaysDividends *bool            `json:"pays_dividends"`
}

type StaffInput struct {
	Login              string `json:"login" validate:"required,min=3,max=50"`
	Password           string `json:"password" validate:"required,min=6"`
	ContractNumber     string `json:"contract_number" validate:"required,max=50"`
	RightsLevelID      int64  `json:"rights_level_id" validate:"required,gt=0"`
	EmploymentStatusID int64  `json:"employment_status_id" validate:"required,gt=0"`
}

type StaffUpdateInput struct {
	Login              *string `json:"login" validate:"omitempty,max=50"`
	Password           *string `json:"password"`
	ContractNumber     *string `json:"contract_number" validate:"omitempty,max=50"`
	RightsLevelID      *int64  `json:"rights_level_id" validate:"omitempty,gt=0"`
	EmploymentStatusID *int64  `json:"employment_status_id" validate:"omitempty,gt=0"`
}

type LookupInput struct {
	Name string `json:"name" validate:"required,max=100"`
}
