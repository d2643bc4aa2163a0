package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRead is a security as shown on the exchange screen.
type StockRead struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Ticker         string          `json:"ticker"`
	ISIN           string          `json:"isin"`
	LotSize        int64           `json:"lot_size"`
	Price          decimal.Decimal `json:"price"`
	Change         decimal.Decimal `json:"change"`
	CurrencyID     int64           `json:"currency_id"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencySymbol string          `json:"currency_symbol"`
	PaysDividends  bool            `json:"pays_dividends"`
	Archived       bool            `json:"is_archived"`
}

// StockCreate lists a new security.
type StockCreate struct {
	Name          string
	Ticker        string
	ISIN          string
	LotSize       int64
	Price         decimal.Decimal
	CurrencyID    int64
	PaysDividends bool
	StaffID       int64
}

// StockUpdate changes selected fields of a security. Nil fields are left alone.
type StockUpdate struct {
	Name          *string
	Ticker        *string
	ISIN          *string
	LotSize       *int64
	Price         *decimal.Decimal
	CurrencyID    *int64
	PaysDividends *bool
	StaffID       int64
}

// CurrencyRead is a currency with its latest rate against the base currency.
type CurrencyRead struct {
	ID         int64               `json:"id"`
	Code       string              `json:"code"`
	Symbol     string              `json:"symbol"`
	Archived   bool                `json:"archived"`
	RateToBase decimal.NullDecimal `json:"rate_to_base"`
	RateDate   *time.Time          `json:"rate_date,omitempty"`
}

// CurrencyCreate adds a currency together with its first rate.
type CurrencyCreate struct {
	Code       string
	Symbol     string
	RateToBase decimal.Decimal
}

// CurrencyUpdate changes selected fields of a currency. A rate is stored for today.
type CurrencyUpdate struct {
	Code       *string
	Symbol     *string
	RateToBase *decimal.Decimal
}

// BankWrite carries all bank fields for create and update.
type BankWrite struct {
	Name              string
	INN               string
	OGRN              string
	BIK               string
	LicenseExpiryDate time.Time
}
