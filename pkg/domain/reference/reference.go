// Package reference holds the slowly changing catalogue data: banks,
// currencies, securities and the status lookup tables.
package reference

import (
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrBankNotFound      = domain.NewError(domain.ErrNotFound, "bank not found")
	ErrCurrencyNotFound  = domain.NewError(domain.ErrNotFound, "currency not found")
	ErrSecurityNotFound  = domain.NewError(domain.ErrNotFound, "security not found")
	ErrLookupNotFound    = domain.NewError(domain.ErrNotFound, "status not found")
	ErrTableNotFound     = domain.NewError(domain.ErrNotFound, "table not found")
	ErrCurrencyArchived  = domain.NewError(domain.ErrStateConflict, "currency is archived")
	ErrSecurityArchived  = domain.NewError(domain.ErrStateConflict, "security is archived")
	ErrAlreadyArchived   = domain.NewError(domain.ErrStateConflict, "already archived")
	ErrRateNotFound      = domain.NewError(domain.ErrStateConflict, "no exchange rate for currency")
	ErrBankReferenced    = domain.NewError(domain.ErrStateConflict, "bank is referenced by brokerage accounts")
	ErrCurrencyInUse     = domain.NewError(domain.ErrStateConflict, "currency is referenced by other records, archive it instead")
	ErrSecurityInUse     = domain.NewError(domain.ErrStateConflict, "security is referenced by other records, archive it instead")
	ErrLookupInUse       = domain.NewError(domain.ErrStateConflict, "status is referenced by other records")
	ErrLookupReserved    = domain.NewError(domain.ErrStateConflict, "status is reserved by the system configuration")
	ErrBankINNTaken      = domain.NewError(domain.ErrAlreadyExists, "bank INN already registered")
	ErrBankOGRNTaken     = domain.NewError(domain.ErrAlreadyExists, "bank OGRN already registered")
	ErrBankBIKTaken      = domain.NewError(domain.ErrAlreadyExists, "bank BIK already registered")
	ErrCurrencyCodeTaken = domain.NewError(domain.ErrAlreadyExists, "currency code already exists")
	ErrTickerTaken       = domain.NewError(domain.ErrAlreadyExists, "ticker already exists")
	ErrISINTaken         = domain.NewError(domain.ErrAlreadyExists, "ISIN already exists")
	ErrLookupNameTaken   = domain.NewError(domain.ErrAlreadyExists, "status name already exists")
	ErrInvalidCode       = domain.NewFieldError("code", "currency code must be three latin letters")
	ErrInvalidLotSize    = domain.NewFieldError("lot_size", "lot size must be greater than zero")
)

// Lookup tables sharing the {id, name} shape.
const (
	TableRightsLevels            = "admin_rights_levels"
	TableEmploymentStatuses      = "employment_statuses"
	TableVerificationStatuses    = "verification_statuses"
	TableUserRestrictionStatuses = "user_restriction_statuses"
	TableProposalTypes           = "proposal_types"
	TableProposalStatuses        = "proposal_statuses"
	TableBrokerageOperationTypes = "brokerage_account_operation_types"
	TableDepositoryOperationType = "depository_account_operation_types"
)

// Lookup is a row of one of the status/type dictionaries.
type Lookup struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// Bank is a bank servicing brokerage accounts.
type Bank struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	INN               string    `gorm:"column:inn;size:12;not null;uniqueIndex" json:"inn"`
	OGRN              string    `gorm:"column:ogrn;size:13;not null;uniqueIndex" json:"ogrn"`
	BIK               string    `gorm:"column:bik;size:9;not null;uniqueIndex" json:"bik"`
	LicenseExpiryDate time.Time `gorm:"not null" json:"license_expiry_date"`
}

func (Bank) TableName() string { return "banks" }

// Currency is an account or security currency.
type Currency struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Code     string `gorm:"size:3;not null;uniqueIndex" json:"code"`
	Symbol   string `gorm:"size:10;not null" json:"symbol"`
	Archived bool   `gorm:"not null;default:false" json:"archived"`
}

func (Currency) TableName() string { return "currencies" }

// NormalizeCode upper-cases and validates a three-letter code.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCode
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

// CurrencyRate is the value of one unit of a currency in the base currency on a day.
type CurrencyRate struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	CurrencyID int64           `gorm:"not null;uniqueIndex:idx_currency_rates_day" json:"currency_id"`
	RateDate   time.Time       `gorm:"not null;uniqueIndex:idx_currency_rates_day" json:"rate_date"`
	Rate       decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"rate"`
}

func (CurrencyRate) TableName() string { return "currency_rates" }

// Security is an exchange-traded instrument.
type Security struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Ticker        string `gorm:"size:12;not null;uniqueIndex" json:"ticker"`
	ISIN          string `gorm:"column:isin;size:12;not null;uniqueIndex" json:"isin"`
	LotSize       int64  `gorm:"not null" json:"lot_size"`
	CurrencyID    int64  `gorm:"not null" json:"currency_id"`
	PaysDividends bool   `gorm:"not null;default:false" json:"pays_dividends"`
	Archived      bool   `gorm:"not null;default:false" json:"archived"`
}

func (Security) TableName() string { return "securities" }

// PriceHistory records every price a security has been quoted at.
type PriceHistory struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	SecurityID int64           `gorm:"not null;index" json:"security_id"`
	Price      decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	RecordedAt time.Time       `gorm:"not null" json:"recorded_at"`
	StaffID    *int64          `json:"staff_id,omitempty"`
}

func (PriceHistory) TableName() string { return "price_history" }

// Day truncates t to a UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
