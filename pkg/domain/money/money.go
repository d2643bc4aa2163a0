package money

import (
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every stored monetary amount carries.
const Scale = 2

// RateScale is the precision used for intermediate currency conversions.
const RateScale = 8

var (
	// MaxAmount is the exclusive upper bound of an amount's magnitude (numeric(18,2)).
	MaxAmount = decimal.New(1, 15)
	// MaxBalance is the exclusive upper bound of a stored balance or holding.
	MaxBalance = decimal.New(1, 16)

	ErrZeroAmount     = domain.NewFieldError("amount", "amount must not be zero")
	ErrTooManyDigits  = domain.NewFieldError("amount", "amount must have at most two decimal places")
	ErrAmountTooLarge = domain.NewFieldError("amount", "amount is too large")
	ErrNotPositive    = domain.Validation("value must be greater than zero")
	ErrInvalidRate    = domain.NewFieldError("rate", "exchange rate must be greater than zero")
)

// Round quantizes d to two decimals using banker's rounding (half to even).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// IsQuantized reports whether d is exactly representable with two decimals.
func IsQuantized(d decimal.Decimal) bool {
	return d.Equal(d.Round(Scale))
}

// ValidateChange checks a signed balance change: non-zero, two decimals, in range.
func ValidateChange(d decimal.Decimal) error {
	if d.IsZero() {
		return ErrZeroAmount
	}
	if !IsQuantized(d) {
		return ErrTooManyDigits
	}
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// CheckBalance rejects a balance that no longer fits its numeric(18,2) column.
func CheckBalance(d decimal.Decimal) error {
	if d.GreaterThanOrEqual(MaxBalance) {
		return ErrAmountTooLarge
	}
	return nil
}

// ValidatePrice checks a strictly positive two-decimal amount such as a security price.
func ValidatePrice(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNotPositive
	}
	if !IsQuantized(d) {
		return ErrTooManyDigits
	}
	if d.GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// Convert moves amount from a currency quoted at fromRate to one quoted at toRate.
// Both rates are expressed against the same base currency.
func Convert(amount, fromRate, toRate decimal.Decimal) (decimal.Decimal, error) {
	if !fromRate.IsPositive() || !toRate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	if fromRate.Equal(toRate) {
		return amount, nil
	}
	return amount.Mul(fromRate).DivRound(toRate, RateScale), nil
}

// Cost returns price × units rounded to two decimals.
func Cost(price decimal.Decimal, units decimal.Decimal) decimal.Decimal {
	return Round(price.Mul(units))
}
