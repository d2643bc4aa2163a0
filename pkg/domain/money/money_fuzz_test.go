package money_test

import (
	"errors"
	"testing"

	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/shopspring/decimal"
)

// FuzzValidateChange checks that any whole-cent amount is either accepted or
// rejected with one of the amount errors, and that rounding is stable.
func FuzzValidateChange(f *testing.F) {
	f.Add(int64(100))
	f.Add(int64(-5050))
	f.Add(int64(0))
	f.Add(int64(1e17))
	f.Fuzz(func(t *testing.T, cents int64) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("ValidateChange panicked: %v (cents=%d)", r, cents)
			}
		}()
		amount := decimal.New(cents, -money.Scale)
		err := money.ValidateChange(amount)
		switch {
		case err == nil:
			if amount.IsZero() || amount.Abs().GreaterThanOrEqual(money.MaxAmount) {
				t.Errorf("accepted out-of-range amount %s", amount)
			}
		case errors.Is(err, money.ErrZeroAmount), errors.Is(err, money.ErrAmountTooLarge):
		default:
			t.Errorf("unexpected error for %s: %v", amount, err)
		}
		if !money.Round(amount).Equal(amount) {
			t.Errorf("Round changed a two-decimal amount: %s", amount)
		}
	})
}

// FuzzConvert checks that converting to the same rate is the identity.
func FuzzConvert(f *testing.F) {
	f.Add(int64(1234), int64(9050))
	f.Add(int64(-1), int64(1))
	f.Fuzz(func(t *testing.T, cents, rateCents int64) {
		if rateCents <= 0 {
			t.Skip()
		}
		amount := decimal.New(cents, -money.Scale)
		rate := decimal.New(rateCents, -money.Scale)
		got, err := money.Convert(amount, rate, rate)
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		if !got.Equal(amount) {
			t.Errorf("Convert(%s, r, r) = %s", amount, got)
		}
	})
}
