package money

import (
	"errors"
	"testing"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound_HalfEven(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1",
		"1.015":  "1.02",
		"1.025":  "1.02",
		"-2.345": "-2.34",
		"10":     "10",
	}
	for in, want := range cases {
		got := Round(decimal.RequireFromString(in))
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "Round(%s) = %s, want %s", in, got, want)
	}
}

func TestValidateChange(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"deposit", "100.00", nil},
		{"withdrawal", "-150.5", nil},
		{"trailing zeros are fine", "1.500", nil},
		{"zero", "0", ErrZeroAmount},
		{"three decimals", "0.001", ErrTooManyDigits},
		{"too large", "1000000000000000", ErrAmountTooLarge},
		{"too large negative", "-1000000000000000.00", ErrAmountTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChange(decimal.RequireFromString(tt.amount))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(decimal.RequireFromString("12.34")))
	assert.ErrorIs(t, ValidatePrice(decimal.Zero), ErrNotPositive)
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("-1")), ErrNotPositive)
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("1.234")), ErrTooManyDigits)
}

func TestConvert(t *testing.T) {
	// 10 USD at 90 base per USD into EUR at 100 base per EUR
	got, err := Convert(decimal.NewFromInt(10), decimal.NewFromInt(90), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("9")))

	same, err := Convert(decimal.RequireFromString("1.23"), decimal.NewFromInt(5), decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, same.Equal(decimal.RequireFromString("1.23")))

	_, err = Convert(decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestCost(t *testing.T) {
	got := Cost(decimal.RequireFromString("10.125"), decimal.NewFromInt(10))
	assert.True(t, got.Equal(decimal.RequireFromString("101.25")))
	got = Cost(decimal.RequireFromString("0.3333"), decimal.NewFromInt(3))
	assert.True(t, got.Equal(decimal.RequireFromString("1")))
}
