package account

import (
	"testing"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNew(t *testing.T) {
	a, err := New(1, 2, 3, " 7707083893 ")
	require.NoError(t, err)
	assert.Equal(t, "7707083893", a.INN)
	assert.True(t, a.Balance.IsZero())

	_, err = New(1, 2, 3, "12345")
	assert.ErrorIs(t, err, ErrInvalidINN)
	_, err = New(1, 2, 3, "77070838a3")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApply(t *testing.T) {
	a := &BrokerageAccount{Balance: dec("100.00")}

	require.NoError(t, a.Apply(dec("50.25")))
	assert.True(t, a.Balance.Equal(dec("150.25")))

	err := a.Apply(dec("-200"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.True(t, a.Balance.Equal(dec("150.25")), "balance must be untouched on failure")

	require.NoError(t, a.Apply(dec("-150.25")))
	assert.True(t, a.Balance.IsZero())
	assert.NoError(t, a.CanClose())
}

func TestApply_BalanceCeiling(t *testing.T) {
	a := &BrokerageAccount{Balance: dec("9999999999999000.00")}

	require.NoError(t, a.Apply(dec("999.99")))
	assert.True(t, a.Balance.Equal(dec("9999999999999999.99")))

	err := a.Apply(dec("0.01"))
	assert.ErrorIs(t, err, money.ErrAmountTooLarge)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, a.Balance.Equal(dec("9999999999999999.99")), "balance must be untouched on failure")
}

func TestCanClose(t *testing.T) {
	a := &BrokerageAccount{Balance: dec("0.01")}
	assert.ErrorIs(t, a.CanClose(), ErrNonZeroBalance)
}
