package reference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeISIN(t *testing.T) {
	for _, valid := range []string{"US0378331005", "us5949181045", " US0231351067 "} {
		got, err := NormalizeISIN(valid)
		require.NoError(t, err, valid)
		assert.Len(t, got, 12)
	}
	for _, invalid := range []string{"", "US037833100", "US0378331006", "1S0378331005", "US037833100A", "US03783310-5"} {
		_, err := NormalizeISIN(invalid)
		assert.ErrorIs(t, err, ErrInvalidISIN, invalid)
	}
}

func TestNormalizeCode(t *testing.T) {
	got, err := NormalizeCode(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", got)

	for _, bad := range []string{"US", "USDT", "U5D", ""} {
		_, err := NormalizeCode(bad)
		assert.ErrorIs(t, err, ErrInvalidCode, bad)
	}
}

func TestDay(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), Day(at))
}
