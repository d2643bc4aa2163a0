package cli

import (
	"context"
	"strings"
	"testing"

	dbutils "github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoISIN(t *testing.T) {
	f := gofakeit.New(7)
	for range 50 {
		isin := demoISIN("RU", f.Numerify("#########"))
		_, err := reference.NormalizeISIN(isin)
		assert.NoError(t, err, isin)
	}
	assert.Equal(t, "US0378331005", demoISIN("us", "037833100"))
}

func TestReadPassword(t *testing.T) {
	testCases := []struct {
		desc    string
		input   string
		want    string
		wantErr error
	}{
		{"first line", "s3cret-pass\nignored\n", "s3cret-pass", nil},
		{"windows line ending", "s3cret-pass\r\n", "s3cret-pass", nil},
		{"no trailing newline", "s3cret-pass", "s3cret-pass", nil},
		{"empty", "\n", "", errEmptyPassword},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := readPassword(strings.NewReader(tc.input), &strings.Builder{})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func newSeeder(t *testing.T, seed uint64) *seeder {
	t.Helper()
	uow, _ := dbutils.NewUoW(t)
	roles := config.DefaultRoles()
	return &seeder{
		refs:  refsvc.New(uow, roles, dbutils.Logger()),
		users: usersvc.New(uow, roles, dbutils.Logger()),
		faker: gofakeit.New(seed),
	}
}

func TestSeeder_Run(t *testing.T) {
	s := newSeeder(t, 42)
	ctx := context.Background()
	opts := seedOptions{Banks: 2, Securities: 5, Clients: 3, Password: "demo-password", StaffID: dbutils.SystemStaffID}

	report, err := s.run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, len(demoCurrencies), report.Currencies)
	assert.Equal(t, opts.Banks+opts.Securities+opts.Clients,
		report.Banks+report.Securities+len(report.Clients)+report.Skipped)
	assert.NotZero(t, report.Securities)

	stocks, err := s.refs.ListStocks(ctx, false)
	require.NoError(t, err)
	assert.Len(t, stocks, report.Securities)
	for _, st := range stocks {
		assert.True(t, st.Price.IsPositive())
		assert.Contains(t, lotSizes, int(st.LotSize))
	}
}

func TestSeeder_RunTwiceKeepsCurrencies(t *testing.T) {
	s := newSeeder(t, 1)
	ctx := context.Background()

	_, err := s.run(ctx, seedOptions{Password: "demo-password"})
	require.NoError(t, err)

	report, err := s.run(ctx, seedOptions{Password: "demo-password"})
	require.NoError(t, err)
	assert.Zero(t, report.Currencies)
	assert.Equal(t, len(demoCurrencies), report.Skipped)

	currencies, err := s.refs.ListCurrencies(ctx)
	require.NoError(t, err)
	assert.Len(t, currencies, len(demoCurrencies))
}
