package testutils

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password of every fixture user and staff member.
const Password = "password123"

// Rights levels seeded into the test store.
const (
	RightsMegaAdmin int64 = 1
	RightsAdmin     int64 = 2
	RightsBroker    int64 = 3
	RightsVerifier  int64 = 4
)

var (
	hashOnce sync.Once
	hash     string
	seq      atomic.Int64
)

// PasswordHash returns a cheap bcrypt hash of Password.
func PasswordHash() string {
	hashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		hash = string(b)
	})
	return hash
}

func next() int64 { return seq.Add(1) }

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// UserOpt customizes a fixture user before it is stored.
type UserOpt func(*user.User)

// Verified marks the user's passport as verified.
func Verified(u *user.User) { u.VerificationStatusID = user.VerificationVerified }

// Banned sets the user's block status to banned.
func Banned(u *user.User) { u.BlockStatusID = 2 }

// CreateUser stores a client whose password is Password.
func CreateUser(tb testing.TB, db *gorm.DB, login string, opts ...UserOpt) *user.User {
	tb.Helper()
	u := user.New(login, login+"@example.com", PasswordHash())
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(tb, db.Create(u).Error)
	return u
}

// CreateStaff stores an active staff member whose password is Password.
func CreateStaff(tb testing.TB, db *gorm.DB, login string, rights int64) *staff.Staff {
	tb.Helper()
	s := staff.New(login, PasswordHash(), fmt.Sprintf("C-%d", next()), rights, 1)
	require.NoError(tb, db.Create(s).Error)
	return s
}

// CreateBank stores a bank with unique identifiers.
func CreateBank(tb testing.TB, db *gorm.DB) *reference.Bank {
	tb.Helper()
	n := next()
	b := &reference.Bank{
		Name:              fmt.Sprintf("Bank %d", n),
		INN:               fmt.Sprintf("%010d", n),
		OGRN:              fmt.Sprintf("%013d", n),
		BIK:               fmt.Sprintf("%09d", n),
		LicenseExpiryDate: time.Now().AddDate(5, 0, 0).UTC(),
	}
	require.NoError(tb, db.Create(b).Error)
	return b
}

// CreateCurrency stores a currency with one rate dated today.
func CreateCurrency(tb testing.TB, db *gorm.DB, code, symbol, rate string) *reference.Currency {
	tb.Helper()
	c := &reference.Currency{Code: code, Symbol: symbol}
	require.NoError(tb, db.Create(c).Error)
	AddRate(tb, db, c.ID, rate, reference.Day(time.Now()))
	return c
}

// AddRate stores a dated rate for a currency.
func AddRate(tb testing.TB, db *gorm.DB, currencyID int64, rate string, day time.Time) {
	tb.Helper()
	require.NoError(tb, db.Create(&reference.CurrencyRate{
		CurrencyID: currencyID,
		RateDate:   day,
		Rate:       Dec(rate),
	}).Error)
}

// CreateSecurity stores a security with an initial price.
func CreateSecurity(tb testing.TB, db *gorm.DB, ticker string, currencyID, lotSize int64, price string) *reference.Security {
	tb.Helper()
	s := &reference.Security{
		Name:       ticker + " Inc.",
		Ticker:     ticker,
		ISIN:       fmt.Sprintf("XS%010d", next()),
		LotSize:    lotSize,
		CurrencyID: currencyID,
	}
	require.NoError(tb, db.Create(s).Error)
	AddPrice(tb, db, s.ID, price, time.Now().Add(-time.Hour))
	return s
}

// AddPrice appends a price history row.
func AddPrice(tb testing.TB, db *gorm.DB, securityID int64, price string, at time.Time) {
	tb.Helper()
	require.NoError(tb, db.Create(&reference.PriceHistory{
		SecurityID: securityID,
		Price:      Dec(price),
		RecordedAt: at.UTC(),
	}).Error)
}

// CreateAccount stores a brokerage account with the given balance.
func CreateAccount(tb testing.TB, db *gorm.DB, userID, bankID, currencyID int64, balance string) *account.BrokerageAccount {
	tb.Helper()
	a, err := account.New(userID, bankID, currencyID, fmt.Sprintf("%012d", next()))
	require.NoError(tb, err)
	a.Balance = Dec(balance)
	require.NoError(tb, db.Create(a).Error)
	return a
}

// OpenDepository stores the user's depository account.
func OpenDepository(tb testing.TB, db *gorm.DB, userID int64) *depository.Account {
	tb.Helper()
	d := depository.NewAccount(userID, time.Now())
	require.NoError(tb, db.Create(d).Error)
	return d
}

// SetHolding stores a position of amount units.
func SetHolding(tb testing.TB, db *gorm.DB, dep *depository.Account, securityID int64, amount string) *depository.Holding {
	tb.Helper()
	h := &depository.Holding{
		DepositoryAccountID: dep.ID,
		UserID:              dep.UserID,
		SecurityID:          securityID,
		Amount:              Dec(amount),
	}
	require.NoError(tb, db.Create(h).Error)
	return h
}

// Market is a verified client with a funded account and one tradable security.
type Market struct {
	User       *user.User
	Depository *depository.Account
	Bank       *reference.Bank
	Currency   *reference.Currency
	Security   *reference.Security
	Account    *account.BrokerageAccount
}

// NewMarket builds a Market: currency RUB at rate 1, security "SBER" priced
// 100.00 with lots of 10 units, and an account holding balance.
func NewMarket(tb testing.TB, db *gorm.DB, balance string) *Market {
	tb.Helper()
	m := &Market{}
	m.User = CreateUser(tb, db, fmt.Sprintf("client%d", next()), Verified)
	m.Depository = OpenDepository(tb, db, m.User.ID)
	m.Bank = CreateBank(tb, db)
	m.Currency = CreateCurrency(tb, db, "RUB", "₽", "1")
	m.Security = CreateSecurity(tb, db, "SBER", m.Currency.ID, 10, "100.00")
	m.Account = CreateAccount(tb, db, m.User.ID, m.Bank.ID, m.Currency.ID, balance)
	return m
}
