// Package testutils provides a transactional in-memory store and fixtures for
// service and HTTP tests.
package testutils

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	infrarepo "github.com/amirasaad/brokerage/infra/repository"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/passport"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// SystemStaffID is the reserved staff row seeded into every test store.
const SystemStaffID int64 = 2

var lookupSeed = map[string][]string{
	reference.TableRightsLevels:            {"mega_admin", "admin", "broker", "verifier"},
	reference.TableEmploymentStatuses:      {"active", "blocked"},
	reference.TableVerificationStatuses:    {"unverified", "pending", "verified"},
	reference.TableUserRestrictionStatuses: {"active", "banned"},
	reference.TableProposalTypes:           {"buy", "sell"},
	reference.TableProposalStatuses:        {"pending", "approved", "rejected", "cancelled"},
	reference.TableBrokerageOperationTypes: {"increase", "decrease", "purchase", "sale"},
	reference.TableDepositoryOperationType: {"purchase", "sale"},
}

var models = []any{
	&user.User{},
	&staff.Staff{},
	&reference.Bank{},
	&reference.Currency{},
	&reference.CurrencyRate{},
	&reference.Security{},
	&reference.PriceHistory{},
	&passport.Passport{},
	&account.BrokerageAccount{},
	&account.Operation{},
	&depository.Account{},
	&depository.Holding{},
	&depository.Operation{},
	&proposal.Proposal{},
}

// NewTestDB opens a private in-memory SQLite database with the full schema and
// seed rows. A single connection serializes transactions; row locks are no-ops.
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	for table := range lookupSeed {
		require.NoError(tb, db.Exec(fmt.Sprintf(
			`CREATE TABLE %s (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE)`, table)).Error)
	}
	require.NoError(tb, db.AutoMigrate(models...))
	require.NoError(tb, db.Exec(
		`CREATE UNIQUE INDEX idx_passports_actual ON passports (user_id) WHERE is_actual`).Error)

	seed(tb, db)
	return db
}

func seed(tb testing.TB, db *gorm.DB) {
	tb.Helper()
	for table, names := range lookupSeed {
		for i, name := range names {
			require.NoError(tb, db.Table(table).Create(&reference.Lookup{ID: int64(i + 1), Name: name}).Error)
		}
	}
	system := staff.New("system", "!", "SYSTEM", 2, 2)
	system.ID = SystemStaffID
	require.NoError(tb, db.Create(system).Error)
}

// NewUoW returns a unit of work over a fresh test store.
func NewUoW(tb testing.TB) (*infrarepo.UoW, *gorm.DB) {
	tb.Helper()
	db := NewTestDB(tb)
	return infrarepo.NewUoW(db), db
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
