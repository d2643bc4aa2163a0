package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/brokerage/infra/migrations"
	dbutils "github.com/amirasaad/brokerage/internal/testutils"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresTestSuite runs the HTTP stack against PostgreSQL in a container
// with the embedded migrations applied. The database is shared by every test
// of the suite, so fixtures must use unique logins and codes.
type PostgresTestSuite struct {
	E2ETestSuite
	pgContainer *tcpostgres.PostgresContainer
}

// startPostgresContainer starts a Postgres container using Testcontainers
func (s *PostgresTestSuite) startPostgresContainer(ctx context.Context) (*tcpostgres.PostgresContainer, error) {
	return tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("brokerage"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
}

func (s *PostgresTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping PostgreSQL suite in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(s.T())
	ctx := context.Background()

	pg, err := s.startPostgresContainer(ctx)
	s.Require().NoError(err)
	s.pgContainer = pg

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	s.Require().NoError(err)

	sqlDB, err := s.DB.DB()
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(sqlDB, dbutils.Logger()))

	s.app, s.App, s.Bus = NewApp(s.DB, TestConfig())
}

// SetupTest keeps the shared database; only the recorded events are reset.
func (s *PostgresTestSuite) SetupTest() {
	s.Bus.ClearPublished()
}

// TearDownSuite cleans up the test suite resources
func (s *PostgresTestSuite) TearDownSuite() {
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}
