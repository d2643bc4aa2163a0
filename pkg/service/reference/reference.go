// Package reference maintains catalogue data: banks, currencies and their
// rates, listed securities and their prices, the status dictionaries and
// read-only table dumps.
package reference

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/cache"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/repository"
)

// ErrNothingToUpdate is returned by partial updates that carry no field.
var ErrNothingToUpdate = domain.Validation("no data to update")

// publicTables may be dumped without authentication.
var publicTables = []string{
	"banks",
	"currencies",
	"currency_rates",
	"securities",
	"price_history",
	reference.TableRightsLevels,
	reference.TableEmploymentStatuses,
	reference.TableVerificationStatuses,
	reference.TableUserRestrictionStatuses,
	reference.TableProposalTypes,
	reference.TableProposalStatuses,
	reference.TableBrokerageOperationTypes,
	reference.TableDepositoryOperationType,
}

type Service struct {
	uow    repository.UnitOfWork
	roles  *config.Roles
	rates  cache.RateCache
	logger *slog.Logger
	now    func() time.Time
}

func New(uow repository.UnitOfWork, roles *config.Roles, logger *slog.Logger) *Service {
	return &Service{uow: uow, roles: roles, rates: cache.Nop{}, logger: logger, now: time.Now}
}

// WithRateCache sets the cache invalidated whenever a rate changes.
func (s *Service) WithRateCache(rates cache.RateCache) *Service {
	if rates != nil {
		s.rates = rates
	}
	return s
}

// PublicTable dumps one of the reference tables.
func (s *Service) PublicTable(ctx context.Context, table string) (any, error) {
	if !slices.Contains(publicTables, table) {
		return nil, reference.ErrTableNotFound
	}
	return s.uow.Tables().Dump(ctx, table)
}

// Table dumps any known table.
func (s *Service) Table(ctx context.Context, table string) (any, error) {
	return s.uow.Tables().Dump(ctx, table)
}

// TableNames lists every table Table can dump.
func (s *Service) TableNames() []string {
	return s.uow.Tables().Names()
}

func notFound(err, specific error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return specific
	}
	return err
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}
