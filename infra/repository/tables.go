package repository

import (
	"context"
	"sort"

	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/passport"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"gorm.io/gorm"
)

type dumpFunc func(ctx context.Context, db *gorm.DB) (any, error)

func dumpModel[T any](ctx context.Context, db *gorm.DB) (any, error) {
	rows := []T{}
	if err := db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return rows, nil
}

func dumpLookup(table string) dumpFunc {
	return func(ctx context.Context, db *gorm.DB) (any, error) {
		return dumpModel[reference.Lookup](ctx, db.Table(table))
	}
}

var dumps = map[string]dumpFunc{
	reference.TableRightsLevels:            dumpLookup(reference.TableRightsLevels),
	reference.TableEmploymentStatuses:      dumpLookup(reference.TableEmploymentStatuses),
	reference.TableVerificationStatuses:    dumpLookup(reference.TableVerificationStatuses),
	reference.TableUserRestrictionStatuses: dumpLookup(reference.TableUserRestrictionStatuses),
	reference.TableProposalTypes:           dumpLookup(reference.TableProposalTypes),
	reference.TableProposalStatuses:        dumpLookup(reference.TableProposalStatuses),
	reference.TableBrokerageOperationTypes: dumpLookup(reference.TableBrokerageOperationTypes),
	reference.TableDepositoryOperationType: dumpLookup(reference.TableDepositoryOperationType),
	"banks":                                dumpModel[reference.Bank],
	"currencies":                           dumpModel[reference.Currency],
	"currency_rates":                       dumpModel[reference.CurrencyRate],
	"securities":                           dumpModel[reference.Security],
	"price_history":                        dumpModel[reference.PriceHistory],
	"users":                                dumpModel[user.User],
	"staff":                                dumpModel[staff.Staff],
	"passports":                            dumpModel[passport.Passport],
	"brokerage_accounts":                   dumpModel[account.BrokerageAccount],
	"brokerage_account_history":            dumpModel[account.Operation],
	"depository_accounts":                  dumpModel[depository.Account],
	"depository_account_balances":          dumpModel[depository.Holding],
	"depository_account_history":           dumpModel[depository.Operation],
	"proposals":                            dumpModel[proposal.Proposal],
}

type tableRepository struct {
	db *gorm.DB
}

func (r *tableRepository) Dump(ctx context.Context, table string) (any, error) {
	dump, ok := dumps[table]
	if !ok {
		return nil, reference.ErrTableNotFound
	}
	return dump(ctx, r.db)
}

func (r *tableRepository) Names() []string {
	names := make([]string, 0, len(dumps))
	for name := range dumps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
