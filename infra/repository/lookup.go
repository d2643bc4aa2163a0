package repository

import (
	"context"
	"fmt"

	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"gorm.io/gorm"
)

type lookupRef struct {
	table  string
	column string
}

// lookupUsage lists, per dictionary, the columns that reference it.
var lookupUsage = map[string][]lookupRef{
	reference.TableRightsLevels:            {{"staff", "rights_level_id"}},
	reference.TableEmploymentStatuses:      {{"staff", "employment_status_id"}},
	reference.TableVerificationStatuses:    {{"users", "verification_status_id"}},
	reference.TableUserRestrictionStatuses: {{"users", "block_status_id"}},
	reference.TableProposalTypes:           {{"proposals", "proposal_type_id"}},
	reference.TableProposalStatuses:        {{"proposals", "proposal_status_id"}},
	reference.TableBrokerageOperationTypes: {{"brokerage_account_history", "operation_type_id"}},
	reference.TableDepositoryOperationType: {{"depository_account_history", "operation_type_id"}},
}

type lookupRepository struct {
	db *gorm.DB
}

func (r *lookupRepository) table(name string) (*gorm.DB, error) {
	if _, ok := lookupUsage[name]; !ok {
		return nil, fmt.Errorf("lookup repository: unknown table %q: %w", name, reference.ErrTableNotFound)
	}
	return r.db.Table(name), nil
}

func (r *lookupRepository) List(ctx context.Context, table string) ([]reference.Lookup, error) {
	q, err := r.table(table)
	if err != nil {
		return nil, err
	}
	var out []reference.Lookup
	if err := q.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

func (r *lookupRepository) Get(ctx context.Context, table string, id int64) (*reference.Lookup, error) {
	q, err := r.table(table)
	if err != nil {
		return nil, err
	}
	return first[reference.Lookup](ctx, q, false, "id = ?", id)
}

func (r *lookupRepository) Exists(ctx context.Context, table string, id int64) (bool, error) {
	if _, err := r.table(table); err != nil {
		return false, err
	}
	n, err := countWhere(ctx, r.db, table, "id = ?", id)
	return n > 0, err
}

func (r *lookupRepository) ExistsByName(ctx context.Context, table, name string, exceptID int64) (bool, error) {
	if _, err := r.table(table); err != nil {
		return false, err
	}
	n, err := countWhere(ctx, r.db, table, "name = ? AND id <> ?", name, exceptID)
	return n > 0, err
}

func (r *lookupRepository) Create(ctx context.Context, table string, l *reference.Lookup) error {
	q, err := r.table(table)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return q.WithContext(ctx).Create(l).Error
	})
}

func (r *lookupRepository) Update(ctx context.Context, table string, l *reference.Lookup) error {
	q, err := r.table(table)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return q.WithContext(ctx).Where("id = ?", l.ID).Update("name", l.Name).Error
	})
}

func (r *lookupRepository) Delete(ctx context.Context, table string, id int64) error {
	q, err := r.table(table)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return q.WithContext(ctx).Where("id = ?", id).Delete(&reference.Lookup{}).Error
	})
}

func (r *lookupRepository) InUse(ctx context.Context, table string, id int64) (bool, error) {
	refs, ok := lookupUsage[table]
	if !ok {
		return false, reference.ErrTableNotFound
	}
	for _, ref := range refs {
		n, err := countWhere(ctx, r.db, ref.table, ref.column+" = ?", id)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
