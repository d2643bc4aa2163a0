package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate renders SELECT ... FOR UPDATE on PostgreSQL. Dialects without row
// locks drop the clause.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// first loads one row by its conditions, optionally locking it.
func first[T any](ctx context.Context, db *gorm.DB, lock bool, conds ...any) (*T, error) {
	var m T
	q := db.WithContext(ctx)
	if lock {
		q = q.Clauses(forUpdate)
	}
	if err := q.First(&m, conds...).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &m, nil
}

// existsWhere reports whether model has a row matching column = value,
// ignoring the row with id exceptID when it is non-zero.
func existsWhere(ctx context.Context, db *gorm.DB, model any, column string, value any, exceptID int64) (bool, error) {
	q := db.WithContext(ctx).Model(model).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, MapGormErrorToDomain(err)
	}
	return n > 0, nil
}

// countWhere counts rows of table matching the query.
func countWhere(ctx context.Context, db *gorm.DB, table string, query string, args ...any) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Table(table).Where(query, args...).Count(&n).Error
	return n, MapGormErrorToDomain(err)
}
