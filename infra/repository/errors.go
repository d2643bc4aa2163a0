package repository

import (
	"errors"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM and driver errors to domain error kinds.
// This keeps infrastructure concerns (database errors) within the infrastructure layer.
// Domain errors and unknown errors are returned unchanged.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return domain.ErrConcurrentModification
		case pgerrcode.UniqueViolation:
			return domain.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return domain.ErrInvalidReference
		case pgerrcode.NumericValueOutOfRange:
			return domain.ErrValidation
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrInvalidReference
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	}

	return err
}

// WrapError wraps a GORM operation and automatically maps errors.
//
// Usage:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(user).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
