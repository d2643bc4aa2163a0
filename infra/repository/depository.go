package repository

import (
	"context"

	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/passport"
	"github.com/amirasaad/brokerage/pkg/dto"
	"gorm.io/gorm"
)

type depositoryRepository struct {
	db *gorm.DB
}

func (r *depositoryRepository) GetAccountByUser(ctx context.Context, userID int64) (*depository.Account, error) {
	return first[depository.Account](ctx, r.db, false, "user_id = ?", userID)
}

func (r *depositoryRepository) GetAccountByUserForUpdate(ctx context.Context, userID int64) (*depository.Account, error) {
	return first[depository.Account](ctx, r.db, true, "user_id = ?", userID)
}

func (r *depositoryRepository) CreateAccount(ctx context.Context, a *depository.Account) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(a).Error })
}

func (r *depositoryRepository) GetHolding(ctx context.Context, accountID, securityID int64) (*depository.Holding, error) {
	return first[depository.Holding](ctx, r.db, false,
		"depository_account_id = ? AND security_id = ?", accountID, securityID)
}

func (r *depositoryRepository) GetHoldingForUpdate(ctx context.Context, accountID, securityID int64) (*depository.Holding, error) {
	return first[depository.Holding](ctx, r.db, true,
		"depository_account_id = ? AND security_id = ?", accountID, securityID)
}

func (r *depositoryRepository) SaveHolding(ctx context.Context, h *depository.Holding) error {
	return WrapError(func() error {
		if h.ID == 0 {
			return r.db.WithContext(ctx).Create(h).Error
		}
		return r.db.WithContext(ctx).
			Model(&depository.Holding{}).
			Where("id = ?", h.ID).
			Update("amount", h.Amount).Error
	})
}

func (r *depositoryRepository) AppendOperation(ctx context.Context, op *depository.Operation) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(op).Error })
}

func (r *depositoryRepository) Holdings(ctx context.Context, userID int64) ([]dto.HoldingRead, error) {
	out := []dto.HoldingRead{}
	err := r.db.WithContext(ctx).
		Table("depository_account_balances AS h").
		Select(`h.security_id, s.name AS security_name, s.ticker, s.isin, s.lot_size,
			h.amount, s.currency_id, c.code AS currency_code, c.symbol AS currency_symbol`).
		Joins("JOIN securities s ON s.id = h.security_id").
		Joins("JOIN currencies c ON c.id = s.currency_id").
		Where("h.user_id = ? AND h.amount > 0", userID).
		Order("s.name").
		Scan(&out).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

func (r *depositoryRepository) Operations(ctx context.Context, userID int64) ([]dto.HoldingOperationRead, error) {
	out := []dto.HoldingOperationRead{}
	err := r.db.WithContext(ctx).
		Table("depository_account_history AS h").
		Select(`h.id, h.security_id, s.name AS security_name, h.amount,
			h.operation_type_id, t.name AS operation_type, h.proposal_id, h.created_at`).
		Joins("JOIN securities s ON s.id = h.security_id").
		Joins("LEFT JOIN depository_account_operation_types t ON t.id = h.operation_type_id").
		Where("h.user_id = ? AND h.amount > 0", userID).
		Order("h.created_at DESC").Order("h.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

func (r *depositoryRepository) OperationsSummary(ctx context.Context) ([]dto.OperationSummary, error) {
	out := []dto.OperationSummary{}
	err := r.db.WithContext(ctx).
		Table("depository_account_history AS h").
		Select(`t.name AS operation_type, s.name AS security_name,
			SUM(h.amount) AS total_amount, COUNT(h.id) AS operations_count`).
		Joins("JOIN depository_account_operation_types t ON t.id = h.operation_type_id").
		Joins("JOIN securities s ON s.id = h.security_id").
		Group("t.name").Group("s.name").
		Order("t.name").Order("s.name").
		Scan(&out).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

type passportRepository struct {
	db *gorm.DB
}

func (r *passportRepository) GetActual(ctx context.Context, userID int64) (*passport.Passport, error) {
	return first[passport.Passport](ctx, r.db, false, "user_id = ? AND is_actual = ?", userID, true)
}

func (r *passportRepository) HasActual(ctx context.Context, userID int64) (bool, error) {
	n, err := countWhere(ctx, r.db, "passports", "user_id = ? AND is_actual = ?", userID, true)
	return n > 0, err
}

func (r *passportRepository) Create(ctx context.Context, p *passport.Passport) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(p).Error })
}

func (r *passportRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Delete(&passport.Passport{}, id).Error })
}
