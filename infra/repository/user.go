package repository

import (
	"context"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/dto"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Get(ctx context.Context, id int64) (*user.User, error) {
	return first[user.User](ctx, r.db, false, id)
}

func (r *userRepository) GetForUpdate(ctx context.Context, id int64) (*user.User, error) {
	return first[user.User](ctx, r.db, true, id)
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	return first[user.User](ctx, r.db, false, "login = ?", login)
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return existsWhere(ctx, r.db, &user.User{}, "id", id, 0)
}

func (r *userRepository) ExistsByLogin(ctx context.Context, login string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &user.User{}, "login", login, exceptID)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &user.User{}, "email", email, exceptID)
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(u).Error
	})
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Save(u).Error
	})
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&user.User{}, id).Error
	})
}

type staffRepository struct {
	db *gorm.DB
}

func (r *staffRepository) Get(ctx context.Context, id int64) (*staff.Staff, error) {
	return first[staff.Staff](ctx, r.db, false, id)
}

func (r *staffRepository) GetRead(ctx context.Context, id int64) (*dto.StaffRead, error) {
	var out dto.StaffRead
	res := r.db.WithContext(ctx).
		Table("staff AS s").
		Select(`s.id, s.login, s.contract_number,
			s.rights_level_id, rl.name AS rights_level,
			s.employment_status_id, es.name AS employment_status`).
		Joins("LEFT JOIN admin_rights_levels rl ON rl.id = s.rights_level_id").
		Joins("LEFT JOIN employment_statuses es ON es.id = s.employment_status_id").
		Where("s.id = ?", id).
		Scan(&out)
	if res.Error != nil {
		return nil, MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return &out, nil
}

func (r *staffRepository) GetByLogin(ctx context.Context, login string) (*staff.Staff, error) {
	return first[staff.Staff](ctx, r.db, false, "login = ?", login)
}

func (r *staffRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return existsWhere(ctx, r.db, &staff.Staff{}, "id", id, 0)
}

func (r *staffRepository) ExistsByLogin(ctx context.Context, login string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &staff.Staff{}, "login", login, exceptID)
}

func (r *staffRepository) ExistsByContract(ctx context.Context, contract string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &staff.Staff{}, "contract_number", contract, exceptID)
}

func (r *staffRepository) Create(ctx context.Context, s *staff.Staff) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(s).Error
	})
}

func (r *staffRepository) Update(ctx context.Context, s *staff.Staff) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Save(s).Error
	})
}

func (r *staffRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&staff.Staff{}, id).Error
	})
}
