package repository

import (
	"context"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/dto"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

const accountReadColumns = `a.id AS account_id, a.user_id, a.balance, a.inn, a.opened_at,
	a.bank_id, b.name AS bank_name, b.bik,
	a.currency_id, c.code AS currency_code, c.symbol AS currency_symbol`

func (r *accountRepository) readQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("brokerage_accounts AS a").
		Select(accountReadColumns).
		Joins("JOIN banks b ON b.id = a.bank_id").
		Joins("JOIN currencies c ON c.id = a.currency_id")
}

func (r *accountRepository) Create(ctx context.Context, a *account.BrokerageAccount) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(a).Error })
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*account.BrokerageAccount, error) {
	return first[account.BrokerageAccount](ctx, r.db, false, id)
}

func (r *accountRepository) GetForUpdate(ctx context.Context, id int64) (*account.BrokerageAccount, error) {
	return first[account.BrokerageAccount](ctx, r.db, true, id)
}

func (r *accountRepository) GetRead(ctx context.Context, id int64) (*dto.AccountRead, error) {
	var out dto.AccountRead
	res := r.readQuery(ctx).Where("a.id = ?", id).Scan(&out)
	if res.Error != nil {
		return nil, MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return &out, nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID int64) ([]dto.AccountRead, error) {
	out := []dto.AccountRead{}
	if err := r.readQuery(ctx).Where("a.user_id = ?", userID).Order("a.id").Scan(&out).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

func (r *accountRepository) ExistsByINN(ctx context.Context, inn string) (bool, error) {
	return existsWhere(ctx, r.db, &account.BrokerageAccount{}, "inn", inn, 0)
}

func (r *accountRepository) UpdateBalance(ctx context.Context, a *account.BrokerageAccount) error {
	return WrapError(func() error {
		res := r.db.WithContext(ctx).
			Model(&account.BrokerageAccount{}).
			Where("id = ?", a.ID).
			Update("balance", a.Balance)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error {
		db := r.db.WithContext(ctx)
		if err := db.Where("brokerage_account_id = ?", id).Delete(&account.Operation{}).Error; err != nil {
			return err
		}
		return db.Delete(&account.BrokerageAccount{}, id).Error
	})
}

func (r *accountRepository) AppendOperation(ctx context.Context, op *account.Operation) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(op).Error })
}

func (r *accountRepository) Operations(ctx context.Context, accountID int64) ([]dto.OperationRead, error) {
	out := []dto.OperationRead{}
	err := r.db.WithContext(ctx).
		Table("brokerage_account_history AS h").
		Select(`h.id, h.amount, h.balance_after, h.operation_type_id,
			t.name AS operation_type, h.staff_id, h.proposal_id, h.created_at`).
		Joins("LEFT JOIN brokerage_account_operation_types t ON t.id = h.operation_type_id").
		Where("h.brokerage_account_id = ?", accountID).
		Order("h.created_at DESC").Order("h.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

type proposalRepository struct {
	db *gorm.DB
}

func (r *proposalRepository) readQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("proposals AS p").
		Select(`p.id, p.user_id, p.brokerage_account_id AS account_id, p.security_id,
			s.name AS security_name, s.isin AS security_isin,
			p.proposal_type_id AS offer_type_id, p.lots AS quantity,
			p.proposal_status_id AS status_id, p.price, p.total,
			p.created_at, p.processed_at, p.processed_by`).
		Joins("JOIN securities s ON s.id = p.security_id")
}

func decorate(rows []dto.ProposalRead) []dto.ProposalRead {
	for i := range rows {
		rows[i].OfferType = proposal.Type(rows[i].OfferTypeID).String()
		rows[i].ProposalStatus = proposal.Status(rows[i].StatusID).String()
	}
	return rows
}

func (r *proposalRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(p).Error })
}

func (r *proposalRepository) Get(ctx context.Context, id int64) (*proposal.Proposal, error) {
	return first[proposal.Proposal](ctx, r.db, false, id)
}

func (r *proposalRepository) GetForUpdate(ctx context.Context, id int64) (*proposal.Proposal, error) {
	return first[proposal.Proposal](ctx, r.db, true, id)
}

func (r *proposalRepository) GetRead(ctx context.Context, id int64) (*dto.ProposalRead, error) {
	var rows []dto.ProposalRead
	if err := r.readQuery(ctx).Where("p.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return &decorate(rows)[0], nil
}

func (r *proposalRepository) Update(ctx context.Context, p *proposal.Proposal) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Save(p).Error })
}

func (r *proposalRepository) ListByUser(ctx context.Context, userID int64) ([]dto.ProposalRead, error) {
	rows := []dto.ProposalRead{}
	if err := r.readQuery(ctx).Where("p.user_id = ?", userID).Order("p.id DESC").Scan(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return decorate(rows), nil
}

func (r *proposalRepository) List(ctx context.Context) ([]dto.ProposalRead, error) {
	rows := []dto.ProposalRead{}
	if err := r.readQuery(ctx).Order("p.id DESC").Scan(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return decorate(rows), nil
}

func (r *proposalRepository) CountPending(ctx context.Context, accountID int64) (int64, error) {
	return countWhere(ctx, r.db, "proposals",
		"brokerage_account_id = ? AND proposal_status_id = ?", accountID, int64(proposal.Pending))
}

func (r *proposalRepository) DeleteByAccount(ctx context.Context, accountID int64) error {
	return WrapError(func() error {
		db := r.db.WithContext(ctx)
		ids := db.Model(&proposal.Proposal{}).Select("id").Where("brokerage_account_id = ?", accountID)
		for _, history := range []string{"brokerage_account_history", "depository_account_history"} {
			if err := db.Table(history).
				Where("proposal_id IN (?)", ids).
				Update("proposal_id", nil).Error; err != nil {
				return err
			}
		}
		return db.Where("brokerage_account_id = ?", accountID).Delete(&proposal.Proposal{}).Error
	})
}
