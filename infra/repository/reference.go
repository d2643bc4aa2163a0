package repository

import (
	"context"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bankRepository struct {
	db *gorm.DB
}

func (r *bankRepository) List(ctx context.Context) ([]reference.Bank, error) {
	var out []reference.Bank
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return out, nil
}

func (r *bankRepository) Get(ctx context.Context, id int64) (*reference.Bank, error) {
	return first[reference.Bank](ctx, r.db, false, id)
}

func (r *bankRepository) ExistsByINN(ctx context.Context, inn string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &reference.Bank{}, "inn", inn, exceptID)
}

func (r *bankRepository) ExistsByOGRN(ctx context.Context, ogrn string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &reference.Bank{}, "ogrn", ogrn, exceptID)
}

func (r *bankRepository) ExistsByBIK(ctx context.Context, bik string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &reference.Bank{}, "bik", bik, exceptID)
}

func (r *bankRepository) Create(ctx context.Context, b *reference.Bank) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(b).Error })
}

func (r *bankRepository) Update(ctx context.Context, b *reference.Bank) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Save(b).Error })
}

func (r *bankRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Delete(&reference.Bank{}, id).Error })
}

func (r *bankRepository) InUse(ctx context.Context, id int64) (bool, error) {
	return existsWhere(ctx, r.db, &account.BrokerageAccount{}, "bank_id", id, 0)
}

type currencyRepository struct {
	db *gorm.DB
}

func (r *currencyRepository) List(ctx context.Context) ([]dto.CurrencyRead, error) {
	var currencies []reference.Currency
	if err := r.db.WithContext(ctx).Order("id").Find(&currencies).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	latest, err := r.latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CurrencyRead, 0, len(currencies))
	for _, c := range currencies {
		read := dto.CurrencyRead{ID: c.ID, Code: c.Code, Symbol: c.Symbol, Archived: c.Archived}
		if rate, ok := latest[c.ID]; ok {
			day := rate.RateDate
			read.RateToBase = decimal.NewNullDecimal(rate.Rate)
			read.RateDate = &day
		}
		out = append(out, read)
	}
	return out, nil
}

// latest returns the newest rate row per currency.
func (r *currencyRepository) latest(ctx context.Context) (map[int64]reference.CurrencyRate, error) {
	var rates []reference.CurrencyRate
	err := r.db.WithContext(ctx).
		Order("currency_id").Order("rate_date DESC").Order("id DESC").
		Find(&rates).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make(map[int64]reference.CurrencyRate, len(rates))
	for _, rate := range rates {
		if _, seen := out[rate.CurrencyID]; !seen {
			out[rate.CurrencyID] = rate
		}
	}
	return out, nil
}

func (r *currencyRepository) LatestRates(ctx context.Context) (map[int64]decimal.Decimal, error) {
	latest, err := r.latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]decimal.Decimal, len(latest))
	for id, rate := range latest {
		out[id] = rate.Rate
	}
	return out, nil
}

func (r *currencyRepository) Get(ctx context.Context, id int64) (*reference.Currency, error) {
	return first[reference.Currency](ctx, r.db, false, id)
}

func (r *currencyRepository) ExistsByCode(ctx context.Context, code string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &reference.Currency{}, "code", code, exceptID)
}

func (r *currencyRepository) Create(ctx context.Context, c *reference.Currency) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(c).Error })
}

func (r *currencyRepository) Update(ctx context.Context, c *reference.Currency) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Save(c).Error })
}

func (r *currencyRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error {
		db := r.db.WithContext(ctx)
		if err := db.Where("currency_id = ?", id).Delete(&reference.CurrencyRate{}).Error; err != nil {
			return err
		}
		return db.Delete(&reference.Currency{}, id).Error
	})
}

func (r *currencyRepository) InUse(ctx context.Context, id int64) (bool, error) {
	used, err := existsWhere(ctx, r.db, &account.BrokerageAccount{}, "currency_id", id, 0)
	if err != nil || used {
		return used, err
	}
	return existsWhere(ctx, r.db, &reference.Security{}, "currency_id", id, 0)
}

func (r *currencyRepository) SaveRate(ctx context.Context, rate *reference.CurrencyRate) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "currency_id"}, {Name: "rate_date"}},
				DoUpdates: clause.AssignmentColumns([]string{"rate"}),
			}).
			Create(rate).Error
	})
}

type securityRepository struct {
	db *gorm.DB
}

type priceRow struct {
	SecurityID int64
	Price      decimal.Decimal
}

// priceTrail returns, per security, its prices newest first (at most two).
func (r *securityRepository) priceTrail(ctx context.Context) (map[int64][]decimal.Decimal, error) {
	var rows []priceRow
	err := r.db.WithContext(ctx).
		Model(&reference.PriceHistory{}).
		Select("security_id, price").
		Order("security_id").Order("recorded_at DESC").Order("id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make(map[int64][]decimal.Decimal)
	for _, row := range rows {
		if len(out[row.SecurityID]) < 2 {
			out[row.SecurityID] = append(out[row.SecurityID], row.Price)
		}
	}
	return out, nil
}

func (r *securityRepository) List(ctx context.Context, includeArchived bool) ([]dto.StockRead, error) {
	q := r.db.WithContext(ctx).
		Table("securities AS s").
		Select(`s.id, s.name, s.ticker, s.isin, s.lot_size, s.currency_id,
			c.code AS currency_code, c.symbol AS currency_symbol,
			s.pays_dividends, s.archived`).
		Joins("JOIN currencies c ON c.id = s.currency_id").
		Order("s.id")
	if !includeArchived {
		q = q.Where("s.archived = ?", false)
	}
	out := []dto.StockRead{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	trail, err := r.priceTrail(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		prices := trail[out[i].ID]
		if len(prices) > 0 {
			out[i].Price = prices[0]
		}
		if len(prices) > 1 {
			out[i].Change = prices[0].Sub(prices[1])
		}
	}
	return out, nil
}

func (r *securityRepository) Get(ctx context.Context, id int64) (*reference.Security, error) {
	return first[reference.Security](ctx, r.db, false, id)
}

func (r *securityRepository) ExistsByTicker(ctx context.Context, ticker string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &reference.Security{}, "ticker", ticker, exceptID)
}

func (r *securityRepository) ExistsByISIN(ctx context.Context, isin string, exceptID int64) (bool, error) {
	return existsWhere(ctx, r.db, &reference.Security{}, "isin", isin, exceptID)
}

func (r *securityRepository) Create(ctx context.Context, s *reference.Security) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Create(s).Error })
}

func (r *securityRepository) Update(ctx context.Context, s *reference.Security) error {
	return WrapError(func() error { return r.db.WithContext(ctx).Save(s).Error })
}

func (r *securityRepository) Delete(ctx context.Context, id int64) error {
	return WrapError(func() error {
		db := r.db.WithContext(ctx)
		if err := db.Where("security_id = ?", id).Delete(&reference.PriceHistory{}).Error; err != nil {
			return err
		}
		return db.Delete(&reference.Security{}, id).Error
	})
}

func (r *securityRepository) InUse(ctx context.Context, id int64) (bool, error) {
	for _, table := range []string{"proposals", "depository_account_balances", "depository_account_history"} {
		n, err := countWhere(ctx, r.db, table, "security_id = ?", id)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *securityRepository) AddPrice(ctx context.Context, p *reference.PriceHistory) error {
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	}
	return WrapError(func() error { return r.db.WithContext(ctx).Create(p).Error })
}

func (r *securityRepository) CurrentPrice(ctx context.Context, securityID int64) (decimal.Decimal, error) {
	p, err := first[reference.PriceHistory](ctx,
		r.db.Where("security_id = ?", securityID).Order("recorded_at DESC").Order("id DESC"),
		false)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Price, nil
}

func (r *securityRepository) CurrentPrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	trail, err := r.priceTrail(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]decimal.Decimal, len(trail))
	for id, prices := range trail {
		out[id] = prices[0]
	}
	return out, nil
}
