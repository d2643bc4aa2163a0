package repository

import (
	"context"

	"github.com/amirasaad/brokerage/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Every repository handed out by a UoW created inside Do shares the same
// transaction, which is what makes a ledger write and its history row atomic.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
	return MapGormErrorToDomain(err)
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) Users() repository.UserRepository { return &userRepository{db: u.session()} }

func (u *UoW) Staff() repository.StaffRepository { return &staffRepository{db: u.session()} }

func (u *UoW) Lookups() repository.LookupRepository { return &lookupRepository{db: u.session()} }

func (u *UoW) Banks() repository.BankRepository { return &bankRepository{db: u.session()} }

func (u *UoW) Currencies() repository.CurrencyRepository {
	return &currencyRepository{db: u.session()}
}

func (u *UoW) Securities() repository.SecurityRepository {
	return &securityRepository{db: u.session()}
}

func (u *UoW) Accounts() repository.AccountRepository { return &accountRepository{db: u.session()} }

func (u *UoW) Proposals() repository.ProposalRepository {
	return &proposalRepository{db: u.session()}
}

func (u *UoW) Depository() repository.DepositoryRepository {
	return &depositoryRepository{db: u.session()}
}

func (u *UoW) Passports() repository.PassportRepository {
	return &passportRepository{db: u.session()}
}

func (u *UoW) Tables() repository.TableRepository { return &tableRepository{db: u.session()} }
