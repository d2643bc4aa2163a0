package repository

import "context"

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn inside one database transaction. Repositories obtained from the
// UnitOfWork passed to fn are bound to that transaction; repositories obtained
// outside Do use the connection pool directly. If fn returns an error the
// transaction is rolled back and the error is returned with store errors
// mapped to domain error kinds.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Users() UserRepository
	Staff() StaffRepository
	Lookups() LookupRepository
	Banks() BankRepository
	Currencies() CurrencyRepository
	Securities() SecurityRepository
	Accounts() AccountRepository
	Proposals() ProposalRepository
	Depository() DepositoryRepository
	Passports() PassportRepository
	Tables() TableRepository
}
