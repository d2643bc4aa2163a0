// Package proposal runs the buy/sell request workflow: clients create
// pending proposals, brokers approve or reject them and clients may cancel
// their own. Approval settles the trade between the brokerage account and
// the depository account in a single transaction.
package proposal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/domain/money"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/eventbus"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned when a security has never been quoted.
var ErrNoPrice = domain.NewError(domain.ErrStateConflict, "security has no price")

type Service struct {
	uow      repository.UnitOfWork
	eventBus eventbus.Bus
	roles    *config.Roles
	ledger   *config.Ledger
	logger   *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	eventBus eventbus.Bus,
	roles *config.Roles,
	ledger *config.Ledger,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:      uow,
		eventBus: eventBus,
		roles:    roles,
		ledger:   ledger,
		logger:   logger,
	}
}

// Create stores a pending proposal after checking it could settle right now.
// The checks are repeated under locks when the proposal is approved.
func (s *Service) Create(ctx context.Context, in dto.ProposalCreate) (*dto.ProposalRead, error) {
	log := s.logger.With("context", "CreateProposal", "user_id", in.UserID,
		"account_id", in.AccountID, "security_id", in.SecurityID)
	p, err := proposal.New(in.UserID, in.AccountID, in.SecurityID, proposal.Type(in.TypeID), in.Lots)
	if err != nil {
		return nil, err
	}

	acc, err := s.uow.Accounts().Get(ctx, in.AccountID)
	if err != nil {
		return nil, notFound(err, account.ErrAccountNotFound)
	}
	if acc.UserID != in.UserID {
		return nil, account.ErrAccountNotFound
	}
	sec, err := s.uow.Securities().Get(ctx, in.SecurityID)
	if err != nil {
		return nil, notFound(err, reference.ErrSecurityNotFound)
	}
	if sec.Archived {
		return nil, reference.ErrSecurityArchived
	}
	if sec.CurrencyID != acc.CurrencyID {
		return nil, proposal.ErrCurrencyMismatch
	}
	dep, err := s.uow.Depository().GetAccountByUser(ctx, in.UserID)
	if err != nil {
		return nil, notFound(err, proposal.ErrNotVerified)
	}

	units := p.Units(sec.LotSize)
	switch p.TypeID {
	case proposal.Buy:
		price, err := s.uow.Securities().CurrentPrice(ctx, sec.ID)
		if err != nil {
			return nil, notFound(err, ErrNoPrice)
		}
		if money.Cost(price, units).GreaterThan(acc.Balance) {
			log.Warn("Rejected by optimistic check", "balance", acc.Balance, "price", price)
			return nil, account.ErrInsufficientFunds
		}
	case proposal.Sell:
		h, err := s.uow.Depository().GetHolding(ctx, dep.ID, sec.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if h == nil || h.Amount.LessThan(units) {
			log.Warn("Rejected by optimistic check", "units", units)
			return nil, depository.ErrInsufficientSecurities
		}
	}

	var out *dto.ProposalRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Proposals().Create(ctx, p); err != nil {
			return err
		}
		var err error
		out, err = uow.Proposals().GetRead(ctx, p.ID)
		return err
	})
	if err != nil {
		log.Error("Proposal creation failed", "error", err)
		return nil, err
	}
	log.Info("Proposal created", "proposal_id", p.ID, "type", p.TypeID.String(), "lots", p.Lots)
	eventbus.EmitAll(ctx, s.eventBus, s.logger, events.NewProposalCreated(
		p.ID, p.UserID, p.BrokerageAccountID, p.SecurityID, int64(p.TypeID), p.Lots))
	return out, nil
}

// Process approves (verify) or rejects a pending proposal on behalf of staffID.
func (s *Service) Process(ctx context.Context, staffID, proposalID int64, verify bool) (*dto.ProposalResult, error) {
	return s.resolve(ctx, proposalID, 0, staffID, proposal.ResolutionFor(verify))
}

// Cancel withdraws the user's own pending proposal. The transition is
// recorded against the system staff account.
func (s *Service) Cancel(ctx context.Context, userID, proposalID int64) (*dto.ProposalResult, error) {
	return s.resolve(ctx, proposalID, userID, s.roles.SystemStaffID, proposal.Cancel)
}

// resolve moves a pending proposal to a terminal state. A non-zero ownerID
// restricts the operation to that user's proposals.
func (s *Service) resolve(
	ctx context.Context,
	proposalID, ownerID, staffID int64,
	r proposal.Resolution,
) (*dto.ProposalResult, error) {
	log := s.logger.With("context", "ResolveProposal", "proposal_id", proposalID,
		"staff_id", staffID, "resolution", string(r))

	var (
		p      *proposal.Proposal
		settle *settlement
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		p, err = uow.Proposals().GetForUpdate(ctx, proposalID)
		if err != nil {
			return notFound(err, proposal.ErrProposalNotFound)
		}
		if ownerID != 0 && p.UserID != ownerID {
			return proposal.ErrProposalNotFound
		}
		if p.StatusID != proposal.Pending {
			return proposal.ErrAlreadyProcessed
		}
		exists, err := uow.Staff().Exists(ctx, staffID)
		if err != nil {
			return err
		}
		if !exists {
			return staff.ErrStaffNotFound
		}
		if r == proposal.Approve {
			if settle, err = s.settle(ctx, uow, p, staffID); err != nil {
				return err
			}
		}
		if err := p.Resolve(r, staffID, time.Now()); err != nil {
			return err
		}
		return uow.Proposals().Update(ctx, p)
	})
	if err != nil {
		log.Warn("Proposal resolution failed", "error", err)
		return nil, err
	}

	log.Info("Proposal resolved", "status", p.StatusID.String())
	evts := []events.Event{events.NewProposalProcessed(
		p.ID, p.UserID, string(r), int64(p.StatusID), staffID, p.Price, p.Total)}
	if settle != nil {
		evts = append(evts, events.NewBalanceChanged(
			settle.accountID, p.UserID, settle.op.Amount, settle.op.BalanceAfter,
			settle.op.ID, settle.op.OperationTypeID, events.WithProposal(p.ID)))
	}
	eventbus.EmitAll(ctx, s.eventBus, s.logger, evts...)

	return &dto.ProposalResult{
		ProposalID: p.ID,
		Action:     string(r),
		StaffID:    staffID,
		Price:      p.Price,
		Total:      p.Total,
	}, nil
}

type settlement struct {
	accountID int64
	op        *account.Operation
}

// settle executes an approved proposal at the latest price. Locks are taken
// in the order proposal (by the caller), brokerage account, depository
// account, holding.
func (s *Service) settle(
	ctx context.Context,
	uow repository.UnitOfWork,
	p *proposal.Proposal,
	staffID int64,
) (*settlement, error) {
	accounts, dep := uow.Accounts(), uow.Depository()
	acc, err := accounts.GetForUpdate(ctx, p.BrokerageAccountID)
	if err != nil {
		return nil, notFound(err, account.ErrAccountNotFound)
	}
	sec, err := uow.Securities().Get(ctx, p.SecurityID)
	if err != nil {
		return nil, notFound(err, reference.ErrSecurityNotFound)
	}
	price, err := uow.Securities().CurrentPrice(ctx, sec.ID)
	if err != nil {
		return nil, notFound(err, ErrNoPrice)
	}
	depAcc, err := dep.GetAccountByUserForUpdate(ctx, p.UserID)
	if err != nil {
		return nil, notFound(err, proposal.ErrNotVerified)
	}
	holding, err := dep.GetHoldingForUpdate(ctx, depAcc.ID, sec.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		holding = &depository.Holding{
			DepositoryAccountID: depAcc.ID,
			UserID:              p.UserID,
			SecurityID:          sec.ID,
			Amount:              decimal.Zero,
		}
	case err != nil:
		return nil, err
	}

	units := p.Units(sec.LotSize)
	total := money.Cost(price, units)
	var cash decimal.Decimal
	var cashOp, depOp int64
	switch p.TypeID {
	case proposal.Buy:
		cash, cashOp, depOp = total.Neg(), s.ledger.Purchase, s.ledger.DepositoryPurchase
		if err := acc.Apply(cash); err != nil {
			return nil, err
		}
		if err := holding.Apply(units); err != nil {
			return nil, err
		}
	case proposal.Sell:
		cash, cashOp, depOp = total, s.ledger.Sale, s.ledger.DepositorySale
		if err := holding.Apply(units.Neg()); err != nil {
			return nil, err
		}
		if err := acc.Apply(cash); err != nil {
			return nil, err
		}
	default:
		return nil, proposal.ErrInvalidType
	}

	if err := accounts.UpdateBalance(ctx, acc); err != nil {
		return nil, err
	}
	if err := dep.SaveHolding(ctx, holding); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	proposalID := p.ID
	op := &account.Operation{
		BrokerageAccountID: acc.ID,
		Amount:             cash,
		BalanceAfter:       acc.Balance,
		OperationTypeID:    cashOp,
		StaffID:            staffID,
		ProposalID:         &proposalID,
		CreatedAt:          now,
	}
	if err := accounts.AppendOperation(ctx, op); err != nil {
		return nil, err
	}
	if err := dep.AppendOperation(ctx, &depository.Operation{
		DepositoryAccountID: depAcc.ID,
		UserID:              p.UserID,
		SecurityID:          sec.ID,
		Amount:              units,
		OperationTypeID:     depOp,
		ProposalID:          &proposalID,
		StaffID:             staffID,
		CreatedAt:           now,
	}); err != nil {
		return nil, err
	}
	p.Execute(price, total)
	return &settlement{accountID: acc.ID, op: op}, nil
}

// ListForUser returns the user's proposals, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]dto.ProposalRead, error) {
	return s.uow.Proposals().ListByUser(ctx, userID)
}

// ListAll returns every proposal, newest first.
func (s *Service) ListAll(ctx context.Context) ([]dto.ProposalRead, error) {
	return s.uow.Proposals().List(ctx)
}

// Get returns one proposal.
func (s *Service) Get(ctx context.Context, proposalID int64) (*dto.ProposalRead, error) {
	p, err := s.uow.Proposals().GetRead(ctx, proposalID)
	if err != nil {
		return nil, notFound(err, proposal.ErrProposalNotFound)
	}
	return p, nil
}

func notFound(err, specific error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return specific
	}
	return err
}
