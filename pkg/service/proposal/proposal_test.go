package proposal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/brokerage/infra/eventbus"
	"github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/dto"
	proposalsvc "github.com/amirasaad/brokerage/pkg/service/proposal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc    *proposalsvc.Service
	db     *gorm.DB
	bus    *infraeventbus.MemoryEventBus
	broker *staff.Staff
}

func setup(t *testing.T) fixture {
	t.Helper()
	uow, db := testutils.NewUoW(t)
	bus := infraeventbus.NewWithMemory(testutils.Logger())
	svc := proposalsvc.New(uow, bus, config.DefaultRoles(), config.DefaultLedger(), testutils.Logger())
	return fixture{
		svc:    svc,
		db:     db,
		bus:    bus,
		broker: testutils.CreateStaff(t, db, "broker", testutils.RightsBroker),
	}
}

func buy(m *testutils.Market, lots int64) dto.ProposalCreate {
	return dto.ProposalCreate{
		UserID:     m.User.ID,
		AccountID:  m.Account.ID,
		SecurityID: m.Security.ID,
		Lots:       lots,
		TypeID:     int64(proposal.Buy),
	}
}

func sell(m *testutils.Market, lots int64) dto.ProposalCreate {
	in := buy(m, lots)
	in.TypeID = int64(proposal.Sell)
	return in
}

func balanceOf(t *testing.T, db *gorm.DB, id int64) string {
	t.Helper()
	var a account.BrokerageAccount
	require.NoError(t, db.First(&a, id).Error)
	return a.Balance.StringFixed(2)
}

func holdingOf(t *testing.T, db *gorm.DB, m *testutils.Market) string {
	t.Helper()
	var h depository.Holding
	err := db.Where("depository_account_id = ? AND security_id = ?", m.Depository.ID, m.Security.ID).First(&h).Error
	if err == gorm.ErrRecordNotFound {
		return "0"
	}
	require.NoError(t, err)
	return h.Amount.String()
}

func statusOf(t *testing.T, db *gorm.DB, id int64) proposal.Status {
	t.Helper()
	var p proposal.Proposal
	require.NoError(t, db.First(&p, id).Error)
	return p.StatusID
}

func TestCreate(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "2500.00")
	ctx := context.Background()

	got, err := f.svc.Create(ctx, buy(m, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(proposal.Pending), got.StatusID)
	assert.Equal(t, "pending", got.ProposalStatus)
	assert.Equal(t, "buy", got.OfferType)
	assert.Equal(t, int64(2), got.Quantity)
	assert.False(t, got.Price.Valid)
	assert.Equal(t, "2500.00", balanceOf(t, f.db, m.Account.ID), "creation does not move money")

	created := f.bus.PublishedOf(events.EventTypeProposalCreated)
	require.Len(t, created, 1)
	assert.Equal(t, got.ID, created[0].(*events.ProposalCreated).ProposalID)
}

func TestCreate_Rejections(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "2500.00")
	ctx := context.Background()

	eve := testutils.CreateUser(t, f.db, "eve")
	eveAcc := testutils.CreateAccount(t, f.db, eve.ID, m.Bank.ID, m.Currency.ID, "100000.00")

	usd := testutils.CreateCurrency(t, f.db, "USD", "$", "90")
	apple := testutils.CreateSecurity(t, f.db, "AAPL", usd.ID, 1, "150.00")

	old := testutils.CreateSecurity(t, f.db, "OLD", m.Currency.ID, 1, "1.00")
	require.NoError(t, f.db.Model(old).Update("archived", true).Error)

	tests := []struct {
		name string
		in   func() dto.ProposalCreate
		want error
	}{
		{"zero lots", func() dto.ProposalCreate { return buy(m, 0) }, proposal.ErrInvalidQuantity},
		{"unknown type", func() dto.ProposalCreate { in := buy(m, 1); in.TypeID = 3; return in }, proposal.ErrInvalidType},
		{"foreign account", func() dto.ProposalCreate { in := buy(m, 1); in.AccountID = eveAcc.ID; return in }, account.ErrAccountNotFound},
		{"unknown security", func() dto.ProposalCreate { in := buy(m, 1); in.SecurityID = 999; return in }, reference.ErrSecurityNotFound},
		{"archived security", func() dto.ProposalCreate { in := buy(m, 1); in.SecurityID = old.ID; return in }, reference.ErrSecurityArchived},
		{"currency mismatch", func() dto.ProposalCreate { in := buy(m, 1); in.SecurityID = apple.ID; return in }, proposal.ErrCurrencyMismatch},
		{"not verified", func() dto.ProposalCreate {
			return dto.ProposalCreate{UserID: eve.ID, AccountID: eveAcc.ID, SecurityID: m.Security.ID, Lots: 1, TypeID: 1}
		}, proposal.ErrNotVerified},
		{"insufficient funds", func() dto.ProposalCreate { return buy(m, 3) }, account.ErrInsufficientFunds},
		{"nothing to sell", func() dto.ProposalCreate { return sell(m, 1) }, depository.ErrInsufficientSecurities},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.in())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.bus.Published())
}

func TestProcess_ApproveBuy(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "2500.00")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, buy(m, 2))
	require.NoError(t, err)
	testutils.AddPrice(t, f.db, m.Security.ID, "110.00", time.Now())
	f.bus.ClearPublished()

	res, err := f.svc.Process(ctx, f.broker.ID, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "approved", res.Action)
	assert.Equal(t, f.broker.ID, res.StaffID)
	assert.Equal(t, "110.00", res.Price.Decimal.StringFixed(2), "settled at the latest price")
	assert.Equal(t, "2200.00", res.Total.Decimal.StringFixed(2))

	assert.Equal(t, "300.00", balanceOf(t, f.db, m.Account.ID))
	assert.Equal(t, "20", holdingOf(t, f.db, m))
	assert.Equal(t, proposal.Approved, statusOf(t, f.db, p.ID))

	var ops []account.Operation
	require.NoError(t, f.db.Where("brokerage_account_id = ?", m.Account.ID).Find(&ops).Error)
	require.Len(t, ops, 1)
	assert.Equal(t, "-2200.00", ops[0].Amount.StringFixed(2))
	assert.Equal(t, config.DefaultLedger().Purchase, ops[0].OperationTypeID)
	assert.Equal(t, f.broker.ID, ops[0].StaffID)
	require.NotNil(t, ops[0].ProposalID)
	assert.Equal(t, p.ID, *ops[0].ProposalID)

	var depOps []depository.Operation
	require.NoError(t, f.db.Where("depository_account_id = ?", m.Depository.ID).Find(&depOps).Error)
	require.Len(t, depOps, 1)
	assert.Equal(t, "20", depOps[0].Amount.String())
	assert.Equal(t, config.DefaultLedger().DepositoryPurchase, depOps[0].OperationTypeID)

	processed := f.bus.PublishedOf(events.EventTypeProposalProcessed)
	require.Len(t, processed, 1)
	assert.Equal(t, int64(proposal.Approved), processed[0].(*events.ProposalProcessed).StatusID)
	changed := f.bus.PublishedOf(events.EventTypeBalanceChanged)
	require.Len(t, changed, 1)
	bc := changed[0].(*events.BalanceChanged)
	require.NotNil(t, bc.ProposalID)
	assert.Equal(t, p.ID, *bc.ProposalID)
	assert.Equal(t, "300.00", bc.BalanceAfter.StringFixed(2))
}

func TestProcess_ApproveSell(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "0.00")
	testutils.SetHolding(t, f.db, m.Depository, m.Security.ID, "30")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, sell(m, 1))
	require.NoError(t, err)

	res, err := f.svc.Process(ctx, f.broker.ID, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", res.Total.Decimal.StringFixed(2))
	assert.Equal(t, "1000.00", balanceOf(t, f.db, m.Account.ID))
	assert.Equal(t, "20", holdingOf(t, f.db, m))

	var op account.Operation
	require.NoError(t, f.db.Where("brokerage_account_id = ?", m.Account.ID).First(&op).Error)
	assert.Equal(t, config.DefaultLedger().Sale, op.OperationTypeID)
	assert.Equal(t, "1000.00", op.Amount.StringFixed(2))
}

func TestProcess_Reject(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "2500.00")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, buy(m, 2))
	require.NoError(t, err)

	res, err := f.svc.Process(ctx, f.broker.ID, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Action)
	assert.False(t, res.Price.Valid)
	assert.Equal(t, "2500.00", balanceOf(t, f.db, m.Account.ID))
	assert.Equal(t, "0", holdingOf(t, f.db, m))
	assert.Empty(t, f.bus.PublishedOf(events.EventTypeBalanceChanged))

	_, err = f.svc.Process(ctx, f.broker.ID, p.ID, true)
	assert.ErrorIs(t, err, proposal.ErrAlreadyProcessed, "terminal states never change")
	assert.Equal(t, proposal.Rejected, statusOf(t, f.db, p.ID))
}

func TestProcess_Failures(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "2000.00")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, buy(m, 2))
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, f.broker.ID, 999, true)
	assert.ErrorIs(t, err, proposal.ErrProposalNotFound)

	_, err = f.svc.Process(ctx, 999, p.ID, true)
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)

	testutils.AddPrice(t, f.db, m.Security.ID, "150.00", time.Now())
	_, err = f.svc.Process(ctx, f.broker.ID, p.ID, true)
	assert.ErrorIs(t, err, account.ErrInsufficientFunds, "funds are rechecked at the settlement price")

	assert.Equal(t, proposal.Pending, statusOf(t, f.db, p.ID), "failed approval leaves the proposal pending")
	assert.Equal(t, "2000.00", balanceOf(t, f.db, m.Account.ID))
	assert.Equal(t, "0", holdingOf(t, f.db, m))
}

func TestProcess_ConcurrentApprovals(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "1000.00")
	other := testutils.CreateStaff(t, f.db, "broker2", testutils.RightsBroker)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, buy(m, 1))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, staffID := range []int64{f.broker.ID, other.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Process(ctx, staffID, p.ID, true)
		}()
	}
	wg.Wait()

	var ok, processed int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, proposal.ErrAlreadyProcessed):
			processed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, processed)
	assert.Equal(t, "0.00", balanceOf(t, f.db, m.Account.ID), "settled exactly once")
	assert.Equal(t, "10", holdingOf(t, f.db, m))
}

func TestCancel(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "2500.00")
	eve := testutils.CreateUser(t, f.db, "eve")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, buy(m, 1))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, eve.ID, p.ID)
	assert.ErrorIs(t, err, proposal.ErrProposalNotFound, "foreign proposals look missing")

	res, err := f.svc.Cancel(ctx, m.User.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Action)
	assert.Equal(t, testutils.SystemStaffID, res.StaffID)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.ProposalStatus)
	require.NotNil(t, got.ProcessedBy)
	assert.Equal(t, testutils.SystemStaffID, *got.ProcessedBy)

	_, err = f.svc.Cancel(ctx, m.User.ID, p.ID)
	assert.ErrorIs(t, err, proposal.ErrAlreadyProcessed)
}

func TestListAndGet(t *testing.T) {
	f := setup(t)
	m := testutils.NewMarket(t, f.db, "5000.00")
	bob := testutils.CreateUser(t, f.db, "bob", testutils.Verified)
	testutils.OpenDepository(t, f.db, bob.ID)
	bobAcc := testutils.CreateAccount(t, f.db, bob.ID, m.Bank.ID, m.Currency.ID, "5000.00")
	ctx := context.Background()

	first, err := f.svc.Create(ctx, buy(m, 1))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, buy(m, 2))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, dto.ProposalCreate{
		UserID: bob.ID, AccountID: bobAcc.ID, SecurityID: m.Security.ID, Lots: 1, TypeID: int64(proposal.Buy),
	})
	require.NoError(t, err)

	mine, err := f.svc.ListForUser(ctx, m.User.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.ElementsMatch(t, []int64{first.ID, second.ID}, []int64{mine[0].ID, mine[1].ID})

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := f.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Security.Name, got.SecurityName)
	assert.Equal(t, m.Security.ISIN, got.SecurityISIN)

	_, err = f.svc.Get(ctx, 999)
	assert.ErrorIs(t, err, proposal.ErrProposalNotFound)
}
