package webapi_test

import (
	"context"
	"errors"
	"sync"

	dbutils "github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/account"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/domain/proposal"
	"github.com/amirasaad/brokerage/pkg/dto"
)

// pgMarket mirrors dbutils.NewMarket with codes unique to the shared database.
func (s *PostgresWebAPITestSuite) pgMarket(code, balance string) *dbutils.Market {
	m := &dbutils.Market{}
	m.User = dbutils.CreateUser(s.T(), s.DB, "conc_"+code, dbutils.Verified)
	m.Depository = dbutils.OpenDepository(s.T(), s.DB, m.User.ID)
	m.Bank = dbutils.CreateBank(s.T(), s.DB)
	m.Currency = dbutils.CreateCurrency(s.T(), s.DB, code, "¤", "1")
	m.Security = dbutils.CreateSecurity(s.T(), s.DB, "T"+code, m.Currency.ID, 10, "100.00")
	m.Account = dbutils.CreateAccount(s.T(), s.DB, m.User.ID, m.Bank.ID, m.Currency.ID, balance)
	return m
}

func (s *PostgresWebAPITestSuite) buy(m *dbutils.Market, accountID int64) *dto.ProposalRead {
	p, err := s.App.ProposalService.Create(context.Background(), dto.ProposalCreate{
		UserID:     m.User.ID,
		AccountID:  accountID,
		SecurityID: m.Security.ID,
		Lots:       1,
		TypeID:     int64(proposal.Buy),
	})
	s.Require().NoError(err)
	return p
}

func (s *PostgresWebAPITestSuite) holding(m *dbutils.Market) *depository.Holding {
	var h depository.Holding
	s.Require().NoError(s.DB.
		Where("depository_account_id = ? AND security_id = ?", m.Depository.ID, m.Security.ID).
		First(&h).Error)
	return &h
}

func (s *PostgresWebAPITestSuite) balance(accountID int64) *account.BrokerageAccount {
	var a account.BrokerageAccount
	s.Require().NoError(s.DB.First(&a, accountID).Error)
	return &a
}

// parallel runs fn n times at once and returns the errors by index.
func parallel(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func (s *PostgresWebAPITestSuite) TestConcurrentApprovalSettlesOnce() {
	m := s.pgMarket("CQA", "1500.00")
	broker := dbutils.CreateStaff(s.T(), s.DB, "conc_broker_a", dbutils.RightsBroker)
	p := s.buy(m, m.Account.ID)

	errs := parallel(2, func(int) error {
		_, err := s.App.ProposalService.Process(context.Background(), broker.ID, p.ID, true)
		return err
	})

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.True(errors.Is(err, proposal.ErrAlreadyProcessed) ||
			errors.Is(err, domain.ErrConcurrentModification), "unexpected error: %v", err)
	}
	s.Equal(1, ok)
	s.True(s.balance(m.Account.ID).Balance.Equal(dbutils.Dec("500.00")))
	s.True(s.holding(m).Amount.Equal(dbutils.Dec("10")))

	var ops int64
	s.Require().NoError(s.DB.Model(&account.Operation{}).
		Where("brokerage_account_id = ?", m.Account.ID).Count(&ops).Error)
	s.Equal(int64(1), ops)
}

func (s *PostgresWebAPITestSuite) TestConcurrentDebitsNeverOverdraw() {
	m := s.pgMarket("CQB", "100.00")

	errs := parallel(8, func(int) error {
		_, err := s.App.AccountService.ChangeBalance(context.Background(),
			m.User.ID, m.Account.ID, dbutils.Dec("-30.00"))
		return err
	})

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.ErrorIs(err, account.ErrInsufficientFunds)
	}
	s.Equal(3, ok)
	s.True(s.balance(m.Account.ID).Balance.Equal(dbutils.Dec("10.00")))
}

func (s *PostgresWebAPITestSuite) TestConcurrentFirstPurchasesShareOneHolding() {
	m := s.pgMarket("CQC", "1000.00")
	second := dbutils.CreateAccount(s.T(), s.DB, m.User.ID, m.Bank.ID, m.Currency.ID, "1000.00")
	broker := dbutils.CreateStaff(s.T(), s.DB, "conc_broker_c", dbutils.RightsBroker)
	proposals := []*dto.ProposalRead{s.buy(m, m.Account.ID), s.buy(m, second.ID)}

	errs := parallel(len(proposals), func(i int) error {
		_, err := s.App.ProposalService.Process(context.Background(), broker.ID, proposals[i].ID, true)
		return err
	})
	for _, err := range errs {
		s.NoError(err)
	}

	s.True(s.holding(m).Amount.Equal(dbutils.Dec("20")))
	var rows int64
	s.Require().NoError(s.DB.Model(&depository.Holding{}).
		Where("depository_account_id = ?", m.Depository.ID).Count(&rows).Error)
	s.Equal(int64(1), rows)
	s.True(s.balance(m.Account.ID).Balance.IsZero())
	s.True(s.balance(second.ID).Balance.IsZero())
}
