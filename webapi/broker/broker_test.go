package broker_test

import (
	"fmt"
	"testing"

	dbutils "github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BrokerTestSuite struct {
	testutils.E2ETestSuite
	market   *dbutils.Market
	client   string
	brokerID int64
	broker   string
}

func TestBrokerTestSuite(t *testing.T) {
	suite.Run(t, new(BrokerTestSuite))
}

func (s *BrokerTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.market = dbutils.NewMarket(s.T(), s.DB, "1000.00")
	s.client = s.Token(identity.Client(s.market.User.ID, s.market.User.Login))
	s.brokerID, s.broker = s.StaffToken("broker", dbutils.RightsBroker)
}

func (s *BrokerTestSuite) offer(quantity, typeID int64) dto.ProposalRead {
	body := fmt.Sprintf(`{"account_id":%d,"security_id":%d,"quantity":%d,"proposal_type_id":%d}`,
		s.market.Account.ID, s.market.Security.ID, quantity, typeID)
	resp := s.MakeRequest(fiber.MethodPost, "/api/user/offers", body, s.client)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	return testutils.Decode[dto.ProposalRead](&s.E2ETestSuite, resp)
}

func (s *BrokerTestSuite) process(id int64, verify bool) int {
	resp := s.MakeRequest(fiber.MethodPatch, fmt.Sprintf("/api/broker/proposal/%d/process", id),
		fmt.Sprintf(`{"verify":%t}`, verify), s.broker)
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func (s *BrokerTestSuite) TestListAndGet() {
	first := s.offer(1, 1)
	second := s.offer(1, 1)

	resp := s.MakeRequest(fiber.MethodGet, "/api/broker/proposal", "", s.broker)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	all := testutils.Decode[[]dto.ProposalRead](&s.E2ETestSuite, resp)
	s.Require().Len(all, 2)
	s.Equal(second.ID, all[0].ID, "newest first")

	resp = s.MakeRequest(fiber.MethodGet, fmt.Sprintf("/api/broker/proposal/%d", first.ID), "", s.broker)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	got := testutils.Decode[dto.ProposalRead](&s.E2ETestSuite, resp)
	s.Equal(s.market.Security.ISIN, got.SecurityISIN)
	s.Equal(int64(1), got.Quantity)

	resp = s.MakeRequest(fiber.MethodGet, "/api/broker/proposal/999", "", s.broker)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodGet, "/api/broker/proposal/abc", "", s.broker)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BrokerTestSuite) TestRejectLeavesBalances() {
	p := s.offer(1, 1)
	s.Equal(fiber.StatusOK, s.process(p.ID, false))
	s.Equal(fiber.StatusBadRequest, s.process(p.ID, true), "already processed")

	resp := s.MakeRequest(fiber.MethodGet, fmt.Sprintf("/api/user/brokerage-accounts/%d", s.market.Account.ID), "", s.client)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	acc := testutils.Decode[dto.AccountRead](&s.E2ETestSuite, resp)
	s.True(decimal.RequireFromString("1000").Equal(acc.Balance))

	processed := s.Bus.PublishedOf(events.EventTypeProposalProcessed)
	s.Require().Len(processed, 1)
	s.Empty(s.Bus.PublishedOf(events.EventTypeBalanceChanged))
}

func (s *BrokerTestSuite) TestApproveSell() {
	dbutils.SetHolding(s.T(), s.DB, s.market.Depository, s.market.Security.ID, "10")
	p := s.offer(1, 2)
	s.Equal(fiber.StatusOK, s.process(p.ID, true))

	resp := s.MakeRequest(fiber.MethodGet, fmt.Sprintf("/api/user/brokerage-accounts/%d", s.market.Account.ID), "", s.client)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	acc := testutils.Decode[dto.AccountRead](&s.E2ETestSuite, resp)
	s.True(decimal.RequireFromString("2000").Equal(acc.Balance), acc.Balance.String())

	resp = s.MakeRequest(fiber.MethodGet, fmt.Sprintf("/api/broker/proposal/%d", p.ID), "", s.broker)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	got := testutils.Decode[dto.ProposalRead](&s.E2ETestSuite, resp)
	s.Require().NotNil(got.ProcessedBy)
	s.Equal(s.brokerID, *got.ProcessedBy)
	s.True(got.Total.Valid)
}

func (s *BrokerTestSuite) TestProcessRequiresDecision() {
	p := s.offer(1, 1)
	resp := s.MakeRequest(fiber.MethodPatch, fmt.Sprintf("/api/broker/proposal/%d/process", p.ID), `{}`, s.broker)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
	s.Equal(fiber.StatusNotFound, s.process(999, true))
}
