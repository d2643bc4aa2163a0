package staff_test

import (
	"fmt"
	"testing"

	dbutils "github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type StaffTestSuite struct {
	testutils.E2ETestSuite
	staffID int64
	token   string
}

func TestStaffTestSuite(t *testing.T) {
	suite.Run(t, new(StaffTestSuite))
}

func (s *StaffTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.staffID, s.token = s.StaffToken("clerk", dbutils.RightsVerifier)
}

func (s *StaffTestSuite) TestProfile() {
	resp := s.MakeRequest(fiber.MethodGet, fmt.Sprintf("/api/staff/%d", s.staffID), "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	profile := testutils.Decode[dto.StaffRead](&s.E2ETestSuite, resp)
	s.Equal("clerk", profile.Login)
	s.Equal(int64(dbutils.RightsVerifier), profile.RightsLevelID)
	s.NotEmpty(profile.RightsLevel)

	resp = s.MakeRequest(fiber.MethodGet, "/api/staff/999", "", s.token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *StaffTestSuite) TestUpdateUser() {
	uid, _ := s.ClientToken("editable")
	dbutils.CreateUser(s.T(), s.DB, "taken")
	path := fmt.Sprintf("/api/staff/user/%d", uid)

	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{"change email", `{"email":"new@example.com"}`, fiber.StatusOK},
		{"login taken", `{"login":"taken"}`, fiber.StatusBadRequest},
		{"email taken", `{"email":"taken@example.com"}`, fiber.StatusBadRequest},
		{"malformed email", `{"email":"nope"}`, fiber.StatusBadRequest},
		{"unknown verification status", `{"verification_status_id":42}`, fiber.StatusBadRequest},
		{"unknown block status", `{"block_status_id":42}`, fiber.StatusBadRequest},
	}
	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.MakeRequest(fiber.MethodPut, path, tc.body, s.token)
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}

	resp := s.MakeRequest(fiber.MethodPut, "/api/staff/user/999", `{"email":"ghost@example.com"}`, s.token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *StaffTestSuite) TestBanBlocksLogin() {
	uid, _ := s.ClientToken("to_ban")
	s.Login("/api/public/login/user", "to_ban")

	resp := s.MakeRequest(fiber.MethodPut, fmt.Sprintf("/api/staff/user/%d", uid),
		fmt.Sprintf(`{"block_status_id":%d}`, s.App.Config.Roles.UserBannedStatus), s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	u := testutils.Decode[user.User](&s.E2ETestSuite, resp)
	s.Equal(s.App.Config.Roles.UserBannedStatus, u.BlockStatusID)

	body := fmt.Sprintf(`{"login":"to_ban","password":%q}`, dbutils.Password)
	resp = s.MakeRequest(fiber.MethodPost, "/api/public/login/user", body, "")
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}
