// Package testutils runs the full HTTP stack against a disposable store.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	infra_eventbus "github.com/amirasaad/brokerage/infra/eventbus"
	infrarepo "github.com/amirasaad/brokerage/infra/repository"
	dbutils "github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/app"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const jwtSecret = "test-secret-at-least-32-bytes-long"

// TestConfig is the configuration every HTTP test runs with. Rate limiting is
// off unless a test turns it on.
func TestConfig() *config.App {
	return &config.App{
		Env:    "test",
		Auth:   &config.Auth{Jwt: &config.Jwt{Secret: jwtSecret, Expiry: time.Hour}},
		Roles:  config.DefaultRoles(),
		Ledger: config.DefaultLedger(),
	}
}

// NewApp wires the HTTP stack over db.
func NewApp(db *gorm.DB, cfg *config.App) (*fiber.App, *app.App, *infra_eventbus.MemoryEventBus) {
	logger := dbutils.Logger()
	bus := infra_eventbus.NewWithMemory(logger)
	a := app.New(&app.Deps{
		Uow:      infrarepo.NewUoW(db),
		EventBus: bus,
		Logger:   logger,
	}, cfg)
	return webapi.SetupApp(a), a, bus
}

// E2ETestSuite serves every test from a fresh in-memory store.
type E2ETestSuite struct {
	suite.Suite
	DB  *gorm.DB
	App *app.App
	Bus *infra_eventbus.MemoryEventBus
	app *fiber.App
}

func (s *E2ETestSuite) SetupTest() {
	s.DB = dbutils.NewTestDB(s.T())
	s.app, s.App, s.Bus = NewApp(s.DB, TestConfig())
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	return MakeRequestWithApp(s.T(), s.app, method, path, body, token)
}

// Token mints a bearer token for id without going through login.
func (s *E2ETestSuite) Token(id identity.Identity) string {
	token, err := s.App.AuthService.GenerateToken(id)
	s.Require().NoError(err)
	return token
}

// ClientToken creates a client and returns its id and token.
func (s *E2ETestSuite) ClientToken(login string, opts ...dbutils.UserOpt) (int64, string) {
	u := dbutils.CreateUser(s.T(), s.DB, login, opts...)
	return u.ID, s.Token(identity.Client(u.ID, u.Login))
}

// StaffToken creates a staff member with the given rights and returns its id and token.
func (s *E2ETestSuite) StaffToken(login string, rights int64) (int64, string) {
	st := dbutils.CreateStaff(s.T(), s.DB, login, rights)
	return st.ID, s.Token(identity.Staff(st.ID, st.Login, rights))
}

// Login posts credentials to path and returns the access token.
func (s *E2ETestSuite) Login(path, login string) string {
	body := fmt.Sprintf(`{"login":%q,"password":%q}`, login, dbutils.Password)
	resp := s.MakeRequest(fiber.MethodPost, path, body, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	out, err := DecodeResponse[loginResult](resp)
	s.Require().NoError(err)
	s.Require().Equal("bearer", out.TokenType)
	return out.AccessToken
}

type loginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Decode unwraps the data envelope of a success response into T.
func Decode[T any](s *E2ETestSuite, resp *http.Response) T {
	s.T().Helper()
	out, err := DecodeResponse[T](resp)
	s.Require().NoError(err)
	return out
}

// JSON marshals v for use as a request body.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
