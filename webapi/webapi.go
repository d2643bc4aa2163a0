// Package webapi assembles the HTTP surface of the brokerage back office.
// Routes are grouped by the role allowed to call them:
// - public: registration, login and reference tables
// - user: brokerage accounts, offers, passport and portfolio of a client
// - staff, broker, verifier, admin: back-office operations
// - charts: depository aggregates
package webapi

import (
	"strings"

	"github.com/amirasaad/brokerage/pkg/app"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/middleware"
	adminweb "github.com/amirasaad/brokerage/webapi/admin"
	brokerweb "github.com/amirasaad/brokerage/webapi/broker"
	chartsweb "github.com/amirasaad/brokerage/webapi/charts"
	"github.com/amirasaad/brokerage/webapi/common"
	publicweb "github.com/amirasaad/brokerage/webapi/public"
	staffweb "github.com/amirasaad/brokerage/webapi/staff"
	userweb "github.com/amirasaad/brokerage/webapi/user"
	verifierweb "github.com/amirasaad/brokerage/webapi/verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"

	_ "github.com/amirasaad/brokerage/docs"
)

var errRateLimited = fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	cfg := app.Config
	roles := cfg.Roles
	if roles == nil {
		roles = config.DefaultRoles()
	}

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, utils.StatusMessage(common.ErrorToStatusCode(err)), err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
	}))

	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit.MaxRequests,
			Expiration:   cfg.RateLimit.Window,
			KeyGenerator: clientIP,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errRateLimited,
					"Rate limit exceeded",
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	if cfg.Cors != nil {
		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Cors.Origins(),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: !strings.Contains(cfg.Cors.Origins(), "*"),
		}))
	}

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Brokerage API is running!")
	})

	protected := middleware.JwtProtected(cfg.Auth.Jwt, app.AuthService)
	api := fiberApp.Group("/api")

	publicweb.Routes(api.Group("/public"), app.AuthService, app.UserService, app.ReferenceService, protected)

	userweb.Routes(api.Group("/user"), userweb.Services{
		Users:     app.UserService,
		Accounts:  app.AccountService,
		Proposals: app.ProposalService,
		Passports: app.PassportService,
		Portfolio: app.PortfolioService,
		Reference: app.ReferenceService,
	}, protected, middleware.RequireClient())

	chartsweb.Routes(api.Group("/charts", protected), app.PortfolioService,
		middleware.RequireClient(), middleware.RequireStaff())

	brokerweb.Routes(api.Group("/broker"), app.ProposalService,
		protected, middleware.RequireRights(roles.BrokerLevels()...))

	verifierweb.Routes(api.Group("/verifier"), app.PassportService,
		protected, middleware.RequireRights(roles.VerifierLevels()...))

	adminweb.Routes(api.Group("/admin"), app.ReferenceService, app.StaffService,
		protected, middleware.RequireRights(roles.AdminLevels()...))

	staffweb.Routes(api.Group("/staff"), app.StaffService, app.UserService,
		protected, middleware.RequireStaff())

	return fiberApp
}

// clientIP keys the rate limiter. Proxies are trusted to set
// X-Forwarded-For or X-Real-IP; the first hop wins.
func clientIP(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
