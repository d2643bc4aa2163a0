package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/brokerage/pkg/cache"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/eventbus"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/amirasaad/brokerage/pkg/service/account"
	"github.com/amirasaad/brokerage/pkg/service/auth"
	"github.com/amirasaad/brokerage/pkg/service/passport"
	"github.com/amirasaad/brokerage/pkg/service/portfolio"
	"github.com/amirasaad/brokerage/pkg/service/proposal"
	"github.com/amirasaad/brokerage/pkg/service/reference"
	"github.com/amirasaad/brokerage/pkg/service/staff"
	"github.com/amirasaad/brokerage/pkg/service/user"
)

// Deps contains the infrastructure every service is built on.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger

	// RateCache is optional; nil disables rate caching.
	RateCache cache.RateCache
}

type App struct {
	Deps   *Deps
	Config *config.App

	AuthService      *auth.Service
	UserService      *user.Service
	StaffService     *staff.Service
	AccountService   *account.Service
	ProposalService  *proposal.Service
	PassportService  *passport.Service
	PortfolioService *portfolio.Service
	ReferenceService *reference.Service
}

// registrar is implemented by buses that deliver events to in-process handlers.
type registrar interface {
	Register(eventType events.EventType, handler eventbus.HandlerFunc)
}

func New(deps *Deps, cfg *config.App) *App {
	roles := cfg.Roles
	if roles == nil {
		roles = config.DefaultRoles()
	}
	ledger := cfg.Ledger
	if ledger == nil {
		ledger = config.DefaultLedger()
	}

	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	app.AuthService = auth.New(deps.Uow, cfg.Auth.Jwt, roles, deps.Logger)
	app.UserService = user.New(deps.Uow, roles, deps.Logger)
	app.StaffService = staff.New(deps.Uow, roles, deps.Logger)
	app.AccountService = account.New(deps.Uow, deps.EventBus, roles, ledger, deps.Logger)
	app.ProposalService = proposal.New(deps.Uow, deps.EventBus, roles, ledger, deps.Logger)
	app.PassportService = passport.New(deps.Uow, deps.Logger)
	app.PortfolioService = portfolio.New(deps.Uow, deps.Logger)
	app.ReferenceService = reference.New(deps.Uow, roles, deps.Logger)

	if deps.RateCache != nil {
		ttl := config.DefaultCacheTTL
		if cfg.Cache != nil && cfg.Cache.TTL > 0 {
			ttl = cfg.Cache.TTL
		}
		app.AccountService.WithRateCache(deps.RateCache, ttl)
		app.ReferenceService.WithRateCache(deps.RateCache)
	}
	return app
}

// setupEventBus attaches the audit log to buses that dispatch in-process.
// External buses (redis, kafka) leave consumption to their subscribers.
func (a *App) setupEventBus() {
	bus, ok := a.Deps.EventBus.(registrar)
	if !ok {
		return
	}
	logger := a.Deps.Logger.With("component", "audit")
	for _, et := range []events.EventType{
		events.EventTypeBalanceChanged,
		events.EventTypeProposalCreated,
		events.EventTypeProposalProcessed,
	} {
		bus.Register(et, func(ctx context.Context, e events.Event) error {
			logger.InfoContext(ctx, "ledger event", "type", e.Type(), "event", e)
			return nil
		})
	}
}
