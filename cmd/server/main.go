package main

import (
	"fmt"
	"io"

	"github.com/amirasaad/brokerage/infra/initializer"
	"github.com/amirasaad/brokerage/pkg/app"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/webapi"
	log "github.com/charmbracelet/log"
)

// @title Brokerage API
// @version 1.0.0
// @description Brokerage back-office API: client accounts, trade proposals,
// @description passport verification and catalogue administration.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8000
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.EventBus.Close(); err != nil {
			deps.Logger.Warn("Failed to close event bus", "error", err)
		}
		if c, ok := deps.RateCache.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	fiberApp := webapi.SetupApp(app.New(deps, cfg))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	deps.Logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)
	return fiberApp.Listen(addr)
}
