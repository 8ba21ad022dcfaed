/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the habit engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Initialize SQLite store
  3. Create challenge and personal-habit services
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION (environment, .env supported):
  ADDR              HTTP listen address (default: :8080)
  DB_PATH           SQLite database path (default: ./data/habits.db)
                    Use ":memory:" for an in-memory database
  DEFAULT_TIMEZONE  Fallback IANA zone for tokens without one (default: UTC)
  JWT_SECRET        Token signing secret (required)
  LIVES             Missed-day allowance per enrollment (default: 5)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - config/config.go: Environment loading and validation
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stridehq/habit-engine/api"
	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/challenge"
	"github.com/stridehq/habit-engine/config"
	"github.com/stridehq/habit-engine/personal"
	"github.com/stridehq/habit-engine/store/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	defaultLoc, err := calendar.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Error("invalid default timezone", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	challengeSvc := challenge.NewService(store).WithLives(cfg.Lives)
	personalSvc := personal.NewService(store.Personal())

	handler := api.NewHandler(challengeSvc, personalSvc, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		JWTSecret:       cfg.JWTSecret,
		DefaultLocation: defaultLoc,
	})

	server := api.NewServer(cfg.Addr, router, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
