// Package main runs the academy API server: learning content, progress
// tracking, spaced repetition reviews and mastery assessments over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/academy-api/internal/config"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/platform/postgres"
	"github.com/phrazzld/academy-api/internal/redact"
)

func main() {
	migrate := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrate, flag.Args()); err != nil {
		slog.Error("academy-api stopped", redact.ErrorAttr(err))
		os.Exit(1)
	}
}

// run loads configuration, opens the database and either executes a
// migration command or serves HTTP until a shutdown signal arrives.
func run(ctx context.Context, migrateCmd string, args []string) error {
	cfg, err := config.LoadAndWatch(func(c *config.Config) {
		logger.SetLevel(c.Server.LogLevel)
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("seed_enabled", cfg.Seed.Enabled),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled))

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCmd, log, args...)
	}

	if err := postgres.Migrate(ctx, db, "up", log); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	if err := app.seed(ctx); err != nil {
		app.cleanup()
		return err
	}
	if err := app.startScheduler(); err != nil {
		app.cleanup()
		return err
	}

	return app.startHTTPServer(ctx, app.router())
}
