package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/academy-api/internal/api"
	apiMiddleware "github.com/phrazzld/academy-api/internal/api/middleware"
	"github.com/phrazzld/academy-api/internal/config"
	"github.com/phrazzld/academy-api/internal/domain/srs"
	"github.com/phrazzld/academy-api/internal/platform/metrics"
	"github.com/phrazzld/academy-api/internal/platform/postgres"
	"github.com/phrazzld/academy-api/internal/redact"
	"github.com/phrazzld/academy-api/internal/scheduler"
	"github.com/phrazzld/academy-api/internal/seed"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/service/auth"
	"github.com/phrazzld/academy-api/internal/service/review"
	"github.com/phrazzld/academy-api/internal/store"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	tx            store.Transactor
	userStore     store.UserStore
	contentStore  store.ContentStore
	scheduleStore *postgres.PostgresScheduleStore
	progressStore *postgres.PostgresProgressStore
	jwtService    auth.JWTService
	metrics       *metrics.Metrics
	handlers      handlers
	scheduler     *scheduler.Scheduler
}

// newApplication wires stores, services and handlers over an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		tx:      store.NewDBTransactor(db),
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.contentStore = postgres.NewPostgresContentStore(db, logger)
	app.scheduleStore = postgres.NewPostgresScheduleStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	noteStore := postgres.NewPostgresNoteStore(db, logger)
	bloomsStore := postgres.NewPostgresBloomsStore(db, logger)
	competencyStore := postgres.NewPostgresCompetencyStore(db, logger)

	contentService, err := service.NewContentService(app.contentStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content service: %w", err)
	}
	progressService, err := service.NewProgressService(app.tx, app.progressStore, app.contentStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize progress service: %w", err)
	}
	noteService, err := service.NewNoteService(noteStore, app.contentStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize note service: %w", err)
	}
	masteryService, err := service.NewMasteryService(bloomsStore, competencyStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mastery service: %w", err)
	}
	srsService, err := srs.NewDefaultService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SRS service: %w", err)
	}
	reviewService := review.NewService(app.tx, app.scheduleStore, srsService, logger,
		review.WithOverdueGrace(cfg.Scheduler.OverdueGrace()))
	authService := auth.NewService(app.userStore, app.jwtService, auth.NewBcryptVerifier(), logger)

	app.handlers = handlers{
		auth:     api.NewAuthHandler(authService),
		content:  api.NewContentHandler(contentService, progressService),
		progress: api.NewProgressHandler(progressService),
		reviews:  api.NewReviewHandler(reviewService),
		mastery:  api.NewMasteryHandler(masteryService),
		notes:    api.NewNoteHandler(noteService),
		reports:  api.NewReportHandler(contentService, masteryService, app.metrics),
		authMW:   apiMiddleware.NewAuthMiddleware(app.jwtService),
		timing:   apiMiddleware.NewTiming(app.metrics, cfg.Server.SlowRequestThreshold(), logger),
		metrics:  app.metrics.Handler(),
		health:   db,
	}
	if cfg.Server.RateLimitRPS > 0 {
		app.handlers.limiter = apiMiddleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}

	return app, nil
}

// seed loads the content catalog when seeding is enabled.
func (app *application) seed(ctx context.Context) error {
	if !app.config.Seed.Enabled {
		app.logger.Info("content seeding disabled")
		return nil
	}
	seeder, err := seed.NewSeeder(app.tx, app.contentStore, app.userStore, postgres.AcquireSeedLock,
		app.config.Seed, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize seeder: %w", err)
	}
	if _, err := seeder.Run(ctx); err != nil {
		return fmt.Errorf("content seeding failed: %w", err)
	}
	return nil
}

// startScheduler starts the periodic review sweep when enabled.
func (app *application) startScheduler() error {
	if !app.config.Scheduler.Enabled {
		app.logger.Info("review sweep disabled")
		return nil
	}
	sweeper, err := scheduler.NewSweeper(app.scheduleStore, app.metrics, app.config.Scheduler.OverdueGrace(), app.logger,
		scheduler.WithOldestDue(app.scheduleStore),
		scheduler.WithStaleProgress(app.progressStore, app.config.Scheduler.StaleProgressAge()))
	if err != nil {
		return fmt.Errorf("failed to initialize review sweep: %w", err)
	}
	app.scheduler, err = scheduler.New(sweeper, app.config.Scheduler.SweepInterval(), app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// router builds the HTTP handler and lints its route table.
func (app *application) router() http.Handler {
	r := newRouter(app.handlers, app.logger)
	lintRoutes(r, app.logger)
	return r
}

// cleanup stops background work and closes the database.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", redact.ErrorAttr(err))
		}
	}
}
