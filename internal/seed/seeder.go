package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/academy-api/internal/config"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/redact"
	"github.com/phrazzld/academy-api/internal/store"
)

// LockFunc acquires a lock held until the seeding transaction ends.
type LockFunc func(ctx context.Context, db store.DBTX) error

// Result reports what a seeding run did.
type Result struct {
	Seeded       bool
	AdminCreated bool
	Counts
}

// Seeder writes the content catalog into an empty database.
type Seeder struct {
	tx      store.Transactor
	content store.ContentStore
	users   store.UserStore
	lock    LockFunc
	catalog *Catalog
	admin   config.SeedConfig
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// WithCatalog replaces the embedded catalog.
func WithCatalog(c *Catalog) Option {
	return func(s *Seeder) { s.catalog = c }
}

// NewSeeder creates a Seeder over the embedded catalog.
func NewSeeder(
	tx store.Transactor,
	content store.ContentStore,
	users store.UserStore,
	lock LockFunc,
	admin config.SeedConfig,
	logger *slog.Logger,
	opts ...Option,
) (*Seeder, error) {
	if tx == nil || content == nil || users == nil || lock == nil {
		return nil, errors.New("seeder dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Seeder{
		tx:      tx,
		content: content,
		users:   users,
		lock:    lock,
		admin:   admin,
		logger:  logger.With(slog.String("component", "seeder")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		c, err := LoadDefault()
		if err != nil {
			return nil, err
		}
		s.catalog = c
	}
	return s, nil
}

// Run seeds the catalog unless modules already exist. Everything happens in
// one transaction behind the seed lock, so concurrent instances seed once and
// a failure leaves nothing behind.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	start := s.now()

	var res Result
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res = Result{}
		if err := s.lock(ctx, tx); err != nil {
			return fmt.Errorf("failed to acquire seed lock: %w", err)
		}

		content, users := s.content, s.users
		if tx != nil {
			content, users = content.WithTx(tx), users.WithTx(tx)
		}

		existing, err := content.CountModules(ctx)
		if err != nil {
			return fmt.Errorf("failed to count modules: %w", err)
		}
		if existing > 0 {
			log.Info("content already present, skipping seed", slog.Int("modules", existing))
			return nil
		}

		if res.AdminCreated, err = s.ensureAdmin(ctx, users); err != nil {
			return err
		}

		tree, err := s.catalog.Build(s.now())
		if err != nil {
			return fmt.Errorf("failed to build content catalog: %w", err)
		}
		if err := persist(ctx, content, tree); err != nil {
			return err
		}

		res.Seeded = true
		res.Counts = tree.Counts()
		for category, n := range tree.ByCategory() {
			log.Info("seeded category",
				slog.String("category", category.DisplayName()),
				slog.Int("modules", n))
		}
		return nil
	})
	if err != nil {
		log.Error("content seeding failed", redact.ErrorAttr(err))
		return Result{}, err
	}

	if res.Seeded {
		log.Info("content seeding completed",
			slog.Int("modules", res.Modules),
			slog.Int("topics", res.Topics),
			slog.Int("questions", res.Questions),
			slog.Int("enrichments", res.Enrichments),
			slog.Bool("admin_created", res.AdminCreated),
			slog.Duration("duration", s.now().Sub(start)))
	}
	return res, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, users store.UserStore) (bool, error) {
	if !s.admin.HasAdmin() {
		return false, nil
	}

	_, err := users.GetByUsername(ctx, s.admin.AdminUsername)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}

	admin, err := domain.NewUser(s.admin.AdminUsername, s.admin.AdminEmail, s.admin.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("invalid admin account: %w", err)
	}
	admin.Role = domain.RoleAdmin
	admin.FirstName = "System"
	admin.LastName = "Administrator"
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return true, nil
}

func persist(ctx context.Context, content store.ContentStore, tree *Tree) error {
	for _, mt := range tree.Modules {
		if err := content.CreateModule(ctx, mt.Module); err != nil {
			return fmt.Errorf("failed to create module %q: %w", mt.Module.Name, err)
		}
		for _, t := range mt.Topics {
			if err := content.CreateTopic(ctx, t); err != nil {
				return fmt.Errorf("failed to create topic %q: %w", t.Title, err)
			}
		}
		for _, q := range mt.Questions {
			if err := content.CreateQuestion(ctx, q); err != nil {
				return fmt.Errorf("failed to create question %q: %w", q.Question, err)
			}
		}
		for _, e := range mt.Enrichments {
			if err := content.CreateEnrichment(ctx, e); err != nil {
				return fmt.Errorf("failed to create enrichment %q: %w", e.Title, err)
			}
		}
	}
	return nil
}
