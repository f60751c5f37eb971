package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
)

// UserStore persists learner and admin accounts.
type UserStore interface {
	// Create validates the user, hashes user.Password when set, and inserts
	// the row. A taken email or username returns ErrEmailExists or
	// ErrUsernameExists.
	Create(ctx context.Context, user *domain.User) error

	// The lookups return ErrUserNotFound on a miss. Email and username
	// matching is case-insensitive.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	WithTx(tx *sql.Tx) UserStore
}
