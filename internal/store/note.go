package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
)

// NoteStore defines the interface for learner note persistence.
type NoteStore interface {
	// Create saves a new note.
	Create(ctx context.Context, note *domain.UserNote) error

	// GetByID retrieves a note by ID.
	// Returns ErrNoteNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserNote, error)

	// ListByUser returns the learner's notes, newest first. A nil moduleID
	// returns notes for every module.
	ListByUser(ctx context.Context, userID uuid.UUID, moduleID *uuid.UUID) ([]*domain.UserNote, error)

	// Delete removes a note owned by userID.
	// Returns ErrNoteNotFound when no such note belongs to the user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new NoteStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NoteStore
}
