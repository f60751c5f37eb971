package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

const noteColumns = `id, user_id, module_id, topic_id, title, content, category, is_public, created_at, updated_at`

// PostgresNoteStore implements the store.NoteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the NoteStore interface.
func NewPostgresNoteStore(db store.DBTX, logger *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore interface
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// Create implements store.NoteStore.Create
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.UserNote) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during creation",
			slog.String("error", err.Error()),
			slog.String("user_id", note.UserID.String()))
		return err
	}

	query := `INSERT INTO user_notes (` + noteColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query,
		note.ID, note.UserID, note.ModuleID, note.TopicID, note.Title, note.Content,
		note.Category, note.IsPublic, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("note references missing user or content",
				slog.String("error", err.Error()),
				slog.String("user_id", note.UserID.String()))
			return fmt.Errorf("%w: user or content not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create note",
			slog.String("error", err.Error()),
			slog.String("user_id", note.UserID.String()))
		return MapError(err)
	}

	log.Info("note created",
		slog.String("note_id", note.ID.String()),
		slog.String("user_id", note.UserID.String()))
	return nil
}

// GetByID implements store.NoteStore.GetByID
func (s *PostgresNoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + noteColumns + ` FROM user_notes WHERE id = $1`
	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found", slog.String("note_id", id.String()))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return nil, MapError(err)
	}
	return note, nil
}

// ListByUser implements store.NoteStore.ListByUser
func (s *PostgresNoteStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	moduleID *uuid.UUID,
) ([]*domain.UserNote, error) {
	if moduleID == nil {
		query := `SELECT ` + noteColumns + ` FROM user_notes WHERE user_id = $1 ORDER BY created_at DESC`
		return queryAll(ctx, s.db, s.logger, "note", scanNote, query, userID)
	}
	query := `
		SELECT ` + noteColumns + `
		FROM user_notes
		WHERE user_id = $1 AND module_id = $2
		ORDER BY created_at DESC
	`
	return queryAll(ctx, s.db, s.logger, "note", scanNote, query, userID, *moduleID)
}

// Delete implements store.NoteStore.Delete
func (s *PostgresNoteStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete note",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "note"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNoteNotFound
		}
		return err
	}

	log.Info("note deleted", slog.String("note_id", id.String()))
	return nil
}

// WithTx implements store.NoteStore.WithTx
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{db: tx, logger: s.logger}
}

func scanNote(row rowScanner) (*domain.UserNote, error) {
	var n domain.UserNote
	var moduleID, topicID uuid.NullUUID
	var category string
	err := row.Scan(
		&n.ID, &n.UserID, &moduleID, &topicID, &n.Title, &n.Content,
		&category, &n.IsPublic, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.ModuleID = uuidPtr(moduleID)
	n.TopicID = uuidPtr(topicID)
	n.Category, _ = domain.ParseNoteCategory(category)
	return &n, nil
}
