package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

// NoteInput is a new note as the learner submits it.
type NoteInput struct {
	Title    string
	Content  string
	Category string
	ModuleID *uuid.UUID
	TopicID  *uuid.UUID
	IsPublic bool
}

// NoteService manages learner notes.
type NoteService struct {
	notes   store.NoteStore
	content store.ContentStore
	logger  *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(notes store.NoteStore, content store.ContentStore, logger *slog.Logger) (*NoteService, error) {
	if notes == nil || content == nil {
		return nil, &ServiceError{Service: "note", Op: "create_service", Err: errors.New("dependencies cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteService{
		notes:   notes,
		content: content,
		logger:  logger.With(slog.String("component", "note_service")),
	}, nil
}

// Create saves a note. An unknown category falls back to GENERAL.
func (s *NoteService) Create(ctx context.Context, userID uuid.UUID, in NoteInput) (*domain.UserNote, error) {
	category, _ := domain.ParseNoteCategory(in.Category)
	note, err := domain.NewUserNote(userID, in.Title, in.Content, category)
	if err != nil {
		return nil, err
	}
	note.IsPublic = in.IsPublic

	if in.ModuleID != nil {
		if err := ensureContent(ctx, s.content, ModuleTarget(*in.ModuleID)); err != nil {
			return nil, NewServiceError("note", "create", err)
		}
		note.ModuleID = in.ModuleID
	}
	if in.TopicID != nil {
		if err := ensureContent(ctx, s.content, TopicTarget(*in.TopicID)); err != nil {
			return nil, NewServiceError("note", "create", err)
		}
		note.TopicID = in.TopicID
	}

	if err := s.notes.Create(ctx, note); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create note",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("note", "create", err)
	}
	return note, nil
}

// Get returns a note the learner owns, or any public note.
func (s *NoteService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.UserNote, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("note", "get", err)
	}
	if note.UserID != userID && !note.IsPublic {
		return nil, ErrNotOwned
	}
	return note, nil
}

// List returns the learner's notes, optionally for one module.
func (s *NoteService) List(ctx context.Context, userID uuid.UUID, moduleID *uuid.UUID) ([]*domain.UserNote, error) {
	notes, err := s.notes.ListByUser(ctx, userID, moduleID)
	if err != nil {
		return nil, NewServiceError("note", "list", err)
	}
	return notes, nil
}

// Delete removes one of the learner's notes. Someone else's note reports
// ErrNotOwned rather than not found.
func (s *NoteService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.notes.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNoteNotFound) {
		if note, getErr := s.notes.GetByID(ctx, id); getErr == nil && note.UserID != userID {
			log.Warn("attempt to delete another user's note",
				slog.String("user_id", userID.String()),
				slog.String("note_id", id.String()))
			return ErrNotOwned
		}
	}
	if err != nil {
		return NewServiceError("note", "delete", err)
	}
	log.Debug("note deleted", slog.String("note_id", id.String()))
	return nil
}
