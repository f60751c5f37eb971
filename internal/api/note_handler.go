package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
)

// NoteKeeper is the part of service.NoteService the handlers use.
type NoteKeeper interface {
	Create(ctx context.Context, userID uuid.UUID, in service.NoteInput) (*domain.UserNote, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.UserNote, error)
	List(ctx context.Context, userID uuid.UUID, moduleID *uuid.UUID) ([]*domain.UserNote, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// NoteHandler serves the learner's notes.
type NoteHandler struct {
	notes NoteKeeper
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(notes NoteKeeper) *NoteHandler {
	if notes == nil {
		panic("note keeper cannot be nil")
	}
	return &NoteHandler{notes: notes}
}

// List handles GET /notes, optionally filtered by ?module_id=.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var moduleID *uuid.UUID
	if raw := r.URL.Query().Get("module_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("module_id", "has invalid format", domain.ErrInvalidID), "")
			return
		}
		moduleID = &id
	}

	notes, err := h.notes.List(r.Context(), userID, moduleID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notes")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, notes)
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req NoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.notes.Create(r.Context(), userID, service.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		ModuleID: req.ModuleID,
		TopicID:  req.TopicID,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create note")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, note)
}

// Get handles GET /notes/{noteId}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requireUserAndPathUUID(w, r, "noteId")
	if !ok {
		return
	}
	note, err := h.notes.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get note")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, note)
}

// Delete handles DELETE /notes/{noteId}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requireUserAndPathUUID(w, r, "noteId")
	if !ok {
		return
	}
	if err := h.notes.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
