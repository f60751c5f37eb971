package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note validation errors
var (
	ErrEmptyNoteTitle   = errors.New("note title cannot be empty")
	ErrNoteTitleTooLong = errors.New("note title must be at most 200 characters")
)

// NoteCategory classifies a learner's note.
type NoteCategory string

const (
	NoteGeneral     NoteCategory = "GENERAL"
	NoteSummary     NoteCategory = "SUMMARY"
	NoteQuestion    NoteCategory = "QUESTION"
	NoteCodeSnippet NoteCategory = "CODE_SNIPPET"
	NoteImportant   NoteCategory = "IMPORTANT"
	NoteReview      NoteCategory = "REVIEW"
)

// ParseNoteCategory maps free text to a NoteCategory, defaulting to general.
func ParseNoteCategory(s string) (NoteCategory, bool) {
	switch c := NoteCategory(normalizeEnum(s)); c {
	case NoteGeneral, NoteSummary, NoteQuestion, NoteCodeSnippet, NoteImportant, NoteReview:
		return c, true
	default:
		return NoteGeneral, false
	}
}

// UserNote is free text a learner attaches to a module or topic.
type UserNote struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	ModuleID  *uuid.UUID   `json:"module_id,omitempty"`
	TopicID   *uuid.UUID   `json:"topic_id,omitempty"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Category  NoteCategory `json:"category"`
	IsPublic  bool         `json:"is_public"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewUserNote creates a private note.
func NewUserNote(userID uuid.UUID, title, content string, category NoteCategory) (*UserNote, error) {
	now := time.Now().UTC()
	n := &UserNote{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks if the note has valid data.
func (n *UserNote) Validate() error {
	if n.ID == uuid.Nil {
		return ErrInvalidID
	}
	if n.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if n.Title == "" {
		return ErrEmptyNoteTitle
	}
	if len([]rune(n.Title)) > 200 {
		return ErrNoteTitleTooLong
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
