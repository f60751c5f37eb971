package store

import (
	"errors"
	"fmt"
)

// Error categories. Every entity-specific error below wraps exactly one of
// them, so callers can branch on the category with errors.Is.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConflict means a write lost a race with a concurrent writer. The
	// caller may reload and retry.
	ErrConflict = errors.New("concurrent modification")
)

// Lookup misses.
var (
	ErrUserNotFound       = notFound("user")
	ErrModuleNotFound     = notFound("learning module")
	ErrTopicNotFound      = notFound("topic")
	ErrQuestionNotFound   = notFound("interview question")
	ErrProgressNotFound   = notFound("user progress")
	ErrScheduleNotFound   = notFound("review schedule")
	ErrNoteNotFound       = notFound("note")
	ErrBloomsNotFound     = notFound("bloom's progression")
	ErrCompetencyNotFound = notFound("competency progression")
)

// Uniqueness violations.
var (
	ErrEmailExists    = duplicate("email")
	ErrUsernameExists = duplicate("username")
	ErrModuleExists   = duplicate("learning module")

	// ErrReviewEventExists means the review event id was already recorded,
	// so the submission must not be counted again.
	ErrReviewEventExists = duplicate("review event")
)

func notFound(entity string) error { return fmt.Errorf("%w: %s", ErrNotFound, entity) }

func duplicate(what string) error { return fmt.Errorf("%w: %s", ErrDuplicate, what) }

// IsNotFoundError reports whether err is any lookup miss.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError reports whether err is a lost concurrent write.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
