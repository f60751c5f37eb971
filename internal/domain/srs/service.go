package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/academy-api/internal/domain"
)

// Common errors
var (
	ErrNilSchedule     = errors.New("schedule cannot be nil")
	ErrInvalidQuality  = errors.New("review quality must be between 0 and 5")
	ErrInvalidDays     = errors.New("postpone days must be at least 1")
	ErrInvalidSchedule = errors.New("schedule is invalid")
	ErrNilParams       = errors.New("srs params cannot be nil")
	ErrInvalidParams   = errors.New("srs params are invalid")
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the schedule that results from a review
	// graded quality at time now.
	CalculateNextReview(
		schedule *domain.SpacedRepetitionSchedule,
		quality domain.ReviewQuality,
		now time.Time,
	) (*domain.SpacedRepetitionSchedule, error)

	// PostponeReview pushes the next review date forward by a number of days.
	PostponeReview(
		schedule *domain.SpacedRepetitionSchedule,
		days int,
		now time.Time,
	) (*domain.SpacedRepetitionSchedule, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	schedule *domain.SpacedRepetitionSchedule,
	quality domain.ReviewQuality,
	now time.Time,
) (*domain.SpacedRepetitionSchedule, error) {
	if schedule == nil {
		return nil, ErrNilSchedule
	}
	if !quality.Valid() {
		return nil, ErrInvalidQuality
	}
	if err := schedule.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}

	return calculateNextSchedule(schedule, quality, now, s.params), nil
}

// PostponeReview implements the Service interface. Postponing moves the date
// only; interval, ease and counters are untouched.
func (s *defaultService) PostponeReview(
	schedule *domain.SpacedRepetitionSchedule,
	days int,
	now time.Time,
) (*domain.SpacedRepetitionSchedule, error) {
	if schedule == nil {
		return nil, ErrNilSchedule
	}
	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := schedule.Clone()
	next.NextReviewDate = schedule.NextReviewDate.AddDate(0, 0, days)
	next.UpdatedAt = now.UTC()

	return next, nil
}
