package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Spaced repetition defaults
const (
	DefaultEaseFactor           = 2.5
	DefaultRepetitionInterval   = 1
	DefaultDifficultyAdjustment = 1.0

	// DefaultOverdueGrace is how long past its review date a schedule may sit
	// before it counts as overdue rather than merely due.
	DefaultOverdueGrace = 24 * time.Hour

	// InterviewReadyRetention and friends define when a priority item is
	// considered interview ready.
	InterviewReadyRetention   = 85
	InterviewReadyRepetitions = 3
	InterviewReadyEaseFactor  = 2.0

	// LowRetentionThreshold marks schedules that need extra attention.
	LowRetentionThreshold = 70
)

// Schedule validation errors
var (
	ErrEmptyContentID       = errors.New("content ID cannot be empty")
	ErrInvalidInterval      = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor    = errors.New("ease factor must be at least 1.3")
	ErrInvalidRetention     = errors.New("retention score must be between 0 and 100")
	ErrInvalidReviewQuality = errors.New("review quality must be between 0 and 5")
	ErrInvalidReviewOutcome = errors.New("invalid review outcome")
)

// ReviewQuality is the SM-2 recall grade: 0 (blackout) through 5 (perfect).
type ReviewQuality int

// PassingQuality is the lowest grade that counts as a successful review.
const PassingQuality ReviewQuality = 3

// Valid reports whether q is within 0..5.
func (q ReviewQuality) Valid() bool {
	return q >= 0 && q <= 5
}

// Successful reports whether the review counts as recalled.
func (q ReviewQuality) Successful() bool {
	return q >= PassingQuality
}

// ReviewOutcome is the four-button answer a client may send instead of a grade.
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

// Quality converts an outcome to its SM-2 grade.
func (o ReviewOutcome) Quality() (ReviewQuality, error) {
	switch o {
	case ReviewOutcomeAgain:
		return 1, nil
	case ReviewOutcomeHard:
		return 3, nil
	case ReviewOutcomeGood:
		return 4, nil
	case ReviewOutcomeEasy:
		return 5, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidReviewOutcome, o)
	}
}

// SpacedRepetitionSchedule holds the review state of one content item for
// one learner. Rows are updated on every review and never deleted.
type SpacedRepetitionSchedule struct {
	ID                      uuid.UUID   `json:"id"`
	UserID                  uuid.UUID   `json:"user_id"`
	ContentID               uuid.UUID   `json:"content_id"`
	ContentType             ContentType `json:"content_type"`
	RepetitionInterval      int         `json:"repetition_interval"` // days
	EaseFactor              float64     `json:"ease_factor"`
	RepetitionCount         int         `json:"repetition_count"`
	LastReviewed            *time.Time  `json:"last_reviewed,omitempty"`
	NextReviewDate          time.Time   `json:"next_review_date"`
	RetentionScore          int         `json:"retention_score"`
	AmazonInterviewPriority bool        `json:"amazon_interview_priority"`
	DifficultyAdjustment    float64     `json:"difficulty_adjustment"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at"`
}

// NewSpacedRepetitionSchedule creates a schedule on first exposure to a
// content item. The first review falls one interval after now.
func NewSpacedRepetitionSchedule(
	userID, contentID uuid.UUID,
	contentType ContentType,
	priority bool,
	now time.Time,
) (*SpacedRepetitionSchedule, error) {
	now = now.UTC()
	s := &SpacedRepetitionSchedule{
		ID:                      uuid.New(),
		UserID:                  userID,
		ContentID:               contentID,
		ContentType:             contentType,
		RepetitionInterval:      DefaultRepetitionInterval,
		EaseFactor:              DefaultEaseFactor,
		NextReviewDate:          now.AddDate(0, 0, DefaultRepetitionInterval),
		AmazonInterviewPriority: priority,
		DifficultyAdjustment:    DefaultDifficultyAdjustment,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the schedule has valid data.
func (s *SpacedRepetitionSchedule) Validate() error {
	if s.ID == uuid.Nil {
		return ErrInvalidID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.ContentID == uuid.Nil {
		return ErrEmptyContentID
	}
	if s.RepetitionInterval < 1 {
		return ErrInvalidInterval
	}
	if s.EaseFactor < 1.3 {
		return ErrInvalidEaseFactor
	}
	if s.RetentionScore < 0 || s.RetentionScore > 100 {
		return ErrInvalidRetention
	}
	if s.DifficultyAdjustment <= 0 {
		return NewValidationError("difficulty_adjustment", "must be positive", ErrOutOfRange)
	}
	return nil
}

// Clone returns a copy that shares no pointers with s.
func (s *SpacedRepetitionSchedule) Clone() *SpacedRepetitionSchedule {
	c := *s
	if s.LastReviewed != nil {
		t := *s.LastReviewed
		c.LastReviewed = &t
	}
	return &c
}

// IsDue reports whether the item should be reviewed. A review date equal
// to now is due.
func (s *SpacedRepetitionSchedule) IsDue(now time.Time) bool {
	return !s.NextReviewDate.After(now)
}

// IsOverdue reports whether the review date passed more than grace ago.
func (s *SpacedRepetitionSchedule) IsOverdue(now time.Time, grace time.Duration) bool {
	return s.NextReviewDate.Before(now.Add(-grace))
}

// RetentionStrength labels the retention score.
func (s *SpacedRepetitionSchedule) RetentionStrength() string {
	switch {
	case s.RetentionScore >= 90:
		return "Excellent"
	case s.RetentionScore >= 80:
		return "Good"
	case s.RetentionScore >= 70:
		return "Fair"
	case s.RetentionScore >= 60:
		return "Weak"
	default:
		return "Very Weak"
	}
}

// LearningEfficiency is retention gained per repetition.
func (s *SpacedRepetitionSchedule) LearningEfficiency() float64 {
	if s.RepetitionCount == 0 {
		return 0
	}
	return float64(s.RetentionScore) / float64(s.RepetitionCount)
}

// IsInterviewReady reports whether a priority item is retained well enough
// to rely on in an interview.
func (s *SpacedRepetitionSchedule) IsInterviewReady() bool {
	return s.AmazonInterviewPriority &&
		s.RetentionScore >= InterviewReadyRetention &&
		s.RepetitionCount >= InterviewReadyRepetitions &&
		s.EaseFactor >= InterviewReadyEaseFactor
}

// PriorityLevel ranks how urgently the item needs attention, 1 to 5.
func (s *SpacedRepetitionSchedule) PriorityLevel(now time.Time) int {
	level := 1
	if s.AmazonInterviewPriority {
		level += 3
	}
	if s.IsOverdue(now, DefaultOverdueGrace) {
		level += 2
	} else if s.IsDue(now) {
		level++
	}
	if s.RetentionScore < LowRetentionThreshold {
		level++
	}
	return min(level, 5)
}

// ReviewRecommendation gives the learner a short instruction.
func (s *SpacedRepetitionSchedule) ReviewRecommendation(now time.Time) string {
	switch {
	case s.IsOverdue(now, DefaultOverdueGrace):
		return "Overdue: review immediately to avoid forgetting"
	case s.IsDue(now):
		return "Due now: review today"
	case s.RetentionScore < LowRetentionThreshold && s.RepetitionCount > 0:
		return "Low retention: consider an early review"
	case s.IsInterviewReady():
		return "Interview ready: maintain with scheduled reviews"
	default:
		days := int(s.NextReviewDate.Sub(now).Hours() / 24)
		if days <= 1 {
			return "Next review tomorrow"
		}
		return fmt.Sprintf("Next review in %d days", days)
	}
}

// ReviewEvent is one answered review. The ID is chosen by the client so a
// retried submission carries the same ID and is recorded once.
type ReviewEvent struct {
	ID         uuid.UUID     `json:"id"`
	ScheduleID uuid.UUID     `json:"schedule_id"`
	UserID     uuid.UUID     `json:"user_id"`
	Quality    ReviewQuality `json:"quality"`
	ReviewedAt time.Time     `json:"reviewed_at"`
}

// NewReviewEvent builds an event for a graded review.
func NewReviewEvent(id, scheduleID, userID uuid.UUID, quality ReviewQuality, at time.Time) (*ReviewEvent, error) {
	if id == uuid.Nil {
		return nil, NewValidationError("event_id", "cannot be empty", ErrInvalidID)
	}
	if !quality.Valid() {
		return nil, ErrInvalidReviewQuality
	}
	return &ReviewEvent{
		ID:         id,
		ScheduleID: scheduleID,
		UserID:     userID,
		Quality:    quality,
		ReviewedAt: at.UTC(),
	}, nil
}
