package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Progress validation errors
var (
	ErrInvalidProgress      = errors.New("progress percentage must be between 0 and 100")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrNegativeTimeSpent    = errors.New("time spent cannot be negative")
	ErrProgressTarget       = errors.New("progress must reference exactly one of module or topic")
	ErrCompletedNotFinished = errors.New("completed progress must be at 100 percent")
)

// ProgressStatus is where a learner stands on a module or topic.
type ProgressStatus string

const (
	StatusNotStarted   ProgressStatus = "NOT_STARTED"
	StatusInProgress   ProgressStatus = "IN_PROGRESS"
	StatusCompleted    ProgressStatus = "COMPLETED"
	StatusPaused       ProgressStatus = "PAUSED"
	StatusReviewNeeded ProgressStatus = "REVIEW_NEEDED"
	StatusMastered     ProgressStatus = "MASTERED"
)

// ParseProgressStatus maps free text to a ProgressStatus, defaulting to not started.
func ParseProgressStatus(s string) (ProgressStatus, bool) {
	switch st := ProgressStatus(normalizeEnum(s)); st {
	case StatusNotStarted, StatusInProgress, StatusCompleted,
		StatusPaused, StatusReviewNeeded, StatusMastered:
		return st, true
	default:
		return StatusNotStarted, false
	}
}

// ActiveLearningWindow is how recently a learner must have touched content
// to count as actively learning it.
const ActiveLearningWindow = 7 * 24 * time.Hour

// UserProgress tracks one learner against one module or one topic.
// Exactly one of ModuleID and TopicID is set.
type UserProgress struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             uuid.UUID      `json:"user_id"`
	ModuleID           *uuid.UUID     `json:"module_id,omitempty"`
	TopicID            *uuid.UUID     `json:"topic_id,omitempty"`
	Status             ProgressStatus `json:"status"`
	ProgressPercentage int            `json:"progress_percentage"`
	TimeSpentMinutes   int            `json:"time_spent_minutes"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	LastAccessedAt     *time.Time     `json:"last_accessed_at,omitempty"`
	AccessCount        int            `json:"access_count"`
	UserRating         *int           `json:"user_rating,omitempty"`
	Notes              string         `json:"notes,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewModuleProgress creates a NOT_STARTED record for a module.
func NewModuleProgress(userID, moduleID uuid.UUID) *UserProgress {
	p := newProgress(userID)
	p.ModuleID = &moduleID
	return p
}

// NewTopicProgress creates a NOT_STARTED record for a topic.
func NewTopicProgress(userID, topicID uuid.UUID) *UserProgress {
	p := newProgress(userID)
	p.TopicID = &topicID
	return p
}

func newProgress(userID uuid.UUID) *UserProgress {
	now := time.Now().UTC()
	return &UserProgress{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the record's invariants, including that a COMPLETED
// record sits at 100 percent.
func (p *UserProgress) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if (p.ModuleID == nil) == (p.TopicID == nil) {
		return ErrProgressTarget
	}
	if p.ProgressPercentage < 0 || p.ProgressPercentage > 100 {
		return ErrInvalidProgress
	}
	if p.TimeSpentMinutes < 0 {
		return ErrNegativeTimeSpent
	}
	if _, ok := ParseProgressStatus(string(p.Status)); !ok {
		return ErrInvalidStatus
	}
	if p.Status == StatusCompleted && p.ProgressPercentage != 100 {
		return ErrCompletedNotFinished
	}
	if p.UserRating != nil && (*p.UserRating < 1 || *p.UserRating > 5) {
		return ErrInvalidRating
	}
	return nil
}

// MarkStarted moves a NOT_STARTED record to IN_PROGRESS.
func (p *UserProgress) MarkStarted(now time.Time) {
	if p.Status != StatusNotStarted {
		return
	}
	p.Status = StatusInProgress
	p.StartedAt = &now
	if p.ProgressPercentage < 1 {
		p.ProgressPercentage = 1
	}
	p.UpdatedAt = now
}

// MarkCompleted sets the record to COMPLETED at 100 percent.
func (p *UserProgress) MarkCompleted(now time.Time) {
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
	p.Status = StatusCompleted
	p.ProgressPercentage = 100
	p.CompletedAt = &now
	p.UpdatedAt = now
}

// UpdateProgress sets the percentage, clamped to [0, 100], and keeps the
// status consistent with it.
func (p *UserProgress) UpdateProgress(percentage int, now time.Time) {
	percentage = max(0, min(100, percentage))

	switch {
	case percentage == 0:
		p.ProgressPercentage = 0
		p.Status = StatusNotStarted
		p.CompletedAt = nil
	case percentage == 100:
		p.MarkCompleted(now)
		return
	default:
		if p.Status == StatusNotStarted {
			p.MarkStarted(now)
		}
		if p.Status == StatusCompleted || p.Status == StatusMastered {
			p.Status = StatusInProgress
			p.CompletedAt = nil
		}
		p.ProgressPercentage = percentage
	}
	p.UpdatedAt = now
}

// AddTimeSpent accumulates study time. Non-positive values are ignored.
func (p *UserProgress) AddTimeSpent(minutes int) {
	if minutes > 0 {
		p.TimeSpentMinutes += minutes
	}
}

// Touch records an access.
func (p *UserProgress) Touch(now time.Time) {
	p.LastAccessedAt = &now
	p.AccessCount++
	p.UpdatedAt = now
}

// Rate stores the learner's 1 to 5 rating.
func (p *UserProgress) Rate(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	p.UserRating = &rating
	return nil
}

// IsCompleted reports whether the learner has finished the content.
func (p *UserProgress) IsCompleted() bool {
	return p.Status == StatusCompleted || p.Status == StatusMastered
}

// TimeSpentFormatted renders study time as "45 minutes", "2 hours" or "1h 30m".
func (p *UserProgress) TimeSpentFormatted() string {
	m := p.TimeSpentMinutes
	switch {
	case m <= 0:
		return "0 minutes"
	case m < 60:
		return fmt.Sprintf("%d minutes", m)
	case m%60 == 0:
		h := m / 60
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
}

// LearningVelocity is percentage points gained per hour of study.
func (p *UserProgress) LearningVelocity() float64 {
	if p.TimeSpentMinutes <= 0 {
		return 0
	}
	return float64(p.ProgressPercentage) / (float64(p.TimeSpentMinutes) / 60.0)
}

// IsActivelyLearning reports whether the content was accessed within the
// last ActiveLearningWindow.
func (p *UserProgress) IsActivelyLearning(now time.Time) bool {
	return p.LastAccessedAt != nil && now.Sub(*p.LastAccessedAt) <= ActiveLearningWindow
}
