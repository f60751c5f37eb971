package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AdvancementThreshold is the score a learner must reach at their current
// Bloom's level before moving to the next one.
const AdvancementThreshold = 80

// ErrInvalidBloomsScore is returned when a level score is outside 0..100.
var ErrInvalidBloomsScore = errors.New("bloom's level scores must be between 0 and 100")

// BloomsLevel is one of the six ordered cognitive levels.
type BloomsLevel string

const (
	BloomsRemember   BloomsLevel = "REMEMBER"
	BloomsUnderstand BloomsLevel = "UNDERSTAND"
	BloomsApply      BloomsLevel = "APPLY"
	BloomsAnalyze    BloomsLevel = "ANALYZE"
	BloomsEvaluate   BloomsLevel = "EVALUATE"
	BloomsCreate     BloomsLevel = "CREATE"
)

// BloomsLevels lists the levels from lowest to highest.
var BloomsLevels = []BloomsLevel{
	BloomsRemember, BloomsUnderstand, BloomsApply, BloomsAnalyze, BloomsEvaluate, BloomsCreate,
}

var bloomsAlignment = map[BloomsLevel]string{
	BloomsRemember:   "L3",
	BloomsUnderstand: "L3-L4",
	BloomsApply:      "L4",
	BloomsAnalyze:    "L4-L5",
	BloomsEvaluate:   "L5",
	BloomsCreate:     "L5-L6",
}

// ParseBloomsLevel maps free text to a level, defaulting to remember.
func ParseBloomsLevel(s string) (BloomsLevel, bool) {
	l := BloomsLevel(normalizeEnum(s))
	if _, ok := bloomsAlignment[l]; ok {
		return l, true
	}
	return BloomsRemember, false
}

// Rank is the zero-based position of the level.
func (l BloomsLevel) Rank() int {
	for i, lv := range BloomsLevels {
		if lv == l {
			return i
		}
	}
	return 0
}

// AtLeast reports whether l is the same as or above other.
func (l BloomsLevel) AtLeast(other BloomsLevel) bool {
	return l.Rank() >= other.Rank()
}

// Next returns the following level. CREATE is the top and returns itself.
func (l BloomsLevel) Next() BloomsLevel {
	r := l.Rank()
	if r >= len(BloomsLevels)-1 {
		return BloomsCreate
	}
	return BloomsLevels[r+1]
}

// EngineeringLevel is the L-level the cognitive level corresponds to.
func (l BloomsLevel) EngineeringLevel() string {
	if a, ok := bloomsAlignment[l]; ok {
		return a
	}
	return "L3"
}

// BloomsTaxonomyProgression scores one learner's mastery of one content item
// across the six levels.
type BloomsTaxonomyProgression struct {
	ID                    uuid.UUID   `json:"id"`
	UserID                uuid.UUID   `json:"user_id"`
	ContentID             uuid.UUID   `json:"content_id"`
	RememberScore         int         `json:"remember_score"`
	UnderstandScore       int         `json:"understand_score"`
	ApplyScore            int         `json:"apply_score"`
	AnalyzeScore          int         `json:"analyze_score"`
	EvaluateScore         int         `json:"evaluate_score"`
	CreateScore           int         `json:"create_score"`
	CurrentLevel          BloomsLevel `json:"current_level"`
	CompetencyAlignment   string      `json:"competency_alignment"`
	ProgressionEvidence   string      `json:"progression_evidence,omitempty"`
	NextLevelRequirements string      `json:"next_level_requirements,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// NewBloomsTaxonomyProgression starts a learner at REMEMBER with zero scores.
func NewBloomsTaxonomyProgression(userID, contentID uuid.UUID) *BloomsTaxonomyProgression {
	now := time.Now().UTC()
	p := &BloomsTaxonomyProgression{
		ID:           uuid.New(),
		UserID:       userID,
		ContentID:    contentID,
		CurrentLevel: BloomsRemember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.SyncAlignment()
	return p
}

// Validate checks if the progression has valid data.
func (p *BloomsTaxonomyProgression) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if p.ContentID == uuid.Nil {
		return ErrEmptyContentID
	}
	for _, s := range p.Scores() {
		if s < 0 || s > 100 {
			return ErrInvalidBloomsScore
		}
	}
	if _, ok := ParseBloomsLevel(string(p.CurrentLevel)); !ok {
		return NewValidationError("current_level", "is not a bloom's level", ErrInvalidStatus)
	}
	return nil
}

// Scores returns the six scores in level order.
func (p *BloomsTaxonomyProgression) Scores() []int {
	return []int{
		p.RememberScore, p.UnderstandScore, p.ApplyScore,
		p.AnalyzeScore, p.EvaluateScore, p.CreateScore,
	}
}

// ScoreFor returns the score recorded for level l.
func (p *BloomsTaxonomyProgression) ScoreFor(l BloomsLevel) int {
	return p.Scores()[l.Rank()]
}

// SyncAlignment recomputes the competency alignment from the current level.
// Stores call it before every write.
func (p *BloomsTaxonomyProgression) SyncAlignment() {
	p.CompetencyAlignment = p.CurrentLevel.EngineeringLevel()
}

func (p *BloomsTaxonomyProgression) totalScore() int {
	total := 0
	for _, s := range p.Scores() {
		total += s
	}
	return total
}

// OverallScore is the mean of the six level scores.
func (p *BloomsTaxonomyProgression) OverallScore() float64 {
	return float64(p.totalScore()) / float64(len(BloomsLevels))
}

// CompletionPercentage is the share of the maximum 600 points earned.
func (p *BloomsTaxonomyProgression) CompletionPercentage() float64 {
	return float64(p.totalScore()) / float64(len(BloomsLevels)*100) * 100
}

// CurrentLevelScore is the score at the learner's current level.
func (p *BloomsTaxonomyProgression) CurrentLevelScore() int {
	return p.ScoreFor(p.CurrentLevel)
}

// ReadyForNextLevel reports whether the current level score meets
// AdvancementThreshold.
func (p *BloomsTaxonomyProgression) ReadyForNextLevel() bool {
	return p.CurrentLevelScore() >= AdvancementThreshold
}

// Advance moves to the next level when ready and reports whether it did.
func (p *BloomsTaxonomyProgression) Advance(now time.Time) bool {
	if !p.ReadyForNextLevel() || p.CurrentLevel == BloomsCreate {
		return false
	}
	p.CurrentLevel = p.CurrentLevel.Next()
	p.SyncAlignment()
	p.UpdatedAt = now
	return true
}

// ReadinessLabel summarises which engineering level the learner's mastery supports.
func (p *BloomsTaxonomyProgression) ReadinessLabel() string {
	overall := p.OverallScore()
	l := p.CurrentLevel
	switch {
	case overall >= 90 && l == BloomsCreate:
		return "L6 Ready"
	case overall >= 80 && l.AtLeast(BloomsEvaluate):
		return "L5 Ready"
	case overall >= 70 && l.AtLeast(BloomsAnalyze):
		return "L4 Ready"
	case overall >= 60 && l.AtLeast(BloomsApply):
		return "L4 Developing"
	case overall >= 50 && l.AtLeast(BloomsUnderstand):
		return "L3 Ready"
	default:
		return "L3 Developing"
	}
}

// IsSeniorLevel reports senior-engineer level mastery.
func (p *BloomsTaxonomyProgression) IsSeniorLevel() bool {
	return p.OverallScore() >= 80 && p.CurrentLevel.AtLeast(BloomsEvaluate)
}
