package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCompetencyScore is returned when a readiness or fit score is outside 0..100.
var ErrInvalidCompetencyScore = errors.New("competency scores must be between 0 and 100")

// CompetencyLevel is an engineering career level.
type CompetencyLevel string

const (
	LevelL3 CompetencyLevel = "L3"
	LevelL4 CompetencyLevel = "L4"
	LevelL5 CompetencyLevel = "L5"
	LevelL6 CompetencyLevel = "L6"
)

var levelTitles = map[CompetencyLevel]string{
	LevelL3: "Junior SDE",
	LevelL4: "SDE",
	LevelL5: "Senior SDE",
	LevelL6: "Principal SDE",
}

// ParseCompetencyLevel maps free text ("l5", "L5") to a level, defaulting to L3.
func ParseCompetencyLevel(s string) (CompetencyLevel, bool) {
	l := CompetencyLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelTitles[l]; ok {
		return l, true
	}
	return LevelL3, false
}

// Title is the job title for the level.
func (l CompetencyLevel) Title() string {
	return levelTitles[l]
}

// Next returns the following level. L6 is the top and returns itself.
func (l CompetencyLevel) Next() CompetencyLevel {
	switch l {
	case LevelL3:
		return LevelL4
	case LevelL4:
		return LevelL5
	default:
		return LevelL6
	}
}

// ScoreBar is a pair of minimum interview readiness and cultural fit scores.
type ScoreBar struct {
	InterviewReadiness int `json:"interview_readiness"`
	CulturalFit        int `json:"cultural_fit"`
}

// Met reports whether both scores reach the bar.
func (b ScoreBar) Met(readiness, fit int) bool {
	return readiness >= b.InterviewReadiness && fit >= b.CulturalFit
}

// Competency thresholds. Every method and every store query reads these,
// so a change here changes them all.
var (
	// PromotionBars is the bar for promotion into each level.
	PromotionBars = map[CompetencyLevel]ScoreBar{
		LevelL4: {InterviewReadiness: 70, CulturalFit: 70},
		LevelL5: {InterviewReadiness: 80, CulturalFit: 80},
		LevelL6: {InterviewReadiness: 90, CulturalFit: 85},
	}

	// TargetReadyBar is the bar for being ready to interview at the target level.
	TargetReadyBar = ScoreBar{InterviewReadiness: 80, CulturalFit: 75}

	// HiringBars is ordered from strongest to weakest band.
	HiringBars = []struct {
		Band HiringBand
		Bar  ScoreBar
	}{
		{HiringExceeds, ScoreBar{InterviewReadiness: 85, CulturalFit: 80}},
		{HiringMeets, ScoreBar{InterviewReadiness: 75, CulturalFit: 70}},
		{HiringApproaching, ScoreBar{InterviewReadiness: 60, CulturalFit: 60}},
	}
)

// StaleAssessmentAge is how old an assessment may be before it needs redoing.
const StaleAssessmentAge = 30 * 24 * time.Hour

// HiringBand places a candidate relative to the hiring bar.
type HiringBand string

const (
	HiringExceeds     HiringBand = "Exceeds Bar"
	HiringMeets       HiringBand = "Meets Bar"
	HiringApproaching HiringBand = "Approaching Bar"
	HiringBelow       HiringBand = "Below Bar"
)

// LeadershipPrinciples are the sixteen principles progress is tracked against.
var LeadershipPrinciples = []string{
	"Customer Obsession",
	"Ownership",
	"Invent and Simplify",
	"Are Right, A Lot",
	"Learn and Be Curious",
	"Hire and Develop the Best",
	"Insist on the Highest Standards",
	"Think Big",
	"Bias for Action",
	"Frugality",
	"Earn Trust",
	"Dive Deep",
	"Have Backbone; Disagree and Commit",
	"Deliver Results",
	"Strive to be Earth's Best Employer",
	"Success and Scale Bring Broad Responsibility",
}

// CompetencyProgression is a learner's standing against engineering levels
// and the behavioral bar.
type CompetencyProgression struct {
	ID                           uuid.UUID       `json:"id"`
	UserID                       uuid.UUID       `json:"user_id"`
	CurrentLevel                 CompetencyLevel `json:"current_level"`
	TargetLevel                  CompetencyLevel `json:"target_level"`
	CompetencyGaps               string          `json:"competency_gaps,omitempty"`
	LeadershipPrinciplesProgress string          `json:"leadership_principles_progress,omitempty"`
	TechnicalCompetencies        string          `json:"technical_competencies,omitempty"`
	BehavioralCompetencies       string          `json:"behavioral_competencies,omitempty"`
	ProgressionTimeline          string          `json:"progression_timeline,omitempty"`
	InterviewReadinessScore      int             `json:"interview_readiness_score"`
	CulturalFitScore             int             `json:"cultural_fit_score"`
	LastAssessed                 *time.Time      `json:"last_assessed,omitempty"`
	CreatedAt                    time.Time       `json:"created_at"`
	UpdatedAt                    time.Time       `json:"updated_at"`
}

// NewCompetencyProgression starts a learner at L3 aiming for L5.
func NewCompetencyProgression(userID uuid.UUID) *CompetencyProgression {
	now := time.Now().UTC()
	return &CompetencyProgression{
		ID:           uuid.New(),
		UserID:       userID,
		CurrentLevel: LevelL3,
		TargetLevel:  LevelL5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks if the progression has valid data.
func (c *CompetencyProgression) Validate() error {
	if c.ID == uuid.Nil {
		return ErrInvalidID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if _, ok := ParseCompetencyLevel(string(c.CurrentLevel)); !ok {
		return NewValidationError("current_level", "must be one of L3, L4, L5, L6", ErrValidation)
	}
	if _, ok := ParseCompetencyLevel(string(c.TargetLevel)); !ok {
		return NewValidationError("target_level", "must be one of L3, L4, L5, L6", ErrValidation)
	}
	if c.InterviewReadinessScore < 0 || c.InterviewReadinessScore > 100 ||
		c.CulturalFitScore < 0 || c.CulturalFitScore > 100 {
		return ErrInvalidCompetencyScore
	}
	return nil
}

// OverallScore averages interview readiness and cultural fit.
func (c *CompetencyProgression) OverallScore() float64 {
	return float64(c.InterviewReadinessScore+c.CulturalFitScore) / 2
}

// ReadyForTarget reports whether the learner can interview at the target level.
func (c *CompetencyProgression) ReadyForTarget() bool {
	return TargetReadyBar.Met(c.InterviewReadinessScore, c.CulturalFitScore) &&
		strings.TrimSpace(c.TechnicalCompetencies) != "" &&
		strings.TrimSpace(c.LeadershipPrinciplesProgress) != ""
}

// ReadyForPromotion reports whether the scores clear the bar for the next level.
// A learner at L6 has nowhere to go and is never ready.
func (c *CompetencyProgression) ReadyForPromotion() bool {
	if c.CurrentLevel == LevelL6 {
		return false
	}
	bar, ok := PromotionBars[c.CurrentLevel.Next()]
	return ok && bar.Met(c.InterviewReadinessScore, c.CulturalFitScore)
}

// HiringBand places the learner relative to the hiring bar.
func (c *CompetencyProgression) HiringBand() HiringBand {
	for _, hb := range HiringBars {
		if hb.Bar.Met(c.InterviewReadinessScore, c.CulturalFitScore) {
			return hb.Band
		}
	}
	return HiringBelow
}

// IsStale reports whether the assessment is missing or older than StaleAssessmentAge.
func (c *CompetencyProgression) IsStale(now time.Time) bool {
	return c.LastAssessed == nil || now.Sub(*c.LastAssessed) > StaleAssessmentAge
}

// Assess records new scores.
func (c *CompetencyProgression) Assess(readiness, fit int, now time.Time) error {
	if readiness < 0 || readiness > 100 || fit < 0 || fit > 100 {
		return ErrInvalidCompetencyScore
	}
	c.InterviewReadinessScore = readiness
	c.CulturalFitScore = fit
	c.LastAssessed = &now
	c.UpdatedAt = now
	return nil
}

// ScoreDescription labels the overall score.
func (c *CompetencyProgression) ScoreDescription() string {
	switch s := c.OverallScore(); {
	case s >= 90:
		return "Exceptional - Ready for L6"
	case s >= 80:
		return "Strong - Ready for L5"
	case s >= 70:
		return "Good - Ready for L4"
	case s >= 60:
		return "Developing - L3 level"
	default:
		return "Needs Improvement - Below L3"
	}
}

// InterviewReadinessLabel labels the interview readiness score.
func (c *CompetencyProgression) InterviewReadinessLabel() string {
	switch s := c.InterviewReadinessScore; {
	case s >= 90:
		return "Highly Ready"
	case s >= 80:
		return "Ready"
	case s >= 70:
		return "Nearly Ready"
	case s >= 60:
		return "Preparing"
	default:
		return "Not Ready"
	}
}

// CulturalFitLabel labels the cultural fit score.
func (c *CompetencyProgression) CulturalFitLabel() string {
	switch s := c.CulturalFitScore; {
	case s >= 90:
		return "Excellent Fit"
	case s >= 80:
		return "Strong Fit"
	case s >= 70:
		return "Good Fit"
	case s >= 60:
		return "Developing Fit"
	default:
		return "Poor Fit"
	}
}

// DevelopmentRecommendations lists what to work on next.
func (c *CompetencyProgression) DevelopmentRecommendations() []string {
	var recs []string
	if c.InterviewReadinessScore < TargetReadyBar.InterviewReadiness {
		recs = append(recs, "Practice system design and coding interviews")
	}
	if c.CulturalFitScore < TargetReadyBar.CulturalFit {
		recs = append(recs, "Prepare STAR stories for each leadership principle")
	}
	if strings.TrimSpace(c.TechnicalCompetencies) == "" {
		recs = append(recs, "Document technical competencies for "+c.TargetLevel.Title())
	}
	if strings.TrimSpace(c.LeadershipPrinciplesProgress) == "" {
		recs = append(recs, "Track progress against the leadership principles")
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain readiness with regular mock interviews")
	}
	return recs
}
