package api

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service/auth"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=12,max=72"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

// LoginRequest accepts either a username or an email as the login.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

func newAuthResponse(u *domain.User, p *auth.TokenPair) AuthResponse {
	return AuthResponse{User: u, AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, ExpiresAt: p.ExpiresAt}
}

// ProgressRequest reports a study session. Omitted fields are unchanged.
type ProgressRequest struct {
	ProgressPercentage *int    `json:"progress_percentage" validate:"omitempty,gte=0,lte=100"`
	TimeSpentMinutes   int     `json:"time_spent_minutes"  validate:"gte=0,lte=1440"`
	Rating             *int    `json:"rating"              validate:"omitempty,gte=1,lte=5"`
	Notes              *string `json:"notes"               validate:"omitempty,max=5000"`
	Completed          bool    `json:"completed"`
}

// ScheduleRequest starts reviewing a content item.
type ScheduleRequest struct {
	ContentID   uuid.UUID `json:"content_id"   validate:"required"`
	ContentType string    `json:"content_type" validate:"required"`
	Priority    bool      `json:"amazon_interview_priority"`
}

// AnswerRequest grades one review, either with an SM-2 quality or a
// four-button outcome.
type AnswerRequest struct {
	EventID uuid.UUID `json:"event_id" validate:"required"`
	Quality *int      `json:"quality"  validate:"omitempty,gte=0,lte=5"`
	Outcome string    `json:"outcome"  validate:"omitempty,oneof=again hard good easy"`
}

var errQualityOrOutcome = domain.NewValidationError("quality", "exactly one of quality and outcome is required", domain.ErrValidation)

// Validate requires exactly one of Quality and Outcome.
func (r *AnswerRequest) Validate() error {
	if (r.Quality == nil) == (r.Outcome == "") {
		return errQualityOrOutcome
	}
	return nil
}

// ReviewQuality resolves the request to an SM-2 grade.
func (r *AnswerRequest) ReviewQuality() (domain.ReviewQuality, error) {
	if r.Quality != nil {
		return domain.ReviewQuality(*r.Quality), nil
	}
	return domain.ReviewOutcome(r.Outcome).Quality()
}

// PostponeRequest pushes a review back.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=365"`
}

// BloomsRequest carries scores keyed by level name.
type BloomsRequest struct {
	Scores                map[string]int `json:"scores"                  validate:"required,min=1,dive,gte=0,lte=100"`
	ProgressionEvidence   *string        `json:"progression_evidence"    validate:"omitempty,max=5000"`
	NextLevelRequirements *string        `json:"next_level_requirements" validate:"omitempty,max=5000"`
}

// Levels parses the score keys.
func (r *BloomsRequest) Levels() (map[domain.BloomsLevel]int, error) {
	out := make(map[domain.BloomsLevel]int, len(r.Scores))
	for name, score := range r.Scores {
		level, ok := domain.ParseBloomsLevel(name)
		if !ok {
			return nil, domain.NewValidationError("scores", "unknown bloom's level "+name, domain.ErrValidation)
		}
		out[level] = score
	}
	return out, nil
}

// CompetencyRequest records an assessment. Omitted fields are unchanged.
type CompetencyRequest struct {
	InterviewReadinessScore      *int    `json:"interview_readiness_score"      validate:"omitempty,gte=0,lte=100"`
	CulturalFitScore             *int    `json:"cultural_fit_score"             validate:"omitempty,gte=0,lte=100"`
	CurrentLevel                 *string `json:"current_level"                  validate:"omitempty,oneof=L3 L4 L5 L6"`
	TargetLevel                  *string `json:"target_level"                   validate:"omitempty,oneof=L3 L4 L5 L6"`
	CompetencyGaps               *string `json:"competency_gaps"                validate:"omitempty,max=5000"`
	LeadershipPrinciplesProgress *string `json:"leadership_principles_progress" validate:"omitempty,max=5000"`
	TechnicalCompetencies        *string `json:"technical_competencies"         validate:"omitempty,max=5000"`
	BehavioralCompetencies       *string `json:"behavioral_competencies"        validate:"omitempty,max=5000"`
	ProgressionTimeline          *string `json:"progression_timeline"           validate:"omitempty,max=5000"`
}

// CompetencyResponse adds the derived readiness views to the stored record.
type CompetencyResponse struct {
	*domain.CompetencyProgression
	OverallScore       float64           `json:"overall_score"`
	ScoreDescription   string            `json:"score_description"`
	ReadinessLabel     string            `json:"interview_readiness_label"`
	CulturalFitLabel   string            `json:"cultural_fit_label"`
	HiringBand         domain.HiringBand `json:"hiring_band"`
	ReadyForPromotion  bool              `json:"ready_for_promotion"`
	ReadyForTarget     bool              `json:"ready_for_target"`
	NeedsAssessment    bool              `json:"needs_assessment"`
	Recommendations    []string          `json:"recommendations"`
	CurrentLevelTitle  string            `json:"current_level_title"`
	TargetLevelTitle   string            `json:"target_level_title"`
}

func newCompetencyResponse(c *domain.CompetencyProgression, now time.Time) CompetencyResponse {
	return CompetencyResponse{
		CompetencyProgression: c,
		OverallScore:          c.OverallScore(),
		ScoreDescription:      c.ScoreDescription(),
		ReadinessLabel:        c.InterviewReadinessLabel(),
		CulturalFitLabel:      c.CulturalFitLabel(),
		HiringBand:            c.HiringBand(),
		ReadyForPromotion:     c.ReadyForPromotion(),
		ReadyForTarget:        c.ReadyForTarget(),
		NeedsAssessment:       c.IsStale(now),
		Recommendations:       c.DevelopmentRecommendations(),
		CurrentLevelTitle:     c.CurrentLevel.Title(),
		TargetLevelTitle:      c.TargetLevel.Title(),
	}
}

// BloomsResponse adds the derived readiness views to the stored record.
type BloomsResponse struct {
	*domain.BloomsTaxonomyProgression
	OverallScore         float64 `json:"overall_score"`
	CompletionPercentage float64 `json:"completion_percentage"`
	ReadyForNextLevel    bool    `json:"ready_for_next_level"`
	ReadinessLabel       string  `json:"readiness_label"`
}

func newBloomsResponse(p *domain.BloomsTaxonomyProgression) BloomsResponse {
	return BloomsResponse{
		BloomsTaxonomyProgression: p,
		OverallScore:              p.OverallScore(),
		CompletionPercentage:      p.CompletionPercentage(),
		ReadyForNextLevel:         p.ReadyForNextLevel() && p.CurrentLevel != domain.BloomsCreate,
		ReadinessLabel:            p.ReadinessLabel(),
	}
}

// NoteRequest creates a note.
type NoteRequest struct {
	Title    string     `json:"title"     validate:"required,max=200"`
	Content  string     `json:"content"   validate:"required"`
	Category string     `json:"category"`
	ModuleID *uuid.UUID `json:"module_id"`
	TopicID  *uuid.UUID `json:"topic_id"`
	IsPublic bool       `json:"is_public"`
}

var errNoteTarget = errors.New("a note may reference a module or a topic, not both")

// Validate rejects notes pointing at both a module and a topic.
func (r *NoteRequest) Validate() error {
	if r.ModuleID != nil && r.TopicID != nil {
		return domain.NewValidationError("topic_id", errNoteTarget.Error(), domain.ErrValidation)
	}
	return nil
}
