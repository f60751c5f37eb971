package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloomsLevelOrdering(t *testing.T) {
	t.Parallel()
	assert.Equal(t, BloomsUnderstand, BloomsRemember.Next())
	assert.Equal(t, BloomsCreate, BloomsCreate.Next())
	assert.True(t, BloomsEvaluate.AtLeast(BloomsAnalyze))
	assert.False(t, BloomsApply.AtLeast(BloomsAnalyze))
	assert.Equal(t, "L4-L5", BloomsAnalyze.EngineeringLevel())

	l, ok := ParseBloomsLevel("evaluate")
	assert.True(t, ok)
	assert.Equal(t, BloomsEvaluate, l)
	l, ok = ParseBloomsLevel("memorize")
	assert.False(t, ok)
	assert.Equal(t, BloomsRemember, l)
}

func TestBloomsProgression(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	p := NewBloomsTaxonomyProgression(uuid.New(), uuid.New())
	require.NoError(t, p.Validate())
	assert.Equal(t, "L3", p.CompetencyAlignment)

	p.RememberScore = 79
	assert.False(t, p.ReadyForNextLevel())
	assert.False(t, p.Advance(now))

	p.RememberScore = 80
	assert.True(t, p.ReadyForNextLevel())
	assert.True(t, p.Advance(now))
	assert.Equal(t, BloomsUnderstand, p.CurrentLevel)
	assert.Equal(t, "L3-L4", p.CompetencyAlignment)

	p.RememberScore, p.UnderstandScore, p.ApplyScore = 100, 100, 100
	p.AnalyzeScore, p.EvaluateScore, p.CreateScore = 100, 100, 100
	p.CurrentLevel = BloomsCreate
	assert.False(t, p.Advance(now), "create is the top level")
	assert.Equal(t, 100.0, p.OverallScore())
	assert.Equal(t, 100.0, p.CompletionPercentage())
	assert.Equal(t, "L6 Ready", p.ReadinessLabel())
	assert.True(t, p.IsSeniorLevel())

	p.CreateScore = 101
	assert.ErrorIs(t, p.Validate(), ErrInvalidBloomsScore)
}

func TestBloomsReadinessLabel(t *testing.T) {
	t.Parallel()
	withScores := func(score int, level BloomsLevel) *BloomsTaxonomyProgression {
		return &BloomsTaxonomyProgression{
			RememberScore: score, UnderstandScore: score, ApplyScore: score,
			AnalyzeScore: score, EvaluateScore: score, CreateScore: score,
			CurrentLevel: level,
		}
	}

	assert.Equal(t, "L5 Ready", withScores(85, BloomsEvaluate).ReadinessLabel())
	assert.Equal(t, "L4 Ready", withScores(72, BloomsAnalyze).ReadinessLabel())
	assert.Equal(t, "L4 Developing", withScores(65, BloomsApply).ReadinessLabel())
	assert.Equal(t, "L3 Ready", withScores(55, BloomsUnderstand).ReadinessLabel())
	assert.Equal(t, "L3 Developing", withScores(95, BloomsRemember).ReadinessLabel())
}

func TestCompetencyThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     CompetencyLevel
		readiness int
		fit       int
		promote   bool
		band      HiringBand
	}{
		{"L3 at the L4 bar", LevelL3, 70, 70, true, HiringApproaching},
		{"L3 just under the L4 bar", LevelL3, 70, 69, false, HiringApproaching},
		{"L4 at the L5 bar", LevelL4, 80, 80, true, HiringMeets},
		{"L5 needs 90/85", LevelL5, 89, 90, false, HiringExceeds},
		{"L5 at the L6 bar", LevelL5, 90, 85, true, HiringExceeds},
		{"L6 cannot be promoted", LevelL6, 100, 100, false, HiringExceeds},
		{"below every bar", LevelL3, 40, 90, false, HiringBelow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompetencyProgression(uuid.New())
			c.CurrentLevel = tt.level
			require.NoError(t, c.Assess(tt.readiness, tt.fit, time.Now().UTC()))
			assert.Equal(t, tt.promote, c.ReadyForPromotion())
			assert.Equal(t, tt.band, c.HiringBand())
		})
	}
}

func TestCompetencyProgression(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	c := NewCompetencyProgression(uuid.New())
	require.NoError(t, c.Validate())
	assert.Equal(t, LevelL3, c.CurrentLevel)
	assert.Equal(t, LevelL5, c.TargetLevel)
	assert.True(t, c.IsStale(now))

	assert.ErrorIs(t, c.Assess(101, 50, now), ErrInvalidCompetencyScore)
	require.NoError(t, c.Assess(82, 76, now))
	assert.False(t, c.IsStale(now.Add(29*24*time.Hour)))
	assert.True(t, c.IsStale(now.Add(31*24*time.Hour)))

	assert.False(t, c.ReadyForTarget(), "competency notes are still empty")
	c.TechnicalCompetencies = "distributed systems"
	c.LeadershipPrinciplesProgress = "Ownership: strong"
	assert.True(t, c.ReadyForTarget())

	assert.Equal(t, 79.0, c.OverallScore())
	assert.Equal(t, "Good - Ready for L4", c.ScoreDescription())
	assert.Equal(t, "Ready", c.InterviewReadinessLabel())
	assert.Equal(t, "Good Fit", c.CulturalFitLabel())
	assert.Equal(t, []string{"Maintain readiness with regular mock interviews"}, c.DevelopmentRecommendations())

	assert.Equal(t, "Senior SDE", LevelL5.Title())
	assert.Equal(t, LevelL6, LevelL6.Next())
	assert.Len(t, LeadershipPrinciples, 16)

	l, ok := ParseCompetencyLevel("l4")
	assert.True(t, ok)
	assert.Equal(t, LevelL4, l)

	c.TargetLevel = "L9"
	assert.True(t, IsValidationError(c.Validate()))
}
