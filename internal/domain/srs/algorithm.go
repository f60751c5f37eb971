package srs

import (
	"math"
	"time"

	"github.com/phrazzld/academy-api/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease update:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// floored at params.MinEaseFactor. A perfect grade raises EF by 0.1, a
// grade of 4 leaves it unchanged, and anything lower reduces it.
func calculateNewEaseFactor(currentEF float64, quality domain.ReviewQuality, params *Params) float64 {
	d := float64(5 - quality)
	newEF := currentEF + (0.1 - d*(0.08+d*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	// Keep two decimals so stored values stay stable across round trips.
	return math.Round(newEF*100) / 100
}

// calculateNewInterval returns the next interval in days and the new
// repetition count.
//
// Successful grades follow the SM-2 sequence 1, 6, round(I*EF) using the
// ease factor from before this review. Failed grades restart the sequence.
// The result is scaled by the schedule's difficulty adjustment, shortened for
// priority items, and stays between one day and params.MaxInterval.
func calculateNewInterval(
	s *domain.SpacedRepetitionSchedule,
	quality domain.ReviewQuality,
	params *Params,
) (interval int, count int) {
	if !quality.Successful() {
		return params.FirstInterval, 0
	}

	switch s.RepetitionCount {
	case 0:
		interval = params.FirstInterval
	case 1:
		interval = params.SecondInterval
	default:
		interval = roundDays(float64(s.RepetitionInterval)*s.EaseFactor, params.MaxInterval)
	}

	adj := s.DifficultyAdjustment
	if adj <= 0 {
		adj = domain.DefaultDifficultyAdjustment
	}
	interval = roundDays(float64(interval)*adj, params.MaxInterval)

	if s.AmazonInterviewPriority && params.PriorityIntervalDivisor > 1 {
		interval /= params.PriorityIntervalDivisor
	}

	return max(1, interval), s.RepetitionCount + 1
}

// roundDays rounds a day count, capping it before the int conversion.
func roundDays(days float64, limit int) int {
	if limit > 0 && days >= float64(limit) {
		return limit
	}
	return int(math.Round(days))
}

// calculateNextReviewDate converts the interval into a date. A successful
// review always lands strictly after the previous review date, even when the
// learner reviews early and the new interval is short.
func calculateNextReviewDate(
	previous time.Time,
	interval int,
	quality domain.ReviewQuality,
	now time.Time,
) time.Time {
	next := now.AddDate(0, 0, interval)
	if quality.Successful() && !next.After(previous) {
		next = previous.AddDate(0, 0, 1)
	}
	return next
}

// calculateRetention blends the latest grade into the retention score.
func calculateRetention(s *domain.SpacedRepetitionSchedule, quality domain.ReviewQuality, params *Params) int {
	sample := float64(quality) * 20
	if s.LastReviewed == nil {
		return int(sample)
	}
	blended := float64(s.RetentionScore)*(1-params.RetentionWeight) + sample*params.RetentionWeight
	return max(0, min(100, int(math.Round(blended))))
}

// calculateNextSchedule returns an updated copy of s after a review. The
// input is never modified.
func calculateNextSchedule(
	s *domain.SpacedRepetitionSchedule,
	quality domain.ReviewQuality,
	now time.Time,
	params *Params,
) *domain.SpacedRepetitionSchedule {
	now = now.UTC()
	next := s.Clone()

	interval, count := calculateNewInterval(s, quality, params)
	next.RepetitionInterval = interval
	next.RepetitionCount = count
	next.EaseFactor = calculateNewEaseFactor(s.EaseFactor, quality, params)
	next.NextReviewDate = calculateNextReviewDate(s.NextReviewDate, interval, quality, now)
	next.RetentionScore = calculateRetention(s, quality, params)
	next.LastReviewed = &now
	next.UpdatedAt = now

	return next
}
