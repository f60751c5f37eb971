// Package scheduler runs periodic background jobs. The review sweep counts
// due and overdue spaced repetition schedules across all learners and
// publishes the totals as metrics.
package scheduler
