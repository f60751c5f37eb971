// Package domain defines the core entities of the learning platform: users,
// the content catalog (modules, topics, interview questions and their
// enrichments), and the per-learner records that track progress, review
// schedules and mastery.
//
// Entities validate themselves and carry the small amount of behavior that
// belongs to a single record (status transitions, derived scores, labels).
// Anything that spans records lives in the service layer.
package domain
