// Package srs implements the spaced repetition scheduling algorithm (SM-2).
//
// The package is pure: it takes a schedule and a review grade and returns a
// new schedule. Persistence and concurrency control live in the review
// service.
package srs
