// Package service contains the learning use cases: recording progress,
// reading the content catalog, keeping notes and tracking Bloom's taxonomy
// and competency progression. Services depend on the store interfaces, never
// on a database driver, and take a store.Transactor for writes that must be
// read-modify-write atomic.
//
// Errors callers branch on (ErrNotOwned, ErrContentNotFound, ErrInvalidPage
// and domain validation errors) are returned as is. Everything else is
// wrapped in a ServiceError naming the failing operation.
//
// Subpackages hold the authentication service (auth) and the spaced
// repetition review lifecycle (review).
package service
