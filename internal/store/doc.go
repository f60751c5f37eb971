// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. Lookup misses are reported with the
// ErrNotFound family so callers can treat them as "absent".
package store
