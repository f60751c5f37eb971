// Package postgres provides PostgreSQL implementations of the store
// interfaces. Every store accepts a store.DBTX so it can run on the pool or
// inside a caller's transaction, and maps driver errors with MapError.
package postgres
