package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/academy-api/internal/store"
)

// SQLSTATE codes the stores react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// codeCategories maps SQLSTATE codes to store error categories.
var codeCategories = map[string]struct {
	category error
	what     string
}{
	codeUniqueViolation:      {store.ErrDuplicate, "unique violation"},
	codeForeignKeyViolation:  {store.ErrInvalidEntity, "foreign key violation"},
	codeCheckViolation:       {store.ErrInvalidEntity, "check constraint violation"},
	codeNotNullViolation:     {store.ErrInvalidEntity, "not null violation"},
	codeSerializationFailure: {store.ErrConflict, "serialization failure"},
	codeDeadlockDetected:     {store.ErrConflict, "deadlock"},
}

// MapError turns a driver error into a store error category, keeping the
// original in the chain. Unrecognised errors come back unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	pgErr, ok := asPgError(err)
	if !ok {
		return err
	}
	c, ok := codeCategories[pgErr.Code]
	if !ok {
		return err
	}
	return fmt.Errorf("%w: %s (%s): %w", c.category, c.what, pgSubject(pgErr), err)
}

// MapUniqueViolation maps a unique violation on a known constraint to the
// entity error registered for it. Other unique violations become
// store.ErrDuplicate and everything else goes through MapError.
func MapUniqueViolation(err error, byConstraint map[string]error) error {
	pgErr, ok := asPgError(err)
	if !ok || pgErr.Code != codeUniqueViolation {
		return MapError(err)
	}
	if specific, ok := byConstraint[pgErr.ConstraintName]; ok {
		return fmt.Errorf("%w: %w", specific, err)
	}
	return MapError(err)
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool { return hasCode(err, codeUniqueViolation) }

// IsForeignKeyViolation reports whether err carries SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool { return hasCode(err, codeForeignKeyViolation) }

// IsNotFoundError reports a raw sql.ErrNoRows or any store lookup miss.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || store.IsNotFoundError(err)
}

// CheckRowsAffected returns store.ErrNotFound, naming entity, when an
// UPDATE or DELETE touched nothing.
func CheckRowsAffected(result sql.Result, entity string) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch {
	case n > 0:
		return nil
	case entity == "":
		return store.ErrNotFound
	default:
		return fmt.Errorf("%w: %s not found", store.ErrNotFound, entity)
	}
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func hasCode(err error, code string) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == code
}

// pgSubject names what the error is about: the constraint when there is
// one, otherwise the column.
func pgSubject(e *pgconn.PgError) string {
	if e.ConstraintName != "" {
		return e.ConstraintName
	}
	return e.ColumnName
}
