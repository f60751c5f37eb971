package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/academy-api/internal/platform/postgres"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

// mockResult implements sql.Result for testing.
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, nil }

func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "unique", err: newPgError("23505", "users_email_key"), wantIs: store.ErrDuplicate},
		{name: "foreign key", err: newPgError("23503", "topics_module_id_fkey"), wantIs: store.ErrInvalidEntity},
		{name: "check", err: newPgError("23514", "user_progress_completed_full"), wantIs: store.ErrInvalidEntity},
		{name: "not null", err: newPgError("23502", ""), wantIs: store.ErrInvalidEntity},
		{name: "wrapped pg error", err: fmt.Errorf("exec: %w", newPgError("23505", "x")), wantIs: store.ErrDuplicate},
		{name: "serialization failure", err: newPgError("40001", ""), wantIs: store.ErrConflict},
		{name: "deadlock", err: newPgError("40P01", ""), wantIs: store.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postgres.MapError(tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}

	other := errors.New("connection refused")
	assert.Same(t, other, postgres.MapError(other), "unmapped errors are returned unchanged")

	unknownCode := newPgError("57014", "")
	assert.Equal(t, error(unknownCode), postgres.MapError(unknownCode))

	pgErr := newPgError("23503", "topics_module_id_fkey")
	mapped := postgres.MapError(pgErr)
	assert.Contains(t, mapped.Error(), "topics_module_id_fkey")
	var got *pgconn.PgError
	assert.ErrorAs(t, mapped, &got, "driver error stays in the chain")
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))

	assert.True(t, postgres.IsForeignKeyViolation(fmt.Errorf("wrap: %w", newPgError("23503", ""))))
	assert.False(t, postgres.IsForeignKeyViolation(nil))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, postgres.IsNotFoundError(sql.ErrNoRows))
	assert.True(t, postgres.IsNotFoundError(store.ErrScheduleNotFound))
	assert.True(t, postgres.IsNotFoundError(fmt.Errorf("x: %w", store.ErrNotFound)))
	assert.False(t, postgres.IsNotFoundError(errors.New("other")))
}

func TestCheckRowsAffected(t *testing.T) {
	require.NoError(t, postgres.CheckRowsAffected(mockResult{rowsAffected: 1}, "note"))

	err := postgres.CheckRowsAffected(mockResult{rowsAffected: 0}, "note")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "note not found")

	assert.ErrorIs(t, postgres.CheckRowsAffected(mockResult{}, ""), store.ErrNotFound)

	countErr := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(mockResult{err: countErr}, "note"), countErr)

	assert.Error(t, postgres.CheckRowsAffected(nil, "note"))
}

func TestMapUniqueViolation(t *testing.T) {
	byConstraint := map[string]error{
		"users_email_key":    store.ErrEmailExists,
		"users_username_key": store.ErrUsernameExists,
	}

	err := postgres.MapUniqueViolation(newPgError("23505", "users_email_key"), byConstraint)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = postgres.MapUniqueViolation(newPgError("23505", "users_username_key"), byConstraint)
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	err = postgres.MapUniqueViolation(newPgError("23505", "other_key"), byConstraint)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, store.ErrEmailExists)

	err = postgres.MapUniqueViolation(sql.ErrNoRows, byConstraint)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
