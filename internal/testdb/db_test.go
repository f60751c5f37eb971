package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTestDatabaseURLOrder(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ACADEMY_TEST_DB_URL", "")
	t.Setenv("ACADEMY_DATABASE_URL", "postgres://fallback")
	assert.Equal(t, "postgres://fallback", GetTestDatabaseURL())

	t.Setenv("ACADEMY_TEST_DB_URL", "postgres://test")
	assert.Equal(t, "postgres://test", GetTestDatabaseURL())

	t.Setenv("DATABASE_URL", "postgres://primary")
	assert.Equal(t, "postgres://primary", GetTestDatabaseURL())
	assert.False(t, ShouldSkipDatabaseTest())
}

func TestShouldSkipWithoutURL(t *testing.T) {
	for _, name := range urlEnvVars {
		t.Setenv(name, "")
	}
	assert.True(t, ShouldSkipDatabaseTest())
}

func TestMaskDatabaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://academy:s3cret@db:5432/academy?sslmode=disable", "postgres://academy:xxxxx@db:5432/academy?sslmode=disable"},
		{"postgres://db:5432/academy", "postgres://db:5432/academy"},
		{"postgres://academy@db/academy", "postgres://academy@db/academy"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskDatabaseURL(tt.in))
	}
}
