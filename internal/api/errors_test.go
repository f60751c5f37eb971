package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/domain/srs"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/service/auth"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	type req struct {
		Title string `json:"title" validate:"required"`
	}
	validationErr := shared.ValidateRequest(&req{})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusInternalServerError},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"wrapped credentials", fmt.Errorf("login: %w", auth.ErrInvalidCredentials), http.StatusUnauthorized},
		{"disabled", auth.ErrAccountDisabled, http.StatusForbidden},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"content missing", fmt.Errorf("%w: %v", service.ErrContentNotFound, store.ErrModuleNotFound), http.StatusNotFound},
		{"schedule missing", &service.ServiceError{Service: "review", Op: "get", Err: store.ErrScheduleNotFound}, http.StatusNotFound},
		{"email taken", store.ErrEmailExists, http.StatusConflict},
		{"optimistic conflict", store.ErrConflict, http.StatusConflict},
		{"struct validation", validationErr, http.StatusBadRequest},
		{"field validation", domain.NewValidationError("status", "unknown", domain.ErrInvalidStatus), http.StatusBadRequest},
		{"quality", srs.ErrInvalidQuality, http.StatusBadRequest},
		{"page", service.ErrInvalidPage, http.StatusBadRequest},
		{"rating", domain.ErrInvalidRating, http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	type req struct {
		Title string `json:"title" validate:"required"`
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"internal detail hidden", errors.New(`pq: relation "users" does not exist`), "An unexpected error occurred"},
		{"module", store.ErrModuleNotFound, "Learning module not found"},
		{"wrapped content", fmt.Errorf("%w: %w", service.ErrContentNotFound, store.ErrTopicNotFound), "Topic not found"},
		{"struct validation", shared.ValidateRequest(&req{}), "Validation error: Field 'title': is required"},
		{"field validation", domain.NewValidationError("days", "must be positive", domain.ErrOutOfRange), "Invalid days: must be positive"},
		{"sentinel", domain.ErrInvalidRating, "Rating must be between 1 and 5"},
		{"conflict", store.ErrConflict, "The resource was modified concurrently, please retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}
