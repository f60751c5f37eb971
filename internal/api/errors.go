package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/domain/srs"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/service/auth"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/phrazzld/academy-api/internal/validation"
)

// badRequestErrors are domain rule violations a client can fix.
var badRequestErrors = []error{
	domain.ErrValidation,
	domain.ErrInvalidID,
	domain.ErrEmptyContent,
	domain.ErrOutOfRange,
	domain.ErrInvalidStatus,
	domain.ErrInvalidUsername,
	domain.ErrInvalidEmail,
	domain.ErrEmptyEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrEmptyNoteTitle,
	domain.ErrNoteTitleTooLong,
	domain.ErrInvalidProgress,
	domain.ErrInvalidRating,
	domain.ErrNegativeTimeSpent,
	domain.ErrProgressTarget,
	domain.ErrEmptyContentID,
	domain.ErrInvalidReviewQuality,
	domain.ErrInvalidReviewOutcome,
	domain.ErrInvalidBloomsScore,
	domain.ErrInvalidCompetencyScore,
	srs.ErrInvalidQuality,
	srs.ErrInvalidDays,
	service.ErrInvalidPage,
	store.ErrInvalidEntity,
	shared.ErrEmptyBody,
}

func isBadRequest(err error) bool {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) || domain.IsValidationError(err) {
		return true
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrAccountDisabled),
		errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	case errors.Is(err, service.ErrContentNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, store.ErrConflict),
		store.IsDuplicateError(err):
		return http.StatusConflict

	case isBadRequest(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken), errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrAccountDisabled):
		return "Account is disabled"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrModuleNotFound):
		return "Learning module not found"
	case errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"
	case errors.Is(err, store.ErrScheduleNotFound):
		return "Review schedule not found"
	case errors.Is(err, store.ErrNoteNotFound):
		return "Note not found"
	case errors.Is(err, service.ErrContentNotFound), store.IsNotFoundError(err):
		return "Content not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrConflict):
		return "The resource was modified concurrently, please retry"
	case store.IsDuplicateError(err):
		return "Resource already exists"

	case isBadRequest(err):
		return SanitizeValidationError(err)

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validation failure into a message that
// names the field but never echoes internal types or values.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return "Validation error: " + strings.Join(validation.FieldErrors(verrs), "; ")
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return "Invalid " + ve.Field + ": " + ve.Message
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return capitalize(target.Error())
		}
	}
	return "Validation error"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HandleAPIError writes the status and safe message for err. message, when
// not empty, replaces the safe message for 5xx responses only.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	safe := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError && message != "" {
		safe = message
	}
	shared.RespondWithErrorAndLog(w, r, status, safe, err)
}
