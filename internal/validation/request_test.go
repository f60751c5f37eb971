package validation_test

import (
	"errors"
	"testing"

	"github.com/phrazzld/academy-api/internal/validation"
	"github.com/stretchr/testify/assert"
)

type noteRequest struct {
	Title    string `json:"title" validate:"required,max=10"`
	Email    string `json:"email" validate:"omitempty,email"`
	Category string `json:"category" validate:"omitempty,oneof=GENERAL SUMMARY"`
	Rating   int    `json:"rating" validate:"gte=0,lte=5"`
}

func TestRequestValidatorStruct(t *testing.T) {
	rv := validation.NewRequestValidator(nil)

	assert.Empty(t, rv.Struct(noteRequest{Title: "ok"}))
	assert.Equal(t, []string{
		"Field 'title': is required",
		"Field 'email': must be a valid email address",
		"Field 'category': must be one of GENERAL SUMMARY",
		"Field 'rating': must be at most 5",
	}, rv.Struct(noteRequest{Email: "nope", Category: "OTHER", Rating: 9}))
	assert.Equal(t, []string{"Field 'title': must be at most 10 characters"},
		rv.Struct(noteRequest{Title: "far too long a title"}))
}

func TestFieldErrorsPassesOtherErrors(t *testing.T) {
	assert.Nil(t, validation.FieldErrors(nil))
	assert.Equal(t, []string{"boom"}, validation.FieldErrors(errors.New("boom")))
}

func TestValidateRequired(t *testing.T) {
	got := validation.ValidateRequired(map[string]string{"title": " ", "content": "x", "author": ""})
	assert.Equal(t, []string{"Field 'author': is required", "Field 'title': is required"}, got)
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		page, size int
		want       int
	}{
		{0, 1, 0},
		{5, 100, 0},
		{-1, 20, 1},
		{0, 0, 1},
		{0, 101, 1},
		{-1, 101, 2},
	}
	for _, tt := range tests {
		assert.Len(t, validation.ValidatePagination(tt.page, tt.size), tt.want, "page=%d size=%d", tt.page, tt.size)
	}
}
