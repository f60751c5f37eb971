package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Pagination bounds.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// NewStructValidator returns a validator that reports fields by their JSON
// names.
func NewStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// RequestValidator formats request validation findings.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator wraps v. A nil v gets NewStructValidator.
func NewRequestValidator(v *validator.Validate) *RequestValidator {
	if v == nil {
		v = NewStructValidator()
	}
	return &RequestValidator{validate: v}
}

// Struct validates s and returns one message per failing field.
func (rv *RequestValidator) Struct(s any) []string {
	return FieldErrors(rv.validate.Struct(s))
}

// FieldErrors turns validator errors into "Field 'name': message" lines.
// Other errors become a single line with their text.
func FieldErrors(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("Field '%s': %s", fe.Field(), tagMessage(fe)))
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a UUID"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// ValidateRequired reports every blank field in fields, by name.
func ValidateRequired(fields map[string]string) []string {
	var out []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			out = append(out, fmt.Sprintf("Field '%s': is required", name))
		}
	}
	sort.Strings(out)
	return out
}

// ValidatePagination checks a zero-based page number and a page size.
func ValidatePagination(page, size int) []string {
	var out []string
	if page < 0 {
		out = append(out, "Field 'page': must be at least 0")
	}
	if size < MinPageSize || size > MaxPageSize {
		out = append(out, fmt.Sprintf("Field 'size': must be between %d and %d", MinPageSize, MaxPageSize))
	}
	return out
}
