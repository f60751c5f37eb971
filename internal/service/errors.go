package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps them to status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrContentNotFound indicates the module or topic a request points at does not exist.
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidPage indicates a page number or size outside the accepted range.
	ErrInvalidPage = errors.New("invalid page request")
)

// ServiceError records which service operation failed.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with the failing service and operation. Domain
// validation failures and sentinel errors callers branch on pass through
// unwrapped so the API can map them directly.
func NewServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotOwned) || errors.Is(err, ErrContentNotFound) || errors.Is(err, ErrInvalidPage) {
		return err
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}
