package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/service/auth"
)

type contextKey string

const (
	traceIDKey contextKey = "traceID"
	claimsKey  contextKey = "claims"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// WithTraceID returns a copy of ctx carrying id. An empty id is replaced
// with a generated one.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewTraceID()
	}
	return context.WithValue(ctx, traceIDKey, id)
}

// GetTraceID returns the request's trace ID, or "" outside a request.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// NewTraceID returns 32 random hex characters. If the random source fails
// a UUID is used instead.
func NewTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}

// WithClaims stores the authenticated caller's token claims.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// GetClaims returns the caller's claims, if the request was authenticated.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// GetUserID returns the authenticated caller's ID.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	c, ok := GetClaims(ctx)
	if !ok || c.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return c.UserID, true
}
