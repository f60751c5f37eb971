package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// request builds a handler request. A non-nil user authenticates it and
// params become chi URL parameters.
func request(t *testing.T, method, target string, body any, user *uuid.UUID, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)

	ctx := req.Context()
	if user != nil {
		ctx = shared.WithClaims(ctx, &auth.Claims{UserID: *user, Role: domain.RoleUser})
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

// decodeData unwraps the success envelope into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
		Page json.RawMessage `json:"page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// decodeError returns the error envelope's message.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}
