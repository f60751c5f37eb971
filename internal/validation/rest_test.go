package validation_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/academy-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoute(t *testing.T) {
	v := validation.NewRESTValidator("/api")

	tests := []struct {
		name         string
		route        validation.Route
		wantErrors   int
		wantWarnings int
	}{
		{name: "plural with camel param", route: validation.Route{Method: "GET", Pattern: "/api/modules/{moduleId}", Envelope: true}},
		{name: "root", route: validation.Route{Method: "GET", Pattern: "/", Envelope: true}},
		{name: "prefix only", route: validation.Route{Method: "GET", Pattern: "/api", Envelope: true}},
		{name: "singular", route: validation.Route{Method: "GET", Pattern: "/api/user", Envelope: true}, wantWarnings: 1},
		// The plural check only looks for a trailing s.
		{name: "mass noun ending in s", route: validation.Route{Method: "GET", Pattern: "/api/progress", Envelope: true}},
		{name: "snake param", route: validation.Route{Method: "GET", Pattern: "/api/notes/{note_id}", Envelope: true}, wantErrors: 1},
		{name: "pascal param", route: validation.Route{Method: "GET", Pattern: "/api/notes/{NoteId}", Envelope: true}, wantErrors: 1},
		{name: "regexp param", route: validation.Route{Method: "GET", Pattern: "/api/notes/{noteId:[0-9]+}", Envelope: true}},
		{name: "no method", route: validation.Route{Pattern: "/api/notes", Envelope: true}, wantErrors: 1},
		{name: "empty path", route: validation.Route{Method: "GET"}, wantErrors: 1},
		{name: "raw body", route: validation.Route{Method: "GET", Pattern: "/metrics"}, wantWarnings: 1},
		{name: "upper case resource", route: validation.Route{Method: "GET", Pattern: "/api/Modules", Envelope: true}, wantWarnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateRoute(tt.route)
			assert.Len(t, res.Errors, tt.wantErrors)
			assert.Len(t, res.Warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantErrors == 0, res.IsValid())
		})
	}
}

func TestRoutesFromChi(t *testing.T) {
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	r := chi.NewRouter()
	r.Get("/health", noop)
	r.Route("/api", func(r chi.Router) {
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noop)
			r.Delete("/{noteId}", noop)
		})
	})

	routes, err := validation.RoutesFromChi(r, "/health")
	require.NoError(t, err)
	assert.Equal(t, []validation.Route{
		{Method: "GET", Pattern: "/api/notes", Envelope: true},
		{Method: "DELETE", Pattern: "/api/notes/{noteId}", Envelope: true},
		{Method: "GET", Pattern: "/health", Envelope: false},
	}, routes)

	res := validation.NewRESTValidator("/api").ValidateRoutes(routes)
	assert.False(t, res.HasErrors())
	assert.Len(t, res.Warnings, 2, "/health is singular and raw")
}
