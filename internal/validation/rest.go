package validation

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route is one entry of a route table.
type Route struct {
	Method  string
	Pattern string
	// Envelope is true when the handler writes the {"data": ...} envelope.
	Envelope bool
}

// Issue is one finding about one route.
type Issue struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// Result collects the findings of a lint run.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// HasErrors reports whether any route broke a hard rule.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// IsValid is the inverse of HasErrors. Warnings do not make a table invalid.
func (r Result) IsValid() bool { return !r.HasErrors() }

var (
	pluralResource = regexp.MustCompile(`^/[a-z]+s(/.*)?$`)
	camelCaseParam = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	pathParam      = regexp.MustCompile(`\{([^}]*)\}`)
)

// RESTValidator lints routes against the API's naming conventions.
type RESTValidator struct {
	prefix string
}

// NewRESTValidator creates a validator that ignores prefix (such as "/api")
// when checking resource names.
func NewRESTValidator(prefix string) *RESTValidator {
	return &RESTValidator{prefix: strings.TrimSuffix(prefix, "/")}
}

// ValidateRoute lints a single route.
func (v *RESTValidator) ValidateRoute(rt Route) Result {
	var res Result
	issue := func(msg string) Issue { return Issue{Method: rt.Method, Pattern: rt.Pattern, Message: msg} }

	if strings.TrimSpace(rt.Method) == "" {
		res.Errors = append(res.Errors, issue("route has no HTTP method"))
	}
	if strings.TrimSpace(rt.Pattern) == "" {
		res.Errors = append(res.Errors, issue("path cannot be empty"))
		return res
	}

	path := rt.Pattern
	if v.prefix != "" && strings.HasPrefix(path, v.prefix) {
		path = strings.TrimPrefix(path, v.prefix)
		if path == "" {
			path = "/"
		}
	}
	if path != "/" && !pluralResource.MatchString(path) {
		res.Warnings = append(res.Warnings, issue("use plural nouns for resource paths, e.g. /modules"))
	}

	for _, m := range pathParam.FindAllStringSubmatch(rt.Pattern, -1) {
		name, _, _ := strings.Cut(m[1], ":")
		if !camelCaseParam.MatchString(name) {
			res.Errors = append(res.Errors, issue("path parameter {"+name+"} must be camelCase"))
		}
	}

	if !rt.Envelope {
		res.Warnings = append(res.Warnings, issue(`handler does not use the {"data": ...} response envelope`))
	}
	return res
}

// ValidateRoutes lints every route and merges the findings.
func (v *RESTValidator) ValidateRoutes(routes []Route) Result {
	var res Result
	for _, rt := range routes {
		r := v.ValidateRoute(rt)
		res.Errors = append(res.Errors, r.Errors...)
		res.Warnings = append(res.Warnings, r.Warnings...)
	}
	return res
}

// RoutesFromChi walks a chi route table. Patterns listed in raw are marked
// as not using the response envelope.
func RoutesFromChi(routes chi.Routes, raw ...string) ([]Route, error) {
	rawSet := make(map[string]bool, len(raw))
	for _, p := range raw {
		rawSet[p] = true
	}

	var out []Route
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		pattern := strings.ReplaceAll(route, "/*/", "/")
		if len(pattern) > 1 {
			pattern = strings.TrimSuffix(pattern, "/")
		}
		out = append(out, Route{Method: method, Pattern: pattern, Envelope: !rawSet[pattern]})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}
