package fixture

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Registration errors. Both are wrapped in a *ValidationError naming the
// offending field.
var (
	ErrInvalidRoute = errors.New("invalid route")
	ErrInvalidRule  = errors.New("invalid predicate rule")
)

// MaxParams is the number of query parameters a Rule may declare.
const MaxParams = 2

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// methodToken matches an HTTP method token (RFC 7230 tchar, letters only
// in practice).
var methodToken = regexp.MustCompile(`^[A-Za-z]+$`)

// Validate checks that the fixture can be registered.
func (f *Fixture) Validate() error {
	if err := f.Route.Validate(); err != nil {
		return err
	}
	return f.Rule.Validate()
}

// Validate checks the route for a method token, a host and an exact path.
func (r Route) Validate() error {
	if !methodToken.MatchString(r.Method) {
		return routeError("route.method", fmt.Sprintf("invalid method %q", r.Method))
	}
	if _, err := NormalizeHost(r.Host, ""); err != nil {
		return routeError("route.host", err.Error())
	}
	if strings.Contains(r.Host, "/") {
		return routeError("route.host", fmt.Sprintf("host %q must not contain a path", r.Host))
	}
	if !strings.HasPrefix(r.Path, "/") {
		return routeError("route.path", fmt.Sprintf("path %q must start with /", r.Path))
	}
	if _, err := url.PathUnescape(r.Path); err != nil {
		return routeError("route.path", fmt.Sprintf("path %q has an invalid escape", r.Path))
	}
	if i := strings.IndexAny(r.Path, "?#*{}"); i >= 0 {
		return routeError("route.path", fmt.Sprintf("path %q contains %q; only exact paths are supported", r.Path, r.Path[i]))
	}
	return nil
}

// Validate checks the parameter declarations against the tables.
func (r *Rule) Validate() error {
	if len(r.Params) > MaxParams {
		return ruleError("rule.params", fmt.Sprintf("at most %d parameters may be declared, got %d", MaxParams, len(r.Params)))
	}
	seen := make(map[string]bool, len(r.Params))
	for i, p := range r.Params {
		if p == "" {
			return ruleError(fmt.Sprintf("rule.params[%d]", i), "parameter name is empty")
		}
		if seen[p] {
			return ruleError(fmt.Sprintf("rule.params[%d]", i), fmt.Sprintf("parameter %q declared twice", p))
		}
		seen[p] = true
	}

	if len(r.Combined) > 0 && len(r.Params) != 2 {
		return ruleError("rule.combined", "combined cases need two declared parameters")
	}
	if len(r.First) > 0 && len(r.Params) < 1 {
		return ruleError("rule.first", "single-parameter cases need a declared parameter")
	}
	if len(r.Second) > 0 && len(r.Params) != 2 {
		return ruleError("rule.second", "second-parameter cases need two declared parameters")
	}

	if s := r.Default.StatusCode; s != 0 && (s < 100 || s > 599) {
		return ruleError("rule.default.status", fmt.Sprintf("invalid status code %d", s))
	}
	if s := r.Default.StatusCode; s != 0 && http.StatusText(s) == "" {
		return ruleError("rule.default.status", fmt.Sprintf("unknown status code %d", s))
	}

	if r.MergeAt != "" {
		if v, ok := r.Default.Body[r.MergeAt]; ok && v != nil {
			if _, isMap := v.(map[string]any); !isMap {
				return ruleError("rule.mergeAt", fmt.Sprintf("default body field %q is not an object", r.MergeAt))
			}
		}
	}
	return nil
}

func routeError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg, Err: ErrInvalidRoute}
}

func ruleError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg, Err: ErrInvalidRule}
}
