package fixture

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mohae/deepcopy"
)

// DefaultMergeAt is the body field case payloads are merged into when a
// fixture file does not say otherwise.
const DefaultMergeAt = "data"

// Route identifies an outbound call by method, host and exact path.
type Route struct {
	Method string `json:"method" yaml:"method"`
	Host   string `json:"host" yaml:"host"`
	Path   string `json:"path" yaml:"path"`
}

// RouteKey is the normalised identity of a Route. Two registrations with
// equal keys replace one another.
type RouteKey struct {
	Method string
	Host   string
	Path   string
}

// String renders the key as "METHOD host/path".
func (k RouteKey) String() string {
	return k.Method + " " + k.Host + k.Path
}

// Key returns the normalised key for the route. The host must already be
// valid; use Validate before registering untrusted routes.
func (r Route) Key() RouteKey {
	return NewRouteKey(r.Method, r.Host, r.Path)
}

// NewRouteKey normalises a method, host and path into a RouteKey. Routes and
// outbound calls are both keyed through it. Routes carry no scheme, so :80
// and :443 are dropped whatever the scheme, and the path is compared in its
// unescaped form.
func NewRouteKey(method, host, path string) RouteKey {
	h, err := NormalizeHost(host, "")
	if err != nil {
		h = strings.ToLower(host)
	}
	if p, err := url.PathUnescape(path); err == nil {
		path = p
	}
	if path == "" {
		path = "/"
	}
	return RouteKey{
		Method: strings.ToUpper(method),
		Host:   h,
		Path:   path,
	}
}

// Key is the composite lookup key of a combined branch: the values of the
// first and second declared parameters, compared structurally.
type Key struct {
	First  string
	Second string
}

// Payload is the statically declared document for one matched case.
type Payload map[string]any

// Response is a canned HTTP response.
type Response struct {
	StatusCode int            `json:"status,omitempty" yaml:"status,omitempty"`
	Body       map[string]any `json:"body,omitempty" yaml:"body,omitempty"`
}

// Status returns the status code, defaulting to 200.
func (r Response) Status() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

// EmptyRecords returns the canonical "no data for this query" response.
func EmptyRecords() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			DefaultMergeAt: map[string]any{
				"records": []any{},
			},
		},
	}
}

// Rule maps query-parameter values to payloads.
//
// Params declares up to two parameter names in a fixed order. Combined is
// consulted when both are present, First when only the first is present and
// Second when only the second is. Any miss resolves to Default.
type Rule struct {
	Params   []string           `json:"params,omitempty"`
	Combined map[Key]Payload    `json:"-"`
	First    map[string]Payload `json:"first,omitempty"`
	Second   map[string]Payload `json:"second,omitempty"`
	Default  Response           `json:"default"`

	// MergeAt names the top-level body field payloads are shallow-merged
	// into. Empty merges at the top level of the body.
	MergeAt string `json:"mergeAt,omitempty"`
}

// Fixture is one registrable Route with its Rule.
type Fixture struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Route Route  `json:"route"`
	Rule  Rule   `json:"rule"`
}

// Clone returns a deep copy of f. Registries hold clones so later edits to
// the caller's tables cannot change a live session.
func (f *Fixture) Clone() *Fixture {
	c := *f
	c.Rule = deepcopy.Copy(f.Rule).(Rule)
	return &c
}

// Key returns the route key of the fixture.
func (f *Fixture) Key() RouteKey {
	return f.Route.Key()
}
