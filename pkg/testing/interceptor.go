package testing

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/getmockd/interceptd/pkg/config"
	"github.com/getmockd/interceptd/pkg/fixture"
	"github.com/getmockd/interceptd/pkg/logging"
	"github.com/getmockd/interceptd/pkg/requestlog"
	"github.com/getmockd/interceptd/pkg/session"
)

// Interceptor is a test helper owning one isolated session.
type Interceptor struct {
	t        testing.TB
	registry *session.Registry
}

// Option configures an Interceptor.
type Option func(*options)

type options struct {
	verbose bool
}

// WithVerboseLogging routes the registry's debug log to t.Log.
func WithVerboseLogging() Option {
	return func(o *options) { o.verbose = true }
}

// New installs an empty session for t. The session is torn down when the
// test completes.
func New(t testing.TB, opts ...Option) *Interceptor {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.Nop()
	if o.verbose {
		logger = logging.NewTestLogger(t, logging.LevelDebug)
	}

	registry := session.NewRegistry(session.WithLogger(logger))
	if err := registry.Install(); err != nil {
		t.Fatalf("installing session: %v", err)
	}
	t.Cleanup(registry.Teardown)

	return &Interceptor{t: t, registry: registry}
}

// Route starts a route for method and rawURL. The URL's query, if any, is
// ignored; declare parameters with Params.
//
// Example:
//
//	ic.Route("GET", "https://genes.example.org/api/stats").
//	    Params("gene").
//	    When("TP53", map[string]any{"records": []any{"..."}}).
//	    Register()
func (i *Interceptor) Route(method, rawURL string) *RouteBuilder {
	i.t.Helper()

	b := &RouteBuilder{
		ic: i,
		fixture: fixture.Fixture{
			Route: fixture.Route{Method: method},
			Rule: fixture.Rule{
				Default: fixture.EmptyRecords(),
				MergeAt: fixture.DefaultMergeAt,
			},
		},
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		b.setError(err)
		return b
	}
	host, err := fixture.NormalizeHost(u.Host, u.Scheme)
	if err != nil {
		b.setError(err)
		return b
	}
	b.fixture.Route.Host = host
	b.fixture.Route.Path = u.EscapedPath()
	if b.fixture.Route.Path == "" {
		b.fixture.Route.Path = "/"
	}
	return b
}

// Register adds fixtures to the session, failing the test on error.
func (i *Interceptor) Register(fixtures ...*fixture.Fixture) {
	i.t.Helper()
	for _, f := range fixtures {
		if err := i.registry.Register(f); err != nil {
			i.t.Fatalf("registering fixture: %v", err)
		}
	}
}

// Load registers the fixtures in paths, which may be files, directories or
// globs relative to the working directory.
func (i *Interceptor) Load(paths ...string) {
	i.t.Helper()
	fixtures, err := config.Load(".", paths...)
	if err != nil {
		i.t.Fatalf("loading fixtures: %v", err)
	}
	i.Register(fixtures...)
}

// Client returns an http.Client answered by the session.
func (i *Interceptor) Client() *http.Client {
	return i.registry.Client()
}

// Transport returns an http.RoundTripper answered by the session, for
// code that builds its own client.
func (i *Interceptor) Transport() http.RoundTripper {
	return i.registry.Transport()
}

// Registry returns the underlying session registry for advanced use cases.
// Most tests should not need this.
func (i *Interceptor) Registry() *session.Registry {
	return i.registry
}

// Requests returns the intercepted calls, oldest first.
func (i *Interceptor) Requests() []*requestlog.Entry {
	return i.registry.Requests().List(nil)
}

// Reset clears every route and the request log, leaving an empty session
// installed.
func (i *Interceptor) Reset() {
	i.t.Helper()
	i.registry.Teardown()
	i.registry.Requests().Clear()
	if err := i.registry.Install(); err != nil {
		i.t.Fatalf("reinstalling session: %v", err)
	}
}

// countCalls counts intercepted calls to method and rawURL's host and path.
func (i *Interceptor) countCalls(method, rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	want := requestKey(method, u.Host, u.Path)

	count := 0
	for _, e := range i.registry.Requests().List(&requestlog.Filter{Method: strings.ToUpper(method)}) {
		if requestKey(e.Method, e.Host, e.Path) == want {
			count++
		}
	}
	return count
}

func requestKey(method, host, path string) fixture.RouteKey {
	if h, err := fixture.NormalizeHost(host, ""); err == nil {
		host = h
	}
	if path == "" {
		path = "/"
	}
	return fixture.RouteKey{Method: strings.ToUpper(method), Host: host, Path: path}
}
