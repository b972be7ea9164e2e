package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"github.com/getmockd/interceptd/internal/id"
	"github.com/getmockd/interceptd/internal/matching"
	"github.com/getmockd/interceptd/pkg/engine"
	"github.com/getmockd/interceptd/pkg/fixture"
	"github.com/getmockd/interceptd/pkg/logging"
	"github.com/getmockd/interceptd/pkg/requestlog"
)

// Session errors.
var (
	ErrNotInstalled  = errors.New("session not installed")
	ErrSessionActive = errors.New("session already installed")
)

// State is the lifecycle state of a Registry.
type State int

// Registry states.
const (
	StateUninstalled State = iota
	StateInstalled
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "installed"
	default:
		return "uninstalled"
	}
}

// Summary describes a finished session.
type Summary struct {
	Routes      int
	Intercepted int
	Unmatched   int
}

// Matched returns the number of calls a route answered.
func (s Summary) Matched() int {
	return s.Intercepted - s.Unmatched
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.log = logging.Component(logger, "registry")
	}
}

// Observer receives session events, for metrics. Methods may be called
// with the Registry locked and must not call back into it.
type Observer interface {
	RoutesChanged(n int)
	RequestIntercepted(e *requestlog.Entry)
	SessionEnded(s Summary)
}

// WithObserver reports session events to o.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// WithRequestLog records every intercepted call in store.
func WithRequestLog(store requestlog.Store) Option {
	return func(r *Registry) {
		r.requests = store
	}
}

// Registry holds the routes of the active session.
type Registry struct {
	mu     sync.RWMutex
	state  State
	routes map[fixture.RouteKey]*fixture.Fixture

	current Summary
	last    Summary
	ended   bool

	log      *slog.Logger
	requests requestlog.Store
	observer Observer
}

// NewRegistry creates an uninstalled Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		routes: make(map[fixture.RouteKey]*fixture.Fixture),
		log:    logging.Component(nil, "registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.requests == nil {
		r.requests = requestlog.NewMemoryStore(requestlog.DefaultMaxEntries)
	}
	return r
}

// Install validates every fixture and registers them, entering the
// Installed state. A single invalid fixture fails the whole install and
// nothing is registered. Fixtures sharing a route key replace one another
// in argument order.
func (r *Registry) Install(fixtures ...*fixture.Fixture) error {
	prepared, err := prepare(fixtures)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateInstalled {
		return ErrSessionActive
	}

	r.routes = make(map[fixture.RouteKey]*fixture.Fixture, len(prepared))
	for _, f := range prepared {
		r.routes[f.Key()] = f
	}
	r.state = StateInstalled
	r.current = Summary{}
	if r.observer != nil {
		r.observer.RoutesChanged(len(r.routes))
	}

	r.log.Info("session installed", "routes", len(r.routes))
	return nil
}

// Register adds one fixture to the installed session, replacing any
// fixture registered under the same route key.
func (r *Registry) Register(f *fixture.Fixture) error {
	prepared, err := prepare([]*fixture.Fixture{f})
	if err != nil {
		return err
	}
	p := prepared[0]

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInstalled {
		return ErrNotInstalled
	}

	key := p.Key()
	if old, ok := r.routes[key]; ok {
		r.log.Debug("route replaced", "route", key.String(), "old", old.ID, "new", p.ID)
	}
	r.routes[key] = p
	if r.observer != nil {
		r.observer.RoutesChanged(len(r.routes))
	}
	return nil
}

// Intercept resolves one outbound call against the installed routes.
// It implements engine.Interceptor.
func (r *Registry) Intercept(ctx context.Context, method string, u *url.URL) (fixture.Response, error) {
	r.mu.RLock()
	installed := r.state == StateInstalled
	f, err := matching.MatchRoute(r.routes, method, u)
	r.mu.RUnlock()

	entry := &requestlog.Entry{
		Method:      method,
		Host:        u.Host,
		Path:        u.Path,
		QueryString: u.RawQuery,
	}

	if err != nil {
		entry.Error = err.Error()
		r.record(installed, entry, true)
		r.log.WarnContext(ctx, "unmatched request", "method", method, "url", u.Redacted(), "installed", installed)
		return fixture.Response{}, err
	}

	res, err := engine.Resolve(f, u.RawQuery)
	if err != nil {
		entry.FixtureID = f.ID
		entry.Error = err.Error()
		r.record(installed, entry, false)
		return fixture.Response{}, err
	}

	entry.Matched = true
	entry.FixtureID = f.ID
	entry.Branch = string(res.Evaluation.Branch)
	entry.Hit = res.Evaluation.Hit
	entry.StatusCode = res.Response.Status()
	r.record(installed, entry, false)

	r.log.DebugContext(ctx, "request intercepted",
		"route", f.Key().String(),
		"fixture", f.ID,
		"branch", res.Evaluation.Branch,
		"hit", res.Evaluation.Hit,
	)
	return res.Response, nil
}

func (r *Registry) record(installed bool, entry *requestlog.Entry, unmatched bool) {
	r.requests.Log(entry)
	if r.observer != nil {
		r.observer.RequestIntercepted(entry)
	}
	if !installed {
		return
	}
	r.mu.Lock()
	if r.state == StateInstalled {
		r.current.Intercepted++
		if unmatched {
			r.current.Unmatched++
		}
	}
	r.mu.Unlock()
}

// Teardown clears every route and returns to Uninstalled. Calling it on an
// uninstalled Registry is a no-op.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInstalled {
		return
	}

	r.current.Routes = len(r.routes)
	r.last = r.current
	r.ended = true
	r.current = Summary{}
	r.routes = make(map[fixture.RouteKey]*fixture.Fixture)
	r.state = StateUninstalled
	if r.observer != nil {
		r.observer.SessionEnded(r.last)
	}

	r.log.Info("session torn down", "routes", r.last.Routes, "intercepted", r.last.Intercepted, "unmatched", r.last.Unmatched)
}

// State returns the lifecycle state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// RequestFiltered reports whether a fixture answered at least one call in
// the most recently torn-down session. Unmatched calls do not count.
func (r *Registry) RequestFiltered() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ended && r.last.Matched() > 0
}

// LastSession returns the summary of the most recently torn-down session.
func (r *Registry) LastSession() (Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.ended
}

// Routes returns the installed route keys, sorted.
func (r *Registry) Routes() []fixture.RouteKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]fixture.RouteKey, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Requests returns the request log.
func (r *Registry) Requests() requestlog.Store {
	return r.requests
}

// Transport returns an http.RoundTripper answering from this Registry.
func (r *Registry) Transport() *engine.Transport {
	return engine.NewTransport(r)
}

// Client returns an http.Client answering from this Registry.
func (r *Registry) Client() *http.Client {
	return r.Transport().Client()
}

// Handler returns an http.Handler answering from this Registry.
func (r *Registry) Handler() *engine.Handler {
	return engine.NewHandler(r, r.log)
}

// prepare validates and copies fixtures, assigning ids where missing.
func prepare(fixtures []*fixture.Fixture) ([]*fixture.Fixture, error) {
	prepared := make([]*fixture.Fixture, 0, len(fixtures))
	for i, f := range fixtures {
		if f == nil {
			return nil, fmt.Errorf("fixture %d: %w", i, fixture.ErrInvalidRoute)
		}
		if err := f.Validate(); err != nil {
			name := f.ID
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("fixture %s: %w", name, err)
		}
		c := f.Clone()
		if c.ID == "" {
			c.ID = id.UUID()
		}
		prepared = append(prepared, c)
	}
	return prepared, nil
}

var _ engine.Interceptor = (*Registry)(nil)
