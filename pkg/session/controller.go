package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/getmockd/interceptd/pkg/fixture"
	"github.com/getmockd/interceptd/pkg/logging"
)

// Hooks is the lifecycle a test harness drives.
type Hooks interface {
	// OnSuiteStart installs process-wide stubs.
	OnSuiteStart(ctx context.Context) error
	// OnRequest installs the routes of one unit of work. It must run
	// before that unit makes its first outbound call.
	OnRequest(ctx context.Context) error
	// OnResponse clears per-call state.
	OnResponse(ctx context.Context) error
	// OnSuiteEnd tears down process-wide stubs.
	OnSuiteEnd(ctx context.Context) error
}

// Stub is an auxiliary test double scoped to the suite.
type Stub interface {
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

// FixtureSource returns the fixtures for the unit of work described by ctx.
type FixtureSource func(ctx context.Context) ([]*fixture.Fixture, error)

// Static returns a FixtureSource that always yields fixtures.
func Static(fixtures ...*fixture.Fixture) FixtureSource {
	return func(context.Context) ([]*fixture.Fixture, error) {
		return fixtures, nil
	}
}

type caseKey struct{}

// WithCase attaches the name of the current test case to ctx.
func WithCase(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, caseKey{}, name)
}

// CaseFrom returns the test case name attached by WithCase.
func CaseFrom(ctx context.Context) string {
	name, _ := ctx.Value(caseKey{}).(string)
	return name
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithStubs scopes auxiliary stubs to the suite. They are installed in order
// and uninstalled in reverse.
func WithStubs(stubs ...Stub) ControllerOption {
	return func(c *Controller) {
		c.stubs = append(c.stubs, stubs...)
	}
}

// WithControllerLogger sets the operational logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = logging.Component(logger, "controller")
	}
}

// Controller implements Hooks over a Registry.
type Controller struct {
	registry *Registry
	source   FixtureSource
	stubs    []Stub
	log      *slog.Logger

	mu        sync.Mutex
	installed []Stub
}

// NewController binds registry to the harness lifecycle. source supplies
// each unit of work's fixtures; nil installs an empty session.
func NewController(registry *Registry, source FixtureSource, opts ...ControllerOption) *Controller {
	if source == nil {
		source = Static()
	}
	c := &Controller{
		registry: registry,
		source:   source,
		log:      logging.Component(nil, "controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the controlled Registry.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// OnSuiteStart installs the auxiliary stubs. If one fails, those already
// installed are uninstalled again. Calling it twice is a no-op.
func (c *Controller) OnSuiteStart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.installed) > 0 {
		return nil
	}
	for _, s := range c.stubs {
		if err := s.Install(ctx); err != nil {
			rollback := c.uninstallLocked(ctx)
			return errors.Join(fmt.Errorf("installing stub %T: %w", s, err), rollback)
		}
		c.installed = append(c.installed, s)
	}
	c.log.InfoContext(ctx, "suite started", "stubs", len(c.installed))
	return nil
}

// OnRequest installs the fixtures supplied for the case in ctx. Any
// registration error fails the case before its first call.
func (c *Controller) OnRequest(ctx context.Context) error {
	fixtures, err := c.source(ctx)
	if err != nil {
		return fmt.Errorf("loading fixtures for case %q: %w", CaseFrom(ctx), err)
	}
	if err := c.registry.Install(fixtures...); err != nil {
		return fmt.Errorf("installing fixtures for case %q: %w", CaseFrom(ctx), err)
	}
	c.log.DebugContext(ctx, "case installed", "case", CaseFrom(ctx), "fixtures", len(fixtures))
	return nil
}

// OnResponse tears the session down. It never fails.
func (c *Controller) OnResponse(ctx context.Context) error {
	c.registry.Teardown()
	c.log.DebugContext(ctx, "case torn down", "case", CaseFrom(ctx), "filtered", c.registry.RequestFiltered())
	return nil
}

// OnSuiteEnd tears down any open session and uninstalls the stubs.
func (c *Controller) OnSuiteEnd(ctx context.Context) error {
	c.registry.Teardown()

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.uninstallLocked(ctx)
	c.log.InfoContext(ctx, "suite ended")
	return err
}

func (c *Controller) uninstallLocked(ctx context.Context) error {
	var errs []error
	for i := len(c.installed) - 1; i >= 0; i-- {
		if err := c.installed[i].Uninstall(ctx); err != nil {
			errs = append(errs, fmt.Errorf("uninstalling stub %T: %w", c.installed[i], err))
		}
	}
	c.installed = nil
	return errors.Join(errs...)
}

// RunCase runs fn between OnRequest and OnResponse. OnResponse runs even
// when fn fails or panics; a panic is returned as an error.
func RunCase(ctx context.Context, h Hooks, name string, fn func(ctx context.Context) error) (err error) {
	ctx = WithCase(ctx, name)
	if err := h.OnRequest(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("case %q panicked: %v\n%s", name, p, debug.Stack())
		}
		err = errors.Join(err, h.OnResponse(ctx))
	}()

	return fn(ctx)
}

var _ Hooks = (*Controller)(nil)
