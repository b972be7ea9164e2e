package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/interceptd/pkg/docstore"
	"github.com/getmockd/interceptd/pkg/fixture"
	"github.com/getmockd/interceptd/pkg/logging"
)

type recordingStub struct {
	name       string
	events     *[]string
	installErr error
}

func (s *recordingStub) Install(context.Context) error {
	*s.events = append(*s.events, "install "+s.name)
	return s.installErr
}

func (s *recordingStub) Uninstall(context.Context) error {
	*s.events = append(*s.events, "uninstall "+s.name)
	return nil
}

func newController(t *testing.T, source FixtureSource, opts ...ControllerOption) *Controller {
	t.Helper()
	logger := logging.NewTestLogger(t, logging.LevelDebug)
	opts = append([]ControllerOption{WithControllerLogger(logger)}, opts...)
	return NewController(NewRegistry(WithLogger(logger)), source, opts...)
}

func TestController_Lifecycle(t *testing.T) {
	ctx := context.Background()
	stub := docstore.NewStub(logging.NewTestLogger(t, logging.LevelDebug))
	c := newController(t, Static(statsFixture()), WithStubs(stub))

	require.NoError(t, c.OnSuiteStart(ctx))
	assert.True(t, stub.Installed())

	err := RunCase(ctx, c, "stats", func(ctx context.Context) error {
		assert.Equal(t, "stats", CaseFrom(ctx))
		assert.Equal(t, StateInstalled, c.Registry().State())

		resp, err := c.Registry().Client().Get("https://genes.example.org/api/stats?gene=TP53")
		if err != nil {
			return err
		}
		resp.Body.Close()

		_, err = stub.InsertOne(ctx, "results", map[string]any{"gene": "TP53"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, StateUninstalled, c.Registry().State())
	assert.True(t, c.Registry().RequestFiltered())
	assert.Len(t, stub.Writes(), 1)

	require.NoError(t, c.OnSuiteEnd(ctx))
	assert.False(t, stub.Installed())
	assert.Empty(t, stub.Writes())
}

func TestController_StubOrder(t *testing.T) {
	ctx := context.Background()
	var events []string
	a := &recordingStub{name: "a", events: &events}
	b := &recordingStub{name: "b", events: &events}
	c := newController(t, nil, WithStubs(a, b))

	require.NoError(t, c.OnSuiteStart(ctx))
	require.NoError(t, c.OnSuiteStart(ctx))
	require.NoError(t, c.OnSuiteEnd(ctx))

	assert.Equal(t, []string{"install a", "install b", "uninstall b", "uninstall a"}, events)
}

func TestController_StubInstallFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	var events []string
	boom := errors.New("boom")
	a := &recordingStub{name: "a", events: &events}
	b := &recordingStub{name: "b", events: &events, installErr: boom}
	c := newController(t, nil, WithStubs(a, b))

	err := c.OnSuiteStart(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"install a", "install b", "uninstall a"}, events)
}

func TestController_InvalidFixtureFailsCase(t *testing.T) {
	bad := statsFixture()
	bad.Route.Path = "stats"
	c := newController(t, Static(bad))

	ran := false
	err := RunCase(context.Background(), c, "bad", func(context.Context) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, fixture.ErrInvalidRoute)
	assert.Contains(t, err.Error(), `case "bad"`)
	assert.False(t, ran, "case body must not run")
	assert.Equal(t, StateUninstalled, c.Registry().State())
}

func TestController_SourceError(t *testing.T) {
	boom := errors.New("no fixtures")
	c := newController(t, func(context.Context) ([]*fixture.Fixture, error) {
		return nil, boom
	})
	assert.ErrorIs(t, c.OnRequest(WithCase(context.Background(), "x")), boom)
}

func TestController_SourceSeesCase(t *testing.T) {
	byCase := map[string][]*fixture.Fixture{
		"oov":   {oovFixture()},
		"stats": {statsFixture()},
	}
	c := newController(t, func(ctx context.Context) ([]*fixture.Fixture, error) {
		return byCase[CaseFrom(ctx)], nil
	})

	for name := range byCase {
		err := RunCase(context.Background(), c, name, func(context.Context) error {
			routes := c.Registry().Routes()
			require.Len(t, routes, 1)
			assert.Equal(t, byCase[name][0].Key(), routes[0])
			return nil
		})
		require.NoError(t, err)
	}
}

func TestRunCase_TearsDownOnError(t *testing.T) {
	c := newController(t, Static(statsFixture()))
	boom := errors.New("case failed")

	err := RunCase(context.Background(), c, "failing", func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUninstalled, c.Registry().State())
}

func TestRunCase_RecoversPanic(t *testing.T) {
	c := newController(t, Static(statsFixture()))

	err := RunCase(context.Background(), c, "panicking", func(context.Context) error {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, StateUninstalled, c.Registry().State())

	// The next case installs cleanly.
	require.NoError(t, RunCase(context.Background(), c, "next", func(context.Context) error { return nil }))
}

func TestRunCase_UnmatchedCallFailsCase(t *testing.T) {
	c := newController(t, Static(statsFixture()))

	err := RunCase(context.Background(), c, "leaky", func(context.Context) error {
		resp, err := c.Registry().Client().Get("https://unknown.example.org/")
		if resp != nil {
			resp.Body.Close()
		}
		return err
	})
	require.Error(t, err)
	summary, _ := c.Registry().LastSession()
	assert.Equal(t, 1, summary.Unmatched)
}

func TestController_ServesOverHandler(t *testing.T) {
	c := newController(t, Static(oovFixture()))
	require.NoError(t, c.OnRequest(context.Background()))
	defer c.OnResponse(context.Background())

	var _ http.Handler = c.Registry().Handler()
}
