package testing

import (
	"fmt"

	"github.com/getmockd/interceptd/pkg/fixture"
)

// RouteBuilder builds a fixture using a fluent API.
type RouteBuilder struct {
	ic      *Interceptor
	fixture fixture.Fixture
	err     error // First error encountered during building
}

// setError records the first error encountered during building.
func (b *RouteBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *RouteBuilder) Err() error {
	return b.err
}

// ID names the fixture in the request log.
func (b *RouteBuilder) ID(id string) *RouteBuilder {
	b.fixture.ID = id
	return b
}

// Params declares the query parameters the tables are keyed by, in order.
func (b *RouteBuilder) Params(names ...string) *RouteBuilder {
	b.fixture.Rule.Params = append([]string(nil), names...)
	return b
}

// Combined adds a case for requests carrying both parameters.
func (b *RouteBuilder) Combined(first, second string, payload map[string]any) *RouteBuilder {
	if b.fixture.Rule.Combined == nil {
		b.fixture.Rule.Combined = make(map[fixture.Key]fixture.Payload)
	}
	b.fixture.Rule.Combined[fixture.Key{First: first, Second: second}] = payload
	return b
}

// When adds a case for requests carrying only the first parameter.
func (b *RouteBuilder) When(first string, payload map[string]any) *RouteBuilder {
	if b.fixture.Rule.First == nil {
		b.fixture.Rule.First = make(map[string]fixture.Payload)
	}
	b.fixture.Rule.First[first] = payload
	return b
}

// WhenSecond adds a case for requests carrying only the second parameter.
func (b *RouteBuilder) WhenSecond(second string, payload map[string]any) *RouteBuilder {
	if b.fixture.Rule.Second == nil {
		b.fixture.Rule.Second = make(map[string]fixture.Payload)
	}
	b.fixture.Rule.Second[second] = payload
	return b
}

// Default sets the response for requests no case answers.
// Default is the canonical empty-records body with status 200.
func (b *RouteBuilder) Default(status int, body map[string]any) *RouteBuilder {
	b.fixture.Rule.Default = fixture.Response{StatusCode: status, Body: body}
	return b
}

// MergeAt names the default body field payloads merge into. "" merges at
// the top level.
func (b *RouteBuilder) MergeAt(field string) *RouteBuilder {
	b.fixture.Rule.MergeAt = field
	return b
}

// Fixture returns the built fixture without registering it.
func (b *RouteBuilder) Fixture() (*fixture.Fixture, error) {
	if b.err != nil {
		return nil, b.err
	}
	f := b.fixture.Clone()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Register adds the route to the session, failing the test on error.
func (b *RouteBuilder) Register() *fixture.Fixture {
	b.ic.t.Helper()

	f, err := b.Fixture()
	if err != nil {
		b.ic.t.Fatalf("building route %s: %v", describeRoute(&b.fixture), err)
		return nil
	}
	b.ic.Register(f)
	return f
}

func describeRoute(f *fixture.Fixture) string {
	return fmt.Sprintf("%s %s%s", f.Route.Method, f.Route.Host, f.Route.Path)
}
