package config

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/getmockd/interceptd/pkg/fixture"
)

// FormatVersion is the fixture file version Save writes.
const FormatVersion = "1"

// File is the on-disk form of a fixture file.
type File struct {
	Version  string        `json:"version,omitempty" yaml:"version,omitempty"`
	Fixtures []FixtureSpec `json:"fixtures" yaml:"fixtures"`
}

// FixtureSpec is the on-disk form of one fixture.
type FixtureSpec struct {
	ID       string                     `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string                     `json:"name,omitempty" yaml:"name,omitempty"`
	Route    RouteSpec                  `json:"route" yaml:"route"`
	Params   []string                   `json:"params,omitempty" yaml:"params,omitempty"`
	Combined []CombinedCase             `json:"combined,omitempty" yaml:"combined,omitempty"`
	First    map[string]fixture.Payload `json:"first,omitempty" yaml:"first,omitempty"`
	Second   map[string]fixture.Payload `json:"second,omitempty" yaml:"second,omitempty"`
	Default  *fixture.Response          `json:"default,omitempty" yaml:"default,omitempty"`

	// MergeAt is a pointer so an explicit "" (merge at the top level) can
	// be told apart from an omitted field.
	MergeAt *string `json:"mergeAt,omitempty" yaml:"mergeAt,omitempty"`
}

// RouteSpec names the route either by URL or by host and path.
type RouteSpec struct {
	Method string `json:"method" yaml:"method"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Host   string `json:"host,omitempty" yaml:"host,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// CombinedCase is one entry of a combined table.
type CombinedCase struct {
	First   string          `json:"first" yaml:"first"`
	Second  string          `json:"second" yaml:"second"`
	Payload fixture.Payload `json:"payload" yaml:"payload"`
}

// Route converts the route section to a fixture.Route.
func (r RouteSpec) Route() (fixture.Route, error) {
	route := fixture.Route{Method: r.Method, Host: r.Host, Path: r.Path}
	if r.URL == "" {
		return route, nil
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return fixture.Route{}, fmt.Errorf("parsing route url: %w", err)
	}
	if u.RawQuery != "" {
		return fixture.Route{}, fmt.Errorf("route url %q must not carry a query; declare params instead", r.URL)
	}
	host, err := fixture.NormalizeHost(u.Host, u.Scheme)
	if err != nil {
		return fixture.Route{}, err
	}
	route.Host = host
	route.Path = u.EscapedPath()
	if route.Path == "" {
		route.Path = "/"
	}
	return route, nil
}

// Fixture applies file defaults and returns a validated fixture.Fixture.
func (s *FixtureSpec) Fixture() (*fixture.Fixture, error) {
	route, err := s.Route.Route()
	if err != nil {
		return nil, err
	}

	rule := fixture.Rule{
		Params:  s.Params,
		First:   s.First,
		Second:  s.Second,
		MergeAt: fixture.DefaultMergeAt,
	}
	if s.MergeAt != nil {
		rule.MergeAt = *s.MergeAt
	}
	if s.Default != nil {
		rule.Default = *s.Default
	} else {
		rule.Default = fixture.EmptyRecords()
	}

	if len(s.Combined) > 0 {
		rule.Combined = make(map[fixture.Key]fixture.Payload, len(s.Combined))
		for i, c := range s.Combined {
			key := fixture.Key{First: c.First, Second: c.Second}
			if _, dup := rule.Combined[key]; dup {
				return nil, &fixture.ValidationError{
					Field:   fmt.Sprintf("combined[%d]", i),
					Message: fmt.Sprintf("duplicate case (%q, %q)", c.First, c.Second),
					Err:     fixture.ErrInvalidRule,
				}
			}
			rule.Combined[key] = c.Payload
		}
	}

	f := &fixture.Fixture{ID: s.ID, Name: s.Name, Route: route, Rule: rule}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// FromFixture converts a fixture back to its on-disk form.
func FromFixture(f *fixture.Fixture) FixtureSpec {
	mergeAt := f.Rule.MergeAt
	def := f.Rule.Default
	spec := FixtureSpec{
		ID:      f.ID,
		Name:    f.Name,
		Route:   RouteSpec{Method: f.Route.Method, Host: f.Route.Host, Path: f.Route.Path},
		Params:  f.Rule.Params,
		First:   f.Rule.First,
		Second:  f.Rule.Second,
		Default: &def,
		MergeAt: &mergeAt,
	}
	for k, p := range f.Rule.Combined {
		spec.Combined = append(spec.Combined, CombinedCase{First: k.First, Second: k.Second, Payload: p})
	}
	sort.Slice(spec.Combined, func(i, j int) bool {
		a, b := spec.Combined[i], spec.Combined[j]
		if a.First != b.First {
			return a.First < b.First
		}
		return a.Second < b.Second
	})
	return spec
}
