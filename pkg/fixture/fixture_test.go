package fixture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		scheme string
		want   string
	}{
		{"lower-cased", "API.Example.ORG", "https", "api.example.org"},
		{"default https port dropped", "api.example.org:443", "https", "api.example.org"},
		{"default http port dropped", "api.example.org:80", "http", "api.example.org"},
		{"https port kept for http", "api.example.org:443", "http", "api.example.org:443"},
		{"custom port kept", "localhost:8080", "http", "localhost:8080"},
		{"no scheme drops both defaults", "api.example.org:80", "", "api.example.org"},
		{"idna", "bücher.example", "https", "xn--bcher-kva.example"},
		{"ipv4", "127.0.0.1:9000", "http", "127.0.0.1:9000"},
		{"ipv6 with port", "[::1]:9000", "http", "[::1]:9000"},
		{"ipv6 default port", "[::1]:80", "http", "[::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHost(tt.host, tt.scheme)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeHost_Empty(t *testing.T) {
	_, err := NormalizeHost("  ", "http")
	assert.Error(t, err)
}

func TestRouteKey(t *testing.T) {
	a := Route{Method: "get", Host: "Genes.Example.org:443", Path: "/api/stats"}
	b := Route{Method: "GET", Host: "genes.example.org", Path: "/api/stats"}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "GET genes.example.org/api/stats", b.Key().String())

	c := Route{Method: "GET", Host: "genes.example.org", Path: "/api/stats/"}
	assert.NotEqual(t, b.Key(), c.Key(), "paths match exactly, trailing slash included")
}

func TestNewRouteKey(t *testing.T) {
	tests := []struct {
		name string
		host string
		path string
		want RouteKey
	}{
		{"https port dropped", "localhost:443", "/x", RouteKey{Method: "GET", Host: "localhost", Path: "/x"}},
		{"http port dropped", "localhost:80", "/x", RouteKey{Method: "GET", Host: "localhost", Path: "/x"}},
		{"custom port kept", "localhost:8443", "/x", RouteKey{Method: "GET", Host: "localhost:8443", Path: "/x"}},
		{"escaped path decoded", "db.example.org", "/insert%20one", RouteKey{Method: "GET", Host: "db.example.org", Path: "/insert one"}},
		{"empty path is root", "db.example.org", "", RouteKey{Method: "GET", Host: "db.example.org", Path: "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRouteKey("get", tt.host, tt.path))
		})
	}

	escaped := Route{Method: "POST", Host: "db.example.org", Path: "/insert%20one"}
	plain := Route{Method: "POST", Host: "db.example.org", Path: "/insert one"}
	assert.Equal(t, escaped.Key(), plain.Key())
}

func TestFixtureClone(t *testing.T) {
	f := &Fixture{
		ID:    "genes",
		Route: Route{Method: "GET", Host: "genes.example.org", Path: "/api/stats"},
		Rule: Rule{
			Params:   []string{"gene", "study"},
			Combined: map[Key]Payload{{First: "TP53", Second: "BRCA"}: {"n": 1}},
			First:    map[string]Payload{"TP53": {"n": 2}},
			Default:  EmptyRecords(),
			MergeAt:  DefaultMergeAt,
		},
	}
	c := f.Clone()
	assert.Equal(t, f, c)

	f.Rule.Params[0] = "other"
	f.Rule.Combined[Key{First: "TP53", Second: "BRCA"}]["n"] = 10
	f.Rule.First["KRAS"] = Payload{"n": 3}
	f.Rule.Default.Body[DefaultMergeAt].(map[string]any)["records"] = nil

	assert.Equal(t, []string{"gene", "study"}, c.Rule.Params)
	assert.Equal(t, 1, c.Rule.Combined[Key{First: "TP53", Second: "BRCA"}]["n"])
	assert.NotContains(t, c.Rule.First, "KRAS")
	assert.Equal(t, EmptyRecords(), c.Rule.Default)
}

func TestRouteValidate(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		field string
	}{
		{"empty method", Route{Host: "h", Path: "/"}, "route.method"},
		{"bad method", Route{Method: "GE T", Host: "h", Path: "/"}, "route.method"},
		{"empty host", Route{Method: "GET", Path: "/"}, "route.host"},
		{"host with path", Route{Method: "GET", Host: "h/x", Path: "/"}, "route.host"},
		{"relative path", Route{Method: "GET", Host: "h", Path: "api"}, "route.path"},
		{"wildcard path", Route{Method: "GET", Host: "h", Path: "/api/*"}, "route.path"},
		{"named param path", Route{Method: "GET", Host: "h", Path: "/api/{id}"}, "route.path"},
		{"query in path", Route{Method: "GET", Host: "h", Path: "/api?x=1"}, "route.path"},
		{"bad escape", Route{Method: "GET", Host: "h", Path: "/api/%zz"}, "route.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.route.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRoute))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	ok := Route{Method: "POST", Host: "db.example.org", Path: "/v1/insert"}
	assert.NoError(t, ok.Validate())
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		ok   bool
	}{
		{"no params", Rule{Default: EmptyRecords()}, true},
		{"one param", Rule{Params: []string{"query"}, First: map[string]Payload{"a": {}}}, true},
		{"two params", Rule{
			Params:   []string{"gene", "study"},
			Combined: map[Key]Payload{{First: "a", Second: "b"}: {}},
			First:    map[string]Payload{"a": {}},
			Second:   map[string]Payload{"b": {}},
		}, true},
		{"too many params", Rule{Params: []string{"a", "b", "c"}}, false},
		{"empty param name", Rule{Params: []string{""}}, false},
		{"duplicate param", Rule{Params: []string{"a", "a"}}, false},
		{"combined with one param", Rule{Params: []string{"a"}, Combined: map[Key]Payload{{}: {}}}, false},
		{"first without params", Rule{First: map[string]Payload{"a": {}}}, false},
		{"second with one param", Rule{Params: []string{"a"}, Second: map[string]Payload{"b": {}}}, false},
		{"bad status", Rule{Default: Response{StatusCode: 42}}, false},
		{"merge target not an object", Rule{
			MergeAt: "data",
			Default: Response{Body: map[string]any{"data": "nope"}},
		}, false},
		{"merge target absent", Rule{MergeAt: "data", Default: Response{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestResponseStatus(t *testing.T) {
	assert.Equal(t, 200, Response{}.Status())
	assert.Equal(t, 404, Response{StatusCode: 404}.Status())
	assert.Equal(t, 200, EmptyRecords().Status())
}
