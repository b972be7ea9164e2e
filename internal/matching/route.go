package matching

import (
	"net/url"

	"github.com/getmockd/interceptd/pkg/fixture"
)

// RequestKey derives the route key of an outbound call, using the same
// normalisation as fixture.Route.Key.
func RequestKey(method string, u *url.URL) fixture.RouteKey {
	return fixture.NewRouteKey(method, u.Host, u.EscapedPath())
}

// MatchRoute returns the fixture registered under the call's key.
// Registration replaces on equal keys, so at most one fixture can match.
func MatchRoute(routes map[fixture.RouteKey]*fixture.Fixture, method string, u *url.URL) (*fixture.Fixture, error) {
	key := RequestKey(method, u)
	if f, ok := routes[key]; ok {
		return f, nil
	}
	return nil, &UnmatchedRouteError{
		Method:     key.Method,
		Host:       key.Host,
		Path:       key.Path,
		NearMisses: FindNearMisses(routes, key, MaxNearMisses),
	}
}
