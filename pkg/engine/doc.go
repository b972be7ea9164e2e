// Package engine resolves intercepted calls to canned responses and plugs
// the result into net/http.
//
//	┌────────────┐  RoundTrip   ┌───────────┐  Intercept  ┌──────────────────┐
//	│ http.Client├─────────────▶│ Transport ├────────────▶│ Interceptor      │
//	└────────────┘              └───────────┘             │ (session.Registry)│
//	┌────────────┐  ServeHTTP   ┌───────────┐             │   MatchRoute     │
//	│ HTTP peer  ├─────────────▶│ Handler   ├────────────▶│   Resolver       │
//	└────────────┘              └───────────┘             └──────────────────┘
//
// The package provides:
//   - Resolver: evaluates a fixture's Rule against a query string and merges
//     the matched payload into the default body
//   - Transport: an http.RoundTripper that never touches the network
//   - Handler: an http.Handler serving the same responses to real clients
//
// An unmatched route is a transport failure in both adapters: Transport
// returns the error from RoundTrip, Handler aborts the connection.
package engine
