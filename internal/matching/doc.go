// Package matching provides request matching for the interception registry.
//
// Matching happens in two stages:
//
//   - Route matching: the method, host and path of an outbound call select
//     exactly one registered fixture. Hosts are normalised, paths compare
//     exactly. No match is an error (ErrUnmatchedRoute) that callers must
//     surface as a transport failure.
//   - Predicate evaluation: the query string of the call is reduced to the
//     parameters the fixture's Rule declares, and the Rule's tables are
//     consulted in a fixed order. A miss here is not an error; it selects
//     the Rule's default response.
//
// Both stages are pure functions of their inputs.
package matching
