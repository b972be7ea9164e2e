package matching

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnmatchedRoute is returned when no registered route matches a call.
var ErrUnmatchedRoute = errors.New("unmatched request")

// UnmatchedRouteError describes a call that matched no registered route.
type UnmatchedRouteError struct {
	Method     string
	Host       string
	Path       string
	NearMisses []NearMiss
}

func (e *UnmatchedRouteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s%s", ErrUnmatchedRoute, e.Method, e.Host, e.Path)
	if len(e.NearMisses) > 0 {
		b.WriteString(" (closest: ")
		for i, nm := range e.NearMisses {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s [%s]", nm.Route, nm.Reason)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *UnmatchedRouteError) Unwrap() error {
	return ErrUnmatchedRoute
}
