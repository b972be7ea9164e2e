package matching

import (
	"sort"

	"github.com/getmockd/interceptd/pkg/fixture"
)

// MaxNearMisses bounds the near misses attached to an unmatched error.
const MaxNearMisses = 3

// Near-miss reasons.
const (
	ReasonMethod = "method differs"
	ReasonPath   = "path differs"
	ReasonHost   = "host differs"
)

// NearMiss is a registered route that shares part of a call's key.
type NearMiss struct {
	Route  fixture.RouteKey `json:"route"`
	Reason string           `json:"reason"`
	score  int
}

// FindNearMisses lists registered routes differing from key in exactly one
// component, best first. Routes differing in more than one are ignored.
func FindNearMisses(routes map[fixture.RouteKey]*fixture.Fixture, key fixture.RouteKey, limit int) []NearMiss {
	var misses []NearMiss
	for k := range routes {
		sameMethod := k.Method == key.Method
		sameHost := k.Host == key.Host
		samePath := k.Path == key.Path

		switch {
		case sameHost && samePath && !sameMethod:
			misses = append(misses, NearMiss{Route: k, Reason: ReasonMethod, score: 3})
		case sameHost && sameMethod && !samePath:
			misses = append(misses, NearMiss{Route: k, Reason: ReasonPath, score: 2})
		case samePath && sameMethod && !sameHost:
			misses = append(misses, NearMiss{Route: k, Reason: ReasonHost, score: 1})
		}
	}

	sort.Slice(misses, func(i, j int) bool {
		if misses[i].score != misses[j].score {
			return misses[i].score > misses[j].score
		}
		return misses[i].Route.String() < misses[j].Route.String()
	})

	if limit > 0 && len(misses) > limit {
		misses = misses[:limit]
	}
	return misses
}
