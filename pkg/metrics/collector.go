package metrics

import (
	"strconv"

	"github.com/getmockd/interceptd/pkg/requestlog"
	"github.com/getmockd/interceptd/pkg/session"
)

// Collector records session events as interceptd_* metrics. It implements
// session.Observer.
type Collector struct {
	requests  *Counter
	unmatched *Counter
	routes    *Gauge
	sessions  *Counter
}

// NewCollector registers the interceptd metrics in reg.
func NewCollector(reg *Registry) *Collector {
	return &Collector{
		requests:  reg.NewCounter("interceptd_requests_total", "Intercepted calls by predicate branch and outcome.", "branch", "hit", "matched"),
		unmatched: reg.NewCounter("interceptd_unmatched_total", "Intercepted calls that matched no route."),
		routes:    reg.NewGauge("interceptd_routes", "Routes currently installed."),
		sessions:  reg.NewCounter("interceptd_sessions_total", "Sessions torn down, by whether any call was intercepted.", "filtered"),
	}
}

// RoutesChanged implements session.Observer.
func (c *Collector) RoutesChanged(n int) {
	_ = c.routes.Set(float64(n))
}

// RequestIntercepted implements session.Observer.
func (c *Collector) RequestIntercepted(e *requestlog.Entry) {
	branch := e.Branch
	if branch == "" {
		branch = "none"
	}
	_ = c.requests.Inc(branch, strconv.FormatBool(e.Hit), strconv.FormatBool(e.Matched))
	if !e.Matched && e.FixtureID == "" {
		_ = c.unmatched.Inc()
	}
}

// SessionEnded implements session.Observer.
func (c *Collector) SessionEnded(s session.Summary) {
	_ = c.sessions.Inc(strconv.FormatBool(s.Matched() > 0))
	_ = c.routes.Set(0)
}

var _ session.Observer = (*Collector)(nil)
