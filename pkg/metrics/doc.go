// Package metrics provides Prometheus-compatible metrics for interceptd.
//
// This package implements the Prometheus text exposition format (text/plain;
// version=0.0.4) for counters and gauges. A Collector turns session events
// into the interceptd_* series:
//
//	interceptd_requests_total{branch,hit,matched}  intercepted calls
//	interceptd_unmatched_total                    calls with no route
//	interceptd_routes                             routes currently installed
//	interceptd_sessions_total                     sessions torn down
//
// Serve them with Registry.Handler:
//
//	reg := metrics.NewRegistry()
//	collector := metrics.NewCollector(reg)
//	registry := session.NewRegistry(session.WithObserver(collector))
//	http.Handle("/metrics", reg.Handler())
package metrics
