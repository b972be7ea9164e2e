package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// ErrLabelCountMismatch is returned when label values do not match the
// declared label names.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when a counter would decrease.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// MetricType is the Prometheus metric type.
type MetricType string

// Metric types.
const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Metric is a collectable series family.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Collect() []Sample
}

// Sample is one exposed value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// family holds the labelled values of one metric.
type family struct {
	name       string
	help       string
	labelNames []string

	mu     sync.RWMutex
	values map[string]*labelled
}

type labelled struct {
	labels []string
	value  float64
}

func (f *family) init(name, help string, labelNames []string) {
	f.name = name
	f.help = help
	f.labelNames = labelNames
	f.values = make(map[string]*labelled)
}

func (f *family) add(values []string, delta float64) error {
	if len(values) != len(f.labelNames) {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrLabelCountMismatch, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		v = &labelled{labels: append([]string(nil), values...)}
		f.values[key] = v
	}
	v.value += delta
	return nil
}

func (f *family) set(values []string, value float64) error {
	if len(values) != len(f.labelNames) {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrLabelCountMismatch, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		v = &labelled{labels: append([]string(nil), values...)}
		f.values[key] = v
	}
	v.value = value
	return nil
}

func (f *family) collect() []Sample {
	f.mu.RLock()
	defer f.mu.RUnlock()

	samples := make([]Sample, 0, len(f.values))
	for _, v := range f.values {
		labels := make(map[string]string, len(f.labelNames))
		for i, n := range f.labelNames {
			labels[n] = v.labels[i]
		}
		samples = append(samples, Sample{Name: f.name, Labels: labels, Value: v.value})
	}
	sort.Slice(samples, func(i, j int) bool {
		return formatLabels(samples[i].Labels) < formatLabels(samples[j].Labels)
	})
	return samples
}

// Counter is a monotonically increasing metric.
type Counter struct {
	family
}

func (c *Counter) Name() string      { return c.name }
func (c *Counter) Help() string      { return c.help }
func (c *Counter) Type() MetricType  { return MetricTypeCounter }
func (c *Counter) Collect() []Sample { return c.collect() }

// Add increases the series for values by delta.
func (c *Counter) Add(delta float64, values ...string) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	return c.add(values, delta)
}

// Inc increases the series for values by one.
func (c *Counter) Inc(values ...string) error {
	return c.add(values, 1)
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	family
}

func (g *Gauge) Name() string      { return g.name }
func (g *Gauge) Help() string      { return g.help }
func (g *Gauge) Type() MetricType  { return MetricTypeGauge }
func (g *Gauge) Collect() []Sample { return g.collect() }

// Set sets the series for values.
func (g *Gauge) Set(value float64, values ...string) error {
	return g.set(values, value)
}

// Add changes the series for values by delta.
func (g *Gauge) Add(delta float64, values ...string) error {
	return g.add(values, delta)
}

// Registry holds metrics for exposition.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter registers a counter. It panics on a duplicate name.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := &Counter{}
	c.init(name, help, labels)
	r.register(c)
	return c
}

// NewGauge registers a gauge. It panics on a duplicate name.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := &Gauge{}
	g.init(name, help, labels)
	r.register(g)
	return g
}

func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.names[m.Name()]; dup {
		panic(fmt.Sprintf("duplicate metric name: %s", m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// Handler returns an http.Handler that serves the metrics in Prometheus
// text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Write(w)
	})
}

// Write writes every metric with samples to w.
func (r *Registry) Write(w io.Writer) {
	r.mu.RLock()
	metrics := make([]Metric, len(r.metrics))
	copy(metrics, r.metrics)
	r.mu.RUnlock()

	for _, m := range metrics {
		samples := m.Collect()
		if len(samples) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", m.Name(), escapeHelp(m.Help()))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", m.Name(), m.Type())
		for _, s := range samples {
			if len(s.Labels) == 0 {
				_, _ = fmt.Fprintf(w, "%s %s\n", s.Name, formatFloat(s.Value))
				continue
			}
			_, _ = fmt.Fprintf(w, "%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value))
		}
	}
}

// formatLabels formats labels as key="value",key="value", sorted by key.
func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + escapeLabelValue(labels[k]) + `"`
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}

func escapeHelp(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(s)
}

func escapeLabelValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
}
