// Package metrics provides a reconcile module that exports Prometheus
// metrics for every cycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Config configures the metrics module.
type Config struct {
	// Namespace is the metrics namespace (default: "vpatch").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for cycle duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metrics module.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vpatch",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Module counts lifecycle transitions. It implements every module hook.
//
// Metrics collected:
//   - vpatch_cycles_total: reconcile cycles run
//   - vpatch_nodes_created_total: elements mounted
//   - vpatch_nodes_updated_total: nodes patched with data
//   - vpatch_nodes_destroyed_total: nodes that went through the destroy cascade
//   - vpatch_nodes_removed_total: element subtrees removed
//   - vpatch_cycle_duration_seconds: histogram of cycle wall time
//
// Example:
//
//	p := reconcile.New([]reconcile.Module{metrics.New()})
//	http.Handle("/metrics", promhttp.Handler())
//
// A Module registers its collectors once; create one per registry and use
// Clone for additional Patchers.
type Module struct {
	cycles    prometheus.Counter
	created   prometheus.Counter
	updated   prometheus.Counter
	destroyed prometheus.Counter
	removed   prometheus.Counter
	duration  prometheus.Histogram

	start time.Time
}

// New creates the module and registers its collectors.
func New(opts ...Option) *Module {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Module{
		cycles:    counter("cycles_total", "Total number of reconcile cycles"),
		created:   counter("nodes_created_total", "Total number of elements mounted"),
		updated:   counter("nodes_updated_total", "Total number of nodes patched"),
		destroyed: counter("nodes_destroyed_total", "Total number of nodes destroyed"),
		removed:   counter("nodes_removed_total", "Total number of element subtrees removed"),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycle_duration_seconds",
			Help:        "Reconcile cycle duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// Clone returns a module that reports to the same collectors with its
// own cycle state. Each Patcher running concurrently needs its own clone.
func (m *Module) Clone() *Module {
	c := *m
	c.start = time.Time{}
	return &c
}

// Pre implements reconcile.PreHook.
func (m *Module) Pre() {
	m.start = time.Now()
}

// Create implements reconcile.CreateHook.
func (m *Module) Create(_, _ *vdom.VNode) {
	m.created.Inc()
}

// Update implements reconcile.UpdateHook.
func (m *Module) Update(_, _ *vdom.VNode) {
	m.updated.Inc()
}

// Destroy implements reconcile.DestroyHook.
func (m *Module) Destroy(_ *vdom.VNode) {
	m.destroyed.Inc()
}

// Remove implements reconcile.RemoveHook. It never delays removal.
func (m *Module) Remove(_ *vdom.VNode, done func()) {
	m.removed.Inc()
	done()
}

// Post implements reconcile.PostHook.
func (m *Module) Post() {
	m.cycles.Inc()
	m.duration.Observe(time.Since(m.start).Seconds())
}
