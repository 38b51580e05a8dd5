package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "tablenode").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
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
		Namespace: "tablenode",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the reconciler's Prometheus metrics.
type Collector struct {
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	patchOps       *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	poolAcquires   *prometheus.CounterVec
	poolEvictions  *prometheus.CounterVec
	poolRetired    *prometheus.GaugeVec
	pendingExits   prometheus.Gauge
}

// New creates a Collector and registers its metrics.
// Registering twice on the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Collector{
		renders: counter("renders_total", "Total number of render ticks by status", "status"),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render tick duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		patchOps:      counter("patch_ops_total", "Total number of applied patch ops by op", "op"),
		mutations:     counter("mutations_total", "Total number of staged state mutations by status", "status"),
		poolAcquires:  counter("pool_acquires_total", "Total number of pool acquisitions by view type and result", "type", "result"),
		poolEvictions: counter("pool_evictions_total", "Total number of retired views destroyed for exceeding a cap", "type"),

		poolRetired: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pool_retired_views",
			Help:        "Number of retired views held by the pool",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		pendingExits: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_exits",
			Help:        "Number of removed views waiting on an exit animation",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRender records a render tick.
func (c *Collector) ObserveRender(status string, d time.Duration) {
	if c == nil {
		return
	}
	c.renders.WithLabelValues(status).Inc()
	c.renderDuration.Observe(d.Seconds())
}

// AddPatchOps records applied ops of one kind.
func (c *Collector) AddPatchOps(op string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.patchOps.WithLabelValues(op).Add(float64(n))
}

// ObserveMutation records the outcome of a staged mutation.
func (c *Collector) ObserveMutation(status string) {
	if c == nil {
		return
	}
	c.mutations.WithLabelValues(status).Inc()
}

// ObservePoolAcquire records a pool acquisition.
func (c *Collector) ObservePoolAcquire(typ string, reused bool) {
	if c == nil {
		return
	}
	result := "created"
	if reused {
		result = "reused"
	}
	c.poolAcquires.WithLabelValues(typ, result).Inc()
}

// ObservePoolEviction records an evicted retired view.
func (c *Collector) ObservePoolEviction(typ string) {
	if c == nil {
		return
	}
	c.poolEvictions.WithLabelValues(typ).Inc()
}

// SetPoolRetired sets the retired-view gauge for a type.
func (c *Collector) SetPoolRetired(typ string, n int) {
	if c == nil {
		return
	}
	c.poolRetired.WithLabelValues(typ).Set(float64(n))
}

// SetPendingExits sets the pending exit animation gauge.
func (c *Collector) SetPendingExits(n int) {
	if c == nil {
		return
	}
	c.pendingExits.Set(float64(n))
}
