package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/streamstore/pkg/runtime"
	"github.com/vango-dev/streamstore/pkg/stream"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "streamstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for update duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
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
		Namespace: "streamstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	storeUpdates   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	storeListeners *prometheus.GaugeVec
	flushes        prometheus.Counter
	flushPasses    prometheus.Histogram
	rendered       prometheus.Counter
	renderErrors   *prometheus.CounterVec
	activeSessions prometheus.Gauge
	framesTotal    *prometheus.CounterVec
}

var (
	_ stream.Observer  = (*Metrics)(nil)
	_ runtime.Observer = (*Metrics)(nil)
)

// New creates and registers the collectors. Registering twice with the
// same registry panics, as with promauto.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		storeUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_updates_total",
			Help:        "Total number of store updates",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_update_duration_seconds",
			Help:        "Time to merge an update and notify listeners",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		storeListeners: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_listeners",
			Help:        "Active listeners by store name",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of runtime flushes that rendered components",
			ConstLabels: config.ConstLabels,
		}),

		flushPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_passes",
			Help:        "Render passes per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),

		rendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "components_rendered_total",
			Help:        "Total number of component renders during flushes",
			ConstLabels: config.ConstLabels,
		}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of failed renders by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open live sessions",
			ConstLabels: config.ConstLabels,
		}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total number of session frames by type and status",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),
	}
}

// StoreUpdated implements stream.Observer.
func (m *Metrics) StoreUpdated(store string, _ int, elapsed time.Duration) {
	m.storeUpdates.WithLabelValues(store).Inc()
	m.updateDuration.WithLabelValues(store).Observe(elapsed.Seconds())
}

// ListenerAdded implements stream.Observer.
func (m *Metrics) ListenerAdded(store string, active int) {
	m.storeListeners.WithLabelValues(store).Set(float64(active))
}

// ListenerRemoved implements stream.Observer.
func (m *Metrics) ListenerRemoved(store string, active int) {
	m.storeListeners.WithLabelValues(store).Set(float64(active))
}

// Flushed implements runtime.Observer.
func (m *Metrics) Flushed(passes, rendered int, _ time.Duration) {
	m.flushes.Inc()
	m.flushPasses.Observe(float64(passes))
	m.rendered.Add(float64(rendered))
}

// RenderFailed implements runtime.Observer.
func (m *Metrics) RenderFailed(code string) {
	if code == "" {
		code = "unknown"
	}
	m.renderErrors.WithLabelValues(code).Inc()
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records the end of a live session.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// FrameHandled records one session frame. status is "ok" or an error code.
func (m *Metrics) FrameHandled(frameType, status string) {
	m.framesTotal.WithLabelValues(frameType, status).Inc()
}
