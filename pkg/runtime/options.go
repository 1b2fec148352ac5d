package runtime

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxRenderPasses bounds the number of passes a single Flush makes.
const DefaultMaxRenderPasses = 100

// Observer receives render lifecycle notifications.
type Observer interface {
	Flushed(passes, rendered int, elapsed time.Duration)
	RenderFailed(code string)
}

// Option configures a Root.
type Option func(*options)

type options struct {
	serverRender    bool
	logger          *slog.Logger
	observer        Observer
	tracer          trace.Tracer
	maxRenderPasses int
}

// WithServerRender renders with server snapshots and no subscriptions.
func WithServerRender() Option {
	return func(o *options) {
		o.serverRender = true
	}
}

// WithLogger sets the logger used for render errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver attaches a render observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithTracer sets the tracer used for flush spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMaxRenderPasses bounds the passes of one Flush. Values below 1
// select DefaultMaxRenderPasses.
func WithMaxRenderPasses(n int) Option {
	return func(o *options) {
		o.maxRenderPasses = n
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "runtime")
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("github.com/vango-dev/streamstore/pkg/runtime")
	}
	if o.maxRenderPasses < 1 {
		o.maxRenderPasses = DefaultMaxRenderPasses
	}
	return o
}
