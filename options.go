package streamstore

import "github.com/vango-dev/streamstore/pkg/stream"

// Option configures a Binding.
type Option func(*options)

type options struct {
	name     string
	observer stream.Observer
}

// WithName names the binding. The name appears in errors and is the store
// name reported to observers. Defaults to "store".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver attaches obs to every store the binding creates.
func WithObserver(obs stream.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(opts []Option) options {
	o := options{name: "store"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
