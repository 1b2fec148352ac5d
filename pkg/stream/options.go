package stream

import "time"

// Observer receives store lifecycle notifications.
// Implementations must be cheap; they run inline with Update and Subscribe.
type Observer interface {
	StoreUpdated(store string, listeners int, elapsed time.Duration)
	ListenerAdded(store string, active int)
	ListenerRemoved(store string, active int)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	name     string
	observer Observer
}

// WithName sets the store name reported to observers.
// Defaults to "store".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver attaches an observer to the store.
func WithObserver(obs Observer) Option {
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
