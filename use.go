package streamstore

import (
	"github.com/vango-dev/streamstore/pkg/runtime"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
)

// Use reads selector(state) from the store of the nearest container of b
// above sc and returns it with the store's update function.
//
// The component rendering in sc subscribes to the store on its first
// render and re-renders when a later update changes the selected value, as
// compared by stream.DefaultEqual. The subscription ends when the
// component is disposed.
//
// Use is a hook: call it unconditionally during render. It panics with a
// *MissingContainerError when there is no container.
func Use[S, T any](b *Binding[S], sc *scope.Scope, selector func(S) T) (T, stream.UpdateFunc[S]) {
	return UseFunc(b, sc, selector, nil)
}

// UseFunc is Use with a custom equality for the selected value. A nil
// equal selects stream.DefaultEqual.
func UseFunc[S, T any](b *Binding[S], sc *scope.Scope, selector func(S) T, equal func(a, b T) bool) (T, stream.UpdateFunc[S]) {
	v, update, err := use(b, sc, selector, equal)
	if err != nil {
		panic(err)
	}
	return v, update
}

// TryUse is Use returning the missing container error instead of
// panicking.
func TryUse[S, T any](b *Binding[S], sc *scope.Scope, selector func(S) T) (T, stream.UpdateFunc[S], error) {
	return use(b, sc, selector, nil)
}

func use[S, T any](b *Binding[S], sc *scope.Scope, selector func(S) T, equal func(a, b T) bool) (T, stream.UpdateFunc[S], error) {
	h, err := b.lookup(sc)
	if err != nil {
		var zero T
		return zero, nil, err
	}

	v := runtime.UseSyncExternalStore(sc,
		h.store.Subscribe,
		func() T { return selector(h.store.Get()) },
		func() T { return selector(h.initial) },
		equal,
	)
	return v, h.store.Update, nil
}
