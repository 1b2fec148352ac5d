package stream

// Listener is anything that can be notified when a store's state changes.
type Listener interface {
	// MarkDirty notifies the listener that the store was updated.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used to de-duplicate subscriptions.
	ID() uint64
}

// SubscribeFunc is the zero-argument callback form of a listener.
type SubscribeFunc func()

// Unsubscribe removes the subscription it was returned for.
// Calling it more than once is a no-op.
type Unsubscribe func()

// UpdateFunc merges a partial state into a store.
type UpdateFunc[S any] func(partial S)

// funcListener adapts a SubscribeFunc to Listener.
type funcListener struct {
	id uint64
	fn SubscribeFunc
}

func (f *funcListener) MarkDirty() { f.fn() }
func (f *funcListener) ID() uint64 { return f.id }

// Func wraps fn in a Listener with a fresh ID. Wrap a callback once and
// reuse the Listener when de-duplication across Subscribe calls matters.
func Func(fn SubscribeFunc) Listener {
	return &funcListener{id: NextID(), fn: fn}
}
