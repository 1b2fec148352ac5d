package runtime

import (
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
)

// UseRef returns a pointer that is stable across renders of the instance
// rendering in sc. init provides the value on the first render.
func UseRef[T any](sc *scope.Scope, init func() T) *T {
	if v, ok := sc.Slot(); ok {
		return v.(*T)
	}
	p := new(T)
	if init != nil {
		*p = init()
	}
	sc.SetSlot(p)
	return p
}

// IsServerRender reports whether sc belongs to a root mounted with
// WithServerRender.
func IsServerRender(sc *scope.Scope) bool {
	for cur := sc; cur != nil; cur = cur.Parent() {
		if inst := instanceOf(cur); inst != nil {
			return inst.root.opts.serverRender
		}
	}
	return false
}

// SubscriptionState is the lifecycle of one external store subscription.
type SubscriptionState uint8

const (
	Unsubscribed SubscriptionState = iota
	Subscribed
)

// String returns the state name.
func (s SubscriptionState) String() string {
	if s == Subscribed {
		return "SUBSCRIBED"
	}
	return "UNSUBSCRIBED"
}

// externalStore is the per-instance state of UseSyncExternalStore.
type externalStore[T any] struct {
	id          uint64
	inst        *instance
	getSnapshot func() T
	equal       func(a, b T) bool
	snapshot    T
	unsubscribe stream.Unsubscribe
	state       SubscriptionState
}

func (e *externalStore[T]) ID() uint64 {
	return e.id
}

// MarkDirty recomputes the snapshot and marks the instance dirty when it
// changed.
func (e *externalStore[T]) MarkDirty() {
	if e.state != Subscribed {
		return
	}
	next := e.getSnapshot()
	if e.equal(e.snapshot, next) {
		return
	}
	e.snapshot = next
	e.inst.MarkDirty()
}

// UseSyncExternalStore reads a snapshot of an external source and keeps
// the instance rendering in sc subscribed to it.
//
// On the first render the instance subscribes through subscribe; the
// subscription lasts until the instance is disposed. Each notification
// recomputes getSnapshot and re-renders the instance only when equal
// reports a change (stream.DefaultEqual when nil). subscribe is only used
// on the first render.
//
// In a root mounted WithServerRender, getServerSnapshot is returned and
// nothing is subscribed. When sc is not rendered by a Root at all, the
// current snapshot is returned without subscribing.
func UseSyncExternalStore[T any](
	sc *scope.Scope,
	subscribe func(stream.Listener) stream.Unsubscribe,
	getSnapshot func() T,
	getServerSnapshot func() T,
	equal func(a, b T) bool,
) T {
	inst := instanceOf(sc)
	if inst == nil {
		return getSnapshot()
	}
	if IsServerRender(sc) {
		if getServerSnapshot == nil {
			return getSnapshot()
		}
		return getServerSnapshot()
	}
	if equal == nil {
		equal = stream.DefaultEqual[T]
	}

	var es *externalStore[T]
	if v, ok := sc.Slot(); ok {
		es = v.(*externalStore[T])
	} else {
		es = &externalStore[T]{id: stream.NextID(), inst: inst}
		sc.SetSlot(es)
	}

	es.getSnapshot = getSnapshot
	es.equal = equal
	es.snapshot = getSnapshot()

	if es.state == Unsubscribed && es.unsubscribe == nil {
		es.state = Subscribed
		es.unsubscribe = subscribe(es)
		sc.OnCleanup(func() {
			es.state = Unsubscribed
			es.unsubscribe()
		})
	}

	return es.snapshot
}
