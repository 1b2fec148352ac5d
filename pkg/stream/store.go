package stream

import (
	"sync"
	"sync/atomic"
	"time"
)

// MergeFunc combines the current state with a partial update and returns
// the new state. It must not mutate current.
type MergeFunc[S any] func(current, partial S) S

// subscription is one entry of a store's listener set.
type subscription struct {
	listener Listener
	active   atomic.Bool
}

// Store is a state container with change notification.
type Store[S any] struct {
	id   uint64
	opts options

	merge MergeFunc[S]

	// state is the current value.
	state S
	mu    sync.RWMutex

	// subs is the listener set, keyed by listener ID.
	subs  map[uint64]*subscription
	subMu sync.Mutex
}

// New creates a store holding initial. merge is used by Update; if nil,
// Update replaces the state with the partial value.
func New[S any](initial S, merge MergeFunc[S], opts ...Option) *Store[S] {
	if merge == nil {
		merge = func(_, partial S) S { return partial }
	}
	return &Store[S]{
		id:    NextID(),
		opts:  buildOptions(opts),
		merge: merge,
		state: initial,
		subs:  make(map[uint64]*subscription),
	}
}

// ID returns the unique identifier of this store.
func (s *Store[S]) ID() uint64 {
	return s.id
}

// Name returns the name the store reports to observers.
func (s *Store[S]) Name() string {
	return s.opts.name
}

// Get returns the current state. It has no side effects.
func (s *Store[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update merges partial into the current state, replaces the state with
// the result and then calls MarkDirty on every subscribed listener, once
// each, in unspecified order. Listeners are notified even if the merge
// changed nothing.
func (s *Store[S]) Update(partial S) {
	start := time.Now()

	s.mu.Lock()
	s.state = s.merge(s.state, partial)
	s.mu.Unlock()

	// Copy the set so listeners may subscribe or unsubscribe while we
	// iterate; the active flag filters out entries removed mid-pass.
	s.subMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.listener.MarkDirty()
		}
	}

	if s.opts.observer != nil {
		s.opts.observer.StoreUpdated(s.opts.name, len(subs), time.Since(start))
	}
}

// Subscribe adds l to the listener set and returns a function that
// removes it. Subscribing a listener whose ID is already present keeps the
// existing entry; either returned Unsubscribe removes it.
func (s *Store[S]) Subscribe(l Listener) Unsubscribe {
	if l == nil {
		return func() {}
	}

	s.subMu.Lock()
	sub, ok := s.subs[l.ID()]
	if !ok {
		sub = &subscription{listener: l}
		sub.active.Store(true)
		s.subs[l.ID()] = sub
	}
	active := len(s.subs)
	s.subMu.Unlock()

	if !ok && s.opts.observer != nil {
		s.opts.observer.ListenerAdded(s.opts.name, active)
	}

	return func() { s.remove(l.ID(), sub) }
}

// SubscribeFunc subscribes a plain callback. Each call creates a distinct
// listener, even for the same function.
func (s *Store[S]) SubscribeFunc(fn SubscribeFunc) Unsubscribe {
	return s.Subscribe(Func(fn))
}

// Listeners returns the number of active listeners.
func (s *Store[S]) Listeners() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// remove deletes sub if it is still the entry registered under id.
func (s *Store[S]) remove(id uint64, sub *subscription) {
	if !sub.active.Swap(false) {
		return
	}

	s.subMu.Lock()
	if s.subs[id] == sub {
		delete(s.subs, id)
	}
	active := len(s.subs)
	s.subMu.Unlock()

	if s.opts.observer != nil {
		s.opts.observer.ListenerRemoved(s.opts.name, active)
	}
}
