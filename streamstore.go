package streamstore

import (
	"github.com/vango-dev/streamstore/pkg/runtime"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

// Record is an open-ended key/value state. See stream.Record.
type Record = stream.Record

// SubscribeFunc is the callback form of a store listener.
type SubscribeFunc = stream.SubscribeFunc

// Listener is a store listener with identity.
type Listener = stream.Listener

// Field returns a selector reading one field of a Record.
func Field[T any](key string) func(Record) T {
	return stream.Field[T](key)
}

// Binding is a container/accessor pair for stores of state S. Create one
// per kind of store, usually as a package-level variable.
type Binding[S any] struct {
	name    string
	initial S
	merge   stream.MergeFunc[S]
	key     *scope.Key[*handle[S]]
	opts    []stream.Option
}

// handle is what a container provides to its subtree.
type handle[S any] struct {
	store   *stream.Store[S]
	initial S
}

// Create returns a Binding whose containers create stores holding initial
// and merging updates with merge. A nil merge replaces the state on every
// update.
func Create[S any](initial S, merge stream.MergeFunc[S], opts ...Option) *Binding[S] {
	if merge == nil {
		merge = func(_, partial S) S { return partial }
	}
	o := buildOptions(opts)
	b := &Binding[S]{
		name:    o.name,
		initial: initial,
		merge:   merge,
		key:     scope.NewKey[*handle[S]](o.name),
		opts:    []stream.Option{stream.WithName(o.name)},
	}
	if o.observer != nil {
		b.opts = append(b.opts, stream.WithObserver(o.observer))
	}
	return b
}

// CreateRecord returns a Binding for Record stores with shallow merge. A
// nil initial state is an empty Record.
func CreateRecord(initial Record, opts ...Option) *Binding[Record] {
	if initial == nil {
		initial = Record{}
	}
	return Create(initial, stream.MergeRecord, opts...)
}

// CreateStruct returns a Binding for struct states. Updates overwrite the
// non-zero fields of the partial struct.
func CreateStruct[S any](initial S, opts ...Option) *Binding[S] {
	return Create(initial, stream.MergeStruct[S], opts...)
}

// Name returns the binding name.
func (b *Binding[S]) Name() string {
	return b.name
}

// Initial returns the initial state of stores created by b.
func (b *Binding[S]) Initial() S {
	return b.initial
}

// Provider returns a container component rendering children. The first
// render creates the container's store; later renders of the same instance
// keep it. Disposing the instance discards the store with its listeners.
func (b *Binding[S]) Provider(children ...any) vdom.Component {
	return &provider[S]{binding: b, children: children}
}

// ProviderWith is Provider with a per-container initial partial, merged
// into the binding's initial state when the store is created. Changing
// initial on later renders does not reset the store.
func (b *Binding[S]) ProviderWith(initial S, children ...any) vdom.Component {
	return &provider[S]{binding: b, children: children, initial: &initial}
}

// Handle returns the store provided to sc by the nearest container of b.
func (b *Binding[S]) Handle(sc *scope.Scope) (*stream.Store[S], error) {
	h, err := b.lookup(sc)
	if err != nil {
		return nil, err
	}
	return h.store, nil
}

func (b *Binding[S]) lookup(sc *scope.Scope) (*handle[S], error) {
	h, ok := b.key.From(sc)
	if !ok || h == nil {
		return nil, newMissingContainer(b.name)
	}
	return h, nil
}

func (b *Binding[S]) newHandle(initial *S) *handle[S] {
	start := b.initial
	if initial != nil {
		start = b.merge(b.initial, *initial)
	}
	return &handle[S]{
		store:   stream.New(start, b.merge, b.opts...),
		initial: start,
	}
}

// provider is the container component of a Binding.
type provider[S any] struct {
	binding  *Binding[S]
	children []any
	initial  *S
}

// ComponentType keeps containers of different bindings from being matched
// to each other's instances.
func (p *provider[S]) ComponentType() any {
	return p.binding
}

// Render implements vdom.Component.
func (p *provider[S]) Render(sc *scope.Scope) *vdom.VNode {
	h := runtime.UseRef(sc, func() *handle[S] {
		return p.binding.newHandle(p.initial)
	})
	p.binding.key.Provide(sc, *h)
	return vdom.Fragment(p.children...)
}
