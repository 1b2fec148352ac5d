package scope

// Key is a typed handle for a value provided through the scope tree.
type Key[T any] struct {
	name string
}

// NewKey creates a new key. Each call returns a distinct key, even for the
// same name; the name is only used in messages.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

// Name returns the key's name.
func (k *Key[T]) Name() string {
	return k.name
}

// Provide stores v on sc for sc and its descendants.
func (k *Key[T]) Provide(sc *Scope, v T) {
	sc.Set(k, v)
}

// From returns the value provided by the nearest scope at or above sc.
func (k *Key[T]) From(sc *Scope) (T, bool) {
	var zero T
	if sc == nil {
		return zero, false
	}
	v, ok := sc.Lookup(k)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
