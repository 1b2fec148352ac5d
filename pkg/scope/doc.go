// Package scope provides the tree of lifetimes that components render in.
//
// Every mounted component instance owns a Scope. Scopes form a hierarchy
// mirroring the component tree: a child scope can read values provided by
// any ancestor, the nearest provider winning, without those values being
// threaded through every render function.
//
//	root := scope.New(nil)
//	theme := scope.NewKey[string]("theme")
//	theme.Provide(root, "dark")
//
//	child := scope.New(root)
//	v, _ := theme.From(child) // "dark"
//
// Scopes are passed explicitly: render functions receive their *Scope as
// an argument. There is no goroutine-global "current scope".
//
// # Lifetime
//
// Dispose tears a scope down: children first (last created first), then
// cleanup functions registered with OnCleanup in reverse order. Disposal
// is idempotent.
//
// # Hook Slots
//
// A scope stores per-instance hook state in ordered slots so that values
// created on the first render survive later renders of the same instance.
// StartRender rewinds the slot cursor, Slot returns the stored value for
// the next hook. With DebugMode enabled, a render that uses a different
// number of hooks than the first render panics with error E002.
package scope
