// Package runtime mounts component trees and keeps them up to date.
//
// Mount renders a root component synchronously. Every component node in
// the output becomes an instance with its own scope, a child of the scope
// of the instance that rendered it, so values provided by an ancestor are
// visible to all descendants. Instances are matched across renders by key,
// or by position among unkeyed siblings, and by component type; instances
// that disappear from the output are disposed.
//
//	root, err := runtime.Mount(App)
//	...
//	store.Update(stream.Record{"count": 1}) // marks subscribers dirty
//	err = root.Flush()                      // re-renders them
//	html, err := root.HTML()
//
// # Hooks
//
// UseRef keeps a value across renders of one instance. UseSyncExternalStore
// subscribes the instance to an external source: on every notification it
// recomputes the snapshot and marks the instance dirty only if the
// snapshot differs from the last one. The subscription is released when
// the instance is disposed.
//
// # Render Errors
//
// A component that panics during render fails only its own subtree: the
// panic is recorded as a *RenderError (wrapping the panic value when it is
// an error), the instance renders empty and its children are disposed.
//
// # Server Rendering
//
// A root mounted WithServerRender renders once with server snapshots and
// never subscribes to anything.
package runtime
