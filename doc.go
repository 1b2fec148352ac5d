// Package streamstore creates scoped publish-subscribe stores bound to a
// component tree.
//
// A Binding pairs a container component with an accessor. The container
// creates one store when it mounts and provides it to its subtree; the
// accessor reads a selected slice of that store and returns the store's
// update function:
//
//	var Counter = streamstore.CreateRecord(streamstore.Record{"count": 0})
//
//	func App() vdom.Component {
//	    return Counter.Provider(Display(), Buttons())
//	}
//
//	func Display() vdom.Component {
//	    return vdom.Func(func(sc *scope.Scope) *vdom.VNode {
//	        count, _ := streamstore.Use(Counter, sc, streamstore.Field[int]("count"))
//	        return vdom.Textf("%d", count)
//	    })
//	}
//
// Consumers re-render only when their selected value changes. Using the
// accessor outside a container panics with a *MissingContainerError, which
// the runtime records as a render error for that subtree; TryUse returns it
// instead.
//
// Every container instance owns its own store: two containers never share
// state, and remounting a container starts again from the initial state.
package streamstore
