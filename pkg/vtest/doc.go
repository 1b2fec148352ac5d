// Package vtest provides testing helpers for streamstore components.
//
// # Quick Start
//
//	func TestCount(t *testing.T) {
//	    h, store := vtest.InContainer(t, Counter, CountView())
//	    h.ExpectContains("0")
//
//	    store.Update(streamstore.Record{"count": 5})
//	    h.Flush()
//	    h.ExpectContains("5")
//	}
//
// # Mounting
//
// Mount renders a component in a fresh root with a discarded logger and
// unmounts it when the test ends. InContainer additionally wraps the
// component in a binding's container and returns the container's store.
//
// # Render Assertions
//
// Assert on rendered HTML output, either of a harness or of a plain node:
//
//	h.ExpectContains("Welcome")
//	vtest.ExpectNotContains(t, node, "Error")
package vtest
