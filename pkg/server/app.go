package server

import (
	"github.com/vango-dev/streamstore"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

// Action mutates a session's store in response to an action frame. args
// are the frame's arguments, possibly nil.
type Action func(store *stream.Store[stream.Record], args stream.Record) error

// App describes a hosted application.
type App struct {
	// Title is the page title of the server-rendered document.
	Title string

	// Binding is the container wrapping Root. Update frames are merged
	// into the store of this container.
	Binding *streamstore.Binding[stream.Record]

	// Root builds the component rendered inside the container.
	Root func() vdom.Component

	// Actions are invoked by name from action frames.
	Actions map[string]Action
}

// tree wraps the app root in its container. When store is non-nil it
// receives the container's store on the first render.
func (a *App) tree(store **stream.Store[stream.Record]) vdom.Component {
	capture := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		if store != nil && *store == nil {
			*store, _ = a.Binding.Handle(sc)
		}
		return vdom.Comp(a.Root())
	})
	return a.Binding.Provider(capture)
}
