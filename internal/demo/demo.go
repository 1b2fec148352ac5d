// Package demo is a small counter application: one store with a count and
// a name, read by sibling components that each select one field.
package demo

import (
	"fmt"

	"github.com/vango-dev/streamstore"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/server"
	"github.com/vango-dev/streamstore/pkg/stream"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

// Initial is the state every session starts from.
func Initial() stream.Record {
	return stream.Record{"count": 0, "name": "world"}
}

// Counter wraps the demo binding.
type Counter struct {
	Binding *streamstore.Binding[stream.Record]
}

// New creates the demo binding. opts are passed to the binding, e.g. a
// metrics observer.
func New(opts ...streamstore.Option) *Counter {
	opts = append([]streamstore.Option{streamstore.WithName("Counter")}, opts...)
	return &Counter{Binding: streamstore.CreateRecord(Initial(), opts...)}
}

// App returns the hosted application.
func (c *Counter) App() *server.App {
	return &server.App{
		Title:   "streamstore counter",
		Binding: c.Binding,
		Root:    c.Page,
		Actions: map[string]server.Action{
			"increment": func(s *stream.Store[stream.Record], _ stream.Record) error {
				s.Update(stream.Record{"count": count(s.Get()) + 1})
				return nil
			},
			"decrement": func(s *stream.Store[stream.Record], _ stream.Record) error {
				s.Update(stream.Record{"count": count(s.Get()) - 1})
				return nil
			},
			"reset": func(s *stream.Store[stream.Record], _ stream.Record) error {
				s.Update(stream.Record{"count": 0})
				return nil
			},
			"rename": rename,
		},
	}
}

var count = stream.Field[int]("count")

func rename(s *stream.Store[stream.Record], args stream.Record) error {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return fmt.Errorf("rename: missing name argument")
	}
	s.Update(stream.Record{"name": name})
	return nil
}

// Page is the root component rendered inside the container.
func (c *Counter) Page() vdom.Component {
	return vdom.Func(func(*scope.Scope) *vdom.VNode {
		return vdom.Main(vdom.Class("counter"),
			c.Greeting(),
			c.Count(),
			Controls(),
		)
	})
}

// Greeting reads only the name.
func (c *Counter) Greeting() vdom.Component {
	return vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		name, _ := streamstore.Use(c.Binding, sc, streamstore.Field[string]("name"))
		return vdom.H1(vdom.Textf("Hello, %s", name))
	})
}

// Count reads only the count.
func (c *Counter) Count() vdom.Component {
	return vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		n, _ := streamstore.Use(c.Binding, sc, count)
		return vdom.P(vdom.ID("count"), vdom.Textf("%d", n))
	})
}

// Controls renders the action buttons. It reads nothing from the store.
func Controls() *vdom.VNode {
	return vdom.Section(vdom.Class("controls"),
		vdom.Button(vdom.Data("action", "decrement"), vdom.Text("-")),
		vdom.Button(vdom.Data("action", "reset"), vdom.Text("reset")),
		vdom.Button(vdom.Data("action", "increment"), vdom.Text("+")),
	)
}
