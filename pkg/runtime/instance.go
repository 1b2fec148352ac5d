package runtime

import (
	"reflect"
	"strconv"
	"sync/atomic"

	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

// instanceKey stores the instance owning a scope, on that scope only.
var instanceKey = &struct{ name string }{"runtime.instance"}

// instance is a mounted component.
type instance struct {
	id    uint64
	root  *Root
	comp  vdom.Component
	typ   any
	scope *scope.Scope

	// out is the last render output, still containing component nodes.
	out *vdom.VNode

	// children are matched by key; nodes maps each component node of out
	// to its instance.
	children map[string]*instance
	nodes    map[*vdom.VNode]*instance

	dirty   atomic.Bool
	renders int
}

var _ stream.Listener = (*instance)(nil)

func newInstance(root *Root, parent *scope.Scope, comp vdom.Component) *instance {
	inst := &instance{
		id:    stream.NextID(),
		root:  root,
		comp:  comp,
		typ:   componentType(comp),
		scope: scope.New(parent),
	}
	inst.scope.Set(instanceKey, inst)
	return inst
}

// instanceOf returns the instance rendering in sc, if any.
func instanceOf(sc *scope.Scope) *instance {
	if sc == nil {
		return nil
	}
	v, ok := sc.Local(instanceKey)
	if !ok {
		return nil
	}
	inst, _ := v.(*instance)
	return inst
}

// ID implements stream.Listener.
func (i *instance) ID() uint64 {
	return i.id
}

// MarkDirty implements stream.Listener and queues the instance for the
// next Flush.
func (i *instance) MarkDirty() {
	if i.disposed() {
		return
	}
	if i.dirty.CompareAndSwap(false, true) {
		i.root.schedule(i)
	}
}

func (i *instance) disposed() bool {
	return i.scope.IsDisposed()
}

func (i *instance) dispose() {
	i.scope.Dispose()
	i.children = nil
	i.nodes = nil
	i.out = nil
}

// componentType identifies the kind of component for instance matching.
func componentType(c vdom.Component) any {
	if typed, ok := c.(interface{ ComponentType() any }); ok {
		return typed.ComponentType()
	}
	return reflect.TypeOf(c)
}

// reconcile matches the component nodes of out against the previous
// children, creating and disposing instances as needed, and returns the
// children in render order.
func (i *instance) reconcile(out *vdom.VNode) []*instance {
	prev := i.children
	next := make(map[string]*instance)
	nodes := make(map[*vdom.VNode]*instance)
	var order []*instance

	pos := 0
	vdom.Walk(out, func(n *vdom.VNode) bool {
		if n.Kind != vdom.KindComponent {
			return true
		}
		if n.Comp == nil {
			return false
		}

		key := n.Key
		if key == "" {
			key = "#" + strconv.Itoa(pos)
			pos++
		} else {
			key = "k:" + key
		}
		for next[key] != nil {
			key += "'"
		}

		child := prev[key]
		if child != nil && child.typ == componentType(n.Comp) {
			child.comp = n.Comp
			delete(prev, key)
		} else {
			child = newInstance(i.root, i.scope, n.Comp)
		}

		next[key] = child
		nodes[n] = child
		order = append(order, child)
		return false
	})

	for _, stale := range prev {
		stale.dispose()
	}

	i.children = next
	i.nodes = nodes
	return order
}

// resolve returns out with every component node replaced by the resolved
// output of its instance.
func (i *instance) resolve() *vdom.VNode {
	return i.resolveNode(i.out)
}

func (i *instance) resolveNode(n *vdom.VNode) *vdom.VNode {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case vdom.KindComponent:
		child := i.nodes[n]
		if child == nil {
			return nil
		}
		return child.resolve()
	case vdom.KindElement, vdom.KindFragment:
		cp := *n
		cp.Children = make([]*vdom.VNode, 0, len(n.Children))
		for _, c := range n.Children {
			if rc := i.resolveNode(c); rc != nil {
				cp.Children = append(cp.Children, rc)
			}
		}
		return &cp
	default:
		return n
	}
}
