package vdom

import (
	"reflect"

	"github.com/vango-dev/streamstore/pkg/scope"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Nested component
	KindRaw                    // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText and KindRaw
	Comp     Component // For KindComponent
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Component is anything that can render to a VNode within its scope.
type Component interface {
	Render(sc *scope.Scope) *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func(sc *scope.Scope) *VNode
}

// Render implements Component.
func (f *FuncComponent) Render(sc *scope.Scope) *VNode {
	return f.render(sc)
}

// ComponentType identifies the render function's code. Closures created
// from the same function literal share a type, so a component rebuilt on
// every parent render is still recognised as the same kind of component.
func (f *FuncComponent) ComponentType() any {
	return reflect.ValueOf(f.render).Pointer()
}

// Func creates a component from a render function.
func Func(render func(sc *scope.Scope) *VNode) Component {
	return &FuncComponent{render: render}
}

// Comp wraps a component in a node. An optional key keeps the instance
// matched across renders when siblings are reordered.
func Comp(c Component, key ...string) *VNode {
	n := &VNode{Kind: KindComponent, Comp: c}
	if len(key) > 0 {
		n.Key = key[0]
	}
	return n
}

// Walk calls fn for n and every descendant in depth-first order.
// Returning false from fn skips that node's children.
func Walk(n *VNode, fn func(*VNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
