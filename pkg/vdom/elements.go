package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Element creates a node with the given tag.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, Component, string.
func Element(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		default:
			node.Children = appendChild(node.Children, arg)
		}
	}

	return node
}

func (n *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			n.Key = s
		}
		return
	}
	n.Props[a.Key] = a.Value
}

// appendChild appends a child argument, flattening slices and wrapping
// strings and components.
func appendChild(children []*VNode, arg any) []*VNode {
	switch v := arg.(type) {
	case nil:
	case *VNode:
		if v != nil {
			children = append(children, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				children = append(children, c)
			}
		}
	case []any:
		for _, c := range v {
			children = appendChild(children, c)
		}
	case string:
		children = append(children, Text(v))
	case Component:
		children = append(children, Comp(v))
	}
	return children
}

// Element shorthands.

func Div(args ...any) *VNode    { return Element("div", args...) }
func Span(args ...any) *VNode   { return Element("span", args...) }
func P(args ...any) *VNode      { return Element("p", args...) }
func H1(args ...any) *VNode     { return Element("h1", args...) }
func H2(args ...any) *VNode     { return Element("h2", args...) }
func Ul(args ...any) *VNode     { return Element("ul", args...) }
func Li(args ...any) *VNode     { return Element("li", args...) }
func Button(args ...any) *VNode { return Element("button", args...) }
func Input(args ...any) *VNode  { return Element("input", args...) }
func Main(args ...any) *VNode   { return Element("main", args...) }
func Section(args ...any) *VNode { return Element("section", args...) }
