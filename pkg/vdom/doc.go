// Package vdom provides the virtual node tree components render into.
//
// VNode represents elements, text, fragments, raw HTML and nested
// components. Elements are built with variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// Components receive the *scope.Scope of their instance explicitly:
//
//	var Counter = vdom.Func(func(sc *scope.Scope) *vdom.VNode {
//	    return vdom.Span(vdom.Text("0"))
//	})
//
// A tree containing component nodes is resolved by the runtime package,
// which gives every component instance its own scope.
package vdom
