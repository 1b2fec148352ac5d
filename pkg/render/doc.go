// Package render writes resolved VNode trees as HTML.
//
// The renderer handles element, text, fragment and raw nodes. Component
// nodes must be resolved first (see the runtime package); meeting one is
// an error, because rendering a component requires the scope of its
// mounted instance.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(root.Tree())
//
// Text and attribute values are escaped. Raw nodes are written verbatim
// and must only carry trusted content.
//
// RenderPage wraps a body in a minimal HTML document with an optional
// inline script, which the server uses for its initial response.
package render
