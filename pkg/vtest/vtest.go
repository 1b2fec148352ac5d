package vtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/streamstore"
	"github.com/vango-dev/streamstore/pkg/render"
	"github.com/vango-dev/streamstore/pkg/runtime"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

// Harness is a mounted component under test.
type Harness struct {
	t    testing.TB
	root *runtime.Root
}

// Mount renders c and fails the test if any component fails to render.
// The tree is unmounted when the test ends.
func Mount(t testing.TB, c vdom.Component, opts ...runtime.Option) *Harness {
	t.Helper()
	h, err := MountErr(t, c, opts...)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return h
}

// MountErr is Mount returning the first render error instead of failing.
func MountErr(t testing.TB, c vdom.Component, opts ...runtime.Option) (*Harness, error) {
	t.Helper()
	opts = append([]runtime.Option{runtime.WithLogger(discardLogger())}, opts...)
	root, err := runtime.Mount(c, opts...)
	t.Cleanup(root.Unmount)
	return &Harness{t: t, root: root}, err
}

// InContainer mounts c inside a container of b and returns the store the
// container created.
func InContainer[S any](t testing.TB, b *streamstore.Binding[S], c vdom.Component, opts ...runtime.Option) (*Harness, *stream.Store[S]) {
	t.Helper()
	var store *stream.Store[S]
	capture := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		if store == nil {
			store, _ = b.Handle(sc)
		}
		return vdom.Comp(c)
	})
	h := Mount(t, b.Provider(capture), opts...)
	return h, store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Root returns the mounted root.
func (h *Harness) Root() *runtime.Root {
	return h.root
}

// Flush re-renders dirty components and fails the test on error.
func (h *Harness) Flush() {
	h.t.Helper()
	if err := h.root.Flush(); err != nil {
		h.t.Fatalf("flush: %v", err)
	}
}

// HTML returns the rendered markup of the whole tree.
func (h *Harness) HTML() string {
	h.t.Helper()
	html, err := h.root.HTML()
	if err != nil {
		h.t.Fatalf("render: %v", err)
	}
	return html
}

// RenderCount returns the number of component renders so far.
func (h *Harness) RenderCount() int {
	return h.root.RenderCount()
}

// ExpectContains asserts that the rendered tree contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	if html := h.HTML(); !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered tree does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	if html := h.HTML(); strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// RenderToString renders a VNode and returns the HTML string, or "" if the
// node cannot be rendered.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, Controls(), "reset")
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, node, "data-action", "increment")
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
