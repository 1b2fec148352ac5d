package runtime

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/stream"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func mustHTML(t *testing.T, r *Root) string {
	t.Helper()
	html, err := r.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return html
}

// fieldView renders one field of s and counts its renders.
func fieldView(s *stream.Store[stream.Record], key string, renders *int) vdom.Component {
	return vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		*renders++
		v := UseSyncExternalStore(sc, s.Subscribe,
			func() any { return s.Get()[key] },
			nil, nil)
		return vdom.Span(vdom.Textf("%s=%v", key, v))
	})
}

func TestMountRendersNestedComponents(t *testing.T) {
	inner := vdom.Func(func(*scope.Scope) *vdom.VNode { return vdom.P(vdom.Text("inner")) })
	app := vdom.Func(func(*scope.Scope) *vdom.VNode {
		return vdom.Div(vdom.H1(vdom.Text("title")), inner)
	})

	r, err := Mount(app, quiet)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if got, want := mustHTML(t, r), "<div><h1>title</h1><p>inner</p></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if r.RenderCount() != 2 {
		t.Errorf("RenderCount() = %d, want 2", r.RenderCount())
	}
}

func TestExternalStoreRerendersOnChange(t *testing.T) {
	s := stream.NewRecord(stream.Record{"count": 0, "name": "a"})
	var countRenders, nameRenders int

	app := vdom.Func(func(*scope.Scope) *vdom.VNode {
		return vdom.Div(fieldView(s, "count", &countRenders), fieldView(s, "name", &nameRenders))
	})
	r, _ := Mount(app, quiet)

	s.Update(stream.Record{"count": 1})
	if r.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", r.Pending())
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if got, want := mustHTML(t, r), "<div><span>count=1</span><span>name=a</span></div>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if countRenders != 2 || nameRenders != 1 {
		t.Errorf("renders count=%d name=%d, want 2 and 1", countRenders, nameRenders)
	}
}

func TestExternalStoreIgnoresUnrelatedUpdates(t *testing.T) {
	s := stream.NewRecord(stream.Record{"count": 5})
	var renders int
	r, _ := Mount(fieldView(s, "count", &renders), quiet)

	s.Update(stream.Record{"other": "x"})
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", r.Pending())
	}
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
}

func TestUnmountReleasesSubscriptions(t *testing.T) {
	s := stream.NewRecord(nil)
	var renders int
	r, _ := Mount(vdom.Func(func(*scope.Scope) *vdom.VNode {
		return vdom.Div(fieldView(s, "a", &renders), fieldView(s, "b", &renders))
	}), quiet)

	if s.Listeners() != 2 {
		t.Fatalf("Listeners() = %d, want 2", s.Listeners())
	}
	r.Unmount()
	r.Unmount()
	if s.Listeners() != 0 {
		t.Errorf("Listeners() after Unmount = %d, want 0", s.Listeners())
	}
	if r.Tree() != nil {
		t.Error("Tree() after Unmount should be nil")
	}
	if err := r.Flush(); err != nil {
		t.Errorf("Flush() after Unmount = %v", err)
	}
}

func TestRemovedChildIsDisposed(t *testing.T) {
	s := stream.NewRecord(stream.Record{"show": true})
	var renders int
	child := fieldView(s, "x", &renders)

	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		show := UseSyncExternalStore(sc, s.Subscribe, func() bool { return stream.Field[bool]("show")(s.Get()) }, nil, nil)
		if show {
			return vdom.Div(child)
		}
		return vdom.Div()
	})
	r, _ := Mount(app, quiet)
	if s.Listeners() != 2 {
		t.Fatalf("Listeners() = %d, want 2", s.Listeners())
	}

	s.Update(stream.Record{"show": false})
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if s.Listeners() != 1 {
		t.Errorf("Listeners() = %d, want 1 after child removal", s.Listeners())
	}
}

func TestUseRefStableAcrossParentRenders(t *testing.T) {
	s := stream.NewRecord(stream.Record{"n": 0})
	var refs []*int

	child := func() vdom.Component {
		return vdom.Func(func(sc *scope.Scope) *vdom.VNode {
			refs = append(refs, UseRef(sc, func() int { return 42 }))
			return nil
		})
	}
	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		n := UseSyncExternalStore(sc, s.Subscribe, func() any { return s.Get()["n"] }, nil, nil)
		// A new component value on every render, from the same literal.
		return vdom.Div(vdom.Textf("%v", n), child())
	})

	r, _ := Mount(app, quiet)
	s.Update(stream.Record{"n": 1})
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if len(refs) != 2 {
		t.Fatalf("child rendered %d times, want 2", len(refs))
	}
	if refs[0] != refs[1] || *refs[0] != 42 {
		t.Error("UseRef value not stable across renders")
	}
}

func TestComponentTypeChangeRemounts(t *testing.T) {
	s := stream.NewRecord(stream.Record{"alt": false})
	var mounts int
	a := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		sc.OnCleanup(func() {})
		UseRef(sc, func() int { mounts++; return 0 })
		return vdom.Text("a")
	})
	b := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		UseRef(sc, func() int { mounts++; return 0 })
		return vdom.Text("b")
	})

	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		alt := UseSyncExternalStore(sc, s.Subscribe, func() any { return s.Get()["alt"] }, nil, nil)
		if alt == true {
			return vdom.Div(b)
		}
		return vdom.Div(a)
	})

	r, _ := Mount(app, quiet)
	s.Update(stream.Record{"alt": true})
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := mustHTML(t, r); got != "<div>b</div>" {
		t.Errorf("HTML() = %q", got)
	}
	if mounts != 2 {
		t.Errorf("mounts = %d, want 2", mounts)
	}
}

func TestKeyedChildrenSurviveReorder(t *testing.T) {
	s := stream.NewRecord(stream.Record{"order": []string{"a", "b"}})
	seen := map[string][]*int{}

	item := func(name string) vdom.Component {
		return vdom.Func(func(sc *scope.Scope) *vdom.VNode {
			seen[name] = append(seen[name], UseRef[int](sc, nil))
			return vdom.Li(vdom.Text(name))
		})
	}
	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		order := UseSyncExternalStore(sc, s.Subscribe,
			func() []string { return s.Get()["order"].([]string) }, nil, nil)
		return vdom.Ul(vdom.Range(order, func(name string, _ int) *vdom.VNode {
			return vdom.Comp(item(name), name)
		}))
	})

	r, _ := Mount(app, quiet)
	s.Update(stream.Record{"order": []string{"b", "a"}})
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := mustHTML(t, r); got != "<ul><li>b</li><li>a</li></ul>" {
		t.Errorf("HTML() = %q", got)
	}
	for name, refs := range seen {
		if len(refs) != 2 || refs[0] != refs[1] {
			t.Errorf("item %s was remounted", name)
		}
	}
}

var errBoom = stderrors.New("boom")

func TestRenderErrorIsolatedToSubtree(t *testing.T) {
	broken := vdom.Func(func(*scope.Scope) *vdom.VNode { panic(errBoom) })
	fine := vdom.Func(func(*scope.Scope) *vdom.VNode { return vdom.Text("ok") })

	r, err := Mount(vdom.Func(func(*scope.Scope) *vdom.VNode {
		return vdom.Div(broken, fine)
	}), quiet)

	var re *RenderError
	if !stderrors.As(err, &re) {
		t.Fatalf("Mount() error = %v, want *RenderError", err)
	}
	if !stderrors.Is(err, errBoom) {
		t.Error("RenderError should unwrap to the panic value")
	}
	if got := mustHTML(t, r); got != "<div>ok</div>" {
		t.Errorf("HTML() = %q, want <div>ok</div>", got)
	}
	if len(r.Errors()) != 1 {
		t.Errorf("Errors() = %v", r.Errors())
	}
}

func TestNonErrorPanicIsWrapped(t *testing.T) {
	_, err := Mount(vdom.Func(func(*scope.Scope) *vdom.VNode { panic("bad") }), quiet)
	if !stderrors.Is(err, errors.New("E005")) {
		t.Errorf("error = %v, want E005", err)
	}
}

func TestRenderLoopLimit(t *testing.T) {
	s := stream.NewRecord(stream.Record{"n": 0})
	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		n := UseSyncExternalStore(sc, s.Subscribe, func() int { return stream.Field[int]("n")(s.Get()) }, nil, nil)
		// Updating the store it reads from during render never settles.
		s.Update(stream.Record{"n": n + 1})
		return vdom.Textf("%d", n)
	})

	r, _ := Mount(app, quiet, WithMaxRenderPasses(3))
	err := r.Flush()
	if !stderrors.Is(err, errors.New("E004")) {
		t.Fatalf("Flush() error = %v, want E004", err)
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d after loop abort", r.Pending())
	}
}

func TestServerRenderUsesServerSnapshot(t *testing.T) {
	s := stream.NewRecord(stream.Record{"count": 7})
	var hookScope *scope.Scope
	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		hookScope = sc
		v := UseSyncExternalStore(sc, s.Subscribe,
			func() string { return "client" },
			func() string { return "server" }, nil)
		return vdom.Text(v)
	})

	r, _ := Mount(app, quiet, WithServerRender())
	if got := mustHTML(t, r); got != "server" {
		t.Errorf("HTML() = %q, want server", got)
	}
	if s.Listeners() != 0 {
		t.Errorf("server render subscribed %d listeners", s.Listeners())
	}
	if !r.ServerRender() || !IsServerRender(hookScope) {
		t.Error("server render mode not reported")
	}
}

func TestIsServerRender(t *testing.T) {
	var seen *scope.Scope
	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		seen = sc
		return nil
	})

	tests := []struct {
		name string
		opts []Option
		want bool
	}{
		{"client root", []Option{quiet}, false},
		{"server root", []Option{quiet, WithServerRender()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Mount(app, tt.opts...)
			if err != nil {
				t.Fatalf("Mount() error = %v", err)
			}
			defer r.Unmount()

			if got := IsServerRender(seen); got != tt.want {
				t.Errorf("IsServerRender(instance) = %v, want %v", got, tt.want)
			}
			if got := IsServerRender(scope.New(seen)); got != tt.want {
				t.Errorf("IsServerRender(child scope) = %v, want %v", got, tt.want)
			}
		})
	}

	if IsServerRender(nil) || IsServerRender(scope.New(nil)) {
		t.Error("scopes outside a root reported server render")
	}
}

func TestServerRenderWithoutServerSnapshot(t *testing.T) {
	app := vdom.Func(func(sc *scope.Scope) *vdom.VNode {
		return vdom.Text(UseSyncExternalStore(sc, nil, func() string { return "client" }, nil, nil))
	})
	r, _ := Mount(app, quiet, WithServerRender())
	if got := mustHTML(t, r); got != "client" {
		t.Errorf("HTML() = %q, want client", got)
	}
}

func TestUseSyncExternalStoreOutsideRoot(t *testing.T) {
	sc := scope.New(nil)
	got := UseSyncExternalStore(sc, nil, func() int { return 3 }, nil, nil)
	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	if IsServerRender(sc) {
		t.Error("plain scope reported server render")
	}
}

type recordingObserver struct {
	flushes  []int
	failures []string
}

func (o *recordingObserver) Flushed(passes, rendered int, _ time.Duration) {
	o.flushes = append(o.flushes, rendered)
}

func (o *recordingObserver) RenderFailed(code string) {
	o.failures = append(o.failures, code)
}

func TestObserver(t *testing.T) {
	s := stream.NewRecord(stream.Record{"n": 0})
	obs := &recordingObserver{}
	var renders int
	r, _ := Mount(fieldView(s, "n", &renders), quiet, WithObserver(obs))

	s.Update(stream.Record{"n": 1})
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(obs.flushes) != "[1]" {
		t.Errorf("flushes = %v, want [1]", obs.flushes)
	}

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(obs.flushes) != 1 {
		t.Error("empty flush should not be reported")
	}

	_, _ = Mount(vdom.Func(func(*scope.Scope) *vdom.VNode { panic("x") }), quiet, WithObserver(obs))
	if fmt.Sprint(obs.failures) != "[E005]" {
		t.Errorf("failures = %v, want [E005]", obs.failures)
	}
}
