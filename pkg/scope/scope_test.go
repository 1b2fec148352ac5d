package scope

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/vango-dev/streamstore/internal/errors"
)

func TestNewRoot(t *testing.T) {
	root := New(nil)
	if root.Parent() != nil {
		t.Error("root scope should have no parent")
	}
	if root.Root() != root {
		t.Error("Root() of a root should be itself")
	}
	if root.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", root.Depth())
	}
}

func TestHierarchy(t *testing.T) {
	root := New(nil)
	child := New(root)
	grandchild := New(child)

	if child.Parent() != root || grandchild.Parent() != child {
		t.Fatal("parent links are wrong")
	}
	if grandchild.Root() != root {
		t.Error("Root() should walk to the root")
	}
	if grandchild.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", grandchild.Depth())
	}
	if got := root.Children(); len(got) != 1 || got[0] != child {
		t.Errorf("Children() = %v, want [child]", got)
	}
	if root.ID() == child.ID() {
		t.Error("scopes share an ID")
	}
}

func TestLookupNearestWins(t *testing.T) {
	root := New(nil)
	child := New(root)
	grandchild := New(child)

	root.Set("k", "root")
	if v, ok := grandchild.Lookup("k"); !ok || v != "root" {
		t.Errorf("Lookup() = %v, %v; want root, true", v, ok)
	}

	child.Set("k", "child")
	if v, _ := grandchild.Lookup("k"); v != "child" {
		t.Errorf("Lookup() = %v, want child", v)
	}
	if v, _ := root.Lookup("k"); v != "root" {
		t.Errorf("root Lookup() = %v, want root", v)
	}

	if _, ok := grandchild.Local("k"); ok {
		t.Error("Local() should ignore ancestors")
	}
	if _, ok := root.Lookup("missing"); ok {
		t.Error("Lookup() found a missing key")
	}
}

func TestSiblingsDoNotSeeEachOther(t *testing.T) {
	root := New(nil)
	a := New(root)
	b := New(root)
	a.Set("k", 1)

	if _, ok := b.Lookup("k"); ok {
		t.Error("sibling saw a value provided by another sibling")
	}
}

func TestDisposeOrder(t *testing.T) {
	root := New(nil)
	var order []string

	root.OnCleanup(func() { order = append(order, "root-1") })
	root.OnCleanup(func() { order = append(order, "root-2") })

	first := New(root)
	first.OnCleanup(func() { order = append(order, "first") })
	second := New(root)
	second.OnCleanup(func() { order = append(order, "second") })

	root.Dispose()

	want := []string{"second", "first", "root-2", "root-1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("cleanup order = %v, want %v", order, want)
	}
	if !root.IsDisposed() || !first.IsDisposed() || !second.IsDisposed() {
		t.Error("all scopes should be disposed")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	root := New(nil)
	calls := 0
	root.OnCleanup(func() { calls++ })

	root.Dispose()
	root.Dispose()
	if calls != 1 {
		t.Errorf("cleanup calls = %d, want 1", calls)
	}
}

func TestDisposeChildDetaches(t *testing.T) {
	root := New(nil)
	child := New(root)
	child.Set("k", 1)
	child.Dispose()

	if len(root.Children()) != 0 {
		t.Error("disposed child still attached to parent")
	}
	if _, ok := child.Local("k"); ok {
		t.Error("disposed scope kept its values")
	}
}

func TestOnCleanupAfterDispose(t *testing.T) {
	s := New(nil)
	s.Dispose()

	ran := false
	s.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after dispose should run immediately")
	}
}

func TestHookSlotsStable(t *testing.T) {
	s := New(nil)

	render := func() *int {
		s.StartRender()
		defer s.EndRender()
		if v, ok := s.Slot(); ok {
			return v.(*int)
		}
		n := new(int)
		s.SetSlot(n)
		return n
	}

	first := render()
	second := render()
	if first != second {
		t.Error("hook slot value changed between renders")
	}
	if s.RenderCount() != 2 {
		t.Errorf("RenderCount() = %d, want 2", s.RenderCount())
	}
	if s.Rendering() {
		t.Error("Rendering() true after EndRender")
	}
}

func TestStartRenderDisposedPanics(t *testing.T) {
	s := New(nil)
	s.Dispose()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !stderrors.Is(err, errors.New("E003")) {
			t.Errorf("recover() = %v, want E003", r)
		}
	}()
	s.StartRender()
}

func TestDebugModeHookCount(t *testing.T) {
	DebugMode = true
	defer func() { DebugMode = false }()

	s := New(nil)
	s.StartRender()
	s.Slot()
	s.SetSlot(1)
	s.EndRender()

	t.Run("fewer hooks", func(t *testing.T) {
		defer func() {
			err, _ := recover().(error)
			if !stderrors.Is(err, errors.New("E002")) {
				t.Errorf("expected E002 panic, got %v", err)
			}
		}()
		s.StartRender()
		s.EndRender()
	})

	t.Run("extra hook", func(t *testing.T) {
		defer func() {
			err, _ := recover().(error)
			if !stderrors.Is(err, errors.New("E002")) {
				t.Errorf("expected E002 panic, got %v", err)
			}
		}()
		s.StartRender()
		s.Slot()
		s.Slot()
	})
}
