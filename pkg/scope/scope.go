package scope

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/stream"
)

// DebugMode enables hook-count validation between renders.
var DebugMode = false

// Scope represents the lifetime of one component instance.
// When a Scope is disposed, all its child scopes and cleanups run too.
type Scope struct {
	id uint64

	// parent is nil for a root scope.
	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	// cleanups are run in reverse order on Dispose.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// values are the context values provided at this scope.
	values   map[any]any
	valuesMu sync.RWMutex

	disposed atomic.Bool

	// Hook slot storage for stable identity across renders.
	slots       []any
	slotIdx     int
	renderCount int
	rendering   bool
}

// New creates a Scope under parent. If parent is nil, creates a root.
func New(parent *Scope) *Scope {
	s := &Scope{
		id:     stream.NextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(s)
	}
	return s
}

// ID returns the unique identifier for this Scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent Scope, or nil for a root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Root walks up to the root of the tree.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Depth returns the number of ancestors of s.
func (s *Scope) Depth() int {
	d := 0
	for p := s.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsDisposed returns true if this Scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Children returns a snapshot of the live child scopes.
func (s *Scope) Children() []*Scope {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	return append([]*Scope(nil), s.children...)
}

func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run when this Scope is disposed.
// If the Scope is already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Dispose disposes this Scope and everything it owns.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.childrenMu.Lock()
	children := s.children
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	s.valuesMu.Lock()
	s.values = nil
	s.valuesMu.Unlock()
}

// Set stores a value on this Scope, visible to s and its descendants.
func (s *Scope) Set(key, value any) {
	s.valuesMu.Lock()
	defer s.valuesMu.Unlock()

	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
}

// Local returns a value set on this Scope itself, ignoring ancestors.
func (s *Scope) Local(key any) (any, bool) {
	s.valuesMu.RLock()
	defer s.valuesMu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Lookup returns the value for key from the nearest scope, starting at s
// and walking up through its ancestors.
func (s *Scope) Lookup(key any) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.Local(key); ok {
			return v, true
		}
	}
	return nil, false
}

// =============================================================================
// Hook Slots
// =============================================================================

// StartRender marks the beginning of a render of this scope's instance.
// It rewinds the hook slot cursor.
func (s *Scope) StartRender() {
	if s.disposed.Load() {
		panic(errors.New("E003").WithDetailf("scope %d rendered after disposal", s.id))
	}
	s.slotIdx = 0
	s.rendering = true
}

// EndRender marks the end of a render. In DebugMode it checks that the
// render used as many hook slots as the first one.
func (s *Scope) EndRender() {
	s.rendering = false
	s.renderCount++
	if DebugMode && s.renderCount > 1 && s.slotIdx != len(s.slots) {
		panic(errors.New("E002").WithDetailf("expected %d hooks, got %d", len(s.slots), s.slotIdx))
	}
}

// Rendering reports whether the scope is between StartRender and EndRender.
func (s *Scope) Rendering() bool {
	return s.rendering
}

// RenderCount returns the number of completed renders.
func (s *Scope) RenderCount() int {
	return s.renderCount
}

// Slot returns the value stored for the next hook and advances the
// cursor. ok is false on the first render of that hook; the caller then
// creates the value and stores it with SetSlot.
//
//	func UseThing(sc *scope.Scope) *Thing {
//	    if v, ok := sc.Slot(); ok {
//	        return v.(*Thing)
//	    }
//	    t := &Thing{}
//	    sc.SetSlot(t)
//	    return t
//	}
func (s *Scope) Slot() (any, bool) {
	idx := s.slotIdx
	s.slotIdx++

	if idx < len(s.slots) {
		return s.slots[idx], true
	}
	if DebugMode && s.renderCount > 0 {
		panic(errors.New("E002").WithDetail(fmt.Sprintf("extra hook at index %d", idx)))
	}
	return nil, false
}

// SetSlot stores the value for the hook whose Slot call returned !ok.
func (s *Scope) SetSlot(value any) {
	s.slots = append(s.slots, value)
}
