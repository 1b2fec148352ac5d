package runtime

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/render"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/vdom"
)

// Root is a mounted component tree.
type Root struct {
	opts  options
	scope *scope.Scope
	top   *instance

	dirty   map[uint64]*instance
	dirtyMu sync.Mutex

	errors  []*RenderError
	renders int
}

// Mount creates a root scope, mounts c under it and renders it. The
// returned Root is always usable; the error is the first render error, if
// any component failed.
func Mount(c vdom.Component, opts ...Option) (*Root, error) {
	r := &Root{
		opts:  buildOptions(opts),
		scope: scope.New(nil),
		dirty: make(map[uint64]*instance),
	}
	r.top = newInstance(r, r.scope, c)

	failed := len(r.errors)
	r.renderInstance(r.top)
	return r, r.firstErrorSince(failed)
}

// Scope returns the root scope, the parent of the top component's scope.
func (r *Root) Scope() *scope.Scope {
	return r.scope
}

// ServerRender reports whether the root renders with server snapshots.
func (r *Root) ServerRender() bool {
	return r.opts.serverRender
}

// schedule queues inst for the next Flush.
func (r *Root) schedule(inst *instance) {
	r.dirtyMu.Lock()
	defer r.dirtyMu.Unlock()
	r.dirty[inst.id] = inst
}

// Pending returns the number of instances waiting to re-render.
func (r *Root) Pending() int {
	r.dirtyMu.Lock()
	defer r.dirtyMu.Unlock()
	return len(r.dirty)
}

// takeDirty drains the queue, ancestors first.
func (r *Root) takeDirty() []*instance {
	r.dirtyMu.Lock()
	batch := make([]*instance, 0, len(r.dirty))
	for _, inst := range r.dirty {
		batch = append(batch, inst)
	}
	r.dirty = make(map[uint64]*instance)
	r.dirtyMu.Unlock()

	sort.Slice(batch, func(a, b int) bool {
		da, db := batch[a].scope.Depth(), batch[b].scope.Depth()
		if da != db {
			return da < db
		}
		return batch[a].id < batch[b].id
	})
	return batch
}

// Flush re-renders every dirty instance. See FlushContext.
func (r *Root) Flush() error {
	return r.FlushContext(context.Background())
}

// FlushContext re-renders dirty instances, parents before children, and
// repeats while renders mark more instances dirty. It returns an E004
// error when the pass limit is reached, otherwise the first render error
// raised during this flush.
func (r *Root) FlushContext(ctx context.Context) error {
	if r.scope.IsDisposed() {
		return nil
	}

	_, span := r.opts.tracer.Start(ctx, "runtime.flush")
	defer span.End()

	start := time.Now()
	failed := len(r.errors)
	before := r.renders
	passes := 0

	for {
		batch := r.takeDirty()
		if len(batch) == 0 {
			break
		}
		passes++
		if passes > r.opts.maxRenderPasses {
			for _, inst := range batch {
				inst.dirty.Store(false)
			}
			err := errors.New("E004").WithDetailf("%d passes without settling", r.opts.maxRenderPasses)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Message)
			if r.opts.observer != nil {
				r.opts.observer.RenderFailed(err.Code)
			}
			return err
		}
		for _, inst := range batch {
			// Already re-rendered by an ancestor in this pass, or gone.
			if inst.disposed() || !inst.dirty.Load() {
				continue
			}
			r.renderInstance(inst)
		}
	}

	rendered := r.renders - before
	span.SetAttributes(
		attribute.Int("streamstore.passes", passes),
		attribute.Int("streamstore.rendered", rendered),
	)
	if r.opts.observer != nil && passes > 0 {
		r.opts.observer.Flushed(passes, rendered, time.Since(start))
	}

	err := r.firstErrorSince(failed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// renderInstance renders inst and, recursively, its children.
func (r *Root) renderInstance(inst *instance) {
	inst.dirty.Store(false)
	inst.out = r.callRender(inst)
	for _, child := range inst.reconcile(inst.out) {
		r.renderInstance(child)
	}
}

// callRender runs the component's render function, turning a panic into a
// RenderError for this instance.
func (r *Root) callRender(inst *instance) (out *vdom.VNode) {
	r.renders++
	inst.renders++

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		re := &RenderError{Scope: inst.scope.ID(), Err: asError(p)}
		r.errors = append(r.errors, re)
		r.opts.logger.Warn("component render failed",
			"scope", re.Scope,
			"code", errors.CodeOf(re.Err),
			"error", re.Err)
		if r.opts.observer != nil {
			r.opts.observer.RenderFailed(errors.CodeOf(re.Err))
		}
		out = nil
	}()

	inst.scope.StartRender()
	out = inst.comp.Render(inst.scope)
	inst.scope.EndRender()
	return out
}

func (r *Root) firstErrorSince(n int) error {
	if len(r.errors) > n {
		return r.errors[n]
	}
	return nil
}

// Errors returns every render error recorded since mount.
func (r *Root) Errors() []*RenderError {
	return append([]*RenderError(nil), r.errors...)
}

// RenderCount returns the number of component renders since mount.
func (r *Root) RenderCount() int {
	return r.renders
}

// Tree returns the resolved output: the rendered tree with every
// component node replaced by its instance's output.
func (r *Root) Tree() *vdom.VNode {
	if r.scope.IsDisposed() {
		return nil
	}
	return r.top.resolve()
}

// HTML renders the resolved tree to HTML.
func (r *Root) HTML() (string, error) {
	return render.NewRenderer(render.RendererConfig{}).RenderToString(r.Tree())
}

// Unmount disposes every instance. Subscriptions made through hooks are
// released. Unmount is idempotent.
func (r *Root) Unmount() {
	r.scope.Dispose()

	r.dirtyMu.Lock()
	r.dirty = make(map[uint64]*instance)
	r.dirtyMu.Unlock()
}
