// Package gesture turns pointer events into layout mutations.
//
// A [Controller] owns the gesture state of one layout. It is an explicit
// state machine:
//
//	Idle -> DirectionPending -> Splitting -> Resizing -> Idle
//	                         -> JoinMoving -> Idle
//	Idle -> Resizing (separator drag) -> Idle
//
// Every gesture returns to Idle on release, including aborted ones. Previews
// are transient and never touch the committed tree; resize commits are
// debounced but always flushed with the final value on release.
package gesture

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/observability"
)

// Target is the layout a controller edits. Apply and ApplyAt must run the
// mutation and commit its result atomically with respect to every other
// commit, so a resize committed from the debounce timer never overwrites an
// edit that landed after the gesture last read the tree.
type Target interface {
	// Tree returns the committed tree.
	Tree() *layout.Tree
	// Viewports returns the projection of the committed tree.
	Viewports() layout.Viewports
	// Apply runs fn against the committed tree and commits its result. A
	// failed fn commits nothing.
	Apply(fn func(*layout.Tree) (*layout.Tree, error)) error
	// ApplyAt is Apply with the viewports of the tree passed to fn.
	ApplyAt(fn func(*layout.Tree, layout.Viewports) (*layout.Tree, error)) error
}

// Signals receives the begin/end resizing flags so the rendering layer can
// suspend unrelated interaction during a drag.
type Signals interface {
	BeginResizing()
	EndResizing()
}

// NopSignals ignores resizing signals.
type NopSignals struct{}

func (NopSignals) BeginResizing() {}
func (NopSignals) EndResizing()   {}

// Options tunes a controller.
type Options struct {
	// DirectionThreshold is the pointer travel in pixels after which a corner
	// drag decides between splitting and joining.
	DirectionThreshold float64
	// Debounce is the quiet period before a resize is committed while the
	// pointer is still moving. Zero commits on every move.
	Debounce time.Duration
}

// DefaultOptions returns a 10px direction threshold and a 75ms debounce.
func DefaultOptions() Options {
	return Options{DirectionThreshold: 10, Debounce: 75 * time.Millisecond}
}

type resizeCommit struct {
	sep    layout.Separator
	t      float64
	extent float64
}

// Controller runs pointer gestures against one [Target]. Methods are safe for
// concurrent use, but gestures are strictly sequential: a new drag cannot
// begin until the previous one is released.
type Controller struct {
	engine  *layout.Engine
	target  Target
	signals Signals
	opts    Options
	logger  *log.Logger
	commits *Debouncer[resizeCommit]

	mu       sync.Mutex
	state    State
	kind     string
	started  time.Time
	resizing bool
	siblings [2]string
}

// New creates a controller. A nil signals uses [NopSignals].
func New(engine *layout.Engine, target Target, signals Signals, opts Options, logger *log.Logger) *Controller {
	if signals == nil {
		signals = NopSignals{}
	}
	if opts.DirectionThreshold <= 0 {
		opts.DirectionThreshold = DefaultOptions().DirectionThreshold
	}
	if logger == nil {
		logger = engine.Logger()
	}
	c := &Controller{
		engine:  engine,
		target:  target,
		signals: signals,
		opts:    opts,
		logger:  logger,
	}
	c.commits = NewDebouncer(opts.Debounce, c.commitResize)
	return c
}

// State returns a snapshot of the gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Resize != nil {
		r := *s.Resize
		r.Sizes = append([]float64(nil), r.Sizes...)
		s.Resize = &r
	}
	return s
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// Resizing reports whether the begin-resizing signal is raised.
func (c *Controller) Resizing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resizing
}

// =============================================================================
// Gesture start
// =============================================================================

// BeginCornerDrag starts a gesture on the given corner of area id with the
// pointer at p.
func (c *Controller) BeginCornerDrag(id string, corner Corner, p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIdle(); err != nil {
		return err
	}
	if n, ok := c.target.Tree().Node(id); !ok || !n.IsArea() {
		return errors.New(errors.ErrCodeNodeNotFound, "area %q does not exist", id)
	}
	open := c.state.Open
	c.state = State{Phase: DirectionPending, AreaID: id, Corner: corner, Origin: p, Open: open}
	c.start("corner")
	return nil
}

// BeginSeparatorDrag starts resizing separator sep with the pointer at p.
func (c *Controller) BeginSeparatorDrag(sep layout.Separator, p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIdle(); err != nil {
		return err
	}
	if _, _, err := layout.SeparatorSpan(c.target.Tree(), c.target.Viewports(), sep); err != nil {
		return err
	}
	open := c.state.Open
	c.state = State{Phase: Resizing, Origin: p, Open: open}
	c.start("separator")
	c.enterResizing(sep)
	return nil
}

func (c *Controller) checkIdle() error {
	if c.state.Phase != Idle {
		return errors.New(errors.ErrCodeInvalidInput, "a %s gesture is already in progress", c.state.Phase)
	}
	return nil
}

func (c *Controller) start(kind string) {
	c.kind = kind
	c.started = time.Now()
	observability.Gesture().OnGestureStart(kind)
	c.logger.Debug("gesture started", "kind", kind, "phase", c.state.Phase)
}

// =============================================================================
// Pointer movement
// =============================================================================

// Move advances the gesture with the pointer at p. Moving while idle is a
// no-op.
func (c *Controller) Move(p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state.Phase {
	case DirectionPending:
		return c.decide(p)
	case Resizing:
		return c.trackResize(p)
	case JoinMoving:
		c.trackJoin(p)
	}
	return nil
}

// decide resolves a pending corner drag once the pointer has travelled far
// enough. The decision is never revisited.
func (c *Controller) decide(p geom.Point) error {
	delta := p.Sub(c.state.Origin)
	if delta.Len() < c.opts.DirectionThreshold {
		return nil
	}
	o, inward := c.state.Corner.classify(delta)
	if !inward {
		c.enterJoin()
		c.trackJoin(p)
		return nil
	}

	c.state.Phase = Splitting
	id := c.state.AreaID
	side := c.state.Corner.side(o)
	var row string
	err := c.target.ApplyAt(func(t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		if err := c.engine.CheckSplit(vps, id, o); err != nil {
			return nil, err
		}
		next, err := c.engine.Split(t, id, o, side)
		if err != nil {
			return nil, err
		}
		row = layout.ParentIndex(next)[id]
		return next, nil
	})
	if err != nil {
		c.logger.Debug("split refused, dragging to join instead", "area", id, "reason", errors.UserMessage(err))
		c.enterJoin()
		c.trackJoin(p)
		return nil
	}

	c.enterResizing(layout.Separator{RowID: row, Index: 1})
	return c.trackResize(p)
}

func (c *Controller) enterResizing(sep layout.Separator) {
	c.state.Phase = Resizing
	c.state.Separator = &sep
	if !c.resizing {
		c.resizing = true
		c.signals.BeginResizing()
	}
}

func (c *Controller) enterJoin() {
	c.state.Phase = JoinMoving
	prev, next, _ := layout.Siblings(c.target.Tree(), layout.ParentIndex(c.target.Tree()), c.state.AreaID)
	c.siblings = [2]string{prev, next}
}

func (c *Controller) trackResize(p geom.Point) error {
	sep := *c.state.Separator
	tree := c.target.Tree()
	t, extent, err := c.engine.SeparatorFraction(tree, c.target.Viewports(), sep, p)
	if err != nil {
		c.abort("separator vanished")
		return errors.Wrap(errors.ErrCodeGestureAborted, err, "resize of %s/%d aborted", sep.RowID, sep.Index)
	}
	sizes, err := c.engine.PreviewSizes(tree, sep, t, extent)
	if err != nil {
		c.abort("separator vanished")
		return errors.Wrap(errors.ErrCodeGestureAborted, err, "resize of %s/%d aborted", sep.RowID, sep.Index)
	}
	c.state.Resize = &ResizePreview{Separator: sep, T: t, Extent: extent, Sizes: sizes}
	c.commits.Push(resizeCommit{sep: sep, t: t, extent: extent})
	return nil
}

func (c *Controller) trackJoin(p geom.Point) {
	tree := c.target.Tree()
	vps := c.target.Viewports()
	parents := layout.ParentIndex(tree)
	src := c.state.AreaID
	pid, ok := parents[src]
	if !ok {
		c.state.Join = nil
		return
	}
	for _, sib := range c.siblings {
		if sib == "" || parents[sib] != pid {
			continue
		}
		r, ok := vps[sib]
		if !ok || !r.Contains(p) {
			continue
		}
		c.state.Join = &JoinPreview{
			SourceID:  src,
			TargetID:  sib,
			Direction: joinDirection(tree.Layout[pid].Orientation, vps[src], r),
		}
		return
	}
	c.state.Join = nil
}

// joinDirection is the direction from source to target, restricted to the
// parent row's axis.
func joinDirection(o layout.Orientation, source, target geom.Rect) Direction {
	if o == layout.Vertical {
		if target.CenterY() < source.CenterY() {
			return North
		}
		return South
	}
	if target.CenterX() < source.CenterX() {
		return West
	}
	return East
}

// =============================================================================
// Release
// =============================================================================

// Release ends the gesture with the pointer at p. A pending resize is
// committed with the value at p before the resizing signal is dropped. A join
// commits only if the pointer is over an adjacent sibling. Releasing before a
// direction was decided changes nothing.
func (c *Controller) Release(p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Phase {
	case Idle:
		return nil
	case DirectionPending, Splitting:
		c.abort("released before direction")
		return nil
	case Resizing:
		if err := c.trackResize(p); err != nil {
			return err
		}
		c.commits.Flush()
		c.finish()
		return nil
	case JoinMoving:
		c.trackJoin(p)
		preview := c.state.Join
		if preview == nil {
			c.abort("no join target")
			return nil
		}
		err := c.target.Apply(func(t *layout.Tree) (*layout.Tree, error) {
			return c.engine.Join(t, preview.SourceID, preview.TargetID)
		})
		if err != nil {
			c.abort(string(errors.GetCode(err)))
			return errors.Wrap(errors.ErrCodeGestureAborted, err, "join %s into %s", preview.SourceID, preview.TargetID)
		}
		c.finish()
		return nil
	}
	return nil
}

// commitResize applies v to the tree committed at delivery time, not the
// tree the preview was computed from.
func (c *Controller) commitResize(v resizeCommit) {
	err := c.target.Apply(func(t *layout.Tree) (*layout.Tree, error) {
		return c.engine.Resize(t, v.sep, v.t, v.extent)
	})
	if err != nil {
		c.logger.Debug("resize commit skipped", "row", v.sep.RowID, "err", err)
	}
}

func (c *Controller) finish() {
	observability.Gesture().OnGestureCommit(c.kind, time.Since(c.started))
	c.logger.Debug("gesture committed", "kind", c.kind, "duration", time.Since(c.started))
	c.reset()
}

// abort ends the gesture without committing anything further.
func (c *Controller) abort(reason string) {
	c.commits.Cancel()
	observability.Gesture().OnGestureAbort(c.kind, reason)
	c.logger.Debug("gesture aborted", "kind", c.kind, "reason", reason)
	c.reset()
}

func (c *Controller) reset() {
	if c.resizing {
		c.resizing = false
		c.signals.EndResizing()
	}
	c.state = State{Phase: Idle, Open: c.state.Open}
	c.siblings = [2]string{}
	c.kind = ""
}

// Cancel aborts any gesture in progress without committing. Pending resize
// values are dropped.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != Idle {
		c.abort("cancelled")
	}
}

// =============================================================================
// Drop placement
// =============================================================================

// HoverDrop updates the open preview for content dragged over the layout.
// The committed tree is not touched.
func (c *Controller) HoverDrop(p geom.Point) (OpenPreview, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, placement, err := c.engine.DropTarget(c.target.Tree(), c.target.Viewports(), p)
	if err != nil {
		c.state.Open = nil
		return OpenPreview{}, err
	}
	preview := OpenPreview{TargetID: target, Placement: placement, Point: p}
	c.state.Open = &preview
	return preview, nil
}

// Drop places d at p and clears the open preview. A drop that resolves to a
// no-op, such as an area dropped onto itself, leaves the tree unchanged and
// reports the coded error.
func (c *Controller) Drop(d layout.Drop, p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Open = nil
	if c.state.Phase != Idle {
		return errors.New(errors.ErrCodeInvalidInput, "cannot drop during a %s gesture", c.state.Phase)
	}
	return c.target.ApplyAt(func(t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		return c.engine.PlaceAtDrop(t, vps, d, p)
	})
}

// LeaveDrop clears the open preview when dragged content leaves the layout.
func (c *Controller) LeaveDrop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Open = nil
}
