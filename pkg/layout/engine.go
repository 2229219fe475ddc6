package layout

import (
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/observability"
	"github.com/matzehuels/karmyc/pkg/registry"
)

// InsertPolicy controls how sibling sizes are redistributed when a new child
// joins an existing row.
type InsertPolicy string

const (
	// InsertEqual gives the new child 1/(n+1) of the row and shrinks every
	// existing sibling proportionally.
	InsertEqual InsertPolicy = "equal"
	// InsertFixed gives the new child a fixed share and shrinks the existing
	// siblings proportionally to make room.
	InsertFixed InsertPolicy = "fixed"
)

// Valid reports whether p names a known policy.
func (p InsertPolicy) Valid() bool { return p == InsertEqual || p == InsertFixed }

// Options tunes the engine.
type Options struct {
	// MinContentPx is the smallest extent in pixels either side of a split or
	// resize may shrink to.
	MinContentPx float64
	// ReplaceThreshold is the center fraction used by placement classification.
	ReplaceThreshold float64
	// InsertPolicy selects sibling redistribution on insertion.
	InsertPolicy InsertPolicy
	// FixedInsertShare is the share given to a new child under InsertFixed.
	FixedInsertShare float64
	// DefaultAreaType is the content type of the fallback tree built when a
	// snapshot has no valid root. Empty means fall back to an empty tree.
	DefaultAreaType string
}

// DefaultOptions returns the stock engine settings.
func DefaultOptions() Options {
	return Options{
		MinContentPx:     40,
		ReplaceThreshold: DefaultReplaceThreshold,
		InsertPolicy:     InsertEqual,
		FixedInsertShare: 0.3,
		DefaultAreaType:  DefaultAreaType,
	}
}

// Side selects where a newly created area goes relative to an existing one.
type Side int

const (
	// Before places the new area left of or above the existing one.
	Before Side = iota
	// After places the new area right of or below the existing one.
	After
)

func (s Side) String() string {
	if s == Before {
		return "before"
	}
	return "after"
}

// ParseSide parses "before" or "after".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "before":
		return Before, true
	case "after":
		return After, true
	}
	return After, false
}

// NewArea describes an area created by an insertion. An empty ID is replaced
// by a generated one. A nil State is filled from the registry default for
// the content type.
type NewArea struct {
	ID      string
	Content Content
}

// Drop is content released over the layout. A non-empty SourceID moves that
// existing area; otherwise Area is created.
type Drop struct {
	SourceID string
	Area     NewArea
}

// Engine applies structural edits to layout trees.
//
// An Engine holds no tree state and is safe for concurrent use. Every
// mutation clones its input, edits the clone, and runs [GC] on the result.
// On failure the input tree pointer is returned unchanged with a coded error.
type Engine struct {
	opts     Options
	registry registry.Registry
	ids      IDGenerator
	logger   *log.Logger
}

// NewEngine creates an engine. Zero option fields take their defaults; a nil
// registry knows no types, a nil generator produces UUID ids, and a nil
// logger uses log.Default().
func NewEngine(opts Options, reg registry.Registry, ids IDGenerator, logger *log.Logger) *Engine {
	def := DefaultOptions()
	if opts.MinContentPx <= 0 {
		opts.MinContentPx = def.MinContentPx
	}
	if opts.ReplaceThreshold <= 0 {
		opts.ReplaceThreshold = def.ReplaceThreshold
	}
	if opts.InsertPolicy == "" {
		opts.InsertPolicy = def.InsertPolicy
	}
	if opts.FixedInsertShare <= 0 || opts.FixedInsertShare >= 1 {
		opts.FixedInsertShare = def.FixedInsertShare
	}
	if reg == nil {
		reg = registry.Empty{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{opts: opts, registry: reg, ids: ids, logger: logger}
}

// Options returns the engine settings after defaults were applied.
func (e *Engine) Options() Options { return e.opts }

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger { return e.logger }

// =============================================================================
// Mutation entry points
// =============================================================================

// Split replaces area id with a row of orientation o holding the original
// area and a new one, each at size 0.5. The new area has the same content
// type as the original and the registry's default state. side places the new
// area before or after the original.
//
// The new row takes the area's slot in its parent at the same size, or becomes
// the root. Pixel size limits are checked separately by [Engine.CheckSplit].
func (e *Engine) Split(t *Tree, id string, o Orientation, side Side) (*Tree, error) {
	const op = "split"
	start := time.Now()
	n, ok := t.Node(id)
	if !ok {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "area %q does not exist", id))
	}
	if !n.IsArea() {
		return e.reject(op, t, start, errors.New(errors.ErrCodeInvalidInput, "%q is a row, only areas can be split", id))
	}
	if !o.Valid() {
		return e.reject(op, t, start, errors.New(errors.ErrCodeInvalidInput, "invalid orientation %q", o))
	}

	c := t.Clone()
	leafID := e.addArea(c, NewArea{Content: Content{Type: c.Areas[id].Type}})
	rowID := freshID(c, e.ids, KindRow)

	children := []ChildRef{{ID: id, Size: 0.5}, {ID: leafID, Size: 0.5}}
	if side == Before {
		children[0], children[1] = children[1], children[0]
	}
	c.AddRow(rowID, o, children...)
	replaceSlot(c, ParentIndex(t), id, rowID)
	return e.commit(op, c, start)
}

// CheckSplit reports whether an area with viewport r is large enough to be
// split along o. Both halves must keep at least MinContentPx.
func (e *Engine) CheckSplit(r Viewports, id string, o Orientation) error {
	rect, ok := r[id]
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "area %q has no viewport", id)
	}
	if ext := Extent(rect, o); ext < 2*e.opts.MinContentPx {
		return errors.New(errors.ErrCodeAreaTooSmall, "area %q is %.0fpx along the split axis, need %.0fpx", id, ext, 2*e.opts.MinContentPx)
	}
	return nil
}

// Join merges source into target. The two must be adjacent children of the
// same row. Target absorbs source's size and source is deleted along with
// its content. A row left with one child is replaced by that child.
func (e *Engine) Join(t *Tree, sourceID, targetID string) (*Tree, error) {
	const op = "join"
	start := time.Now()
	if sourceID == targetID {
		return e.reject(op, t, start, errors.New(errors.ErrCodeSelfDrop, "cannot join %q into itself", sourceID))
	}
	for _, id := range []string{sourceID, targetID} {
		if _, ok := t.Node(id); !ok {
			return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "node %q does not exist", id))
		}
	}
	parents := ParentIndex(t)
	pid, ok := parents[sourceID]
	if !ok || parents[targetID] != pid {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNotSiblings, "%q and %q do not share a row", sourceID, targetID))
	}
	row := t.Layout[pid]
	si, ti := row.ChildIndex(sourceID), row.ChildIndex(targetID)
	if si-ti != 1 && ti-si != 1 {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNotSiblings, "%q and %q are not adjacent", sourceID, targetID))
	}

	c := t.Clone()
	crow := c.Layout[pid]
	crow.Children[ti].Size += crow.Children[si].Size
	crow.Children = slices.Delete(crow.Children, si, si+1)
	deleteSubtree(c, sourceID)
	renormalize(crow.Children)
	if len(crow.Children) == 1 {
		collapseRow(c, ParentIndex(c), pid)
	}
	return e.commit(op, c, start)
}

// RemoveLeaf deletes area id and its content. Remaining siblings are
// renormalized; a row left empty is removed from its own parent, cascading
// upward, and a row left with one child is replaced by that child. Removing
// the last area leaves an empty tree.
func (e *Engine) RemoveLeaf(t *Tree, id string) (*Tree, error) {
	const op = "remove"
	start := time.Now()
	n, ok := t.Node(id)
	if !ok {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "area %q does not exist", id))
	}
	if !n.IsArea() {
		return e.reject(op, t, start, errors.New(errors.ErrCodeInvalidInput, "%q is a row, only areas can be removed", id))
	}
	c := t.Clone()
	detach(c, id)
	deleteSubtree(c, id)
	return e.commit(op, c, start)
}

// Insert creates a new area next to target. Edge placements insert into the
// target's parent row when its orientation matches, redistributing sizes by
// the insert policy, and otherwise wrap target and the new area in a new row
// at 0.5 each. [PlaceReplace] overwrites the target's content instead.
func (e *Engine) Insert(t *Tree, targetID string, p Placement, area NewArea) (*Tree, error) {
	const op = "insert"
	start := time.Now()
	if err := e.checkTarget(t, targetID, p); err != nil {
		return e.reject(op, t, start, err)
	}
	if err := checkNewID(t, area.ID); err != nil {
		return e.reject(op, t, start, err)
	}

	c := t.Clone()
	if p == PlaceReplace {
		c.Areas[targetID] = e.content(area.Content)
		return e.commit(op, c, start)
	}
	id := e.addArea(c, area)
	e.place(c, targetID, id, p)
	return e.commit(op, c, start)
}

// Move relocates area source next to target. The source is first removed
// with the same repacking as [Engine.RemoveLeaf], then placed as [Engine.Insert]
// would place new content, keeping its id and content. [PlaceReplace] moves
// source's content into target and deletes source.
//
// Moving an area onto itself, or to the slot it already occupies, is a
// [errors.ErrCodeSelfDrop] no-op.
func (e *Engine) Move(t *Tree, sourceID, targetID string, p Placement) (*Tree, error) {
	const op = "move"
	start := time.Now()
	src, ok := t.Node(sourceID)
	if !ok {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "area %q does not exist", sourceID))
	}
	if !src.IsArea() {
		return e.reject(op, t, start, errors.New(errors.ErrCodeInvalidInput, "%q is a row, only areas can be moved", sourceID))
	}
	if sourceID == targetID {
		return e.reject(op, t, start, errors.New(errors.ErrCodeSelfDrop, "cannot drop %q onto itself", sourceID))
	}
	if err := e.checkTarget(t, targetID, p); err != nil {
		return e.reject(op, t, start, err)
	}
	if landsInPlace(t, sourceID, targetID, p) {
		return e.reject(op, t, start, errors.New(errors.ErrCodeSelfDrop, "%q is already %s of %q", sourceID, p, targetID))
	}

	c := t.Clone()
	if p == PlaceReplace {
		c.Areas[targetID] = c.Areas[sourceID]
		detach(c, sourceID)
		deleteSubtree(c, sourceID)
		return e.commit(op, c, start)
	}
	detach(c, sourceID)
	e.place(c, targetID, sourceID, p)
	return e.commit(op, c, start)
}

// PlaceAtDrop resolves a drop at point pt: it finds the nearest leaf,
// classifies pt against that leaf's viewport, and then moves or inserts.
func (e *Engine) PlaceAtDrop(t *Tree, vps Viewports, d Drop, pt geom.Point) (*Tree, error) {
	target, placement, err := e.DropTarget(t, vps, pt)
	if err != nil {
		return e.reject("drop", t, time.Now(), err)
	}
	if d.SourceID != "" {
		return e.Move(t, d.SourceID, target, placement)
	}
	return e.Insert(t, target, placement, d.Area)
}

// DropTarget returns the leaf and placement a drop at pt resolves to.
func (e *Engine) DropTarget(t *Tree, vps Viewports, pt geom.Point) (string, Placement, error) {
	target, ok := FindNearestLeaf(pt, vps, t)
	if !ok {
		return "", "", errors.New(errors.ErrCodeInvalidRoot, "layout has no areas to drop onto")
	}
	return target, ClassifyPlacementThreshold(vps[target], pt, e.opts.ReplaceThreshold), nil
}

// AddArea appends a new area to row at index, or at the end when index is
// out of range. Sizes are redistributed by the insert policy. On an empty
// tree with an empty rowID the new area becomes the root.
func (e *Engine) AddArea(t *Tree, rowID string, index int, area NewArea) (*Tree, error) {
	const op = "add"
	start := time.Now()
	if err := checkNewID(t, area.ID); err != nil {
		return e.reject(op, t, start, err)
	}
	if rowID == "" && t.IsEmpty() {
		c := NewTree()
		c.RootID = e.addArea(c, area)
		return e.commit(op, c, start)
	}
	row, ok := t.Row(rowID)
	if !ok {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "row %q does not exist", rowID))
	}
	if index < 0 || index > len(row.Children) {
		index = len(row.Children)
	}
	c := t.Clone()
	id := e.addArea(c, area)
	e.insertAt(c.Layout[rowID], index, id)
	return e.commit(op, c, start)
}

// SetContent replaces the content of area id.
func (e *Engine) SetContent(t *Tree, id string, content Content) (*Tree, error) {
	const op = "set-content"
	start := time.Now()
	n, ok := t.Node(id)
	if !ok || !n.IsArea() {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "area %q does not exist", id))
	}
	c := t.Clone()
	c.Areas[id] = e.content(content)
	return e.commit(op, c, start)
}

// SetChildSizes replaces every child size of row id. Malformed values are
// coerced to an equal share and the result is renormalized.
func (e *Engine) SetChildSizes(t *Tree, id string, sizes []float64) (*Tree, error) {
	const op = "set-sizes"
	start := time.Now()
	row, ok := t.Row(id)
	if !ok {
		return e.reject(op, t, start, errors.New(errors.ErrCodeNodeNotFound, "row %q does not exist", id))
	}
	if len(sizes) != len(row.Children) {
		return e.reject(op, t, start, errors.New(errors.ErrCodeInvalidSize, "row %q has %d children, got %d sizes", id, len(row.Children), len(sizes)))
	}
	c := t.Clone()
	crow := c.Layout[id]
	for i := range crow.Children {
		crow.Children[i].Size = sizes[i]
	}
	if coerced, _ := repairSizes(crow.Children); coerced > 0 {
		e.logger.Warn("coerced malformed sizes", "row", id, "count", coerced)
		observability.Layout().OnSizeCoerced(id, coerced)
	}
	return e.commit(op, c, start)
}

// Clean runs [GC] and logs what it repaired.
func (e *Engine) Clean(t *Tree) *Tree {
	out, rep := GC(t)
	e.logReport("gc", rep)
	return out
}

// DefaultTree returns the fallback layout: a single area of the configured
// default type, or an empty tree when no default type is set.
func (e *Engine) DefaultTree() *Tree {
	if e.opts.DefaultAreaType == "" {
		return NewTree()
	}
	t := NewTree()
	t.RootID = e.addArea(t, NewArea{Content: Content{Type: e.opts.DefaultAreaType}})
	return t
}

// =============================================================================
// Internal helpers
// =============================================================================

// checkNewID validates a caller-chosen id for a new node. An empty id is
// left to the generator.
func checkNewID(t *Tree, id string) error {
	if id == "" {
		return nil
	}
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	if _, taken := t.Layout[id]; taken {
		return errors.New(errors.ErrCodeInvalidID, "node %q already exists", id)
	}
	return nil
}

func (e *Engine) checkTarget(t *Tree, targetID string, p Placement) *errors.Error {
	if !p.Valid() {
		return errors.New(errors.ErrCodeInvalidPlacement, "invalid placement %q", p)
	}
	n, ok := t.Node(targetID)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "area %q does not exist", targetID)
	}
	if !n.IsArea() {
		return errors.New(errors.ErrCodeInvalidInput, "drop target %q is a row", targetID)
	}
	return nil
}

// content fills in the type and registry default state.
func (e *Engine) content(c Content) Content {
	if c.Type == "" {
		c.Type = DefaultAreaType
	}
	if c.State == nil {
		if state, ok := e.registry.DefaultState(c.Type); ok {
			c.State = state
		}
	} else {
		c.State = maps.Clone(c.State)
	}
	return c
}

// addArea adds a detached area to t and returns its id.
func (e *Engine) addArea(t *Tree, a NewArea) string {
	id := a.ID
	if id == "" {
		id = freshID(t, e.ids, KindArea)
	}
	t.AddArea(id, e.content(a.Content))
	return id
}

// place attaches the detached node id next to target on side p.
func (e *Engine) place(t *Tree, targetID, id string, p Placement) {
	o := p.Orientation()
	parents := ParentIndex(t)
	if pid, ok := parents[targetID]; ok {
		if row := t.Layout[pid]; row.Orientation == o {
			i := row.ChildIndex(targetID)
			if !p.Before() {
				i++
			}
			e.insertAt(row, i, id)
			return
		}
	}

	rowID := freshID(t, e.ids, KindRow)
	children := []ChildRef{{ID: targetID, Size: 0.5}, {ID: id, Size: 0.5}}
	if p.Before() {
		children[0], children[1] = children[1], children[0]
	}
	t.AddRow(rowID, o, children...)
	replaceSlot(t, parents, targetID, rowID)
}

// insertAt inserts id into row at index i and redistributes sizes.
func (e *Engine) insertAt(row *Node, i int, id string) {
	n := float64(len(row.Children))
	share := 1 / (n + 1)
	if e.opts.InsertPolicy == InsertFixed && n > 0 {
		share = e.opts.FixedInsertShare
	}
	for j := range row.Children {
		row.Children[j].Size *= 1 - share
	}
	row.Children = slices.Insert(row.Children, i, ChildRef{ID: id, Size: share})
	renormalize(row.Children)
}

func (e *Engine) commit(op string, next *Tree, start time.Time) (*Tree, error) {
	out, rep := GC(next)
	e.logReport(op, rep)
	e.logger.Debug("layout mutation", "op", op, "nodes", out.Len(), "root", out.RootID)
	observability.Layout().OnMutation(op, out.Len(), time.Since(start), nil)
	return out, nil
}

func (e *Engine) reject(op string, t *Tree, start time.Time, err error) (*Tree, error) {
	e.logger.Debug("layout mutation skipped", "op", op, "code", errors.GetCode(err), "reason", errors.UserMessage(err))
	observability.Layout().OnMutation(op, t.Len(), time.Since(start), err)
	return t, err
}

func (e *Engine) logReport(op string, rep Report) {
	hooks := observability.Layout()
	for _, d := range rep.Dangling {
		e.logger.Warn("dropped dangling reference", "op", op, "row", d.Row, "child", d.Child, "reason", d.Reason)
		hooks.OnDanglingReference(d.Row, d.Child)
	}
	for _, row := range slices.Sorted(maps.Keys(rep.CoercedSizes)) {
		n := rep.CoercedSizes[row]
		e.logger.Warn("coerced malformed sizes", "op", op, "row", row, "count", n)
		hooks.OnSizeCoerced(row, n)
	}
	if len(rep.RemovedNodes) > 0 {
		e.logger.Debug("removed unreachable nodes", "op", op, "count", len(rep.RemovedNodes))
		hooks.OnNodesRemoved(len(rep.RemovedNodes))
	}
	if rep.InvalidRoot {
		e.logger.Info("layout has no valid root", "op", op)
	}
}
