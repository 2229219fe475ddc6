package gesture

import (
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/registry"
)

type fakeTarget struct {
	mu      sync.Mutex
	tree    *layout.Tree
	bounds  geom.Rect
	commits int
}

func (f *fakeTarget) Tree() *layout.Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree
}

func (f *fakeTarget) Viewports() layout.Viewports {
	f.mu.Lock()
	defer f.mu.Unlock()
	return layout.ProjectRoot(f.tree, f.bounds)
}

func (f *fakeTarget) Commit(t *layout.Tree) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tree = t
	f.commits++
}

func (f *fakeTarget) Apply(fn func(*layout.Tree) (*layout.Tree, error)) error {
	return f.ApplyAt(func(t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return fn(t)
	})
}

func (f *fakeTarget) ApplyAt(fn func(*layout.Tree, layout.Viewports) (*layout.Tree, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := fn(f.tree, layout.ProjectRoot(f.tree, f.bounds))
	if err != nil {
		return err
	}
	f.tree = next
	f.commits++
	return nil
}

type recordingSignals struct {
	begins, ends int
}

func (r *recordingSignals) BeginResizing() { r.begins++ }
func (r *recordingSignals) EndResizing()   { r.ends++ }

func newEngine() *layout.Engine {
	return layout.NewEngine(layout.DefaultOptions(), registry.Builtin(), &layout.SequenceGenerator{}, log.New(io.Discard))
}

func twoPanes() *layout.Tree {
	t := layout.NewTree()
	t.AddArea("a", layout.Content{Type: "text"})
	t.AddArea("b", layout.Content{Type: "text"})
	t.AddRow("R", layout.Horizontal, layout.ChildRef{ID: "a", Size: 0.5}, layout.ChildRef{ID: "b", Size: 0.5})
	t.RootID = "R"
	return t
}

func newController(tree *layout.Tree, bounds geom.Rect, debounce time.Duration) (*Controller, *fakeTarget, *recordingSignals) {
	target := &fakeTarget{tree: tree, bounds: bounds}
	signals := &recordingSignals{}
	opts := DefaultOptions()
	opts.Debounce = debounce
	return New(newEngine(), target, signals, opts, nil), target, signals
}

func sizes(t *testing.T, tree *layout.Tree, rowID string) []float64 {
	t.Helper()
	row, ok := tree.Row(rowID)
	if !ok {
		t.Fatalf("row %q missing", rowID)
	}
	out := make([]float64, len(row.Children))
	for i, c := range row.Children {
		out[i] = c.Size
	}
	return out
}

func approx(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if d := a[i] - b[i]; d > 1e-9 || d < -1e-9 {
			return false
		}
	}
	return true
}

func TestCornerDragSplitsThenResizes(t *testing.T) {
	c, target, signals := newController(
		layout.SingleArea("A", layout.Content{Type: "text"}),
		geom.Rect{Width: 400, Height: 300},
		time.Hour,
	)

	if err := c.BeginCornerDrag("A", NorthWest, geom.Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("BeginCornerDrag() error = %v", err)
	}
	if err := c.Move(geom.Point{X: 30, Y: 5}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := c.Phase(); got != Resizing {
		t.Fatalf("Phase() = %s, want resizing", got)
	}

	tree := target.Tree()
	root, ok := tree.Row(tree.RootID)
	if !ok || root.Orientation != layout.Horizontal {
		t.Fatalf("root = %+v, want horizontal row", root)
	}
	if ids := root.ChildIDs(); !slices.Equal(ids, []string{"area-1", "A"}) {
		t.Errorf("children = %v, want [area-1 A]", ids)
	}
	// The split is committed at 0.5/0.5; the resize is still debounced.
	if got := sizes(t, tree, root.ID); !approx(got, []float64{0.5, 0.5}) {
		t.Errorf("committed sizes = %v, want [0.5 0.5]", got)
	}
	st := c.State()
	if st.Resize == nil || !approx(st.Resize.Sizes, []float64{0.1, 0.9}) {
		t.Errorf("preview = %+v, want sizes [0.1 0.9]", st.Resize)
	}
	if signals.begins != 1 || !c.Resizing() {
		t.Error("resizing signal not raised")
	}

	if err := c.Release(geom.Point{X: 100, Y: 5}); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if got := sizes(t, target.Tree(), root.ID); !approx(got, []float64{0.25, 0.75}) {
		t.Errorf("sizes after release = %v, want [0.25 0.75]", got)
	}
	if c.Phase() != Idle || c.Resizing() || signals.ends != 1 {
		t.Errorf("after release: phase %s, resizing %v, ends %d", c.Phase(), c.Resizing(), signals.ends)
	}
	if st := c.State(); st.Resize != nil || st.Separator != nil {
		t.Errorf("previews not cleared: %+v", st)
	}
}

func TestCornerDragVerticalSplitSide(t *testing.T) {
	c, target, _ := newController(
		layout.SingleArea("A", layout.Content{}),
		geom.Rect{Width: 400, Height: 300},
		0,
	)
	if err := c.BeginCornerDrag("A", SouthEast, geom.Point{X: 400, Y: 300}); err != nil {
		t.Fatalf("BeginCornerDrag() error = %v", err)
	}
	if err := c.Move(geom.Point{X: 398, Y: 200}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	tree := target.Tree()
	root, ok := tree.Row(tree.RootID)
	if !ok || root.Orientation != layout.Vertical {
		t.Fatalf("root = %+v, want vertical row", root)
	}
	if ids := root.ChildIDs(); !slices.Equal(ids, []string{"A", "area-1"}) {
		t.Errorf("children = %v, want [A area-1]", ids)
	}
	_ = c.Release(geom.Point{X: 398, Y: 200})
}

func TestReleaseBeforeDirectionIsNoop(t *testing.T) {
	c, target, signals := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, 0)
	before := target.Tree()

	if err := c.BeginCornerDrag("a", NorthEast, geom.Point{X: 100, Y: 0}); err != nil {
		t.Fatalf("BeginCornerDrag() error = %v", err)
	}
	if err := c.Move(geom.Point{X: 96, Y: 4}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := c.Phase(); got != DirectionPending {
		t.Fatalf("Phase() = %s, want direction-pending", got)
	}
	if err := c.Release(geom.Point{X: 96, Y: 4}); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if target.Tree() != before || target.commits != 0 {
		t.Error("tree changed by an undecided gesture")
	}
	if c.Phase() != Idle || signals.begins != 0 {
		t.Errorf("phase %s, begins %d, want idle and no signal", c.Phase(), signals.begins)
	}
}

func TestOutwardDragJoinsSibling(t *testing.T) {
	c, target, _ := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, 0)

	if err := c.BeginCornerDrag("a", NorthEast, geom.Point{X: 100, Y: 0}); err != nil {
		t.Fatalf("BeginCornerDrag() error = %v", err)
	}
	if err := c.Move(geom.Point{X: 150, Y: 50}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	st := c.State()
	if st.Phase != JoinMoving {
		t.Fatalf("Phase = %s, want join-moving", st.Phase)
	}
	want := JoinPreview{SourceID: "a", TargetID: "b", Direction: East}
	if st.Join == nil || *st.Join != want {
		t.Fatalf("Join = %+v, want %+v", st.Join, want)
	}

	if err := c.Release(geom.Point{X: 150, Y: 50}); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	tree := target.Tree()
	if tree.RootID != "b" || tree.Len() != 1 {
		t.Errorf("tree after join = root %q with %d nodes, want single area b", tree.RootID, tree.Len())
	}
	if c.State().Join != nil {
		t.Error("join preview not cleared")
	}
}

func TestOutwardDragWithoutTargetIsNoop(t *testing.T) {
	c, target, _ := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, 0)
	before := target.Tree()

	_ = c.BeginCornerDrag("a", NorthEast, geom.Point{X: 100, Y: 0})
	_ = c.Move(geom.Point{X: 150, Y: 50})
	// Pointer returns to the source before release.
	_ = c.Move(geom.Point{X: 50, Y: 50})
	if c.State().Join != nil {
		t.Error("join preview should clear when the pointer leaves the sibling")
	}
	if err := c.Release(geom.Point{X: 50, Y: 50}); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if target.Tree() != before {
		t.Error("tree changed without a join target")
	}
}

func TestTooSmallSplitFallsBackToJoin(t *testing.T) {
	c, target, signals := newController(
		layout.SingleArea("A", layout.Content{}),
		geom.Rect{Width: 60, Height: 300},
		0,
	)
	_ = c.BeginCornerDrag("A", NorthWest, geom.Point{X: 0, Y: 0})
	if err := c.Move(geom.Point{X: 30, Y: 2}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := c.Phase(); got != JoinMoving {
		t.Fatalf("Phase() = %s, want join-moving", got)
	}
	_ = c.Release(geom.Point{X: 30, Y: 2})
	if target.commits != 0 || signals.begins != 0 {
		t.Errorf("commits %d, begins %d, want none", target.commits, signals.begins)
	}
}

func TestSeparatorDrag(t *testing.T) {
	c, target, signals := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, time.Hour)
	sep := layout.Separator{RowID: "R", Index: 1}

	if err := c.BeginSeparatorDrag(sep, geom.Point{X: 100, Y: 50}); err != nil {
		t.Fatalf("BeginSeparatorDrag() error = %v", err)
	}
	if err := c.Move(geom.Point{X: 150, Y: 50}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if st := c.State(); st.Resize == nil || !approx(st.Resize.Sizes, []float64{0.75, 0.25}) {
		t.Errorf("preview = %+v, want [0.75 0.25]", st.Resize)
	}
	if target.commits != 0 {
		t.Errorf("commits = %d before release, want 0", target.commits)
	}

	if err := c.Release(geom.Point{X: 190, Y: 50}); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if got := sizes(t, target.Tree(), "R"); !approx(got, []float64{0.8, 0.2}) {
		t.Errorf("sizes = %v, want [0.8 0.2]", got)
	}
	if target.commits != 1 {
		t.Errorf("commits = %d, want exactly 1 flushed commit", target.commits)
	}
	if signals.begins != 1 || signals.ends != 1 {
		t.Errorf("signals = %+v, want one begin and one end", signals)
	}
}

func TestSeparatorDragAbortsWhenNodesVanish(t *testing.T) {
	c, target, signals := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, time.Hour)
	_ = c.BeginSeparatorDrag(layout.Separator{RowID: "R", Index: 1}, geom.Point{X: 100, Y: 50})
	_ = c.Move(geom.Point{X: 120, Y: 50})

	replaced := layout.SingleArea("other", layout.Content{})
	target.Commit(replaced)

	err := c.Move(geom.Point{X: 130, Y: 50})
	if !errors.Is(err, errors.ErrCodeGestureAborted) {
		t.Fatalf("Move() error = %v, want GESTURE_ABORTED", err)
	}
	if c.Phase() != Idle || c.Resizing() || signals.ends != 1 {
		t.Errorf("phase %s, resizing %v, ends %d after abort", c.Phase(), c.Resizing(), signals.ends)
	}
	if target.Tree() != replaced {
		t.Error("aborted gesture modified the replaced tree")
	}
	if err := c.Release(geom.Point{X: 130, Y: 50}); err != nil {
		t.Errorf("Release() after abort error = %v", err)
	}
}

func TestResizeCommitAppliesToCurrentTree(t *testing.T) {
	c, target, _ := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, time.Hour)
	engine := newEngine()
	_ = c.BeginSeparatorDrag(layout.Separator{RowID: "R", Index: 1}, geom.Point{X: 100, Y: 50})
	_ = c.Move(geom.Point{X: 60, Y: 50})

	// An edit from another caller lands while the resize is still pending.
	err := target.Apply(func(tr *layout.Tree) (*layout.Tree, error) {
		return engine.SetContent(tr, "b", layout.Content{Type: "preview"})
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if err := c.Release(geom.Point{X: 60, Y: 50}); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	tree := target.Tree()
	if got := tree.Areas["b"].Type; got != "preview" {
		t.Errorf("content of b = %q, want preview kept after the resize commit", got)
	}
	row, _ := tree.Row("R")
	if got := row.Children[0].Size; got < 0.3-1e-9 || got > 0.3+1e-9 {
		t.Errorf("size of a = %v, want 0.3", got)
	}
}

func TestGesturesAreSequential(t *testing.T) {
	c, _, _ := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, 0)
	if err := c.BeginCornerDrag("a", NorthEast, geom.Point{X: 100}); err != nil {
		t.Fatalf("BeginCornerDrag() error = %v", err)
	}
	if err := c.BeginSeparatorDrag(layout.Separator{RowID: "R", Index: 1}, geom.Point{X: 100}); err == nil {
		t.Error("second gesture should be rejected while one is in progress")
	}
	c.Cancel()
	if c.Phase() != Idle {
		t.Errorf("Phase() = %s after Cancel, want idle", c.Phase())
	}
}

func TestBeginRejectsUnknownNodes(t *testing.T) {
	c, _, _ := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, 0)
	if err := c.BeginCornerDrag("R", NorthEast, geom.Point{}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("BeginCornerDrag(row) error = %v, want NODE_NOT_FOUND", err)
	}
	if err := c.BeginSeparatorDrag(layout.Separator{RowID: "R", Index: 5}, geom.Point{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("BeginSeparatorDrag(bad index) error = %v, want INVALID_INPUT", err)
	}
	if c.Phase() != Idle {
		t.Errorf("Phase() = %s, want idle", c.Phase())
	}
}

func TestHoverAndDrop(t *testing.T) {
	c, target, _ := newController(twoPanes(), geom.Rect{Width: 200, Height: 100}, 0)

	preview, err := c.HoverDrop(geom.Point{X: 150, Y: 50})
	if err != nil {
		t.Fatalf("HoverDrop() error = %v", err)
	}
	if preview.TargetID != "b" || preview.Placement != layout.PlaceReplace {
		t.Errorf("HoverDrop() = %+v, want replace on b", preview)
	}
	if c.State().Open == nil {
		t.Error("open preview not recorded")
	}
	if target.commits != 0 {
		t.Error("hover committed a tree")
	}

	if err := c.Drop(layout.Drop{Area: layout.NewArea{ID: "n"}}, geom.Point{X: 195, Y: 50}); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if ids := target.Tree().Layout["R"].ChildIDs(); !slices.Equal(ids, []string{"a", "b", "n"}) {
		t.Errorf("children = %v, want [a b n]", ids)
	}
	if c.State().Open != nil {
		t.Error("open preview not cleared by drop")
	}

	if err := c.Drop(layout.Drop{SourceID: "a"}, geom.Point{X: 50, Y: 50}); !errors.IsNoop(err) {
		t.Errorf("self drop error = %v, want a no-op code", err)
	}
}

func TestJoinDirection(t *testing.T) {
	left := geom.Rect{Width: 100, Height: 100}
	right := geom.Rect{Left: 100, Width: 100, Height: 100}
	top := geom.Rect{Width: 100, Height: 50}
	bottom := geom.Rect{Top: 50, Width: 100, Height: 50}

	tests := []struct {
		o              layout.Orientation
		source, target geom.Rect
		want           Direction
	}{
		{layout.Horizontal, left, right, East},
		{layout.Horizontal, right, left, West},
		{layout.Vertical, top, bottom, South},
		{layout.Vertical, bottom, top, North},
	}
	for _, tt := range tests {
		if got := joinDirection(tt.o, tt.source, tt.target); got != tt.want {
			t.Errorf("joinDirection(%s) = %s, want %s", tt.o, got, tt.want)
		}
	}
}

func TestCornerClassify(t *testing.T) {
	tests := []struct {
		corner Corner
		d      geom.Point
		o      layout.Orientation
		inward bool
	}{
		{NorthEast, geom.Point{X: -20, Y: 5}, layout.Horizontal, true},
		{NorthEast, geom.Point{X: 20, Y: 5}, layout.Horizontal, false},
		{NorthEast, geom.Point{X: 1, Y: 20}, layout.Vertical, true},
		{NorthWest, geom.Point{X: 20, Y: 0}, layout.Horizontal, true},
		{SouthWest, geom.Point{X: 0, Y: -20}, layout.Vertical, true},
		{SouthEast, geom.Point{X: 0, Y: 20}, layout.Vertical, false},
	}
	for _, tt := range tests {
		o, inward := tt.corner.classify(tt.d)
		if o != tt.o || inward != tt.inward {
			t.Errorf("%s.classify(%v) = %s, %v, want %s, %v", tt.corner, tt.d, o, inward, tt.o, tt.inward)
		}
	}
}
