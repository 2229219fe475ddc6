package layout

import (
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
)

func TestSplitRootArea(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := SingleArea("A", Content{Type: "text", State: map[string]any{"text": "hello"}})

	got, err := e.Split(tr, "A", Horizontal, After)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	checkInvariants(t, got)

	root, ok := got.Row(got.RootID)
	if !ok {
		t.Fatalf("root %q is not a row", got.RootID)
	}
	if root.Orientation != Horizontal {
		t.Errorf("orientation = %s, want horizontal", root.Orientation)
	}
	if ids := root.ChildIDs(); !slices.Equal(ids, []string{"A", "area-1"}) {
		t.Errorf("children = %v, want [A area-1]", ids)
	}
	if sizes := childSizes(t, got, got.RootID); !approxSlice(sizes, []float64{0.5, 0.5}) {
		t.Errorf("sizes = %v, want [0.5 0.5]", sizes)
	}
	if c := got.Areas["area-1"]; c.Type != "text" || c.State["text"] != "" {
		t.Errorf("new area content = %+v, want registry default for text", c)
	}
	if got.Areas["A"].State["text"] != "hello" {
		t.Error("original area lost its content")
	}
}

func TestSplitNestedKeepsSlot(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.3, 0.7)

	got, err := e.Split(tr, "b", Vertical, Before)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	checkInvariants(t, got)

	if got.RootID != "R" {
		t.Errorf("root = %q, want R", got.RootID)
	}
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "row-1"}) {
		t.Errorf("R children = %v, want [a row-1]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.3, 0.7}) {
		t.Errorf("R sizes = %v, want [0.3 0.7]", sizes)
	}
	if ids := childIDs(t, got, "row-1"); !slices.Equal(ids, []string{"area-1", "b"}) {
		t.Errorf("row-1 children = %v, want [area-1 b]", ids)
	}
	if got.Layout["row-1"].Orientation != Vertical {
		t.Errorf("row-1 orientation = %s, want vertical", got.Layout["row-1"].Orientation)
	}
}

func TestSplitRejects(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	tests := []struct {
		name string
		id   string
		o    Orientation
		want errors.Code
	}{
		{"missing", "zzz", Horizontal, errors.ErrCodeNodeNotFound},
		{"row", "R", Horizontal, errors.ErrCodeInvalidInput},
		{"orientation", "a", "diagonal", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Split(tr, tt.id, tt.o, After)
			if !errors.Is(err, tt.want) {
				t.Errorf("Split() error = %v, want %s", err, tt.want)
			}
			if got != tr {
				t.Error("Split() should return the original tree on failure")
			}
		})
	}
}

func TestCheckSplit(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	vps := Viewports{"a": {Width: 79, Height: 200}}

	if err := e.CheckSplit(vps, "a", Horizontal); !errors.Is(err, errors.ErrCodeAreaTooSmall) {
		t.Errorf("CheckSplit(horizontal) = %v, want AREA_TOO_SMALL", err)
	}
	if err := e.CheckSplit(vps, "a", Vertical); err != nil {
		t.Errorf("CheckSplit(vertical) = %v, want nil", err)
	}
	if err := e.CheckSplit(vps, "b", Vertical); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("CheckSplit(missing) = %v, want NODE_NOT_FOUND", err)
	}
}

func TestJoinCollapsesRootRow(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	got, err := e.Join(tr, "b", "a")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	checkInvariants(t, got)
	if got.RootID != "a" || got.Len() != 1 {
		t.Errorf("Join() = %s, want single area a as root", dump(got))
	}
	if _, ok := got.Areas["b"]; ok {
		t.Error("joined source content survived")
	}
}

func TestJoinCollapsesIntoParentSlot(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Vertical, 0.4, 0.6)
	tr.AddArea("x", Content{Type: "text"})
	tr.AddArea("y", Content{Type: "text"})
	tr.AddRow("S", Horizontal, ChildRef{ID: "x", Size: 0.5}, ChildRef{ID: "y", Size: 0.5})
	tr.Layout["R"].Children[1].ID = "S"
	delete(tr.Layout, "b")
	delete(tr.Areas, "b")

	got, err := e.Join(tr, "y", "x")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "x"}) {
		t.Errorf("R children = %v, want [a x]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.4, 0.6}) {
		t.Errorf("R sizes = %v, want [0.4 0.6]", sizes)
	}
	if _, ok := got.Layout["S"]; ok {
		t.Error("collapsed row S survived")
	}
}

func TestJoinAbsorbsSize(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)

	got, err := e.Join(tr, "c", "b")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("children = %v, want [a b]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.2, 0.8}) {
		t.Errorf("sizes = %v, want [0.2 0.8]", sizes)
	}
}

func TestJoinRejects(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)
	tr.AddArea("x", Content{})
	tr.AddRow("S", Vertical, ChildRef{ID: "x", Size: 0.5}, ChildRef{ID: "c", Size: 0.5})
	tr.Layout["R"].Children[2].ID = "S"

	tests := []struct {
		name           string
		source, target string
		want           errors.Code
	}{
		{"self", "a", "a", errors.ErrCodeSelfDrop},
		{"missing", "a", "zzz", errors.ErrCodeNodeNotFound},
		{"not adjacent", "a", "S", errors.ErrCodeNotSiblings},
		{"different rows", "b", "x", errors.ErrCodeNotSiblings},
		{"root", "R", "a", errors.ErrCodeNotSiblings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Join(tr, tt.source, tt.target)
			if !errors.Is(err, tt.want) {
				t.Errorf("Join() error = %v, want %s", err, tt.want)
			}
			if got != tr {
				t.Error("Join() should return the original tree on failure")
			}
		})
	}
}

func TestSplitThenJoinRestoresSingleLeaf(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := SingleArea("A", Content{Type: "text"})

	split, err := e.Split(tr, "A", Vertical, After)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	joined, err := e.Join(split, "area-1", "A")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	checkInvariants(t, joined)
	if joined.RootID != "A" || joined.Len() != 1 || len(joined.Areas) != 1 {
		t.Errorf("split+join = %s, want single leaf A", dump(joined))
	}
}

func TestRemoveLeafRenormalizes(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)

	got, err := e.RemoveLeaf(tr, "b")
	if err != nil {
		t.Fatalf("RemoveLeaf() error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "c"}) {
		t.Errorf("children = %v, want [a c]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.2 / 0.7, 0.5 / 0.7}) {
		t.Errorf("sizes = %v, want [%v %v]", sizes, 0.2/0.7, 0.5/0.7)
	}
	if _, ok := got.Areas["b"]; ok {
		t.Error("removed area content survived")
	}
}

func TestRemoveLeafCollapsesRow(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.AddArea("x", Content{})
	tr.AddRow("S", Vertical, ChildRef{ID: "b", Size: 0.5}, ChildRef{ID: "x", Size: 0.5})
	tr.Layout["R"].Children[1].ID = "S"

	got, err := e.RemoveLeaf(tr, "b")
	if err != nil {
		t.Fatalf("RemoveLeaf() error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "x"}) {
		t.Errorf("R children = %v, want [a x]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.5, 0.5}) {
		t.Errorf("R sizes = %v, want [0.5 0.5]", sizes)
	}
}

func TestRemoveLeafCascadesEmptyRows(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.AddRow("S", Vertical, ChildRef{ID: "T", Size: 1})
	tr.AddRow("T", Horizontal, ChildRef{ID: "b", Size: 1})
	tr.Layout["R"].Children[1].ID = "S"

	got, err := e.RemoveLeaf(tr, "b")
	if err != nil {
		t.Fatalf("RemoveLeaf() error = %v", err)
	}
	checkInvariants(t, got)
	if got.RootID != "a" || got.Len() != 1 {
		t.Errorf("RemoveLeaf() = %s, want single area a", dump(got))
	}
}

func TestRemoveLastLeafEmptiesTree(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	got, err := e.RemoveLeaf(SingleArea("A", Content{}), "A")
	if err != nil {
		t.Fatalf("RemoveLeaf() error = %v", err)
	}
	if !got.IsEmpty() || got.Len() != 0 || len(got.Areas) != 0 {
		t.Errorf("RemoveLeaf() = %s, want empty tree", dump(got))
	}
}

func TestInsertIntoMatchingRow(t *testing.T) {
	tests := []struct {
		name      string
		policy    InsertPolicy
		sizes     []float64
		target    string
		placement Placement
		wantIDs   []string
		wantSizes []float64
	}{
		{
			name:      "equal after",
			policy:    InsertEqual,
			sizes:     []float64{0.5, 0.5},
			target:    "a",
			placement: PlaceRight,
			wantIDs:   []string{"a", "new", "b"},
			wantSizes: []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		},
		{
			name:      "equal before",
			policy:    InsertEqual,
			sizes:     []float64{0.2, 0.8},
			target:    "b",
			placement: PlaceLeft,
			wantIDs:   []string{"a", "new", "b"},
			wantSizes: []float64{0.2 * 2 / 3, 1.0 / 3, 0.8 * 2 / 3},
		},
		{
			name:      "fixed share",
			policy:    InsertFixed,
			sizes:     []float64{0.5, 0.5},
			target:    "b",
			placement: PlaceRight,
			wantIDs:   []string{"a", "b", "new"},
			wantSizes: []float64{0.35, 0.35, 0.3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.InsertPolicy = tt.policy
			e := newTestEngine(opts)
			tr := rowTree(Horizontal, tt.sizes...)

			got, err := e.Insert(tr, tt.target, tt.placement, NewArea{ID: "new", Content: Content{Type: "text"}})
			if err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			checkInvariants(t, got)
			if ids := childIDs(t, got, "R"); !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("children = %v, want %v", ids, tt.wantIDs)
			}
			if sizes := childSizes(t, got, "R"); !approxSlice(sizes, tt.wantSizes) {
				t.Errorf("sizes = %v, want %v", sizes, tt.wantSizes)
			}
		})
	}
}

func TestInsertWrapsMismatchedOrientation(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.4, 0.6)

	got, err := e.Insert(tr, "a", PlaceBottom, NewArea{ID: "new"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"row-1", "b"}) {
		t.Errorf("R children = %v, want [row-1 b]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.4, 0.6}) {
		t.Errorf("R sizes = %v, want [0.4 0.6]", sizes)
	}
	wrap := got.Layout["row-1"]
	if wrap.Orientation != Vertical || !slices.Equal(wrap.ChildIDs(), []string{"a", "new"}) {
		t.Errorf("wrapper = %+v, want vertical [a new]", wrap)
	}
	if sizes := childSizes(t, got, "row-1"); !approxSlice(sizes, []float64{0.5, 0.5}) {
		t.Errorf("wrapper sizes = %v, want [0.5 0.5]", sizes)
	}
	if got.Areas["new"].Type != DefaultAreaType {
		t.Errorf("new content type = %q, want %q", got.Areas["new"].Type, DefaultAreaType)
	}
}

func TestInsertAtRootWraps(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	got, err := e.Insert(SingleArea("A", Content{}), "A", PlaceTop, NewArea{ID: "new"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	checkInvariants(t, got)
	root := got.Layout[got.RootID]
	if !root.IsRow() || root.Orientation != Vertical || !slices.Equal(root.ChildIDs(), []string{"new", "A"}) {
		t.Errorf("root = %+v, want vertical row [new A]", root)
	}
}

func TestInsertReplace(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	got, err := e.Insert(tr, "b", PlaceReplace, NewArea{Content: Content{Type: "text", State: map[string]any{"text": "dropped"}}})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	checkInvariants(t, got)
	if got.Len() != tr.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), tr.Len())
	}
	if got.Areas["b"].State["text"] != "dropped" {
		t.Errorf("b content = %+v, want dropped content", got.Areas["b"])
	}
}

func TestInsertRejects(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	tests := []struct {
		name      string
		target    string
		placement Placement
		area      NewArea
		want      errors.Code
	}{
		{"missing target", "zzz", PlaceTop, NewArea{}, errors.ErrCodeNodeNotFound},
		{"row target", "R", PlaceTop, NewArea{}, errors.ErrCodeInvalidInput},
		{"bad placement", "a", "middle", NewArea{}, errors.ErrCodeInvalidPlacement},
		{"taken id", "a", PlaceTop, NewArea{ID: "b"}, errors.ErrCodeInvalidID},
		{"invalid id", "a", PlaceTop, NewArea{ID: "has space"}, errors.ErrCodeInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Insert(tr, tt.target, tt.placement, tt.area)
			if !errors.Is(err, tt.want) {
				t.Errorf("Insert() error = %v, want %s", err, tt.want)
			}
			if got != tr {
				t.Error("Insert() should return the original tree on failure")
			}
		})
	}
}

func TestMove(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)

	got, err := e.Move(tr, "a", "c", PlaceRight)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"b", "c", "a"}) {
		t.Errorf("children = %v, want [b c a]", ids)
	}
	if got.Areas["a"].State["text"] != "a" {
		t.Error("moved area lost its content")
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.375 * 2 / 3, 0.625 * 2 / 3, 1.0 / 3}) {
		t.Errorf("sizes = %v", sizes)
	}
}

func TestMoveAcrossCollapse(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	got, err := e.Move(tr, "a", "b", PlaceTop)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	checkInvariants(t, got)
	root := got.Layout[got.RootID]
	if !root.IsRow() || root.Orientation != Vertical || !slices.Equal(root.ChildIDs(), []string{"a", "b"}) {
		t.Errorf("root = %+v, want vertical row [a b]", root)
	}
	if _, ok := got.Layout["R"]; ok {
		t.Error("collapsed row R survived")
	}
}

func TestMoveReplace(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	got, err := e.Move(tr, "a", "b", PlaceReplace)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	checkInvariants(t, got)
	if got.RootID != "b" || got.Len() != 1 {
		t.Fatalf("Move() = %s, want single area b", dump(got))
	}
	if got.Areas["b"].State["text"] != "a" {
		t.Errorf("b content = %+v, want content moved from a", got.Areas["b"])
	}
}

func TestMoveNoops(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)

	tests := []struct {
		name           string
		source, target string
		placement      Placement
		want           errors.Code
	}{
		{"onto itself", "a", "a", PlaceLeft, errors.ErrCodeSelfDrop},
		{"back into own slot before", "a", "b", PlaceLeft, errors.ErrCodeSelfDrop},
		{"back into own slot after", "c", "b", PlaceRight, errors.ErrCodeSelfDrop},
		{"row source", "R", "a", PlaceLeft, errors.ErrCodeInvalidInput},
		{"missing source", "zzz", "a", PlaceLeft, errors.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Move(tr, tt.source, tt.target, tt.placement)
			if !errors.Is(err, tt.want) {
				t.Errorf("Move() error = %v, want %s", err, tt.want)
			}
			if got != tr {
				t.Error("Move() should return the original tree on failure")
			}
		})
	}
}

func TestPlaceAtDrop(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)
	vps := ProjectRoot(tr, geom.Rect{Width: 200, Height: 100})

	t.Run("center replaces", func(t *testing.T) {
		got, err := e.PlaceAtDrop(tr, vps, Drop{Area: NewArea{Content: Content{Type: "text", State: map[string]any{"text": "new"}}}}, geom.Point{X: 150, Y: 50})
		if err != nil {
			t.Fatalf("PlaceAtDrop() error = %v", err)
		}
		if got.Areas["b"].State["text"] != "new" {
			t.Errorf("b content = %+v, want replaced", got.Areas["b"])
		}
	})

	t.Run("bottom edge wraps", func(t *testing.T) {
		got, err := e.PlaceAtDrop(tr, vps, Drop{Area: NewArea{ID: "n"}}, geom.Point{X: 50, Y: 95})
		if err != nil {
			t.Fatalf("PlaceAtDrop() error = %v", err)
		}
		checkInvariants(t, got)
		parent := ParentIndex(got)["n"]
		if row := got.Layout[parent]; row.Orientation != Vertical || !slices.Equal(row.ChildIDs(), []string{"a", "n"}) {
			t.Errorf("parent of n = %+v, want vertical [a n]", row)
		}
	})

	t.Run("move to left edge", func(t *testing.T) {
		got, err := e.PlaceAtDrop(tr, vps, Drop{SourceID: "b"}, geom.Point{X: 5, Y: 50})
		if err != nil {
			t.Fatalf("PlaceAtDrop() error = %v", err)
		}
		checkInvariants(t, got)
		// Removing b collapses R, so a is wrapped in a fresh row.
		if ids := childIDs(t, got, got.RootID); !slices.Equal(ids, []string{"b", "a"}) {
			t.Errorf("children = %v, want [b a]", ids)
		}
	})

	t.Run("self drop", func(t *testing.T) {
		got, err := e.PlaceAtDrop(tr, vps, Drop{SourceID: "a"}, geom.Point{X: 50, Y: 50})
		if !errors.Is(err, errors.ErrCodeSelfDrop) || got != tr {
			t.Errorf("PlaceAtDrop() = %v, want SELF_DROP no-op", err)
		}
	})

	t.Run("empty layout", func(t *testing.T) {
		empty := NewTree()
		got, err := e.PlaceAtDrop(empty, Viewports{}, Drop{}, geom.Point{})
		if !errors.Is(err, errors.ErrCodeInvalidRoot) || got != empty {
			t.Errorf("PlaceAtDrop() = %v, want INVALID_ROOT no-op", err)
		}
	})
}

func TestAddArea(t *testing.T) {
	e := newTestEngine(DefaultOptions())

	got, err := e.AddArea(NewTree(), "", 0, NewArea{ID: "first"})
	if err != nil {
		t.Fatalf("AddArea(empty) error = %v", err)
	}
	if got.RootID != "first" {
		t.Errorf("root = %q, want first", got.RootID)
	}

	tr := rowTree(Horizontal, 0.5, 0.5)
	got, err = e.AddArea(tr, "R", -1, NewArea{ID: "z"})
	if err != nil {
		t.Fatalf("AddArea(R) error = %v", err)
	}
	checkInvariants(t, got)
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "b", "z"}) {
		t.Errorf("children = %v, want [a b z]", ids)
	}

	got, err = e.AddArea(tr, "R", 0, NewArea{ID: "z"})
	if err != nil {
		t.Fatalf("AddArea(R, 0) error = %v", err)
	}
	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"z", "a", "b"}) {
		t.Errorf("children = %v, want [z a b]", ids)
	}

	if _, err := e.AddArea(tr, "a", 0, NewArea{}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("AddArea(leaf) error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestAddAreaRejectsBadIDs(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	tests := []struct {
		name string
		id   string
	}{
		{"taken", "a"},
		{"whitespace", "new area"},
		{"control", "z\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.AddArea(tr, "R", -1, NewArea{ID: tt.id})
			if !errors.Is(err, errors.ErrCodeInvalidID) {
				t.Errorf("AddArea(%q) error = %v, want INVALID_ID", tt.id, err)
			}
			if got != tr {
				t.Error("rejected AddArea() should return the original tree")
			}
		})
	}
}

func TestSetContent(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.5, 0.5)

	got, err := e.SetContent(tr, "a", Content{Type: "text"})
	if err != nil {
		t.Fatalf("SetContent() error = %v", err)
	}
	if c := got.Areas["a"]; c.Type != "text" || c.State["text"] != "" {
		t.Errorf("content = %+v, want registry default", c)
	}
	if _, err := e.SetContent(tr, "R", Content{}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("SetContent(row) error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestSetChildSizes(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)

	tests := []struct {
		name  string
		sizes []float64
		want  []float64
		code  errors.Code
	}{
		{"normalizes", []float64{1, 1, 2}, []float64{0.25, 0.25, 0.5}, ""},
		{"coerces malformed", []float64{-1, 1, 1}, []float64{1.0 / 7, 3.0 / 7, 3.0 / 7}, ""},
		{"wrong length", []float64{1}, nil, errors.ErrCodeInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.SetChildSizes(tr, "R", tt.sizes)
			if tt.code != "" {
				if !errors.Is(err, tt.code) || got != tr {
					t.Errorf("SetChildSizes() = %v, want %s no-op", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetChildSizes() error = %v", err)
			}
			checkInvariants(t, got)
			if sizes := childSizes(t, got, "R"); !approxSlice(sizes, tt.want) {
				t.Errorf("sizes = %v, want %v", sizes, tt.want)
			}
		})
	}
}

func TestMutationsDoNotModifyInput(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)
	before := tr.Clone()

	_, _ = e.Split(tr, "a", Vertical, After)
	_, _ = e.Join(tr, "b", "a")
	_, _ = e.RemoveLeaf(tr, "c")
	_, _ = e.Move(tr, "a", "c", PlaceBottom)
	_, _ = e.Insert(tr, "b", PlaceReplace, NewArea{})
	_, _ = e.SetChildSizes(tr, "R", []float64{1, 1, 1})
	_, _ = e.Resize(tr, Separator{RowID: "R", Index: 1}, 0.5, 500)

	if !reflect.DeepEqual(tr, before) {
		t.Error("mutations modified their input tree")
	}
}

func TestDefaultTree(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	tr := e.DefaultTree()
	checkInvariants(t, tr)
	if tr.IsEmpty() || tr.Areas[tr.RootID].Type != DefaultAreaType {
		t.Errorf("DefaultTree() = %s, want one empty area", dump(tr))
	}

	opts := DefaultOptions()
	opts.DefaultAreaType = ""
	if tr := newTestEngine(opts).DefaultTree(); !tr.IsEmpty() {
		t.Errorf("DefaultTree() = %s, want empty tree", dump(tr))
	}
}
