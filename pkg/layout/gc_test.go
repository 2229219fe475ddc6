package layout

import (
	"math"
	"reflect"
	"slices"
	"testing"
)

func TestGCDropsDanglingReference(t *testing.T) {
	tr := rowTree(Horizontal, 0.2, 0.3, 0.5)
	tr.Layout["R"].Children[1].ID = "ghost"
	delete(tr.Layout, "b")
	delete(tr.Areas, "b")

	got, rep := GC(tr)
	checkInvariants(t, got)

	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a", "c"}) {
		t.Errorf("children = %v, want [a c]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{0.2 / 0.7, 0.5 / 0.7}) {
		t.Errorf("sizes = %v, want [%v %v]", sizes, 0.2/0.7, 0.5/0.7)
	}
	want := []DanglingRef{{Row: "R", Child: "ghost", Reason: ReasonMissing}}
	if !reflect.DeepEqual(rep.Dangling, want) {
		t.Errorf("Dangling = %v, want %v", rep.Dangling, want)
	}
}

func TestGCRemovesUnreachable(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.AddArea("orphan", Content{Type: "text"})
	tr.AddRow("lost", Vertical, ChildRef{ID: "orphan", Size: 1})

	got, rep := GC(tr)
	checkInvariants(t, got)

	for _, id := range []string{"orphan", "lost"} {
		if _, ok := got.Layout[id]; ok {
			t.Errorf("node %q survived GC", id)
		}
	}
	if _, ok := got.Areas["orphan"]; ok {
		t.Error("content of unreachable area survived GC")
	}
	if !slices.Contains(rep.RemovedNodes, "lost") || !slices.Contains(rep.RemovedContent, "orphan") {
		t.Errorf("report = %+v, want lost/orphan removed", rep)
	}
}

func TestGCCollapsesEmptyRowsToFixedPoint(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.AddRow("S", Vertical, ChildRef{ID: "T", Size: 1})
	tr.AddRow("T", Vertical)
	tr.Layout["R"].Children[1] = ChildRef{ID: "S", Size: 0.5}
	delete(tr.Layout, "b")
	delete(tr.Areas, "b")

	got, rep := GC(tr)
	checkInvariants(t, got)

	if ids := childIDs(t, got, "R"); !slices.Equal(ids, []string{"a"}) {
		t.Errorf("children = %v, want [a]", ids)
	}
	if sizes := childSizes(t, got, "R"); !approxSlice(sizes, []float64{1}) {
		t.Errorf("sizes = %v, want [1]", sizes)
	}
	if rep.Passes < 3 {
		t.Errorf("Passes = %d, want at least 3", rep.Passes)
	}
	if !slices.Contains(rep.EmptyRows, "S") || !slices.Contains(rep.EmptyRows, "T") {
		t.Errorf("EmptyRows = %v, want S and T", rep.EmptyRows)
	}
}

func TestGCEmptyRootRowEmptiesTree(t *testing.T) {
	tr := NewTree()
	tr.AddRow("R", Horizontal, ChildRef{ID: "ghost", Size: 1})
	tr.RootID = "R"

	got, _ := GC(tr)
	if !got.IsEmpty() || got.Len() != 0 {
		t.Errorf("GC() = %s, want empty tree", dump(got))
	}
}

func TestGCInvalidRoot(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.RootID = "missing"

	got, rep := GC(tr)
	if !rep.InvalidRoot {
		t.Error("InvalidRoot = false, want true")
	}
	if got.RootID != "" || len(got.Layout) != 0 || len(got.Areas) != 0 {
		t.Errorf("GC() = %s, want empty tree", dump(got))
	}
}

func TestGCCoercesMalformedSizes(t *testing.T) {
	tests := []struct {
		name  string
		sizes []float64
		want  []float64
	}{
		{"zero", []float64{0, 0.5}, []float64{0.5, 0.5}},
		{"negative", []float64{-1, 0.5}, []float64{0.5, 0.5}},
		{"nan", []float64{math.NaN(), 0.5}, []float64{0.5, 0.5}},
		{"inf", []float64{math.Inf(1), 1.5}, []float64{0.25, 0.75}},
		{"all missing", []float64{0, 0, 0}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		{"unnormalized", []float64{2, 6}, []float64{0.25, 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := rowTree(Horizontal, tt.sizes...)
			got, rep := GC(tr)
			checkInvariants(t, got)
			if sizes := childSizes(t, got, "R"); !approxSlice(sizes, tt.want) {
				t.Errorf("sizes = %v, want %v", sizes, tt.want)
			}
			if !rep.Changed() {
				t.Error("Changed() = false, want true")
			}
		})
	}
}

func TestGCBreaksCycles(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.AddRow("S", Vertical, ChildRef{ID: "R", Size: 1})
	tr.Layout["R"].Children[1] = ChildRef{ID: "S", Size: 0.5}
	delete(tr.Layout, "b")
	delete(tr.Areas, "b")

	got, rep := GC(tr)
	checkInvariants(t, got)
	if _, ok := got.Layout["S"]; ok {
		t.Error("cyclic row S survived GC")
	}
	if !slices.ContainsFunc(rep.Dangling, func(d DanglingRef) bool { return d.Reason == ReasonDuplicate }) {
		t.Errorf("Dangling = %v, want a duplicate reference", rep.Dangling)
	}
}

func TestGCSharedChildKeptOnce(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.AddRow("S", Vertical, ChildRef{ID: "a", Size: 0.5}, ChildRef{ID: "b", Size: 0.5})
	tr.Layout["R"].Children = append(tr.Layout["R"].Children, ChildRef{ID: "S", Size: 0.5})

	got, _ := GC(tr)
	checkInvariants(t, got)
	if _, ok := got.Layout["S"]; ok {
		t.Error("row S whose children are all shared should be removed")
	}
}

func TestGCRepairsContent(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	delete(tr.Areas, "a")
	tr.Areas["R"] = Content{Type: "text"}
	tr.Areas["nobody"] = Content{Type: "text"}

	got, rep := GC(tr)
	checkInvariants(t, got)
	if got.Areas["a"].Type != DefaultAreaType {
		t.Errorf("a content = %+v, want default type", got.Areas["a"])
	}
	if _, ok := got.Areas["R"]; ok {
		t.Error("row content survived GC")
	}
	if !slices.Equal(rep.AddedContent, []string{"a"}) {
		t.Errorf("AddedContent = %v, want [a]", rep.AddedContent)
	}
	if !slices.Equal(rep.RemovedContent, []string{"R", "nobody"}) {
		t.Errorf("RemovedContent = %v, want [R nobody]", rep.RemovedContent)
	}
}

func TestGCFixesNodeShape(t *testing.T) {
	tr := rowTree(Horizontal, 0.5, 0.5)
	tr.Layout["R"].Orientation = ""
	tr.Layout["a"].ID = "wrong"
	tr.Layout["b"].Kind = ""

	got, _ := GC(tr)
	checkInvariants(t, got)
	if got.Layout["R"].Orientation != Horizontal {
		t.Errorf("orientation = %q, want horizontal", got.Layout["R"].Orientation)
	}
}

func TestGCDoesNotModifyInput(t *testing.T) {
	tr := rowTree(Horizontal, 0.2, 0.3)
	tr.Layout["R"].Children = append(tr.Layout["R"].Children, ChildRef{ID: "ghost", Size: 0.5})
	before := tr.Clone()
	GC(tr)
	if !reflect.DeepEqual(tr, before) {
		t.Error("GC() modified its input")
	}
}

func TestGCIdempotent(t *testing.T) {
	fixtures := map[string]func() *Tree{
		"clean": func() *Tree { return rowTree(Horizontal, 0.25, 0.75) },
		"dangling": func() *Tree {
			tr := rowTree(Vertical, 0.1, 0.2, 0.3)
			tr.Layout["R"].Children[0].ID = "ghost"
			return tr
		},
		"malformed": func() *Tree { return rowTree(Horizontal, 0, 3, math.NaN()) },
		"unreachable": func() *Tree {
			tr := rowTree(Horizontal, 0.5, 0.5)
			tr.AddArea("z", Content{})
			return tr
		},
		"invalid root": func() *Tree {
			tr := rowTree(Horizontal, 0.5, 0.5)
			tr.RootID = "x"
			return tr
		},
	}
	for name, build := range fixtures {
		t.Run(name, func(t *testing.T) {
			once, _ := GC(build())
			twice, rep := GC(once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("GC(GC(t)) != GC(t)\nonce:  %s\ntwice: %s", dump(once), dump(twice))
			}
			if rep.Changed() {
				t.Errorf("second GC reported changes: %+v", rep)
			}
		})
	}
}
