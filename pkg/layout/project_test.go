package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/karmyc/pkg/geom"
)

func TestProjectHorizontalHalves(t *testing.T) {
	tr := NewTree()
	tr.AddArea("X", Content{})
	tr.AddArea("Y", Content{})
	tr.AddRow("R", Horizontal, ChildRef{ID: "X", Size: 0.5}, ChildRef{ID: "Y", Size: 0.5})
	tr.RootID = "R"

	outer := geom.Rect{Left: 0, Top: 0, Width: 200, Height: 100}
	got := Project(tr, "R", outer)

	want := Viewports{
		"R": outer,
		"X": {Left: 0, Top: 0, Width: 100, Height: 100},
		"Y": {Left: 100, Top: 0, Width: 100, Height: 100},
	}
	if len(got) != len(want) {
		t.Fatalf("Project() returned %d entries, want %d", len(got), len(want))
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("Project()[%s] = %+v, want %+v", id, got[id], w)
		}
	}
}

func TestProjectNested(t *testing.T) {
	tr := NewTree()
	for _, id := range []string{"X", "Y", "Z"} {
		tr.AddArea(id, Content{})
	}
	tr.AddRow("S", Vertical, ChildRef{ID: "Y", Size: 0.25}, ChildRef{ID: "Z", Size: 0.75})
	tr.AddRow("R", Horizontal, ChildRef{ID: "X", Size: 0.5}, ChildRef{ID: "S", Size: 0.5})
	tr.RootID = "R"

	got := ProjectRoot(tr, geom.Rect{Left: 0, Top: 0, Width: 200, Height: 100})

	tests := []struct {
		id   string
		want geom.Rect
	}{
		{"X", geom.Rect{Left: 0, Top: 0, Width: 100, Height: 100}},
		{"S", geom.Rect{Left: 100, Top: 0, Width: 100, Height: 100}},
		{"Y", geom.Rect{Left: 100, Top: 0, Width: 100, Height: 25}},
		{"Z", geom.Rect{Left: 100, Top: 25, Width: 100, Height: 75}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got[tt.id] != tt.want {
				t.Errorf("Project()[%s] = %+v, want %+v", tt.id, got[tt.id], tt.want)
			}
		})
	}
}

func TestProjectSingleArea(t *testing.T) {
	tr := SingleArea("A", Content{})
	outer := geom.Rect{Left: 10, Top: 20, Width: 30, Height: 40}
	got := Project(tr, "A", outer)
	if len(got) != 1 || got["A"] != outer {
		t.Errorf("Project() = %v, want {A: %v}", got, outer)
	}
}

func TestProjectUnknownRoot(t *testing.T) {
	tr := SingleArea("A", Content{})
	if got := Project(tr, "missing", geom.Rect{Width: 10, Height: 10}); len(got) != 0 {
		t.Errorf("Project() = %v, want empty", got)
	}
	if got := ProjectRoot(NewTree(), geom.Rect{Width: 10, Height: 10}); len(got) != 0 {
		t.Errorf("ProjectRoot(empty) = %v, want empty", got)
	}
}

func TestProjectSharedBoundaries(t *testing.T) {
	tr := rowTree(Horizontal, 1.0/3, 1.0/3, 1.0/3)
	outer := geom.Rect{Left: 0.5, Top: 0, Width: 101, Height: 7}
	vps := ProjectRoot(tr, outer)

	ids := tr.Layout["R"].ChildIDs()
	for i := 1; i < len(ids); i++ {
		prev, cur := vps[ids[i-1]], vps[ids[i]]
		if math.Abs(prev.Right()-cur.Left) > 1e-9 {
			t.Errorf("gap between %s and %s: %v != %v", ids[i-1], ids[i], prev.Right(), cur.Left)
		}
	}
	last := vps[ids[len(ids)-1]]
	if math.Abs(last.Right()-outer.Right()) > 1e-9 {
		t.Errorf("last child ends at %v, want %v", last.Right(), outer.Right())
	}
	checkTiling(t, tr, outer)
}

func TestProjectDoesNotRenormalize(t *testing.T) {
	tr := rowTree(Horizontal, 0.25, 0.25)
	vps := ProjectRoot(tr, geom.Rect{Width: 100, Height: 10})
	if got := vps["a"].Width; got != 25 {
		t.Errorf("a width = %v, want 25", got)
	}
	// The last child absorbs the remainder.
	if got := vps["b"].Width; got != 75 {
		t.Errorf("b width = %v, want 75", got)
	}
}

func TestExtent(t *testing.T) {
	r := geom.Rect{Width: 30, Height: 70}
	if Extent(r, Horizontal) != 30 || Extent(r, Vertical) != 70 {
		t.Errorf("Extent() mismatch for %+v", r)
	}
}
