package layout

import (
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/registry"
)

func newTestEngine(opts Options) *Engine {
	reg := registry.NewMapRegistry()
	_ = reg.Register("text", map[string]any{"text": ""})
	_ = reg.Register("empty", nil)
	return NewEngine(opts, reg, &SequenceGenerator{}, log.New(io.Discard))
}

// rowTree builds a row "R" with one text area per size, named a, b, c, ...
func rowTree(o Orientation, sizes ...float64) *Tree {
	t := NewTree()
	var children []ChildRef
	for i, s := range sizes {
		id := string(rune('a' + i))
		t.AddArea(id, Content{Type: "text", State: map[string]any{"text": id}})
		children = append(children, ChildRef{ID: id, Size: s})
	}
	t.AddRow("R", o, children...)
	t.RootID = "R"
	return t
}

func childIDs(t *testing.T, tr *Tree, rowID string) []string {
	t.Helper()
	row, ok := tr.Row(rowID)
	if !ok {
		t.Fatalf("row %q missing", rowID)
	}
	return row.ChildIDs()
}

func childSizes(t *testing.T, tr *Tree, rowID string) []float64 {
	t.Helper()
	row, ok := tr.Row(rowID)
	if !ok {
		t.Fatalf("row %q missing", rowID)
	}
	out := make([]float64, len(row.Children))
	for i, c := range row.Children {
		out[i] = c.Size
	}
	return out
}

func approxSlice(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// checkInvariants fails the test if tr violates any tree invariant.
func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()
	if err := tr.Validate(); err != nil {
		t.Fatalf("Validate() = %v\n%s", err, dump(tr))
	}
}

// checkTiling fails the test if the leaf viewports of tr do not tile outer.
func checkTiling(t *testing.T, tr *Tree, outer geom.Rect) {
	t.Helper()
	vps := ProjectRoot(tr, outer).Leaves(tr)
	var total float64
	ids := tr.Leaves()
	for i, a := range ids {
		ra := vps[a]
		if ra.Width < 0 || ra.Height < 0 {
			t.Fatalf("leaf %s has negative size %+v", a, ra)
		}
		total += ra.Area()
		for _, b := range ids[i+1:] {
			rb := vps[b]
			w := min(ra.Right(), rb.Right()) - max(ra.Left, rb.Left)
			h := min(ra.Bottom(), rb.Bottom()) - max(ra.Top, rb.Top)
			if w > 1e-6 && h > 1e-6 {
				t.Fatalf("leaves %s %+v and %s %+v overlap", a, ra, b, rb)
			}
		}
	}
	if math.Abs(total-outer.Area()) > 1e-6*outer.Area() {
		t.Fatalf("leaf area sum = %v, want %v", total, outer.Area())
	}
}

func dump(tr *Tree) string {
	data, err := Marshal(tr)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
