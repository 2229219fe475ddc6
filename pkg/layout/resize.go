package layout

import (
	"time"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
)

// Separator identifies the boundary between children Index-1 and Index of a
// row.
type Separator struct {
	RowID string `json:"rowId"`
	Index int    `json:"index"`
}

// SeparatorSpan returns the combined pixel span of the two children adjacent
// to sep: the start coordinate along the row's axis and the extent.
func SeparatorSpan(t *Tree, vps Viewports, sep Separator) (start, extent float64, err error) {
	row, err := separatorRow(t, sep)
	if err != nil {
		return 0, 0, err
	}
	a, okA := vps[row.Children[sep.Index-1].ID]
	b, okB := vps[row.Children[sep.Index].ID]
	if !okA || !okB {
		return 0, 0, errors.New(errors.ErrCodeNodeNotFound, "separator %d of row %q has no viewport", sep.Index, sep.RowID)
	}
	if row.Orientation == Vertical {
		return a.Top, b.Bottom() - a.Top, nil
	}
	return a.Left, b.Right() - a.Left, nil
}

// MinFraction returns the smallest interpolation factor that keeps MinContentPx
// on either side of a separator spanning extent pixels. It never exceeds 0.5.
func (e *Engine) MinFraction(extent float64) float64 {
	if extent <= 0 {
		return 0.5
	}
	return min(e.opts.MinContentPx/extent, 0.5)
}

// ClampFraction limits f to [minT, 1-minT] for a span of extent pixels.
func (e *Engine) ClampFraction(f, extent float64) float64 {
	lo := e.MinFraction(extent)
	return max(lo, min(f, 1-lo))
}

// SeparatorFraction converts pointer position p into the clamped
// interpolation factor for sep, returning it with the span's extent.
func (e *Engine) SeparatorFraction(t *Tree, vps Viewports, sep Separator, p geom.Point) (f, extent float64, err error) {
	start, extent, err := SeparatorSpan(t, vps, sep)
	if err != nil {
		return 0, 0, err
	}
	pos := p.X
	if row := t.Layout[sep.RowID]; row.Orientation == Vertical {
		pos = p.Y
	}
	if extent <= 0 {
		return 0.5, extent, nil
	}
	return e.ClampFraction((pos-start)/extent, extent), extent, nil
}

// Resize moves separator sep so that child Index-1 receives fraction f of the
// two children's combined share and child Index the rest. f is clamped so
// neither side drops below MinContentPx of extent. Other siblings keep their
// sizes; the row is then renormalized.
func (e *Engine) Resize(t *Tree, sep Separator, f, extent float64) (*Tree, error) {
	const op = "resize"
	start := time.Now()
	if _, err := separatorRow(t, sep); err != nil {
		return e.reject(op, t, start, err)
	}
	c := t.Clone()
	moveSeparator(c.Layout[sep.RowID].Children, sep.Index, e.ClampFraction(f, extent))
	return e.commit(op, c, start)
}

// ResizeAt is Resize with the fraction derived from pointer position p.
func (e *Engine) ResizeAt(t *Tree, vps Viewports, sep Separator, p geom.Point) (*Tree, error) {
	f, extent, err := e.SeparatorFraction(t, vps, sep, p)
	if err != nil {
		return e.reject("resize", t, time.Now(), err)
	}
	return e.Resize(t, sep, f, extent)
}

// PreviewSizes returns the sizes row sep.RowID would have after
// Resize(t, sep, f, extent), without building a new tree. It is cheap enough
// to call on every pointer move.
func (e *Engine) PreviewSizes(t *Tree, sep Separator, f, extent float64) ([]float64, error) {
	row, err := separatorRow(t, sep)
	if err != nil {
		return nil, err
	}
	children := append([]ChildRef(nil), row.Children...)
	moveSeparator(children, sep.Index, e.ClampFraction(f, extent))
	out := make([]float64, len(children))
	for i, c := range children {
		out[i] = c.Size
	}
	return out, nil
}

func separatorRow(t *Tree, sep Separator) (*Node, error) {
	row, ok := t.Row(sep.RowID)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "row %q does not exist", sep.RowID)
	}
	if sep.Index < 1 || sep.Index >= len(row.Children) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "row %q has no separator %d", sep.RowID, sep.Index)
	}
	return row, nil
}

// moveSeparator gives children[index-1] fraction f of the pair's combined
// share and children[index] the rest, then repairs the row. A malformed
// combined share falls back to two equal shares of the row.
func moveSeparator(children []ChildRef, index int, f float64) {
	a, b := &children[index-1], &children[index]
	combined := a.Size + b.Size
	if !validSize(combined) {
		combined = 2 / float64(len(children))
	}
	a.Size = f * combined
	b.Size = (1 - f) * combined
	repairSizes(children)
}
