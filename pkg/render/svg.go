package render

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
)

const viewportCSS = `
    .area { stroke: #333; stroke-width: 1; }
    .area-label { font-family: ui-monospace, Menlo, monospace; fill: #222; }
    .area-type { font-family: ui-monospace, Menlo, monospace; fill: #666; }
    .separator { stroke: #888; stroke-width: 1; }
    .preview-resize { stroke: #1f6feb; stroke-width: 3; stroke-dasharray: 6 3; }
    .preview-join { fill: #d1242f; fill-opacity: 0.25; stroke: #d1242f; stroke-width: 2; }
    .preview-open { fill: #1f6feb; fill-opacity: 0.2; stroke: #1f6feb; stroke-width: 2; stroke-dasharray: 4 2; }`

// palette is indexed by a hash of the content type so each type keeps its
// colour across renders.
var palette = []string{
	"#f6f8fa", "#ddf4ff", "#dafbe1", "#fff8c5", "#ffebe9", "#fbefff", "#fff1e5", "#e7f3ff",
}

// SVGOption configures viewport rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	gap        float64
	labels     bool
	separators bool
	state      *gesture.State
}

// WithGap insets every area by px on each side.
func WithGap(px float64) SVGOption { return func(r *svgRenderer) { r.gap = px } }

// WithoutLabels omits the id and type text.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithSeparators draws a line on every separator between row children.
func WithSeparators() SVGOption { return func(r *svgRenderer) { r.separators = true } }

// WithPreview overlays the resize, join and open previews of s.
func WithPreview(s gesture.State) SVGOption { return func(r *svgRenderer) { r.state = &s } }

// RenderSVG draws the area viewports of t. The canvas is the viewport of the
// root node; an empty tree renders as an empty 1x1 canvas.
func RenderSVG(t *layout.Tree, vps layout.Viewports, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	frame := geom.Rect{Width: 1, Height: 1}
	if !t.IsEmpty() {
		if root, ok := vps[t.RootID]; ok && !root.IsEmpty() {
			frame = root
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		frame.Left, frame.Top, frame.Width, frame.Height, frame.Width, frame.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", viewportCSS)

	if !t.IsEmpty() {
		for _, id := range t.Leaves() {
			rect, ok := vps[id]
			if !ok {
				continue
			}
			r.renderArea(&buf, id, t.Areas[id], rect.Contract(r.gap))
		}
		if r.separators {
			renderSeparators(&buf, t, vps)
		}
		if r.state != nil {
			renderPreviews(&buf, t, vps, *r.state)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderArea(buf *bytes.Buffer, id string, c layout.Content, rect geom.Rect) {
	fmt.Fprintf(buf, `  <rect id="area-%s" class="area" data-type="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		escapeXML(id), escapeXML(c.Type), rect.Left, rect.Top, rect.Width, rect.Height, fillFor(c.Type))
	if !r.labels || rect.IsEmpty() {
		return
	}

	size := fontSize(rect.Width, rect.Height, len(id))
	label := truncate(id, rect.Width, size)
	cx, cy := rect.CenterX(), rect.CenterY()
	fmt.Fprintf(buf, `  <text class="area-label" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		cx, cy, size, escapeXML(label))
	if c.Type != "" && rect.Height > 3*size {
		small := max(fontSizeMin, size*0.7)
		fmt.Fprintf(buf, `  <text class="area-type" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			cx, cy+size*1.2, small, escapeXML(truncate(c.Type, rect.Width, small)))
	}
}

func fillFor(areaType string) string {
	h := fnv.New32a()
	h.Write([]byte(areaType))
	return palette[h.Sum32()%uint32(len(palette))]
}

func renderSeparators(buf *bytes.Buffer, t *layout.Tree, vps layout.Viewports) {
	for _, rowID := range t.Rows() {
		row := t.Layout[rowID]
		for _, c := range row.Children[min(1, len(row.Children)):] {
			if pos, ok := vps[c.ID]; ok {
				writeSeparator(buf, "separator", vps[rowID], row.Orientation, edgeOf(pos, row.Orientation))
			}
		}
	}
}

// edgeOf is the leading edge of r along o's axis.
func edgeOf(r geom.Rect, o layout.Orientation) float64 {
	if o == layout.Vertical {
		return r.Top
	}
	return r.Left
}

func writeSeparator(buf *bytes.Buffer, class string, row geom.Rect, o layout.Orientation, at float64) {
	if o == layout.Vertical {
		fmt.Fprintf(buf, `  <line class="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", class, row.Left, at, row.Right(), at)
		return
	}
	fmt.Fprintf(buf, `  <line class="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", class, at, row.Top, at, row.Bottom())
}

func renderPreviews(buf *bytes.Buffer, t *layout.Tree, vps layout.Viewports, s gesture.State) {
	if p := s.Resize; p != nil {
		if row, ok := t.Row(p.Separator.RowID); ok {
			if start, _, err := layout.SeparatorSpan(t, vps, p.Separator); err == nil {
				writeSeparator(buf, "preview-resize", vps[row.ID], row.Orientation, start+p.T*p.Extent)
			}
		}
	}
	if p := s.Join; p != nil {
		if rect, ok := vps[p.TargetID]; ok {
			fmt.Fprintf(buf, `  <rect class="preview-join" data-direction="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
				p.Direction, rect.Left, rect.Top, rect.Width, rect.Height)
		}
	}
	if p := s.Open; p != nil {
		if rect, ok := vps[p.TargetID]; ok {
			h := placementRect(rect, p.Placement)
			fmt.Fprintf(buf, `  <rect class="preview-open" data-placement="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
				p.Placement, h.Left, h.Top, h.Width, h.Height)
		}
	}
}

// placementRect is the part of r that content dropped with p would occupy.
func placementRect(r geom.Rect, p layout.Placement) geom.Rect {
	switch p {
	case layout.PlaceTop:
		return geom.Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height / 2}
	case layout.PlaceBottom:
		return geom.Rect{Left: r.Left, Top: r.CenterY(), Width: r.Width, Height: r.Height / 2}
	case layout.PlaceLeft:
		return geom.Rect{Left: r.Left, Top: r.Top, Width: r.Width / 2, Height: r.Height}
	case layout.PlaceRight:
		return geom.Rect{Left: r.CenterX(), Top: r.Top, Width: r.Width / 2, Height: r.Height}
	}
	inset := math.Min(r.Width, r.Height) * 0.1
	return r.Contract(inset)
}
