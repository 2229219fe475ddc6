package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/karmyc/pkg/layout"
)

// DOTOptions configures tree diagrams.
type DOTOptions struct {
	// Detailed includes area state keys in labels.
	Detailed bool
}

// ToDOT describes the structure of t as a Graphviz digraph. Rows point to
// their children in order, and each edge is labelled with the child's size.
// Nodes not reachable from the root are omitted.
func ToDOT(t *layout.Tree, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph layout {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Menlo\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Menlo\", fontsize=11];\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("\n")

	if t.IsEmpty() {
		buf.WriteString("}\n")
		return buf.String()
	}

	rows := t.Rows()
	for _, id := range rows {
		n := t.Layout[id]
		fmt.Fprintf(&buf, "  %q [shape=box, style=\"filled\", fillcolor=\"#eaeef2\", label=%q];\n",
			id, id+"\n"+string(n.Orientation))
	}
	for _, id := range t.Leaves() {
		fmt.Fprintf(&buf, "  %q [shape=box, style=\"rounded,filled\", fillcolor=%q, label=%q];\n",
			id, fillFor(t.Areas[id].Type), areaLabel(id, t.Areas[id], opts.Detailed))
	}

	buf.WriteString("\n")
	for _, id := range rows {
		for _, c := range t.Layout[id].Children {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", id, c.ID, strconv.FormatFloat(c.Size, 'f', 3, 64))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func areaLabel(id string, c layout.Content, detailed bool) string {
	label := id + "\n" + c.Type
	if !detailed || len(c.State) == 0 {
		return label
	}
	return label + "\n" + strings.Join(slices.Sorted(maps.Keys(c.State)), ", ")
}

// RenderTreeSVG renders a DOT graph to SVG using Graphviz.
func RenderTreeSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderTreePNG renders a DOT graph as PNG via SVG conversion.
func RenderTreePNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderTreeSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}

// RenderTreePDF renders a DOT graph as PDF via SVG conversion.
func RenderTreePDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderTreeSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's pt-sized root element to a plain
// pixel viewBox so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
