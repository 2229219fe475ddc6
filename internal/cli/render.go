package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file (default: input with the format's extension)
	format   string  // svg, png, pdf or dot
	tree     bool    // draw the node tree with Graphviz instead of the areas
	detailed bool    // include area state keys in tree diagrams
	gap      float64 // inset between areas in pixels
	noLabels bool    // omit area labels
	scale    float64 // PNG scale factor
	view     viewFlags
}

// renderCommand renders a layout file.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(render.FormatSVG), scale: 2}

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a layout to SVG, PNG, PDF or DOT",
		Long: `Render a layout. By default the projected areas are drawn as an SVG of the
configured viewport. With --tree the row/area structure is drawn as a
Graphviz diagram instead; -f dot always writes that diagram's source.

PNG and PDF output of the area view requires rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png, pdf, dot")
	cmd.Flags().BoolVar(&opts.tree, "tree", false, "draw the layout tree instead of the areas")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include area state in tree diagrams")
	cmd.Flags().Float64Var(&opts.gap, "gap", 0, "gap between areas in pixels")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit area labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	opts.view.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	t, err := c.newEngine(cfg).LoadFile(path)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(format)
	}

	timer := startOp(ctx, "render", path)
	act := startActivity(ctx, c.out, "Rendering "+output, string(format))

	var data []byte
	if opts.tree || format == render.FormatDOT {
		data, err = renderTree(ctx, t, format, opts)
	} else {
		data, err = renderAreas(t, format, opts, layout.ProjectRoot(t, opts.view.bounds(cfg)))
	}
	act.stop()
	if err != nil {
		if act.interrupted() {
			printWarning("Render of %s interrupted", output)
		}
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	timer.done("rendered", "output", output, "format", format, "bytes", len(data))

	printSuccess("Rendered %s", StyleHighlight.Render(string(format)))
	printFile(output)
	return nil
}

func renderAreas(t *layout.Tree, format render.Format, opts renderOpts, vps layout.Viewports) ([]byte, error) {
	svgOpts := []render.SVGOption{render.WithSeparators()}
	if opts.gap > 0 {
		svgOpts = append(svgOpts, render.WithGap(opts.gap))
	}
	if opts.noLabels {
		svgOpts = append(svgOpts, render.WithoutLabels())
	}
	return render.Convert(render.RenderSVG(t, vps, svgOpts...), format, opts.scale)
}

func renderTree(ctx context.Context, t *layout.Tree, format render.Format, opts renderOpts) ([]byte, error) {
	dot := render.ToDOT(t, render.DOTOptions{Detailed: opts.detailed})
	switch format {
	case render.FormatPNG:
		return render.RenderTreePNG(ctx, dot, opts.scale)
	case render.FormatPDF:
		return render.RenderTreePDF(ctx, dot)
	case render.FormatSVG:
		return render.RenderTreeSVG(ctx, dot)
	}
	return []byte(dot), nil
}
