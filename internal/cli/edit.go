package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/config"
	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/layout"
)

// editFunc applies one engine operation to a loaded layout. vps is the
// projection of t into the configured viewport.
type editFunc func(e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error)

// viewFlags overrides the configured viewport for commands that work in
// pixel coordinates.
type viewFlags struct {
	width  float64
	height float64
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.width, "width", 0, "viewport width in pixels (default: config viewport)")
	cmd.Flags().Float64Var(&v.height, "height", 0, "viewport height in pixels (default: config viewport)")
}

func (v viewFlags) bounds(cfg config.Config) geom.Rect {
	r := cfg.Bounds()
	if v.width > 0 {
		r.Width = v.width
	}
	if v.height > 0 {
		r.Height = v.height
	}
	return r
}

// runEdit loads path, applies fn and writes the result to output (or back to
// path). Operations that leave the layout unchanged are reported as warnings
// and nothing is written.
func (c *CLI) runEdit(cmd *cobra.Command, op, path, output string, view viewFlags, fn editFunc) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	e := c.newEngine(cfg)

	t, err := e.LoadFile(path)
	if err != nil {
		return err
	}
	vps := layout.ProjectRoot(t, view.bounds(cfg))

	timer := startOp(cmd.Context(), op, path)
	next, err := fn(e, t, vps)
	if errors.IsNoop(err) {
		printWarning("%s: %s", op, errors.UserMessage(err))
		return nil
	}
	if err != nil {
		return err
	}

	if output == "" {
		output = path
	}
	if err := layout.WriteFile(next, output); err != nil {
		return err
	}
	timer.done("layout written", "output", output, "nodes", next.Len())

	printSuccess("%s", op)
	printTreeStats(next, false)
	printFile(output)
	return nil
}

// =============================================================================
// new / show
// =============================================================================

// newCommand creates a layout file holding a single area.
func (c *CLI) newCommand() *cobra.Command {
	var (
		areaType string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "new [layout.json]",
		Short: "Create a layout with a single area",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultLayoutFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if areaType != "" {
				if err := errors.ValidateAreaType(areaType); err != nil {
					return err
				}
				cfg.Engine.DefaultAreaType = areaType
			}
			t := c.newEngine(cfg).DefaultTree()
			if err := layout.WriteFile(t, path); err != nil {
				return err
			}

			printSuccess("Created layout")
			printFile(path)
			printNextStep("Split the root area", fmt.Sprintf("%s split %s %s --orientation horizontal", appName, path, t.RootID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&areaType, "type", "t", "", "area type of the root area (default: config default_area_type)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// showCommand prints a layout and its projected viewports.
func (c *CLI) showCommand() *cobra.Command {
	var (
		view       viewFlags
		leavesOnly bool
	)

	cmd := &cobra.Command{
		Use:   "show [layout.json]",
		Short: "Print the layout tree with projected viewports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultLayoutFile
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			raw, err := layout.ReadFile(path)
			if err != nil {
				return err
			}
			t := c.newEngine(cfg).Adopt(raw)
			bounds := view.bounds(cfg)
			vps := layout.ProjectRoot(t, bounds)

			fmt.Println(StyleTitle.Render(path))
			printKeyValue("root", t.RootID)
			printKeyValue("viewport", fmt.Sprintf("%gx%g", bounds.Width, bounds.Height))
			printTreeStats(t, raw.Validate() != nil)
			if t.IsEmpty() {
				printInfo("Layout is empty")
				return nil
			}
			fmt.Println(viewportTable(t, vps, leavesOnly))
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().BoolVar(&leavesOnly, "leaves", false, "list areas only")

	return cmd
}

// =============================================================================
// Structural edits
// =============================================================================

// splitCommand splits an area into a row of two.
func (c *CLI) splitCommand() *cobra.Command {
	var (
		output      string
		orientation string
		side        string
		view        viewFlags
	)

	cmd := &cobra.Command{
		Use:   "split <layout.json> <area-id>",
		Short: "Split an area in two",
		Long: `Split an area in two. The new area is placed before or after the existing
one in a row of the given orientation. The split is refused when either half
would be smaller than min_content_px in the configured viewport.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseOrientation(orientation)
			if err != nil {
				return err
			}
			s, ok := layout.ParseSide(side)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "side %q must be before or after", side)
			}
			id := args[1]
			return c.runEdit(cmd, "Split "+id, args[0], output, view, func(e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
				if err := e.CheckSplit(vps, id, o); err != nil {
					return t, err
				}
				return e.Split(t, id, o, s)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&orientation, "orientation", string(layout.Horizontal), "row orientation: horizontal, vertical")
	cmd.Flags().StringVar(&side, "side", layout.After.String(), "side of the new area: before, after")
	view.register(cmd)

	return cmd
}

// joinCommand merges an area into an adjacent sibling.
func (c *CLI) joinCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "join <layout.json> <source-id> <target-id>",
		Short: "Merge an area into an adjacent sibling",
		Long: `Merge source into target. Both must be adjacent children of the same row;
target takes over the source's size and a row left with one child collapses
into its parent.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[1], args[2]
			return c.runEdit(cmd, "Joined "+source+" into "+target, args[0], output, viewFlags{}, func(e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
				return e.Join(t, source, target)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

// removeCommand removes an area and repacks its row.
func (c *CLI) removeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "remove <layout.json> <area-id>",
		Short: "Remove an area and renormalize its row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[1]
			return c.runEdit(cmd, "Removed "+id, args[0], output, viewFlags{}, func(e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
				return e.RemoveLeaf(t, id)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

// insertCommand adds a new area next to, or in place of, an existing node.
func (c *CLI) insertCommand() *cobra.Command {
	var (
		output   string
		areaType string
	)

	cmd := &cobra.Command{
		Use:   "insert <layout.json> <target-id> <placement>",
		Short: "Insert a new area relative to a node",
		Long: `Insert a new area at top, left, right or bottom of the target node, or
replace the target area with it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePlacement(args[2])
			if err != nil {
				return err
			}
			target := args[1]
			area := layout.NewArea{Content: layout.Content{Type: areaType}}
			return c.runEdit(cmd, fmt.Sprintf("Inserted %s %s", p, target), args[0], output, viewFlags{}, func(e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
				return e.Insert(t, target, p, area)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVarP(&areaType, "type", "t", "", "area type (default: config default_area_type)")

	return cmd
}

// moveCommand moves an existing area relative to another node.
func (c *CLI) moveCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "move <layout.json> <source-id> <target-id> <placement>",
		Short: "Move an area relative to another node",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePlacement(args[3])
			if err != nil {
				return err
			}
			source, target := args[1], args[2]
			return c.runEdit(cmd, fmt.Sprintf("Moved %s %s %s", source, p, target), args[0], output, viewFlags{}, func(e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
				return e.Move(t, source, target, p)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

// dropCommand places content at a pointer position, as a drag and drop would.
func (c *CLI) dropCommand() *cobra.Command {
	var (
		output   string
		source   string
		areaType string
		view     viewFlags
	)

	cmd := &cobra.Command{
		Use:   "drop <layout.json> <x,y>",
		Short: "Drop a new or existing area at a point",
		Long: `Drop a new area (or move --source) to the point x,y of the viewport. The
target is the nearest area and the placement follows from where the point
falls inside it: near the center replaces, otherwise the closest edge wins.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := parsePoint(args[1])
			if err != nil {
				return err
			}
			d := layout.Drop{SourceID: source, Area: layout.NewArea{Content: layout.Content{Type: areaType}}}
			return c.runEdit(cmd, "Dropped at "+args[1], args[0], output, view, func(e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
				target, p, err := e.DropTarget(t, vps, pt)
				if err == nil {
					c.Logger.Debug("drop target", "target", target, "placement", p)
				}
				return e.PlaceAtDrop(t, vps, d, pt)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&source, "source", "", "move this existing area instead of creating one")
	cmd.Flags().StringVarP(&areaType, "type", "t", "", "area type of the new area (default: config default_area_type)")
	view.register(cmd)

	return cmd
}

// =============================================================================
// Sizes
// =============================================================================

// resizeCommand moves the separator between two children of a row.
func (c *CLI) resizeCommand() *cobra.Command {
	var (
		output   string
		at       string
		fraction float64
		view     viewFlags
	)

	cmd := &cobra.Command{
		Use:   "resize <layout.json> <row-id> <index>",
		Short: "Move the separator before child <index> of a row",
		Long: `Move the separator between children index-1 and index of a row, either to a
pointer position (--at x,y) or to a fraction of the two children's combined
span (--fraction). Both children keep at least min_content_px.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var index int
			if _, err := fmt.Sscan(args[2], &index); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "index %q", args[2])
			}
			sep := layout.Separator{RowID: args[1], Index: index}

			if (at == "") == (fraction == 0) {
				return errors.New(errors.ErrCodeInvalidInput, "exactly one of --at or --fraction is required")
			}
			var pt geom.Point
			if at != "" {
				p, err := parsePoint(at)
				if err != nil {
					return err
				}
				pt = p
			}

			return c.runEdit(cmd, fmt.Sprintf("Resized %s/%d", sep.RowID, sep.Index), args[0], output, view, func(e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
				if at != "" {
					return e.ResizeAt(t, vps, sep, pt)
				}
				_, extent, err := layout.SeparatorSpan(t, vps, sep)
				if err != nil {
					return t, err
				}
				return e.Resize(t, sep, fraction, extent)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&at, "at", "", "pointer position x,y")
	cmd.Flags().Float64Var(&fraction, "fraction", 0, "separator position within the pair, between 0 and 1")
	view.register(cmd)

	return cmd
}

// sizesCommand replaces all child sizes of a row.
func (c *CLI) sizesCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sizes <layout.json> <row-id> <s1,s2,...>",
		Short: "Set the child sizes of a row",
		Long: `Set the child sizes of a row. Sizes are renormalized to sum to 1; invalid
entries are coerced to an equal share first.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := parseSizes(args[2])
			if err != nil {
				return err
			}
			row := args[1]
			return c.runEdit(cmd, "Resized "+row, args[0], output, viewFlags{}, func(e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
				return e.SetChildSizes(t, row, sizes)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

// =============================================================================
// gc
// =============================================================================

// gcCommand validates or repairs a layout file.
func (c *CLI) gcCommand() *cobra.Command {
	var (
		output string
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "gc <layout.json>",
		Short: "Check or repair a layout file",
		Long: `Repair a layout: drop dangling references and unreachable nodes, collapse
empty rows, and coerce and renormalize sizes. With --check nothing is written
and the command fails if the layout violates any invariant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			raw, err := layout.ReadFile(path)
			if err != nil {
				return err
			}

			if check {
				if err := raw.Validate(); err != nil {
					printError("%s", errors.UserMessage(err))
					return err
				}
				printSuccess("Layout is valid")
				printTreeStats(raw, false)
				return nil
			}

			t, rep := layout.GC(raw)
			if !rep.Changed() {
				printSuccess("Nothing to repair")
				printTreeStats(t, false)
				return nil
			}
			if output == "" {
				output = path
			}
			if err := layout.WriteFile(t, output); err != nil {
				return err
			}

			printSuccess("Repaired layout in %d passes", rep.Passes)
			for _, d := range rep.Dangling {
				printDetail("dropped dangling %s -> %s (%s)", d.Row, d.Child, d.Reason)
			}
			for row, n := range rep.CoercedSizes {
				printDetail("coerced %d sizes in %s", n, row)
			}
			if n := len(rep.RemovedNodes); n > 0 {
				printDetail("removed %d unreachable nodes", n)
			}
			if n := len(rep.EmptyRows); n > 0 {
				printDetail("collapsed %d empty rows", n)
			}
			if rep.InvalidRoot {
				printDetail("root did not resolve")
			}
			printTreeStats(t, true)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().BoolVar(&check, "check", false, "validate only, exit non-zero on violations")

	return cmd
}
