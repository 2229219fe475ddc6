package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/screen"
)

// Terminal cells are the TUI's pixels, so the pixel defaults are scaled down.
const (
	tuiMinContent         = 4
	tuiDirectionThreshold = 2
	tuiScreen             = "tui"
)

// Cell styles
var (
	tuiBorderStyle  = lipgloss.NewStyle().Foreground(colorDim)
	tuiHoverStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	tuiLabelStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	tuiPreviewStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	tuiJoinStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Command
// =============================================================================

// tuiCommand edits a layout file with the mouse.
func (c *CLI) tuiCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui [layout.json]",
		Short: "Edit a layout interactively with the mouse",
		Long: `Edit a layout in the terminal. Drag an area's corner inward to split it or
outward onto a sibling to join them; drag a border between two areas to
resize. With --watch the layout is reloaded whenever the file changes.

Keys: h/v split the hovered area, x removes it, g repairs the layout,
w writes the file, esc cancels a drag, q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultLayoutFile
			if len(args) == 1 {
				path = args[0]
			}
			return c.runTUI(cmd.Context(), path, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload the layout when the file changes")

	return cmd
}

type (
	// commitMsg is sent after the screen's tree changed outside Update.
	commitMsg struct{}
	// reloadMsg carries a layout re-read from disk.
	reloadMsg struct {
		tree *layout.Tree
		err  error
	}
)

func (c *CLI) runTUI(ctx context.Context, path string, watch bool) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	cfg.Engine.MinContentPx = tuiMinContent
	cfg.Engine.DirectionThresholdPx = tuiDirectionThreshold
	engine := c.newEngine(cfg)

	// A missing file starts from the default layout; w creates it.
	t, err := engine.LoadFile(path)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return err
	}

	mgr := screen.NewManager(engine, screen.Options{Gesture: cfg.GestureOptions(), Logger: logger})
	defer mgr.Close()
	scr, err := mgr.Create(tuiScreen, t)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fw := newFileWatcher(path, logger)
	m := newTUIModel(engine, scr, path, fw)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())

	// Commits may happen inside Update, which must not block on Send.
	scr.OnCommit(func(*layout.Tree) { go p.Send(commitMsg{}) })

	if watch {
		go func() {
			err := fw.run(ctx, func() {
				t, err := engine.LoadFile(path)
				p.Send(reloadMsg{tree: t, err: err})
			})
			if err != nil {
				logger.Warn("watch disabled", "err", err)
			}
		}()
	}

	_, err = p.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// =============================================================================
// Model
// =============================================================================

// tuiModel is the bubbletea model of the layout editor. The screen holds
// the tree; the model only tracks the pointer and the status line.
type tuiModel struct {
	engine *layout.Engine
	scr    *screen.Screen
	path   string
	fw     *fileWatcher

	width, height int
	hover         geom.Point
	status        string
}

func newTUIModel(engine *layout.Engine, scr *screen.Screen, path string, fw *fileWatcher) tuiModel {
	return tuiModel{engine: engine, scr: scr, path: path, fw: fw, hover: geom.Point{X: -1, Y: -1}}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scr.SetBounds(geom.Rect{Width: float64(msg.Width), Height: float64(max(msg.Height-2, 1))})
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		m.mouse(msg)
	case reloadMsg:
		if msg.err != nil {
			m.status = "reload failed: " + errors.UserMessage(msg.err)
			break
		}
		m.scr.Replace(msg.tree)
		m.status = "reloaded " + m.path
	case commitMsg:
	}
	return m, nil
}

// point converts a terminal cell to layout coordinates; the first line is
// the title bar.
func point(x, y int) geom.Point {
	return geom.Point{X: float64(x) + 0.5, Y: float64(y-1) + 0.5}
}

func (m *tuiModel) mouse(msg tea.MouseMsg) {
	p := point(msg.X, msg.Y)
	m.hover = p
	ctrl := m.scr.Controller()

	var err error
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			err = m.press(p)
		}
	case tea.MouseActionMotion:
		err = ctrl.Move(p)
	case tea.MouseActionRelease:
		err = ctrl.Release(p)
	}
	switch {
	case err == nil:
	case errors.IsNoop(err):
		m.status = errors.UserMessage(err)
	default:
		m.status = "error: " + errors.UserMessage(err)
	}
}

// press starts a gesture on the corner or border under p. Corners win over
// borders.
func (m *tuiModel) press(p geom.Point) error {
	t, vps, _ := m.scr.Snapshot()
	ctrl := m.scr.Controller()
	if id, corner, ok := cornerAt(t, vps, p); ok {
		return ctrl.BeginCornerDrag(id, corner, corner.Point(vps[id]))
	}
	if sep, ok := separatorAt(t, vps, p); ok {
		return ctrl.BeginSeparatorDrag(sep, p)
	}
	return nil
}

func (m tuiModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.scr.Controller().Cancel()
		return m, tea.Quit
	case "esc":
		m.scr.Controller().Cancel()
		m.status = "cancelled"
	case "h":
		m.split(layout.Horizontal)
	case "v":
		m.split(layout.Vertical)
	case "x":
		id, ok := m.hovered()
		if !ok {
			break
		}
		m.report("removed "+id, m.scr.Apply(func(t *layout.Tree) (*layout.Tree, error) {
			return m.engine.RemoveLeaf(t, id)
		}))
	case "g":
		var rep layout.Report
		m.report("", m.scr.Apply(func(t *layout.Tree) (*layout.Tree, error) {
			next, r := layout.GC(t)
			rep = r
			return next, nil
		}))
		if rep.Changed() {
			m.status = fmt.Sprintf("repaired in %d passes", rep.Passes)
		} else {
			m.status = "nothing to repair"
		}
	case "w":
		if err := layout.WriteFile(m.scr.Tree(), m.path); err != nil {
			m.status = "error: " + err.Error()
			break
		}
		m.fw.touch()
		m.status = "wrote " + m.path
	}
	return m, nil
}

func (m *tuiModel) split(o layout.Orientation) {
	id, ok := m.hovered()
	if !ok {
		return
	}
	m.report("split "+id, m.scr.ApplyAt(func(t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		if err := m.engine.CheckSplit(vps, id, o); err != nil {
			return t, err
		}
		return m.engine.Split(t, id, o, layout.After)
	}))
}

func (m *tuiModel) hovered() (string, bool) {
	t, vps, _ := m.scr.Snapshot()
	return layout.FindNearestLeaf(m.hover, vps, t)
}

func (m *tuiModel) report(ok string, err error) {
	switch {
	case err == nil:
		m.status = ok
	case errors.IsNoop(err):
		m.status = errors.UserMessage(err)
	default:
		m.status = "error: " + errors.UserMessage(err)
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height < 3 {
		return ""
	}
	t, vps, version := m.scr.Snapshot()
	st := m.scr.Controller().State()
	hover, _ := layout.FindNearestLeaf(m.hover, vps, t)

	var b strings.Builder
	title := fmt.Sprintf("%s  %s", StyleTitle.Render(appName), StyleDim.Render(fmt.Sprintf("%s · v%d", m.path, version)))
	b.WriteString(title)
	b.WriteString("\n")

	cv := newCanvas(m.width, m.height-2)
	cv.drawLayout(t, vps, hover)
	cv.drawPreview(t, vps, st)
	b.WriteString(cv.render())
	b.WriteString("\n")

	status := st.Phase.String()
	if hover != "" {
		status += " · " + hover
	}
	if m.status != "" {
		status += " · " + m.status
	}
	b.WriteString(StyleDim.Render(truncateCells(status, m.width)))
	return b.String()
}

// =============================================================================
// Hit zones
// =============================================================================

// cellBox returns the cells covered by r, inclusive.
func cellBox(r geom.Rect) (x0, y0, x1, y1 int) {
	return int(math.Round(r.Left)), int(math.Round(r.Top)),
		int(math.Round(r.Right())) - 1, int(math.Round(r.Bottom())) - 1
}

func cellOf(p geom.Point) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// cornerAt returns the area whose corner cell contains p.
func cornerAt(t *layout.Tree, vps layout.Viewports, p geom.Point) (string, gesture.Corner, bool) {
	x, y := cellOf(p)
	for _, id := range t.Leaves() {
		x0, y0, x1, y1 := cellBox(vps[id])
		switch {
		case x == x0 && y == y0:
			return id, gesture.NorthWest, true
		case x == x1 && y == y0:
			return id, gesture.NorthEast, true
		case x == x0 && y == y1:
			return id, gesture.SouthWest, true
		case x == x1 && y == y1:
			return id, gesture.SouthEast, true
		}
	}
	return "", 0, false
}

// separatorAt returns the separator whose border cells contain p: the
// trailing border of child i-1 or the leading border of child i.
func separatorAt(t *layout.Tree, vps layout.Viewports, p geom.Point) (layout.Separator, bool) {
	x, y := cellOf(p)
	for _, rowID := range t.Rows() {
		row, _ := t.Row(rowID)
		rx0, ry0, rx1, ry1 := cellBox(vps[rowID])
		for i := 1; i < len(row.Children); i++ {
			edge, _, _, _ := cellBox(vps[row.Children[i].ID])
			along, across, lo, hi := x, y, ry0, ry1
			if row.Orientation == layout.Vertical {
				_, edge, _, _ = cellBox(vps[row.Children[i].ID])
				along, across, lo, hi = y, x, rx0, rx1
			}
			if (along == edge || along == edge-1) && across >= lo && across <= hi {
				return layout.Separator{RowID: rowID, Index: i}, true
			}
		}
	}
	return layout.Separator{}, false
}

// =============================================================================
// Canvas
// =============================================================================

type cellClass uint8

const (
	cellBlank cellClass = iota
	cellBorder
	cellHover
	cellLabel
	cellPreview
	cellJoin
)

// canvas is a grid of runes with a style class per cell.
type canvas struct {
	w, h  int
	runes [][]rune
	class [][]cellClass
}

func newCanvas(w, h int) *canvas {
	cv := &canvas{w: w, h: h, runes: make([][]rune, h), class: make([][]cellClass, h)}
	for y := range h {
		cv.runes[y] = []rune(strings.Repeat(" ", w))
		cv.class[y] = make([]cellClass, w)
	}
	return cv
}

func (cv *canvas) set(x, y int, r rune, c cellClass) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.runes[y][x] = r
	cv.class[y][x] = c
}

func (cv *canvas) text(x, y int, s string, c cellClass) {
	for i, r := range []rune(s) {
		cv.set(x+i, y, r, c)
	}
}

func (cv *canvas) box(r geom.Rect, c cellClass) {
	x0, y0, x1, y1 := cellBox(r)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	for x := x0 + 1; x < x1; x++ {
		cv.set(x, y0, '─', c)
		cv.set(x, y1, '─', c)
	}
	for y := y0 + 1; y < y1; y++ {
		cv.set(x0, y, '│', c)
		cv.set(x1, y, '│', c)
	}
	cv.set(x0, y0, '┌', c)
	cv.set(x1, y0, '┐', c)
	cv.set(x0, y1, '└', c)
	cv.set(x1, y1, '┘', c)
}

func (cv *canvas) fill(r geom.Rect, ch rune, c cellClass) {
	x0, y0, x1, y1 := cellBox(r)
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			cv.set(x, y, ch, c)
		}
	}
}

// drawLayout draws every area as a labelled box.
func (cv *canvas) drawLayout(t *layout.Tree, vps layout.Viewports, hover string) {
	for _, id := range t.Leaves() {
		r := vps[id]
		class := cellBorder
		if id == hover {
			class = cellHover
		}
		cv.box(r, class)

		x0, y0, x1, _ := cellBox(r)
		label := truncateCells(t.Areas[id].Type+" "+id, x1-x0-1)
		cv.text(x0+1, y0+1, label, cellLabel)
	}
}

// drawPreview overlays the active gesture.
func (cv *canvas) drawPreview(t *layout.Tree, vps layout.Viewports, st gesture.State) {
	if st.Join != nil {
		cv.fill(vps[st.Join.TargetID], '░', cellJoin)
	}
	if rp := st.Resize; rp != nil {
		row, ok := t.Row(rp.Separator.RowID)
		if !ok {
			return
		}
		start, _, err := layout.SeparatorSpan(t, vps, rp.Separator)
		if err != nil {
			return
		}
		pos := int(math.Round(start + rp.T*rp.Extent))
		x0, y0, x1, y1 := cellBox(vps[row.ID])
		if row.Orientation == layout.Vertical {
			for x := x0; x <= x1; x++ {
				cv.set(x, pos, '━', cellPreview)
			}
			return
		}
		for y := y0; y <= y1; y++ {
			cv.set(pos, y, '┃', cellPreview)
		}
	}
}

// render joins the grid into lines, styling runs of equal class together.
func (cv *canvas) render() string {
	lines := make([]string, cv.h)
	for y := range cv.h {
		var b strings.Builder
		start := 0
		for x := 1; x <= cv.w; x++ {
			if x < cv.w && cv.class[y][x] == cv.class[y][start] {
				continue
			}
			b.WriteString(styleFor(cv.class[y][start]).Render(string(cv.runes[y][start:x])))
			start = x
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func styleFor(c cellClass) lipgloss.Style {
	switch c {
	case cellBorder:
		return tuiBorderStyle
	case cellHover:
		return tuiHoverStyle
	case cellLabel:
		return tuiLabelStyle
	case cellPreview:
		return tuiPreviewStyle
	case cellJoin:
		return tuiJoinStyle
	}
	return lipgloss.NewStyle()
}

// truncateCells shortens s to n runes, marking the cut with an ellipsis.
func truncateCells(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
