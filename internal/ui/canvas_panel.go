package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/fsview/internal/cache"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

// CanvasPanel draws the active layout from above
type CanvasPanel struct {
	engine   *layout.Engine
	changes  *cache.Changes
	focus    model.NodeID // subtree the camera frames
	selected model.NodeID
	marks    []Mark
	raster   Raster
	width    int
	height   int
	focused  bool
	showDiff bool
}

// NewCanvasPanel creates a new canvas panel
func NewCanvasPanel() CanvasPanel {
	return CanvasPanel{focus: model.RootDir, selected: model.NoNode}
}

// SetEngine binds the panel to a laid-out tree and redraws
func (c *CanvasPanel) SetEngine(e *layout.Engine, changes *cache.Changes) {
	c.engine = e
	c.changes = changes
	c.focus = model.RootDir
	c.Refresh()
}

// SetSize sets the panel dimensions
func (c *CanvasPanel) SetSize(w, h int) {
	c.width = w
	c.height = h
	c.Refresh()
}

// SetFocused sets focus state
func (c *CanvasPanel) SetFocused(focused bool) {
	c.focused = focused
}

// SetShowDiff enables/disables diff coloring
func (c *CanvasPanel) SetShowDiff(show bool) {
	c.showDiff = show
}

// SetSelected highlights a node
func (c *CanvasPanel) SetSelected(id model.NodeID) {
	c.selected = id
}

// Focus returns the node the camera frames
func (c CanvasPanel) Focus() model.NodeID {
	return c.focus
}

// ZoomIn frames the selected directory, or the directory holding the
// selected file
func (c *CanvasPanel) ZoomIn() {
	if c.engine == nil || c.selected == model.NoNode {
		return
	}
	tree := c.engine.Tree()
	target := c.selected
	if !tree.IsDir(target) {
		target = tree.Parent(target)
	}
	if target != c.focus && tree.IsAncestor(c.focus, target) {
		c.focus = target
		c.Refresh()
	}
}

// ZoomOut frames the parent of the current focus
func (c *CanvasPanel) ZoomOut() {
	if c.engine == nil || c.focus == model.RootDir {
		return
	}
	c.focus = c.engine.Tree().Parent(c.focus)
	c.Refresh()
}

// Refresh recomputes marks and the raster from the engine's geometry.
// Call it after Tick reports dirty nodes, a mode change or a resize.
func (c *CanvasPanel) Refresh() {
	cols, rows := c.contentSize()
	if c.engine == nil {
		c.marks = nil
		c.raster = Rasterize(nil, cols, rows, scene.XY{}, scene.XY{})
		return
	}
	c.marks = Marks(c.engine)
	lo, hi, ok := Bounds(c.engine.Tree(), c.marks, c.focus)
	if !ok {
		// The focused subtree may have been collapsed out of view
		c.focus = model.RootDir
		lo, hi, ok = Bounds(c.engine.Tree(), c.marks, c.focus)
	}
	if !ok {
		c.raster = Rasterize(nil, cols, rows, lo, hi)
		return
	}
	c.raster = Rasterize(c.marks, cols, rows, lo, hi)
}

func (c CanvasPanel) contentSize() (int, int) {
	return max(1, c.width-2), max(1, c.height-2)
}

// cellStyle picks the background for a cell
func (c CanvasPanel) cellStyle(id model.NodeID, depth int) lipgloss.Style {
	if id == model.NoNode {
		return lipgloss.NewStyle()
	}
	style := lipgloss.NewStyle()
	if id == c.selected {
		return style.Background(ColorPrimary)
	}

	tree := c.engine.Tree()
	node := tree.Node(id)
	if c.showDiff {
		delta, seen := c.changes.Delta(tree, id)
		switch {
		case node.IsDeleted:
			return style.Background(ColorGone)
		case c.changes != nil && !seen:
			return style.Background(ColorNew)
		case delta > 0 && !node.IsDir():
			return style.Background(ColorGrew)
		case delta < 0 && !node.IsDir():
			return style.Background(ColorShrunk)
		}
	}

	style = style.Background(KindColor(node.Kind))
	if depth%2 == 1 {
		// Odd depths are stippled so children stand out from their parent
		style = style.Foreground(ColorMuted)
	}
	return style
}

// View renders the canvas
func (c CanvasPanel) View() string {
	cols, rows := c.contentSize()
	if c.engine == nil || c.raster.Cols != cols || c.raster.Rows != rows {
		return CanvasPanelStyle.Width(cols).Height(rows).Render("No data")
	}

	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		var line strings.Builder
		// Runs of one node share a style
		for x := 0; x < cols; {
			id, depth := c.raster.At(x, y), c.raster.DepthAt(x, y)
			end := x + 1
			for end < cols && c.raster.At(end, y) == id {
				end++
			}
			glyph := " "
			if id != model.NoNode && depth%2 == 1 {
				glyph = "░"
			}
			line.WriteString(c.cellStyle(id, depth).Render(strings.Repeat(glyph, end-x)))
			x = end
		}
		lines[y] = line.String()
	}

	style := CanvasPanelStyle
	if c.focused {
		style = style.BorderForeground(ColorPrimary)
	}
	return style.Render(strings.Join(lines, "\n"))
}
