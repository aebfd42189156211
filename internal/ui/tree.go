package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/fsview/internal/cache"
	"github.com/lumipallolabs/fsview/internal/core"
	"github.com/lumipallolabs/fsview/internal/model"
)

const treeSizeBarWidth = 4 // Width of size proportion bar [████]

// TreePanel displays the folder tree. Expansion lives in the shared
// TreeState so the layout engine sees the same predicate.
type TreePanel struct {
	tree     *model.Tree
	state    *core.TreeState
	changes  *cache.Changes
	rows     []core.Row
	cursor   int
	offset   int // scroll offset
	width    int
	height   int
	focused  bool
	showDiff bool
}

// NewTreePanel creates a new tree panel
func NewTreePanel() TreePanel {
	return TreePanel{}
}

// SetTree sets the tree, its navigation state and the diff against the
// previous scan (which may be nil)
func (t *TreePanel) SetTree(tree *model.Tree, state *core.TreeState, changes *cache.Changes) {
	t.tree = tree
	t.state = state
	t.changes = changes
	t.cursor = 0
	t.offset = 0
	t.RefreshVisible()
}

// SetSize sets the panel dimensions
func (t *TreePanel) SetSize(w, h int) {
	t.width = w
	t.height = h
	t.ensureVisible()
}

// SetFocused sets focus state
func (t *TreePanel) SetFocused(focused bool) {
	t.focused = focused
}

// SetShowDiff enables/disables diff display
func (t *TreePanel) SetShowDiff(show bool) {
	t.showDiff = show
}

// Selected returns the selected node, or NoNode when the tree is empty
func (t TreePanel) Selected() model.NodeID {
	if t.cursor >= 0 && t.cursor < len(t.rows) {
		return t.rows[t.cursor].ID
	}
	return model.NoNode
}

// Select moves the cursor to id if it is visible
func (t *TreePanel) Select(id model.NodeID) bool {
	for i, r := range t.rows {
		if r.ID == id {
			t.setCursor(i)
			return true
		}
	}
	return false
}

// RefreshVisible rebuilds the row list after an expand/collapse or a
// deletion, keeping the selected node under the cursor when possible
func (t *TreePanel) RefreshVisible() {
	t.rows = nil
	if t.tree == nil {
		return
	}
	t.rows = t.state.Visible(t.tree)
	if !t.Select(t.state.Selected) {
		t.setCursor(min(t.cursor, len(t.rows)-1))
	}
}

// MoveUp moves cursor up
func (t *TreePanel) MoveUp() {
	if t.cursor > 0 {
		t.setCursor(t.cursor - 1)
	}
}

// MoveDown moves cursor down
func (t *TreePanel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.setCursor(t.cursor + 1)
	}
}

// PageUp moves cursor up by quarter page
func (t *TreePanel) PageUp() {
	t.setCursor(max(0, t.cursor-t.pageSize()))
}

// PageDown moves cursor down by quarter page
func (t *TreePanel) PageDown() {
	t.setCursor(max(0, min(len(t.rows)-1, t.cursor+t.pageSize())))
}

// GoToTop moves to first item
func (t *TreePanel) GoToTop() {
	t.setCursor(0)
}

// GoToBottom moves to last item
func (t *TreePanel) GoToBottom() {
	t.setCursor(len(t.rows) - 1)
}

// SelectParent moves the cursor to the parent of the selected node
func (t *TreePanel) SelectParent() {
	id := t.Selected()
	if id == model.NoNode || id == model.RootDir {
		return
	}
	t.Select(t.tree.Parent(id))
}

func (t TreePanel) pageSize() int {
	return max(1, (t.height-4)/4)
}

func (t *TreePanel) setCursor(i int) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.cursor = i
	t.state.Selected = t.rows[i].ID
	t.ensureVisible()
}

func (t *TreePanel) ensureVisible() {
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	maxVisible := max(1, t.height-2) // account for borders
	if t.cursor >= t.offset+maxVisible {
		t.offset = t.cursor - maxVisible + 1
	}
}

// RequiredWidth calculates the minimum width needed to display all visible content
func (t TreePanel) RequiredWidth() int {
	if len(t.rows) == 0 {
		return 30
	}
	maxWidth := 0
	for _, r := range t.rows {
		maxWidth = max(maxWidth, lipgloss.Width(t.buildLine(r)))
	}
	// Border and padding
	return maxWidth + 4
}

// lineContent holds the components of a tree line for rendering
type lineContent struct {
	prefix  string
	name    string
	badge   string
	sizeBar string
	size    string
	change  string
	grew    bool
}

func (t TreePanel) buildLineContent(r core.Row) lineContent {
	node := t.tree.Node(r.ID)

	prefix := strings.Repeat("  ", r.Depth)
	switch {
	case !node.IsDir():
		prefix += "  "
	case t.state.Expanded(r.ID):
		prefix += "▼ " // down triangle
	default:
		prefix += "▶ " // right triangle
	}

	c := lineContent{
		prefix: prefix,
		name:   node.Name,
		size:   FormatSize(node.TotalSize()),
	}
	if node.IsDeleted {
		c.badge = " " + DeletedBadge.Render("DEL")
		c.size = ""
	}

	if parent := t.tree.Parent(r.ID); node.IsDir() && parent != model.MetaRoot {
		if total := t.tree.Node(parent).TotalSize(); total > 0 {
			c.sizeBar = sizeBar(float64(node.TotalSize()) / float64(total))
		}
	}

	if t.showDiff {
		switch delta, seen := t.changes.Delta(t.tree, r.ID); {
		case node.IsDeleted:
			c.change = "-" + FormatSize(node.TotalSize())
		case t.changes != nil && !seen:
			c.badge = " " + NewBadge.Render("NEW")
		case delta != 0:
			c.change = FormatDelta(delta)
			c.grew = delta > 0
		}
	}
	return c
}

// sizeBar draws a fraction as a fixed-width bar
func sizeBar(frac float64) string {
	filledFloat := frac * treeSizeBarWidth
	filled := int(filledFloat)
	var bar strings.Builder
	for j := 0; j < treeSizeBarWidth; j++ {
		switch {
		case j < filled:
			bar.WriteRune('█')
		case float64(j) < filledFloat+0.5 && filled < treeSizeBarWidth:
			bar.WriteRune('▓')
		default:
			bar.WriteRune('░')
		}
	}
	return "[" + bar.String() + "]"
}

// buildLine creates the text content for a row (for width calculation)
func (t TreePanel) buildLine(r core.Row) string {
	c := t.buildLineContent(r)
	return fmt.Sprintf("%s%s%s %s %s %s", c.prefix, c.name, c.badge, c.sizeBar, c.size, c.change)
}

// View renders the tree
func (t TreePanel) View() string {
	if t.tree == nil {
		return TreePanelStyle.Width(t.width).Height(t.height).Render("No data")
	}

	var lines []string
	maxVisible := max(1, t.height-2)
	maxW := t.width - 2

	for i := t.offset; i < len(t.rows) && len(lines) < maxVisible; i++ {
		r := t.rows[i]
		node := t.tree.Node(r.ID)
		c := t.buildLineContent(r)

		change := c.change
		if change != "" {
			if c.grew {
				change = GrewStyle.Render(change)
			} else {
				change = ShrunkStyle.Render(change)
			}
		}
		line := fmt.Sprintf("%s%s%s %s %s %s", c.prefix, c.name, c.badge, c.sizeBar, c.size, change)

		var itemStyle lipgloss.Style
		switch {
		case i == t.cursor && t.focused:
			itemStyle = TreeItemSelected.Width(maxW).MaxWidth(maxW)
		case i == t.cursor:
			itemStyle = TreeItemSelectedUnfocused.Width(maxW).MaxWidth(maxW)
		case t.showDiff && node.IsDeleted:
			itemStyle = lipgloss.NewStyle().Foreground(ColorGone).MaxWidth(maxW)
		case node.IsDir():
			itemStyle = lipgloss.NewStyle().Foreground(ColorDir).MaxWidth(maxW)
		default:
			itemStyle = lipgloss.NewStyle().Foreground(ColorFile).MaxWidth(maxW)
		}
		lines = append(lines, itemStyle.Render(line))
	}

	style := TreePanelStyle.Width(t.width).Height(t.height)
	if t.focused {
		style = style.BorderForeground(ColorPrimary)
	}
	return style.Render(strings.Join(lines, "\n"))
}
