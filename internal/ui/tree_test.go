package ui

import (
	"testing"

	"github.com/lumipallolabs/fsview/internal/core"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTreePanel(t *testing.T) (TreePanel, *model.Tree, *core.TreeState) {
	t.Helper()
	tree := sampleTree()
	state := core.NewTreeState()
	p := NewTreePanel()
	p.SetSize(40, 20)
	p.SetTree(tree, state, nil)
	return p, tree, state
}

func TestTreePanelNavigation(t *testing.T) {
	p, tree, state := newTreePanel(t)
	d0 := tree.Children(model.RootDir)[0]

	assert.Equal(t, model.RootDir, p.Selected())
	p.MoveUp()
	assert.Equal(t, model.RootDir, p.Selected())

	p.MoveDown()
	assert.Equal(t, d0, p.Selected())
	assert.Equal(t, d0, state.Selected, "selection is shared with the controller")

	p.GoToBottom()
	assert.Equal(t, "loose", tree.Node(p.Selected()).Name)
	p.MoveDown()
	assert.Equal(t, "loose", tree.Node(p.Selected()).Name)

	p.GoToTop()
	assert.Equal(t, model.RootDir, p.Selected())
}

func TestTreePanelRefreshKeepsSelection(t *testing.T) {
	p, tree, state := newTreePanel(t)
	d0 := tree.Children(model.RootDir)[0]
	d1 := tree.Children(model.RootDir)[1]

	require.True(t, p.Select(d1))
	state.SetExpanded(d0, true)
	p.RefreshVisible()
	assert.Equal(t, d1, p.Selected())

	// Expanded d0 puts its files between the root and d1
	p.Select(d0)
	p.MoveDown()
	first := p.Selected()
	assert.Equal(t, d0, tree.Parent(first))
	assert.Equal(t, "f09", tree.Node(first).Name, "largest file first")

	p.SelectParent()
	assert.Equal(t, d0, p.Selected())
	p.SelectParent()
	assert.Equal(t, model.RootDir, p.Selected())
	p.SelectParent()
	assert.Equal(t, model.RootDir, p.Selected())
}

func TestTreePanelSelectHidden(t *testing.T) {
	p, tree, _ := newTreePanel(t)
	d0 := tree.Children(model.RootDir)[0]

	assert.False(t, p.Select(tree.Children(d0)[0]), "files of a collapsed dir are not listed")
	assert.Equal(t, model.RootDir, p.Selected())
}

func TestTreePanelView(t *testing.T) {
	p, tree, _ := newTreePanel(t)
	tree.MarkDeleted(tree.FindPath("/r/loose"))
	p.SetShowDiff(true)

	view := p.View()
	assert.Contains(t, view, "d0")
	assert.Contains(t, view, "loose")
	assert.Contains(t, view, "DEL")
	assert.Greater(t, p.RequiredWidth(), 10)
}

func TestTreePanelEmpty(t *testing.T) {
	p := NewTreePanel()
	p.SetSize(30, 10)
	assert.Equal(t, model.NoNode, p.Selected())
	assert.Equal(t, 30, p.RequiredWidth())
	assert.Contains(t, p.View(), "No data")
}

func TestSizeBar(t *testing.T) {
	assert.Equal(t, "[████]", sizeBar(1))
	assert.Equal(t, "[▓░░░]", sizeBar(0), "a sliver still shows")
	assert.Equal(t, "[██▓░]", sizeBar(0.5))
	assert.Equal(t, "[█▓░░]", sizeBar(0.3))
}
