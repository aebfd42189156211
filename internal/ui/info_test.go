package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lumipallolabs/fsview/internal/cache"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeNode(t *testing.T) {
	dir := t.TempDir()
	content := []byte("hello world\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), content, 0o644))

	tree := model.NewTree(dir)
	id := tree.Add(model.RootDir, "notes.txt", model.KindRegular, int64(len(content)))
	tree.Finalize()
	e := newEngine(tree, browser{model.RootDir: true}, layout.ModeTreeV)

	info := DescribeNode(e, nil, id)
	assert.Equal(t, "notes.txt", info.Name)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), info.Path)
	assert.Equal(t, "TXT", info.FileType)
	assert.InDelta(t, 1.0, info.Share, 1e-9)
	assert.Equal(t, "leaf", info.Form)
	assert.False(t, info.History)
	assert.NotZero(t, info.Mode)

	view := info.View(200, true)
	assert.Contains(t, view, "notes.txt")
	assert.Contains(t, view, "TXT")
	assert.NotContains(t, view, "NEW", "no badge without a previous scan")

	root := DescribeNode(e, nil, model.RootDir)
	assert.Equal(t, "platform", root.Form)
	assert.Contains(t, root.View(200, false), "1 file")
}

func TestDescribeNodeDiff(t *testing.T) {
	prev := model.NewTree("/r")
	prev.Add(model.RootDir, "a", model.KindRegular, 100)
	prev.Finalize()

	tree := model.NewTree("/r")
	a := tree.Add(model.RootDir, "a", model.KindRegular, 300)
	b := tree.Add(model.RootDir, "b", model.KindRegular, 50)
	tree.Finalize()
	changes := cache.Diff(tree, prev)
	e := newEngine(tree, browser{model.RootDir: true}, layout.ModeMapV)

	grew := DescribeNode(e, changes, a)
	assert.True(t, grew.Seen)
	assert.Equal(t, int64(200), grew.Delta)
	assert.Empty(t, grew.Form, "form is only reported in tree mode")
	assert.Contains(t, grew.View(200, true), "+200B")

	added := DescribeNode(e, changes, b)
	assert.False(t, added.Seen)
	assert.Contains(t, added.View(200, true), "NEW")
	assert.NotContains(t, added.View(200, false), "NEW")
}

func TestCountSummary(t *testing.T) {
	var counts [model.NumKinds]int32
	assert.Empty(t, countSummary(counts))

	counts[model.KindDirectory] = 2
	counts[model.KindRegular] = 5
	counts[model.KindSymlink] = 1
	assert.Equal(t, "2 dirs, 5 files, 1 symlink", countSummary(counts))
}
