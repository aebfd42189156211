//go:build linux

package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startInotify(t *testing.T, tree *model.Tree) *Watcher {
	t.Helper()
	w, err := New(tree)
	require.NoError(t, err)
	require.NoError(t, w.AddRecursive())
	w.Start()
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestInotifyReportsNestedDeletion(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	file := filepath.Join(nested, "victim.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tree := model.NewTree(root)
	a := tree.Add(model.RootDir, "a", model.KindDirectory, 0)
	b := tree.Add(a, "b", model.KindDirectory, 0)
	victim := tree.Add(b, "victim.txt", model.KindRegular, 1)
	tree.Finalize()

	w := startInotify(t, tree)
	require.NoError(t, os.Remove(file))
	assert.Equal(t, Event{Node: victim, Path: file}, nextEvent(t, w))
}

func TestInotifyReportsMoveAway(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	file := filepath.Join(root, "moved.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tree := model.NewTree(root)
	moved := tree.Add(model.RootDir, "moved.txt", model.KindRegular, 1)
	tree.Finalize()

	w := startInotify(t, tree)
	require.NoError(t, os.Rename(file, filepath.Join(elsewhere, "moved.txt")))
	assert.Equal(t, Event{Node: moved, Path: file}, nextEvent(t, w))
}
