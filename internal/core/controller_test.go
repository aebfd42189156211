package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumipallolabs/fsview/internal/config"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/lumipallolabs/fsview/internal/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "old"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.txt"), make([]byte, 5000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "old", "b.txt"), make([]byte, 9000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "media", "c.bin"), make([]byte, 20000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("hi"), 0o644))
	return root
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	cfg.Animation.Duration.Duration = time.Second
	return cfg
}

// scan runs a scan to completion and returns its completion event
func scan(t *testing.T, c *Controller) ScanCompletedEvent {
	t.Helper()
	events, err := c.StartScan(context.Background())
	require.NoError(t, err)
	require.NotNil(t, events)

	var done *ScanCompletedEvent
	var phases []ScanPhase
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				require.NotNil(t, done, "scan ended without completion")
				if done.Err == nil {
					assert.Equal(t, []ScanPhase{PhaseComparing, PhaseComplete}, phases)
				}
				return *done
			}
			switch ev := ev.(type) {
			case ScanCompletedEvent:
				done = &ev
			case ScanPhaseChangedEvent:
				phases = append(phases, ev.Phase)
			}
		case <-timeout:
			t.Fatal("scan timed out")
		}
	}
}

func drainEvents(c *Controller) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestScanAndInitLayout(t *testing.T) {
	root := writeFixture(t)
	c := NewController(root, testConfig(t), nil)

	done := scan(t, c)
	require.NoError(t, done.Err)
	require.NotNil(t, done.Tree)
	assert.Same(t, done.Tree, c.Tree())
	assert.Equal(t, done.ScanID, c.ScanState().ID)
	assert.Equal(t, PhaseComplete, c.ScanState().Phase)
	assert.Nil(t, c.Changes(), "first scan has nothing to compare with")

	c.InitLayout()
	require.NotNil(t, c.Engine())
	assert.Equal(t, layout.ModeTreeV, c.Engine().Mode())
	assert.Equal(t, 1.0, c.Tree().Deployment(model.RootDir))

	c.FinalizeScan()
	assert.False(t, c.ScanState().IsScanning())
}

func TestScanMissingPath(t *testing.T) {
	c := NewController(filepath.Join(t.TempDir(), "gone"), testConfig(t), nil)
	done := scan(t, c)
	assert.ErrorIs(t, done.Err, os.ErrNotExist)
	assert.Nil(t, c.Tree())
	assert.Equal(t, PhaseIdle, c.ScanState().Phase)
}

func TestStartScanWithoutPath(t *testing.T) {
	c := NewController("", testConfig(t), nil)
	events, err := c.StartScan(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, events)
}

func TestRescanDiffsAgainstCache(t *testing.T) {
	root := writeFixture(t)
	cfg := testConfig(t)

	first := NewController(root, cfg, nil)
	require.NoError(t, scan(t, first).Err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("fresh"), 0o644))

	second := NewController(root, cfg, nil)
	done := scan(t, second)
	require.NoError(t, done.Err)
	changes := second.Changes()
	require.NotNil(t, changes)

	tree := second.Tree()
	_, ok := changes.Delta(tree, tree.FindPath(filepath.Join(tree.RootPath, "new.txt")))
	assert.False(t, ok, "new file was not in the previous scan")

	delta, ok := changes.Delta(tree, tree.FindPath(filepath.Join(tree.RootPath, "media")))
	assert.True(t, ok)
	assert.Zero(t, delta)

	assert.NotEqual(t, first.ScanState().ID, second.ScanState().ID)
}

func TestToggleMorphsAndRelayouts(t *testing.T) {
	root := writeFixture(t)
	c := NewController(root, testConfig(t), nil)
	require.NoError(t, scan(t, c).Err)
	c.InitLayout()
	drainEvents(c)

	tree := c.Tree()
	docs := tree.FindPath(filepath.Join(tree.RootPath, "docs"))
	require.NotEqual(t, model.NoNode, docs)
	require.False(t, c.TreeState().Expanded(docs))

	t0 := time.Unix(1000, 0)
	c.Toggle(docs, t0)
	assert.True(t, c.TreeState().Expanded(docs))
	assert.True(t, c.Animating())
	assert.Contains(t, drainEvents(c), Event(TreeExpandedEvent{Dir: docs, Expanded: true}))

	dirty := c.Tick(t0.Add(500 * time.Millisecond))
	assert.Contains(t, dirty, docs)
	assert.InDelta(t, 0.5, tree.Deployment(docs), 1e-9)

	c.Tick(t0.Add(2 * time.Second))
	assert.Equal(t, 1.0, tree.Deployment(docs))
	assert.False(t, c.Animating())
	assert.Nil(t, c.Tick(t0.Add(3*time.Second)))

	form, _ := c.Engine().TreeV().Form(docs)
	assert.Equal(t, "platform", form.String())

	c.Toggle(docs, t0.Add(4*time.Second))
	c.Tick(t0.Add(10 * time.Second))
	assert.Equal(t, 0.0, tree.Deployment(docs))
	assert.False(t, c.TreeState().Expanded(docs))
}

func TestToggleIgnoresFiles(t *testing.T) {
	root := writeFixture(t)
	c := NewController(root, testConfig(t), nil)
	require.NoError(t, scan(t, c).Err)
	c.InitLayout()
	drainEvents(c)

	tree := c.Tree()
	top := tree.FindPath(filepath.Join(tree.RootPath, "top.txt"))
	c.Toggle(top, time.Now())
	assert.False(t, c.Animating())
	assert.Empty(t, drainEvents(c))
}

func TestSetModeRelayoutsAndRemembers(t *testing.T) {
	root := writeFixture(t)
	pm := prefs.NewManager(filepath.Join(t.TempDir(), "prefs.toml"))
	c := NewController(root, testConfig(t), pm)
	require.NoError(t, scan(t, c).Err)
	c.InitLayout()
	drainEvents(c)

	tree := c.Tree()
	media := tree.FindPath(filepath.Join(tree.RootPath, "media"))
	c.Toggle(media, time.Unix(0, 0))
	c.Tick(time.Unix(0, int64(300*time.Millisecond)))
	require.True(t, c.Animating())

	c.SetMode(layout.ModeMapV)
	assert.Equal(t, layout.ModeMapV, c.Engine().Mode())
	// Relayout snaps deployment and cancels the morph
	assert.Equal(t, 1.0, tree.Deployment(media))
	assert.False(t, c.Animating())
	assert.Contains(t, drainEvents(c), Event(ModeChangedEvent{Mode: layout.ModeMapV}))
	assert.Equal(t, "map", pm.Prefs().LastMode)

	c.SetMode(layout.ModeMapV)
	assert.Empty(t, drainEvents(c))
	c.Stop()
}

func TestApplyDeletion(t *testing.T) {
	tree := model.NewTree("/data")
	big := tree.Add(model.RootDir, "big", model.KindDirectory, 0)
	blob := tree.Add(big, "blob", model.KindRegular, MinSignificantSize)
	small := tree.Add(model.RootDir, "small", model.KindRegular, 10)
	tree.Finalize()

	pm := prefs.NewManager(filepath.Join(t.TempDir(), "prefs.toml"))
	c := NewController("/data", config.Default(), pm)
	c.tree = tree
	defer c.Stop()

	_, ok := c.ApplyDeletion(PathRemovedEvent{Tree: tree, Node: small, Path: "/data/small"})
	assert.False(t, ok, "small deletions are not reported")
	assert.True(t, tree.Node(small).IsDeleted)

	ev, ok := c.ApplyDeletion(PathRemovedEvent{Tree: tree, Node: big, Path: "/data/big"})
	require.True(t, ok)
	assert.Equal(t, big, ev.Node)
	assert.Equal(t, int64(MinSignificantSize), ev.Size)
	assert.Equal(t, int64(MinSignificantSize), ev.SessionFreed)
	assert.True(t, tree.Node(blob).IsDeleted)
	assert.Equal(t, int64(MinSignificantSize), c.FreedState().Session)
	assert.Equal(t, int64(MinSignificantSize), pm.FreedLifetime())

	// Repeats do not count twice
	_, ok = c.ApplyDeletion(PathRemovedEvent{Tree: tree, Node: blob, Path: "/data/big/blob"})
	assert.False(t, ok)
	assert.Equal(t, int64(MinSignificantSize), c.FreedState().Session)
}

func TestApplyDeletionFromReplacedTree(t *testing.T) {
	old := model.NewTree("/data")
	id := old.Add(model.RootDir, "blob", model.KindRegular, MinSignificantSize)
	old.Finalize()

	c := NewController("/data", config.Default(), nil)
	c.tree = model.NewTree("/data")
	c.tree.Finalize()

	_, ok := c.ApplyDeletion(PathRemovedEvent{Tree: old, Node: id, Path: "/data/blob"})
	assert.False(t, ok)
	assert.False(t, old.Node(id).IsDeleted, "a rescan replaced the tree")
	assert.Zero(t, c.FreedState().Session)
}
