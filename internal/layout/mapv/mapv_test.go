package mapv

import (
	"fmt"
	"math"
	"testing"

	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(tree *model.Tree, expanded func(model.NodeID) bool) *scene.Env {
	if expanded == nil {
		expanded = func(model.NodeID) bool { return true }
	}
	return &scene.Env{
		Tree:    tree,
		Browser: scene.BrowserFunc(expanded),
		Dirty:   scene.NewDirtySet(),
	}
}

func area(p Params) float64 { return p.Width() * p.Depth() }

// faceBounds returns the usable face rectangle of a directory
func faceBounds(l *Layout, dir model.NodeID) (scene.XY, scene.XY) {
	f, _ := l.Face(dir)
	c := l.Params(dir).Center()
	half := scene.XY{X: 0.5 * f.Dims.X, Y: 0.5 * f.Dims.Y}
	return c.Sub(half), c.Add(half)
}

func mixedTree() *model.Tree {
	tree := model.NewTree("/r")
	sizes := []int64{120000, 64000, 30000, 9000, 4096, 700, 100, 0}
	for i, s := range sizes {
		tree.Add(model.RootDir, fmt.Sprintf("f%d", i), model.KindRegular, s)
	}
	sub := tree.Add(model.RootDir, "sub", model.KindDirectory, 0)
	for i := 0; i < 20; i++ {
		tree.Add(sub, fmt.Sprintf("g%02d", i), model.KindRegular, int64(1000+i*500))
	}
	deep := tree.Add(sub, "deep", model.KindDirectory, 0)
	tree.Add(deep, "x", model.KindSymlink, 30)
	tree.Finalize()
	return tree
}

func TestSingleFileFillsDirectory(t *testing.T) {
	tree := model.NewTree("/r")
	f := tree.Add(model.RootDir, "big", model.KindRegular, 1_000_000)
	tree.Finalize()

	l := New(newEnv(tree, nil))
	l.Init()

	face, ok := l.Face(model.RootDir)
	require.True(t, ok)
	lo, hi := faceBounds(l, model.RootDir)
	p := l.Params(f)

	assert.InDelta(t, lo.X, p.C0.X, face.Border)
	assert.InDelta(t, lo.Y, p.C0.Y, face.Border)
	assert.InDelta(t, hi.X, p.C1.X, face.Border)
	assert.InDelta(t, hi.Y, p.C1.Y, face.Border)
	assert.InEpsilon(t, face.Scale*1_000_000, area(p), 1e-9)
}

func TestAreaConservation(t *testing.T) {
	tree := mixedTree()
	l := New(newEnv(tree, nil))
	l.Init()

	tree.Walk(model.RootDir, func(dir model.NodeID) bool {
		if !tree.IsDir(dir) || len(tree.Children(dir)) == 0 {
			return true
		}
		face, ok := l.Face(dir)
		require.True(t, ok)

		var nodeArea, nominal float64
		for _, id := range tree.Children(dir) {
			a := area(l.Params(id))
			nodeArea += a
			nominal += float64(tree.EffectiveSize(id, MinNodeSize))
			assert.InEpsilon(t, face.Scale*float64(tree.EffectiveSize(id, MinNodeSize)), a, 1e-9)
		}
		assert.LessOrEqual(t, nodeArea, face.Area())
		assert.InEpsilon(t, nominal, nodeArea/face.Scale, 1e-9)
		return true
	})
}

func TestChildrenInsideFace(t *testing.T) {
	tree := mixedTree()
	l := New(newEnv(tree, nil))
	l.Init()

	const tol = 1e-6
	tree.Walk(model.RootDir, func(dir model.NodeID) bool {
		if !tree.IsDir(dir) || len(tree.Children(dir)) == 0 {
			return true
		}
		lo, hi := faceBounds(l, dir)
		for _, id := range tree.Children(dir) {
			p := l.Params(id)
			assert.GreaterOrEqual(t, p.C0.X, lo.X-tol)
			assert.GreaterOrEqual(t, p.C0.Y, lo.Y-tol)
			assert.LessOrEqual(t, p.C1.X, hi.X+tol)
			assert.LessOrEqual(t, p.C1.Y, hi.Y+tol)
			assert.Less(t, p.C0.X, p.C1.X)
			assert.Less(t, p.C0.Y, p.C1.Y)
		}
		return true
	})
}

func TestAreaMonotonicInSize(t *testing.T) {
	tree := mixedTree()
	l := New(newEnv(tree, nil))
	l.Init()

	children := tree.Children(model.RootDir)
	for i := 1; i < len(children); i++ {
		a, b := children[i-1], children[i]
		sa, sb := tree.EffectiveSize(a, MinNodeSize), tree.EffectiveSize(b, MinNodeSize)
		switch {
		case sa == sb:
			// Both clamped to the floor: equal up to rounding
			assert.InEpsilon(t, area(l.Params(a)), area(l.Params(b)), 1e-12)
		case sa > sb:
			assert.Greater(t, area(l.Params(a)), area(l.Params(b)))
		}
	}
}

func TestRootFootprint(t *testing.T) {
	tree := mixedTree()
	l := New(newEnv(tree, nil))
	l.Init()

	root := l.Params(model.RootDir)
	total := float64(tree.Node(model.MetaRoot).SubtreeSize)
	assert.InEpsilon(t, RootAspectRatio, root.Width()/root.Depth(), 1e-12)
	assert.InEpsilon(t, total, area(root), 1e-9)
	assert.InDelta(t, 0, root.Center().X, 1e-9)
	assert.InDelta(t, 0, root.Center().Y, 1e-9)
	assert.Equal(t, DirHeight, root.Height)
	assert.Equal(t, 0.0, l.Params(model.MetaRoot).Height)
}

func TestEmptyRoot(t *testing.T) {
	tree := model.NewTree("/r")
	tree.Finalize()

	l := New(newEnv(tree, nil))
	require.NotPanics(t, l.Init)

	root := l.Params(model.RootDir)
	assert.False(t, math.IsNaN(root.Width()))
	assert.InEpsilon(t, MinNodeSize, area(root), 1e-9)
	_, ok := l.Face(model.RootDir)
	assert.False(t, ok)
}

func TestHeightsAndZ(t *testing.T) {
	tree := mixedTree()
	l := New(newEnv(tree, nil))
	l.Init()

	sub := tree.FindPath("/r/sub")
	deep := tree.FindPath("/r/sub/deep")
	x := tree.FindPath("/r/sub/deep/x")
	f0 := tree.FindPath("/r/f0")

	assert.Equal(t, DirHeight, l.Params(sub).Height)
	assert.Equal(t, LeafHeight, l.Params(f0).Height)
	assert.Equal(t, 0.0, l.NodeZ0(model.RootDir))
	assert.Equal(t, DirHeight, l.NodeZ0(sub))
	assert.Equal(t, 3*DirHeight, l.NodeZ0(x))
	assert.Equal(t, 2*DirHeight, l.NodeZ0(deep))
}

func TestMaxExpandedHeight(t *testing.T) {
	tree := mixedTree()
	sub := tree.FindPath("/r/sub")
	deep := tree.FindPath("/r/sub/deep")

	expanded := map[model.NodeID]bool{model.RootDir: true, sub: true}
	l := New(newEnv(tree, func(id model.NodeID) bool { return expanded[id] }))
	l.Init()

	// sub holds the collapsed directory deep, which stands DirHeight tall
	assert.Equal(t, 2*DirHeight, l.MaxExpandedHeight(model.RootDir))
	assert.Equal(t, DirHeight, l.MaxExpandedHeight(sub))
	assert.Equal(t, 0.0, l.MaxExpandedHeight(deep))

	expanded[deep] = true
	assert.Equal(t, DirHeight+LeafHeight, l.MaxExpandedHeight(sub))
	assert.Equal(t, 2*DirHeight+LeafHeight, l.MaxExpandedHeight(model.RootDir))

	assert.Panics(t, func() { l.MaxExpandedHeight(tree.FindPath("/r/f0")) })
}

func TestDeploymentSnapped(t *testing.T) {
	tree := mixedTree()
	sub := tree.FindPath("/r/sub")
	tree.SetDeployment(sub, 0.3)

	env := newEnv(tree, func(id model.NodeID) bool { return id == model.RootDir })
	New(env).Init()

	assert.Equal(t, 1.0, tree.Deployment(model.RootDir))
	assert.Equal(t, 0.0, tree.Deployment(sub))
	assert.True(t, env.Dirty.Has(sub))
}

func TestDeterministic(t *testing.T) {
	tree := mixedTree()
	l := New(newEnv(tree, nil))
	l.Init()
	first := append([]Params(nil), l.params...)
	l.Init()
	assert.Equal(t, first, l.params)
}

func TestSideSlantRatio(t *testing.T) {
	assert.Equal(t, 0.032, SideSlantRatio(model.KindDirectory))
	assert.Equal(t, 0.333, SideSlantRatio(model.KindSymlink))
	assert.Equal(t, 0.0, SideSlantRatio(model.KindSocket))
}
