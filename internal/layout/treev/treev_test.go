package treev

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tree     *model.Tree
	expanded map[model.NodeID]bool
	env      *scene.Env
	layout   *Layout
	camera   int
}

func (f *fixture) CoreRadiusChanged() { f.camera++ }

func newFixture(tree *model.Tree) *fixture {
	f := &fixture{tree: tree, expanded: map[model.NodeID]bool{}}
	f.env = &scene.Env{
		Tree:    tree,
		Browser: scene.BrowserFunc(func(id model.NodeID) bool { return f.expanded[id] }),
		Camera:  f,
		Dirty:   scene.NewDirtySet(),
	}
	f.layout = New(f.env)
	return f
}

func (f *fixture) expandAll() {
	f.tree.Walk(model.RootDir, func(id model.NodeID) bool {
		if f.tree.IsDir(id) {
			f.expanded[id] = true
		}
		return true
	})
}

// toggle drives a directory through a collapse or expand the way the
// morph driver does, in a few deployment steps
func (f *fixture) toggle(dir model.NodeID, expand bool) {
	if f.tree.Deployment(dir) < scene.Epsilon {
		f.layout.Shape(dir)
	}
	f.expanded[dir] = expand
	steps := []float64{0.5, 0}
	if expand {
		steps = []float64{0.5, 1}
	}
	for _, d := range steps {
		f.tree.SetDeployment(dir, d)
		f.env.Dirty.MarkDirty(dir)
		f.layout.QueueRearrange(dir)
		f.layout.Update()
	}
}

func filesTree(n int) *model.Tree {
	tree := model.NewTree("/r")
	for i := 0; i < n; i++ {
		tree.Add(model.RootDir, fmt.Sprintf("f%03d", i), model.KindRegular, int64(100+i))
	}
	tree.Finalize()
	return tree
}

// wideTree has enough expanded platforms to push the arc past MaxArcWidth
func wideTree() *model.Tree {
	tree := model.NewTree("/r")
	for i := 0; i < 60; i++ {
		d := tree.Add(model.RootDir, fmt.Sprintf("d%02d", i), model.KindDirectory, 0)
		for j := 0; j < 100; j++ {
			tree.Add(d, fmt.Sprintf("f%03d", j), model.KindRegular, 1000)
		}
	}
	tree.Finalize()
	return tree
}

func TestSolvePlatformRoots(t *testing.T) {
	for _, n := range []int{1, 2, 10, 100, 1000, 100000} {
		for _, r := range []float64{MinCoreRadius, 10240, 30000, 200000} {
			A := platformArea(n)
			d, theta, ok := solvePlatform(A, r)
			require.True(t, ok, "n=%d r=%v", n, r)

			const w = PlatformSpacingWidth
			residual := d*d*d + (2*r+w)*d*d + (2*w*r-2*A-w)*d - 2*A*r
			assert.Less(t, math.Abs(residual)/(2*A*r), 1e-9, "n=%d r=%v", n, r)

			// Outer edge as long as the platform is deep
			assert.InEpsilon(t, d, scene.Rad(theta)*(r+d)-w, 1e-9)
		}
	}
}

func TestSolvePlatformRejectsNaN(t *testing.T) {
	_, _, ok := solvePlatform(math.NaN(), 10240)
	assert.False(t, ok)
}

func TestReshapeFallsBackToSquare(t *testing.T) {
	solve = func(A, r float64) (float64, float64, bool) { return 0, 0, false }
	t.Cleanup(func() { solve = solvePlatform })

	var logs bytes.Buffer
	f := newFixture(filesTree(50))
	f.env.Log = log.New(&logs)
	f.layout.Init()

	r0 := MinCoreRadius + PlatformSpacingDepth
	f.layout.ReshapePlatform(model.RootDir, r0)
	p := f.layout.Params(model.RootDir).Platform

	side := math.Sqrt(platformArea(50))
	assert.GreaterOrEqual(t, p.Depth, side)
	assert.Less(t, p.Depth, side+2*edge15)
	rows := (p.Depth - LeafNodeEdge) / edge15
	assert.InDelta(t, math.Round(rows), rows, 1e-9, "whole tile rows")
	assert.GreaterOrEqual(t, p.ArcWidth, MinPlatformArcWidth(r0))
	assert.Contains(t, logs.String(), "platform shape has no real solution")

	// The whole layout stays finite on the fallback path
	f.expandAll()
	f.layout.Init()
	for id := 0; id < f.tree.Len(); id++ {
		p := f.layout.Params(model.NodeID(id))
		for _, v := range []float64{p.Platform.Theta, p.Platform.Depth, p.Platform.ArcWidth, p.Leaf.Theta, p.Leaf.Distance} {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "node %d", id)
		}
	}
}

func TestSingleChildArcFloor(t *testing.T) {
	f := newFixture(filesTree(1))
	f.expanded[model.RootDir] = true
	f.layout.Init()

	r0 := MinCoreRadius + PlatformSpacingDepth
	root := f.layout.Params(model.RootDir).Platform
	assert.InDelta(t, MinPlatformArcWidth(r0), root.ArcWidth, 1e-12)
	assert.InDelta(t, r0, f.layout.PlatformR0(model.RootDir), 1e-9)

	leaf := f.layout.Params(f.tree.Children(model.RootDir)[0]).Leaf
	assert.Equal(t, 0.0, leaf.Theta)
	assert.Equal(t, LeafNodeEdge, leaf.Distance)
	assert.Equal(t, 2*LeafNodeEdge, root.Depth)
}

func TestLeafTilingRows(t *testing.T) {
	f := newFixture(filesTree(200))
	f.expanded[model.RootDir] = true
	f.layout.Init()

	children := f.tree.Children(model.RootDir)
	rows := map[float64]float64{}
	maxDist := 0.0
	for _, id := range children {
		leaf := f.layout.Params(id).Leaf
		require.GreaterOrEqual(t, leaf.Distance, LeafNodeEdge)
		rowIndex := (leaf.Distance - LeafNodeEdge) / edge15
		assert.InDelta(t, math.Round(rowIndex), rowIndex, 1e-9)
		rows[leaf.Distance] += leaf.Theta
		maxDist = max(maxDist, leaf.Distance)
	}

	assert.Greater(t, len(rows), 1)
	for dist, sum := range rows {
		assert.InDelta(t, 0, sum, 1e-9, "row at %v is not centered", dist)
	}

	// Last child sits on the inner row, first child on the outer one
	assert.Equal(t, LeafNodeEdge, f.layout.Params(children[len(children)-1]).Leaf.Distance)
	assert.Equal(t, maxDist, f.layout.Params(children[0]).Leaf.Distance)
	assert.Equal(t, maxDist+LeafNodeEdge, f.layout.Params(model.RootDir).Platform.Depth)
}

func TestLeafHeights(t *testing.T) {
	tree := model.NewTree("/r")
	tiny := tree.Add(model.RootDir, "tiny", model.KindRegular, 10)
	big := tree.Add(model.RootDir, "big", model.KindRegular, 10000)
	sub := tree.Add(model.RootDir, "sub", model.KindDirectory, 0)
	tree.Add(sub, "x", model.KindRegular, 436)
	tree.Finalize()

	f := newFixture(tree)
	f.expanded[model.RootDir] = true
	f.layout.Init()

	assert.Equal(t, 8.0, f.layout.Params(tiny).Leaf.Height)
	assert.Equal(t, 100.0, f.layout.Params(big).Leaf.Height)
	assert.InDelta(t, math.Sqrt(64+436), f.layout.Params(sub).Leaf.Height, 1e-12)
	assert.Equal(t, PlatformHeight, f.layout.Params(sub).Platform.Height)
	assert.Equal(t, 100.0, f.layout.MaxLeafHeight(model.RootDir))
}

func TestArcWidthBoundsAfterGrowth(t *testing.T) {
	f := newFixture(wideTree())
	f.expandAll()
	f.layout.Init()

	arc := f.layout.Params(model.MetaRoot).Platform.SubtreeArcWidth
	assert.Greater(t, f.layout.CoreRadius(), MinCoreRadius)
	assert.LessOrEqual(t, arc, MaxArcWidth)
	assert.GreaterOrEqual(t, arc, MinArcWidth)
	assert.Positive(t, f.camera)

	// Growth happens in whole steps
	steps := math.Log(f.layout.CoreRadius()/MinCoreRadius) / math.Log(CoreGrowFactor)
	assert.InDelta(t, math.Round(steps), steps, 1e-9)
}

func TestCoreShrinksAfterCollapse(t *testing.T) {
	f := newFixture(wideTree())
	f.expandAll()
	f.layout.Init()
	grown := f.layout.CoreRadius()

	for _, id := range f.tree.Children(model.RootDir)[5:] {
		f.toggle(id, false)
	}

	assert.Less(t, f.layout.CoreRadius(), grown)
	assert.GreaterOrEqual(t, f.layout.CoreRadius(), MinCoreRadius)
	arc := f.layout.Params(model.MetaRoot).Platform.SubtreeArcWidth
	assert.LessOrEqual(t, arc, MaxArcWidth)
	if f.layout.CoreRadius() > MinCoreRadius {
		assert.GreaterOrEqual(t, arc, MinArcWidth)
	}
}

func TestSmallTreeKeepsMinimumCore(t *testing.T) {
	f := newFixture(filesTree(5))
	f.expanded[model.RootDir] = true
	f.layout.Init()

	assert.Equal(t, MinCoreRadius, f.layout.CoreRadius())
	assert.Less(t, f.layout.Params(model.MetaRoot).Platform.SubtreeArcWidth, MinArcWidth)
	assert.Zero(t, f.camera)
}

func TestPlatformMinimumEverywhere(t *testing.T) {
	f := newFixture(wideTree())
	f.expandAll()
	f.layout.Init()

	f.tree.Walk(model.RootDir, func(id model.NodeID) bool {
		if !f.tree.IsDir(id) {
			return false
		}
		r0 := f.layout.PlatformR0(id)
		assert.GreaterOrEqual(t, f.layout.Params(id).Platform.ArcWidth, MinPlatformArcWidth(r0)-1e-12)
		return true
	})
}

func TestCollapseExpandRoundTrip(t *testing.T) {
	tree := model.NewTree("/r")
	sub := tree.Add(model.RootDir, "sub", model.KindDirectory, 0)
	for i := 0; i < 12; i++ {
		tree.Add(sub, fmt.Sprintf("s%02d", i), model.KindRegular, int64(500*(i+1)))
	}
	other := tree.Add(model.RootDir, "other", model.KindDirectory, 0)
	tree.Add(other, "o", model.KindRegular, 10)
	tree.Add(model.RootDir, "top", model.KindRegular, 99)
	tree.Finalize()

	f := newFixture(tree)
	f.expandAll()
	f.layout.Init()
	before := f.layout.Params(sub).Platform

	f.toggle(sub, false)
	assert.Equal(t, 0.0, tree.Deployment(sub))
	form, _ := f.layout.Form(sub)
	assert.Equal(t, FormLeaf, form)

	f.toggle(sub, true)
	after := f.layout.Params(sub).Platform
	assert.Equal(t, before, after)
	assert.False(t, f.layout.NeedsRearrange(model.RootDir))
	assert.False(t, f.layout.NeedsRearrange(model.MetaRoot))
}

func TestCollapsedRoot(t *testing.T) {
	f := newFixture(filesTree(3))
	require.NotPanics(t, f.layout.Init)

	assert.True(t, f.layout.IsLeaf(model.RootDir))
	assert.Equal(t, 0.5*PlatformSpacingDepth, f.layout.Params(model.RootDir).Leaf.Distance)
	assert.Equal(t, 0.0, f.layout.Params(model.MetaRoot).Platform.SubtreeArcWidth)
	assert.Panics(t, func() { f.layout.PlatformTheta(model.RootDir) })
}

func TestForm(t *testing.T) {
	tree := model.NewTree("/r")
	sub := tree.Add(model.RootDir, "sub", model.KindDirectory, 0)
	file := tree.Add(model.RootDir, "file", model.KindRegular, 1)
	tree.Finalize()

	f := newFixture(tree)
	f.expanded[model.RootDir] = true
	f.layout.Init()

	form, _ := f.layout.Form(model.RootDir)
	assert.Equal(t, FormPlatform, form)
	form, _ = f.layout.Form(sub)
	assert.Equal(t, FormLeaf, form)
	form, _ = f.layout.Form(file)
	assert.Equal(t, FormLeaf, form)

	tree.SetDeployment(sub, 0.4)
	form, scale := f.layout.Form(sub)
	assert.Equal(t, FormTransitional, form)
	assert.Equal(t, 0.4, scale)
	assert.Equal(t, "transitional", form.String())
}

func TestQueueRearrange(t *testing.T) {
	tree := model.NewTree("/r")
	sub := tree.Add(model.RootDir, "sub", model.KindDirectory, 0)
	file := tree.Add(sub, "file", model.KindRegular, 1)
	tree.Finalize()

	f := newFixture(tree)
	f.layout.Init()
	f.env.Dirty.Reset()

	f.layout.QueueRearrange(sub)
	assert.True(t, f.layout.NeedsRearrange(sub))
	assert.True(t, f.layout.NeedsRearrange(model.RootDir))
	assert.True(t, f.layout.NeedsRearrange(model.MetaRoot))
	assert.True(t, f.env.Dirty.Dirty())
	assert.Panics(t, func() { f.layout.QueueRearrange(file) })

	f.layout.Update()
	assert.False(t, f.layout.NeedsRearrange(model.MetaRoot))
}

func TestPlatformGeometryQueries(t *testing.T) {
	tree := model.NewTree("/r")
	sub := tree.Add(model.RootDir, "sub", model.KindDirectory, 0)
	for i := 0; i < 9; i++ {
		tree.Add(sub, fmt.Sprintf("s%d", i), model.KindRegular, 1000)
	}
	file := tree.Add(model.RootDir, "file", model.KindRegular, 400)
	tree.Finalize()

	f := newFixture(tree)
	f.expandAll()
	f.layout.Init()
	l := f.layout

	root := l.Params(model.RootDir).Platform
	assert.Equal(t, 90.0, l.PlatformTheta(model.RootDir))
	assert.Equal(t, 90.0+l.Params(sub).Platform.Theta, l.PlatformTheta(sub))
	assert.Equal(t, l.CoreRadius(), l.PlatformR0(model.MetaRoot))
	assert.Equal(t, l.PlatformR0(model.RootDir)+root.Depth+PlatformSpacingDepth, l.PlatformR0(sub))

	c0, c1 := l.Corners(model.RootDir)
	assert.Equal(t, l.PlatformR0(model.RootDir)-PlatformPadding, c0.R)
	assert.Equal(t, l.PlatformR0(model.RootDir)+root.Depth+PlatformPadding, c1.R)
	assert.InDelta(t, root.ArcWidth, c1.Theta-c0.Theta, 1e-9)
	assert.Equal(t, PlatformHeight, c1.Z)

	c0, c1 = l.Corners(file)
	assert.InDelta(t, LeafNodeEdge+2*LeafPadding, c1.R-c0.R, 1e-9)
	assert.InDelta(t, PlatformHeight-0.5*LeafPadding, c0.Z, 1e-9)
	assert.InDelta(t, PlatformHeight+20+0.5*LeafPadding, c1.Z, 1e-9)
	assert.Less(t, c0.Theta, c1.Theta)

	e0, e1 := l.Extents(model.RootDir)
	s0, s1 := l.Extents(sub)
	assert.Equal(t, l.PlatformR0(model.RootDir), e0.R)
	assert.Equal(t, s1.R, e1.R)
	assert.LessOrEqual(t, e0.Theta, s0.Theta)
	assert.GreaterOrEqual(t, e1.Theta, s1.Theta)

	assert.Panics(t, func() { l.Extents(file) })
	assert.Panics(t, func() { l.MaxLeafHeight(file) })
}

func TestDeterministic(t *testing.T) {
	f := newFixture(wideTree())
	f.expandAll()
	f.layout.Init()
	first := append([]Params(nil), f.layout.params...)
	core := f.layout.CoreRadius()

	f.layout.Init()
	assert.Equal(t, core, f.layout.CoreRadius())
	assert.Equal(t, first, f.layout.params)
}
