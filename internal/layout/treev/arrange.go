package treev

import (
	"math"

	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

// platformArea estimates the floor area a platform needs for n children,
// laid out as a square of tiles
func platformArea(n int) float64 {
	k := edge15*math.Ceil(math.Sqrt(float64(max(1, n)))) + edge05
	return k * k
}

// solvePlatform finds the depth d and arc width (degrees) of a platform
// with area A at inner radius r whose outer edge is as long as it is deep:
//
//	A ≈ π·θ/360·((r+d)² − r²) − w·d
//	π·θ·(r+d)/180 − w = d
//
// which reduces to d³ + (2r+w)d² + (2wr − 2A − w)d − 2Ar = 0, solved here
// in closed form. ok is false when the expression has no usable real root.
func solvePlatform(A, r float64) (d, theta float64, ok bool) {
	const (
		w  = PlatformSpacingWidth
		w2 = w * w
		w3 = w2 * w
		w4 = w2 * w2
	)
	a2 := A * A
	a3 := A * a2
	r2 := r * r
	r3 := r * r2
	r4 := r2 * r2

	ka := 72*(A*r-w*(A+r)) - 64*r3 + 48*r2*w - 36*w2 + 24*r*w2 - 8*w3
	t1 := 72*A*w2 - 132*A*r*w2 - 240*A*w*r3 + 120*A*w2*r2 - 24*a2*w*r - 60*w3*r
	t2 := 12 * (w2*r2 + a2*w2 - w4*r + w4*r2 + A*w3 + w3)
	t3 := 48*(w2*r4-w2*r3-w3*r3) + 96*(a3+w3*r2)
	t4 := 192*A*r4 + 156*a2*r2 + 3*w4 + 144*a2*w + 264*A*w*r2
	radicand := t1 + t2 + t3 + t4
	if radicand < 0 {
		return 0, 0, false
	}
	kb := 12 * math.Sqrt(radicand)
	kc := math.Cos(math.Atan2(kb, ka) / 3)
	kd := math.Cbrt(math.Hypot(ka, kb))

	d = (-w-2*r)/3 + ((8*r2-4*w*r+2*w2)/3+4*A+2*w)*kc/kd + kc*kd/6
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, 0, false
	}
	theta = 180 * (d + w) / (math.Pi * (r + d))
	return d, theta, true
}

// solve is the platform solver used by ReshapePlatform
var solve = solvePlatform

// MinPlatformArcWidth is the narrowest platform at inner radius r0 whose
// inner edge still fits two tiles
func MinPlatformArcWidth(r0 float64) float64 {
	return scene.Deg(2*LeafNodeEdge+PlatformSpacingWidth) / r0
}

// ReshapePlatform assigns an estimated depth and arc width to a directory
// platform with inner radius r0. The final depth comes from tiling.
func (l *Layout) ReshapePlatform(dir model.NodeID, r0 float64) {
	n := len(l.env.Tree.Children(dir))
	area := platformArea(n)

	d, theta, ok := solve(area, r0)
	if !ok {
		// Square platform of the same area
		l.env.Logger().Warn("platform shape has no real solution, using a square",
			"dir", dir, "children", n, "r0", r0)
		d = math.Sqrt(area)
		theta = scene.Deg(d) / r0
	}

	// Round depth up to a whole number of tile rows
	d += (edge15 - math.Mod(d-edge05, edge15)) + edge05

	p := &l.params[dir].Platform
	p.ArcWidth = max(MinPlatformArcWidth(r0), theta)
	p.Depth = d

	l.env.Dirty.MarkDirty(dir)
}

// Shape reshapes a directory at its current inner radius and tiles it, so
// its arc width and depth are current before it starts expanding
func (l *Layout) Shape(dir model.NodeID) {
	l.shape(dir, l.PlatformR0(dir))
}

func (l *Layout) shape(dir model.NodeID, r0 float64) {
	l.ReshapePlatform(dir, r0)
	l.buildDir(dir, r0)
}

// arrange positions the subdirectories of dir angularly. With reshape set
// every expanded platform is reshaped first.
func (l *Layout) arrange(dir model.NodeID, r0 float64, reshape bool) {
	tree := l.env.Tree
	if !reshape && !l.needRearrange[dir] {
		return
	}

	if reshape && tree.IsDir(dir) {
		if l.IsLeaf(dir) {
			// Collapsed directory tiles still need repositioning
			l.env.Dirty.MarkDirty(dir)
			return
		}
		l.shape(dir, r0)
	}

	subR0 := r0 + l.params[dir].Platform.Depth + PlatformSpacingDepth
	subtreeArc := 0.0
	children := tree.Children(dir)
	dirs := children[:tree.FirstLeafChild(dir)]
	for _, id := range dirs {
		l.arrange(id, subR0, reshape)
		p := &l.params[id].Platform
		arc := tree.Deployment(id) * max(p.ArcWidth, p.SubtreeArcWidth)
		p.Theta = arc // temporary
		subtreeArc += arc
	}
	l.params[dir].Platform.SubtreeArcWidth = subtreeArc

	// Sweep counterclockwise, centering each directory in its share
	theta := -0.5 * subtreeArc
	for _, id := range dirs {
		p := &l.params[id].Platform
		arc := p.Theta
		p.Theta = theta + 0.5*arc
		theta += arc
	}

	l.needRearrange[dir] = false
}

// Arrange lays out the branches of the expanded tree, then grows or shrinks
// the core radius until the tree's total arc width is within bounds. initial
// reshapes every platform; otherwise only queued branches are rearranged.
func (l *Layout) Arrange(initial bool) {
	l.arrange(model.MetaRoot, l.coreRadius, initial)

	meta := &l.params[model.MetaRoot].Platform
	resized, grew := false, false
	iterations := 0
loop:
	for ; ; iterations++ {
		if iterations == MaxArrangeIterations {
			l.env.Logger().Warn("core radius did not converge",
				"iterations", iterations,
				"arc", meta.SubtreeArcWidth,
				"core", l.coreRadius)
			break
		}
		switch {
		case meta.SubtreeArcWidth > MaxArcWidth:
			l.coreRadius *= CoreGrowFactor
			grew = true
		case meta.SubtreeArcWidth < MinArcWidth && l.coreRadius > MinCoreRadius && !grew:
			// Shrinking right after growing would oscillate
			l.coreRadius = max(MinCoreRadius, l.coreRadius/CoreGrowFactor)
		default:
			break loop
		}
		l.arrange(model.MetaRoot, l.coreRadius, true)
		resized = true
	}

	if resized {
		l.env.Logger().Debug("core radius changed", "core", l.coreRadius, "iterations", iterations)
		l.env.NotifyCoreRadius()
	}
}

// QueueRearrange flags a directory and its ancestors for the next Arrange,
// as its angular share changes while it collapses or expands
func (l *Layout) QueueRearrange(dir model.NodeID) {
	if !l.env.Tree.IsDir(dir) {
		panic("treev: QueueRearrange on a non-directory")
	}
	for n := dir; n != model.NoNode; n = l.env.Tree.Parent(n) {
		l.needRearrange[n] = true
	}
	l.env.Dirty.Invalidate()
}

// NeedsRearrange reports whether a node is queued for rearrangement
func (l *Layout) NeedsRearrange(id model.NodeID) bool {
	return l.needRearrange[id]
}

// buildDir tiles the children of dir in rows from the inner edge outward,
// last child first, and sets the platform's final depth
func (l *Layout) buildDir(dir model.NodeID, r0 float64) {
	children := l.env.Tree.Children(dir)
	p := &l.params[dir].Platform

	remaining := len(children)
	r := r0 + LeafNodeEdge
	i := len(children) - 1
	for i >= 0 {
		arcLen := scene.Rad(p.ArcWidth)*r - PlatformSpacingWidth
		rowCount := max(1, int(math.Floor((arcLen-edge05)/edge15)))
		interArc := scene.Deg(edge15) / r

		// Sweep clockwise
		theta := 0.5 * interArc * float64(min(rowCount, remaining)-1)
		for n := 0; n < rowCount && i >= 0; n++ {
			leaf := &l.params[children[i]].Leaf
			leaf.Theta = theta
			leaf.Distance = r - r0
			theta -= interArc
			i--
		}

		remaining -= rowCount
		r += edge15
	}

	p.Depth = r - edge05 - r0
	l.env.Dirty.MarkDirty(dir)
}

// Build tiles every expanded or expanding platform
func (l *Layout) Build() {
	r0 := l.coreRadius + l.params[model.MetaRoot].Platform.Depth + PlatformSpacingDepth
	l.build(model.RootDir, r0)
}

func (l *Layout) build(dir model.NodeID, r0 float64) {
	tree := l.env.Tree
	if tree.Deployment(dir) < scene.Epsilon {
		return
	}
	l.buildDir(dir, r0)

	subR0 := r0 + l.params[dir].Platform.Depth + PlatformSpacingDepth
	for _, id := range tree.Children(dir)[:tree.FirstLeafChild(dir)] {
		l.build(id, subR0)
	}
}

// Update runs queued rearrangement and retiles platforms
func (l *Layout) Update() {
	l.Arrange(false)
	l.Build()
}
