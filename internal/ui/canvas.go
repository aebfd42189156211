package ui

import (
	"math"

	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

// cellAspect is the height of a terminal cell in units of its width
const cellAspect = 2.0

// shape is a node's footprint seen from above
type shape interface {
	bounds() (lo, hi scene.XY)
	contains(p scene.XY) bool
}

type disc struct {
	center scene.XY
	radius float64
}

func (d disc) bounds() (scene.XY, scene.XY) {
	r := scene.XY{X: d.radius, Y: d.radius}
	return d.center.Sub(r), d.center.Add(r)
}

func (d disc) contains(p scene.XY) bool {
	q := p.Sub(d.center)
	return q.X*q.X+q.Y*q.Y <= d.radius*d.radius
}

type rect struct {
	c0, c1 scene.XY
}

func (r rect) bounds() (scene.XY, scene.XY) { return r.c0, r.c1 }

func (r rect) contains(p scene.XY) bool {
	return p.X >= r.c0.X && p.X <= r.c1.X && p.Y >= r.c0.Y && p.Y <= r.c1.Y
}

// sector is an annular sector around the origin, angles in degrees with
// t0 <= t1
type sector struct {
	r0, r1 float64
	t0, t1 float64
}

func (s sector) bounds() (scene.XY, scene.XY) {
	lo := scene.XY{X: math.Inf(1), Y: math.Inf(1)}
	hi := scene.XY{X: math.Inf(-1), Y: math.Inf(-1)}
	add := func(p scene.XY) {
		lo = scene.XY{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = scene.XY{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	for _, r := range []float64{s.r0, s.r1} {
		add(scene.Polar(r, s.t0))
		add(scene.Polar(r, s.t1))
		// Axis crossings are where the arcs bulge furthest
		for a := math.Ceil(s.t0/90) * 90; a <= s.t1; a += 90 {
			add(scene.Polar(r, a))
		}
	}
	return lo, hi
}

func (s sector) contains(p scene.XY) bool {
	r := math.Hypot(p.X, p.Y)
	if r < s.r0 || r > s.r1 {
		return false
	}
	if s.t1-s.t0 >= 360 {
		return true
	}
	a := scene.Deg(math.Atan2(p.Y, p.X))
	a = s.t0 + math.Mod(math.Mod(a-s.t0, 360)+360, 360)
	return a <= s.t1
}

// Mark is one node's footprint in ground plane coordinates
type Mark struct {
	ID    model.NodeID
	Depth int
	shape shape
}

// Marks collects the footprints of every node the engine currently shows,
// parents before children. Subtrees of collapsed directories are skipped.
func Marks(e *layout.Engine) []Mark {
	if e == nil || !e.Ready() {
		return nil
	}
	switch e.Mode() {
	case layout.ModeDiscV:
		return discMarks(e)
	case layout.ModeMapV:
		return mapMarks(e)
	default:
		return treeMarks(e)
	}
}

// discMarks scales each child's disc and offset by its parent's
// deployment, so a collapsing directory draws its contents in
func discMarks(e *layout.Engine) []Mark {
	tree, dv := e.Tree(), e.DiscV()

	type frame struct {
		id    model.NodeID
		depth int
		pos   scene.XY
		scale float64
	}
	var marks []Mark
	stack := []frame{{model.RootDir, 0, dv.NodePos(model.RootDir), 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		marks = append(marks, Mark{f.id, f.depth, disc{f.pos, f.scale * dv.Params(f.id).Radius}})

		d := tree.Deployment(f.id)
		if !tree.IsDir(f.id) || d < scene.Epsilon {
			continue
		}
		scale := f.scale * d
		children := tree.Children(f.id)
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			off := dv.Params(c).Pos
			pos := f.pos.Add(scene.XY{X: scale * off.X, Y: scale * off.Y})
			stack = append(stack, frame{c, f.depth + 1, pos, scale})
		}
	}
	return marks
}

func mapMarks(e *layout.Engine) []Mark {
	tree, mv := e.Tree(), e.MapV()
	var marks []Mark
	walkShown(tree, func(id model.NodeID, depth int) bool {
		p := mv.Params(id)
		marks = append(marks, Mark{id, depth, rect{p.C0, p.C1}})
		return tree.IsDir(id) && tree.Deployment(id) >= scene.Epsilon
	})
	return marks
}

func treeMarks(e *layout.Engine) []Mark {
	tree, tv := e.Tree(), e.TreeV()
	var marks []Mark
	walkShown(tree, func(id model.NodeID, depth int) bool {
		if tv.IsLeaf(id) {
			c0, c1 := tv.Corners(id)
			marks = append(marks, Mark{id, depth, sector{c0.R, c1.R, c0.Theta, c1.Theta}})
			return false
		}
		p := tv.Params(id).Platform
		r0, theta := tv.PlatformR0(id), tv.PlatformTheta(id)
		marks = append(marks, Mark{id, depth, sector{
			r0: r0, r1: r0 + p.Depth,
			t0: theta - 0.5*p.ArcWidth, t1: theta + 0.5*p.ArcWidth,
		}})
		return true
	})
	return marks
}

// walkShown visits the root directory and, pre-order, every node fn
// chooses to descend into
func walkShown(tree *model.Tree, fn func(id model.NodeID, depth int) bool) {
	type frame struct {
		id    model.NodeID
		depth int
	}
	stack := []frame{{model.RootDir, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, f.depth) {
			continue
		}
		children := tree.Children(f.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}

// Bounds returns the bounding box of the marks under focus (all marks when
// focus is NoNode). ok is false when there is nothing to frame.
func Bounds(tree *model.Tree, marks []Mark, focus model.NodeID) (lo, hi scene.XY, ok bool) {
	lo = scene.XY{X: math.Inf(1), Y: math.Inf(1)}
	hi = scene.XY{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, m := range marks {
		if focus != model.NoNode && !tree.IsAncestor(focus, m.ID) {
			continue
		}
		a, b := m.shape.bounds()
		lo = scene.XY{X: min(lo.X, a.X), Y: min(lo.Y, a.Y)}
		hi = scene.XY{X: max(hi.X, b.X), Y: max(hi.Y, b.Y)}
		ok = true
	}
	return lo, hi, ok
}

// Raster is a grid of terminal cells, each holding the node drawn on top
// there (NoNode for background)
type Raster struct {
	Cols, Rows int
	Cells      []model.NodeID
	Depths     []int

	origin scene.XY // world position of the top-left corner
	scale  float64  // cells per world unit, horizontally
}

// At returns the node covering cell (x, y)
func (r *Raster) At(x, y int) model.NodeID {
	if x < 0 || y < 0 || x >= r.Cols || y >= r.Rows {
		return model.NoNode
	}
	return r.Cells[y*r.Cols+x]
}

// DepthAt returns the tree depth of the node covering cell (x, y)
func (r *Raster) DepthAt(x, y int) int {
	if x < 0 || y < 0 || x >= r.Cols || y >= r.Rows {
		return 0
	}
	return r.Depths[y*r.Cols+x]
}

// CellOf returns the cell containing world point p
func (r *Raster) CellOf(p scene.XY) (x, y int, ok bool) {
	if r.scale == 0 {
		return 0, 0, false
	}
	x = int(math.Floor((p.X - r.origin.X) * r.scale))
	y = int(math.Floor((r.origin.Y - p.Y) * r.scale / cellAspect))
	return x, y, x >= 0 && y >= 0 && x < r.Cols && y < r.Rows
}

// center returns the world position of the middle of cell (x, y)
func (r *Raster) center(x, y int) scene.XY {
	return scene.XY{
		X: r.origin.X + (float64(x)+0.5)/r.scale,
		Y: r.origin.Y - (float64(y)+0.5)*cellAspect/r.scale,
	}
}

// Rasterize draws marks in order onto a cols x rows grid framing the box
// [lo, hi], preserving aspect ratio and centering the box. A mark too small
// to cover any cell center still claims the cell under its own center.
func Rasterize(marks []Mark, cols, rows int, lo, hi scene.XY) Raster {
	r := Raster{Cols: max(0, cols), Rows: max(0, rows)}
	r.Cells = make([]model.NodeID, r.Cols*r.Rows)
	r.Depths = make([]int, r.Cols*r.Rows)
	for i := range r.Cells {
		r.Cells[i] = model.NoNode
	}
	if r.Cols == 0 || r.Rows == 0 {
		return r
	}

	w := max(hi.X-lo.X, 1e-9)
	h := max(hi.Y-lo.Y, 1e-9)
	r.scale = min(float64(r.Cols)/w, float64(r.Rows)*cellAspect/h)
	r.origin = scene.XY{
		X: lo.X - 0.5*(float64(r.Cols)/r.scale-w),
		Y: hi.Y + 0.5*(float64(r.Rows)*cellAspect/r.scale-h),
	}

	for _, m := range marks {
		a, b := m.shape.bounds()
		x0, y1, _ := r.CellOf(a)
		x1, y0, _ := r.CellOf(b)
		x0, y0 = max(x0, 0), max(y0, 0)
		x1, y1 = min(x1, r.Cols-1), min(y1, r.Rows-1)

		hit := false
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if m.shape.contains(r.center(x, y)) {
					r.Cells[y*r.Cols+x] = m.ID
					r.Depths[y*r.Cols+x] = m.Depth
					hit = true
				}
			}
		}
		if !hit {
			mid := scene.XY{X: 0.5 * (a.X + b.X), Y: 0.5 * (a.Y + b.Y)}
			if x, y, ok := r.CellOf(mid); ok {
				r.Cells[y*r.Cols+x] = m.ID
				r.Depths[y*r.Cols+x] = m.Depth
			}
		}
	}
	return r
}
