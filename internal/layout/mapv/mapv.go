// Package mapv lays a filesystem tree out as a nested treemap of raised
// blocks. Each directory's top face is packed with its children in rows.
package mapv

import (
	"math"

	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

const (
	// BorderProportion sets the nominal gap around blocks relative to the
	// square root of the directory face area
	BorderProportion = 0.01

	// RootAspectRatio is width/depth of the root directory
	RootAspectRatio = 1.2

	DirHeight  = 384.0
	LeafHeight = 128.0

	// MinNodeSize is the size floor applied before computing block area
	MinNodeSize = 256
)

// sideSlantRatios is the horizontal inset of a node's walls per unit of
// side length, by kind
var sideSlantRatios = [model.NumKinds]float64{
	model.KindMetaRoot:    0,
	model.KindDirectory:   0.032,
	model.KindRegular:     0.064,
	model.KindSymlink:     0.333,
	model.KindFIFO:        0,
	model.KindSocket:      0,
	model.KindCharDevice:  0.25,
	model.KindBlockDevice: 0.25,
	model.KindUnknown:     0,
}

// SideSlantRatio returns the wall slant used when drawing a node of kind k
func SideSlantRatio(k model.Kind) float64 {
	return sideSlantRatios[k]
}

// Params is the MapV geometry of one node
type Params struct {
	C0, C1 scene.XY // opposite corners of the footprint
	Height float64
}

// Width returns the x extent of the node
func (p Params) Width() float64 { return p.C1.X - p.C0.X }

// Depth returns the y extent of the node
func (p Params) Depth() float64 { return p.C1.Y - p.C0.Y }

// Center returns the center of the node's footprint
func (p Params) Center() scene.XY {
	return scene.XY{X: 0.5 * (p.C0.X + p.C1.X), Y: 0.5 * (p.C0.Y + p.C1.Y)}
}

// Face describes the packing area of a directory's top face
type Face struct {
	Dims   scene.XY // usable extent after wall slant and border trim
	Border float64  // nominal border width
	Scale  float64  // block area per unit of (bordered) nominal area
}

// Area returns the usable face area
func (f Face) Area() float64 { return f.Dims.X * f.Dims.Y }

// Layout holds MapV geometry for a tree
type Layout struct {
	env    *scene.Env
	params []Params
	faces  map[model.NodeID]Face
}

// New creates an empty layout bound to env
func New(env *scene.Env) *Layout {
	return &Layout{env: env}
}

// Params returns the geometry of a node
func (l *Layout) Params(id model.NodeID) Params {
	return l.params[id]
}

// Face returns the packing face of a directory with children
func (l *Layout) Face(dir model.NodeID) (Face, bool) {
	f, ok := l.faces[dir]
	return f, ok
}

// NodeZ0 returns the z position of the bottom of a node
func (l *Layout) NodeZ0(id model.NodeID) float64 {
	z := 0.0
	tree := l.env.Tree
	for n := tree.Parent(id); n != model.NoNode; n = tree.Parent(n) {
		z += l.params[n].Height
	}
	return z
}

// MaxExpandedHeight returns the peak height of a directory's contents,
// measured from its top face, given the current expansion state
func (l *Layout) MaxExpandedHeight(dir model.NodeID) float64 {
	tree := l.env.Tree
	if !tree.IsDir(dir) {
		panic("mapv: MaxExpandedHeight on a non-directory")
	}
	if !l.env.Browser.Expanded(dir) {
		return 0
	}

	maxHeight := 0.0
	for _, id := range tree.Children(dir) {
		height := l.params[id].Height
		if !tree.IsDir(id) {
			// Leaves all share one height and sort after directories
			maxHeight = max(maxHeight, height)
			break
		}
		maxHeight = max(maxHeight, height+l.MaxExpandedHeight(id))
	}
	return maxHeight
}

// Init computes the layout of the whole tree
func (l *Layout) Init() {
	tree := l.env.Tree
	l.params = make([]Params, tree.Len())
	l.faces = make(map[model.NodeID]Face)

	// Root footprint is centered on the origin
	area := float64(max(MinNodeSize, tree.Node(model.MetaRoot).SubtreeSize))
	depth := math.Sqrt(area / RootAspectRatio)
	width := RootAspectRatio * depth

	l.params[model.MetaRoot].Height = 0
	l.params[model.RootDir] = Params{
		C0:     scene.XY{X: -0.5 * width, Y: -0.5 * depth},
		C1:     scene.XY{X: 0.5 * width, Y: 0.5 * depth},
		Height: DirHeight,
	}

	stack := []model.NodeID{model.RootDir}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = l.layoutDir(dir, stack)
	}
}

// block is a child plus its surrounding border area
type block struct {
	id   model.NodeID
	area float64
}

// row is a run of consecutive blocks sharing one depth
type row struct {
	first, end int // block index range
	area       float64
}

// layoutDir packs the children of dir into its top face and pushes child
// directories onto stack
func (l *Layout) layoutDir(dir model.NodeID, stack []model.NodeID) []model.NodeID {
	tree := l.env.Tree
	l.env.SnapDeployment(dir)

	children := tree.Children(dir)
	if len(children) == 0 {
		return stack
	}

	p := l.params[dir]
	dims := scene.XY{X: p.Width(), Y: p.Depth()}
	k := sideSlantRatios[model.KindDirectory]
	dims.X -= 2 * min(p.Height, k*dims.X)
	dims.Y -= 2 * min(p.Height, k*dims.Y)

	// Nodes end up spaced about two borders apart; half a border comes off
	// the perimeter so nothing sits flush with the edge
	border := min(BorderProportion*math.Sqrt(dims.X*dims.Y), min(dims.X, dims.Y)/3)
	dims.X -= border
	dims.Y -= border
	dirArea := dims.X * dims.Y

	blocks := make([]block, len(children))
	totalArea := 0.0
	for i, id := range children {
		side := math.Sqrt(float64(tree.EffectiveSize(id, MinNodeSize))) + border
		blocks[i] = block{id: id, area: side * side}
		totalArea += blocks[i].area
	}

	// Blocks are scaled down to fill the face exactly
	scale := dirArea / totalArea
	l.faces[dir] = Face{Dims: dims, Border: border, Scale: scale}

	// Greedy rows: a row closes once its latest block is narrower than deep
	var rows []row
	open := false
	for i := range blocks {
		b := &blocks[i]
		b.area *= scale
		if !open {
			rows = append(rows, row{first: i})
			open = true
		}
		r := &rows[len(rows)-1]
		r.area += b.area
		r.end = i + 1

		rowDepth := r.area / dims.X
		if (b.area/rowDepth)/rowDepth < 1 {
			open = false
		}
	}

	// Emit from the right/rear corner; pos is each block's right/rear corner
	center := p.Center()
	start := scene.XY{X: center.X + 0.5*dims.X, Y: center.Y + 0.5*dims.Y}
	pos := start
	for _, r := range rows {
		rowDepth := r.area / dims.X
		pos.X = start.X
		for _, b := range blocks[r.first:r.end] {
			blockWidth := b.area / rowDepth
			area := scale * float64(tree.EffectiveSize(b.id, MinNodeSize))

			// Exact border that leaves the node rectangle with area == area
			s := blockWidth + rowDepth
			nodeBorder := 0.25 * (s - math.Sqrt(s*s-4*(b.area-area)))

			np := &l.params[b.id]
			np.C0 = scene.XY{X: pos.X - blockWidth + nodeBorder, Y: pos.Y - rowDepth + nodeBorder}
			np.C1 = scene.XY{X: pos.X - nodeBorder, Y: pos.Y - nodeBorder}
			if tree.IsDir(b.id) {
				np.Height = DirHeight
				stack = append(stack, b.id)
			} else {
				np.Height = LeafHeight
			}
			pos.X -= blockWidth
		}
		pos.Y -= rowDepth
	}
	return stack
}
