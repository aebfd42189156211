// Package discv lays a filesystem tree out as nested discs: every node is
// a disc whose area tracks its size, placed around its parent's disc.
package discv

import (
	"math"
	"sort"

	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

const (
	// LeafRangeArcWidth is the angle (degrees) around a parent that its
	// children are spread over
	LeafRangeArcWidth = 315.0

	// LeafStemProportion is the gap between parent and child discs, as a
	// fraction of the child's radius
	LeafStemProportion = 0.5

	// MinNodeSize is the size floor applied before computing disc area
	MinNodeSize = 64

	// rootHeading is the direction the root directory hangs from the metanode
	rootHeading = 270.0
)

// Params is the DiscV geometry of one node
type Params struct {
	Radius float64
	Theta  float64  // heading of the node's center from its parent's center, degrees
	Pos    scene.XY // offset of the node's center from its parent's center
}

// Layout holds DiscV geometry for a tree
type Layout struct {
	env    *scene.Env
	params []Params
}

// New creates an empty layout bound to env
func New(env *scene.Env) *Layout {
	return &Layout{env: env}
}

// Params returns the geometry of a node
func (l *Layout) Params(id model.NodeID) Params {
	return l.params[id]
}

// NodePos returns the absolute center of a node
func (l *Layout) NodePos(id model.NodeID) scene.XY {
	var pos scene.XY
	tree := l.env.Tree
	for n := id; n != model.NoNode; n = tree.Parent(n) {
		pos = pos.Add(l.params[n].Pos)
	}
	return pos
}

// frame is a pending directory with the heading it grows along
type frame struct {
	dir     model.NodeID
	heading float64
}

// Init computes the layout of the whole tree
func (l *Layout) Init() {
	tree := l.env.Tree
	l.params = make([]Params, tree.Len())

	meta := &l.params[model.MetaRoot]
	meta.Radius = 0
	meta.Theta = 0

	var order []model.NodeID
	stack := []frame{{model.MetaRoot, rootHeading}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = l.layoutDir(f.dir, f.heading, order[:0])
		for _, id := range order {
			if tree.IsDir(id) {
				stack = append(stack, frame{id, l.params[id].Theta + 180})
			}
		}
	}

	meta.Pos = scene.XY{X: 0, Y: -l.params[model.RootDir].Radius}
}

// layoutDir places the children of one directory around it. It returns the
// children in placement order (largest first), reusing buf.
func (l *Layout) layoutDir(dir model.NodeID, heading float64, buf []model.NodeID) []model.NodeID {
	tree := l.env.Tree
	if tree.IsDir(dir) {
		l.env.SnapDeployment(dir)
	}

	children := tree.Children(dir)
	if len(children) == 0 {
		return buf
	}

	// Radii and raw arc widths; dist is stashed in Pos.X until placement
	dirRadius := l.params[dir].Radius
	totalArc := 0.0
	for _, id := range children {
		size := tree.EffectiveSize(id, MinNodeSize)
		radius := math.Sqrt(float64(size) / math.Pi)
		dist := dirRadius + radius*(1+LeafStemProportion)
		arc := 2 * scene.Deg(math.Asin(radius/dist))

		p := &l.params[id]
		p.Radius = radius
		p.Theta = arc
		p.Pos = scene.XY{X: dist}
		totalArc += arc
	}

	order := append(buf, children...)
	sort.SliceStable(order, func(i, j int) bool {
		si, sj := tree.EffectiveSize(order[i], 0), tree.EffectiveSize(order[j], 0)
		if si != sj {
			return si > sj
		}
		return tree.Node(order[i]).Name < tree.Node(order[j]).Name
	})

	k := LeafRangeArcWidth / totalArc
	// A tight fit staggers alternate children outward
	stagger := k <= 1

	// Largest child sits opposite the stem; the rest alternate clockwise
	// and counterclockwise until they meet
	theta0 := heading - 180
	theta1 := heading + 180
	even, out := true, true
	for i, id := range order {
		p := &l.params[id]
		arc := k * p.Theta
		dist := p.Pos.X
		if stagger && out {
			dist += 2 * p.Radius
		}
		switch {
		case i == 0:
			p.Theta = theta0
			theta0 += 0.5 * arc
			theta1 -= 0.5 * arc
			out = !out
		case even:
			p.Theta = theta0 + 0.5*arc
			theta0 += arc
			out = !out
		default:
			p.Theta = theta1 - 0.5*arc
			theta1 -= arc
		}
		p.Pos = scene.Polar(dist, p.Theta)
		even = !even
	}
	return order
}
