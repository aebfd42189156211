// Package treev lays a filesystem tree out as a 3D radial city: expanded
// directories become circular-sector platforms spaced outward from a
// core, with their files standing on them as tiles.
package treev

import (
	"math"

	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

const (
	// MinArcWidth and MaxArcWidth bound the angular width of the whole tree
	MinArcWidth = 90.0
	MaxArcWidth = 225.0

	MinCoreRadius  = 8192.0
	CoreGrowFactor = 1.25

	PlatformHeight       = 158.2
	PlatformSpacingWidth = 512.0
	PlatformSpacingDepth = 2048.0

	LeafNodeEdge         = 256.0
	LeafHeightMultiplier = 1.0
	LeafPadding          = 0.125 * LeafNodeEdge
	PlatformPadding      = 0.5 * PlatformSpacingWidth

	// MaxArrangeIterations caps the core radius convergence loop
	MaxArrangeIterations = 64

	// MinNodeSize is the size floor applied before computing leaf height
	MinNodeSize = 64

	edge05 = 0.5 * LeafNodeEdge
	edge15 = 1.5 * LeafNodeEdge
)

// Platform is the geometry of a directory drawn as a platform
type Platform struct {
	Theta           float64 // angular center relative to the parent platform, degrees
	Depth           float64 // radial extent
	ArcWidth        float64
	SubtreeArcWidth float64 // combined arc of expanded subdirectories
	Height          float64
}

// Leaf is the geometry of a node drawn as a tile on its parent's platform
type Leaf struct {
	Theta    float64 // relative to the parent platform centerline, degrees
	Distance float64 // from the parent platform's inner edge
	Height   float64
}

// Params is the TreeV geometry of one node
type Params struct {
	Platform Platform
	Leaf     Leaf
}

// Form is how a node is currently drawn
type Form int

const (
	FormLeaf Form = iota
	FormPlatform
	FormTransitional
)

func (f Form) String() string {
	switch f {
	case FormLeaf:
		return "leaf"
	case FormPlatform:
		return "platform"
	case FormTransitional:
		return "transitional"
	default:
		return "unknown"
	}
}

// Layout holds TreeV geometry for a tree, plus the global core radius
type Layout struct {
	env           *scene.Env
	params        []Params
	needRearrange []bool
	coreRadius    float64
}

// New creates an empty layout bound to env
func New(env *scene.Env) *Layout {
	return &Layout{env: env, coreRadius: MinCoreRadius}
}

// Params returns the geometry of a node
func (l *Layout) Params(id model.NodeID) Params {
	return l.params[id]
}

// CoreRadius returns the inner radius of the root platform's parent ring
func (l *Layout) CoreRadius() float64 {
	return l.coreRadius
}

// Init computes the layout of the whole tree
func (l *Layout) Init() {
	tree := l.env.Tree
	l.params = make([]Params, tree.Len())
	l.needRearrange = make([]bool, tree.Len())
	l.coreRadius = MinCoreRadius

	l.params[model.MetaRoot].Platform = Platform{
		Theta:    90,
		Depth:    0,
		ArcWidth: MaxArcWidth,
		Height:   0,
	}
	root := &l.params[model.RootDir]
	root.Leaf.Theta = 0
	root.Leaf.Distance = 0.5 * PlatformSpacingDepth
	root.Platform.Theta = 0

	tree.Walk(model.MetaRoot, func(id model.NodeID) bool {
		n := tree.Node(id)
		if !n.HasSubtree() {
			return false
		}
		if n.IsDir() {
			l.env.SnapDeployment(id)
		}
		l.needRearrange[id] = false

		for _, c := range n.Children {
			size := tree.EffectiveSize(c, MinNodeSize)
			p := &l.params[c]
			if tree.IsDir(c) {
				p.Platform.Height = PlatformHeight
				p.Platform.ArcWidth = MinArcWidth
				p.Platform.SubtreeArcWidth = MinArcWidth
			}
			p.Leaf.Height = math.Sqrt(float64(size)) * LeafHeightMultiplier
		}
		return true
	})

	l.Arrange(true)
	l.Build()
}

// IsLeaf reports whether a node is drawn as a tile: anything but an
// expanded directory
func (l *Layout) IsLeaf(id model.NodeID) bool {
	return !(l.env.Tree.IsDir(id) && l.env.Browser.Expanded(id))
}

// Form returns how a node is drawn and, for transitional directories, the
// scale of the shrinking or growing tile
func (l *Layout) Form(id model.NodeID) (Form, float64) {
	tree := l.env.Tree
	if !tree.IsDir(id) {
		return FormLeaf, 1
	}
	d := tree.Deployment(id)
	switch {
	case d < scene.Epsilon:
		return FormLeaf, 1
	case d > 1-scene.Epsilon:
		return FormPlatform, 1
	default:
		return FormTransitional, d
	}
}

// PlatformR0 returns the inner radius of a directory's platform
func (l *Layout) PlatformR0(id model.NodeID) float64 {
	if id == model.MetaRoot {
		return l.coreRadius
	}
	tree := l.env.Tree
	r0 := l.coreRadius
	for n := tree.Parent(id); n != model.NoNode; n = tree.Parent(n) {
		r0 += PlatformSpacingDepth + l.params[n].Platform.Depth
	}
	return r0
}

// PlatformTheta returns the absolute angle of a platform's centerline
func (l *Layout) PlatformTheta(id model.NodeID) float64 {
	if l.IsLeaf(id) && id != model.MetaRoot {
		panic("treev: PlatformTheta on a leaf")
	}
	tree := l.env.Tree
	theta := 0.0
	for n := id; n != model.NoNode; n = tree.Parent(n) {
		theta += l.params[n].Platform.Theta
	}
	return theta
}

// MaxLeafHeight returns the height of the tallest tile on a platform,
// not counting the platform itself
func (l *Layout) MaxLeafHeight(dir model.NodeID) float64 {
	if l.IsLeaf(dir) {
		panic("treev: MaxLeafHeight on a leaf")
	}
	maxHeight := 0.0
	for _, id := range l.env.Tree.Children(dir) {
		if l.IsLeaf(id) {
			maxHeight = max(maxHeight, l.params[id].Leaf.Height)
		}
	}
	return maxHeight
}

// Extents returns the polar bounding box of an expanded directory and its
// expanded descendants
func (l *Layout) Extents(dir model.NodeID) (c0, c1 scene.RT) {
	if l.IsLeaf(dir) {
		panic("treev: Extents on a leaf")
	}
	c0 = scene.RT{R: math.MaxFloat64, Theta: math.MaxFloat64}
	c1 = scene.RT{R: -math.MaxFloat64, Theta: -math.MaxFloat64}
	l.extents(dir, &c0, &c1, l.PlatformR0(dir), l.PlatformTheta(dir))
	return c0, c1
}

func (l *Layout) extents(dir model.NodeID, c0, c1 *scene.RT, r0, theta float64) {
	tree := l.env.Tree
	p := l.params[dir].Platform
	subR0 := r0 + p.Depth + PlatformSpacingDepth
	for _, id := range tree.Children(dir) {
		if !tree.IsDir(id) {
			break
		}
		if !l.IsLeaf(id) {
			l.extents(id, c0, c1, subR0, theta+l.params[id].Platform.Theta)
		}
	}

	c0.R = min(c0.R, r0)
	c0.Theta = min(c0.Theta, theta-p.ArcWidth)
	c1.R = max(c1.R, r0+p.Depth)
	c1.Theta = max(c1.Theta, theta+p.ArcWidth)
}

// Corners returns the padded polar bounding box of a tile or platform
func (l *Layout) Corners(id model.NodeID) (c0, c1 scene.RTZ) {
	if !l.IsLeaf(id) {
		p := l.params[id].Platform
		r0 := l.PlatformR0(id)
		theta := l.PlatformTheta(id)

		// The sides already include the spacing regions, so only r is padded
		c0 = scene.RTZ{R: r0 - PlatformPadding, Theta: theta - 0.5*p.ArcWidth, Z: 0}
		c1 = scene.RTZ{R: r0 + p.Depth + PlatformPadding, Theta: theta + 0.5*p.ArcWidth, Z: p.Height}
		return c0, c1
	}

	parent := l.env.Tree.Parent(id)
	leaf := l.params[id].Leaf
	pos := scene.RTZ{
		R:     l.PlatformR0(parent) + leaf.Distance,
		Theta: l.PlatformTheta(parent) + leaf.Theta,
		Z:     l.params[parent].Platform.Height,
	}

	leafArc := scene.Deg(LeafNodeEdge) / pos.R
	padArc := scene.Deg(LeafPadding) / pos.R
	c0 = scene.RTZ{
		R:     pos.R - 0.5*LeafNodeEdge - LeafPadding,
		Theta: pos.Theta - 0.5*leafArc - padArc,
		Z:     pos.Z - 0.5*LeafPadding,
	}
	c1 = scene.RTZ{
		R:     pos.R + 0.5*LeafNodeEdge + LeafPadding,
		Theta: pos.Theta + 0.5*leafArc + padArc,
		Z:     pos.Z + leaf.Height + 0.5*LeafPadding,
	}
	return c0, c1
}
