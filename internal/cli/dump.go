package cli

import (
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/model"
)

// layoutDump is the JSON form of a laid out tree
type layoutDump struct {
	Root       string      `json:"root"`
	Mode       layout.Mode `json:"mode"`
	CoreRadius float64     `json:"core_radius,omitempty"`
	Nodes      []nodeDump  `json:"nodes"`
}

type nodeDump struct {
	ID          model.NodeID `json:"id"`
	Parent      model.NodeID `json:"parent"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Size        int64        `json:"size"`
	SubtreeSize int64        `json:"subtree_size,omitempty"`
	Deployment  float64      `json:"deployment,omitempty"`

	Disc *discDump `json:"disc,omitempty"`
	Map  *mapDump  `json:"map,omitempty"`
	Tree *treeDump `json:"tree,omitempty"`
}

type discDump struct {
	Radius float64  `json:"radius"`
	Theta  float64  `json:"theta"`
	Center scene.XY `json:"center"`
}

type mapDump struct {
	C0     scene.XY `json:"c0"`
	C1     scene.XY `json:"c1"`
	Z0     float64  `json:"z0"`
	Height float64  `json:"height"`
}

type treeDump struct {
	Form string `json:"form"`

	// Platform fields are set for expanded directories
	PlatformR0      float64 `json:"platform_r0,omitempty"`
	PlatformTheta   float64 `json:"platform_theta,omitempty"`
	PlatformDepth   float64 `json:"platform_depth,omitempty"`
	ArcWidth        float64 `json:"arc_width,omitempty"`
	SubtreeArcWidth float64 `json:"subtree_arc_width,omitempty"`

	LeafTheta    float64 `json:"leaf_theta"`
	LeafDistance float64 `json:"leaf_distance"`
	LeafHeight   float64 `json:"leaf_height"`
}

func dumpLayout(e *layout.Engine) layoutDump {
	tree := e.Tree()
	out := layoutDump{
		Root:  tree.RootPath,
		Mode:  e.Mode(),
		Nodes: make([]nodeDump, 0, tree.Len()-1),
	}
	if out.Mode == layout.ModeTreeV {
		out.CoreRadius = e.TreeV().CoreRadius()
	}

	for i := int(model.RootDir); i < tree.Len(); i++ {
		id := model.NodeID(i)
		n := tree.Node(id)
		d := nodeDump{
			ID:          id,
			Parent:      n.Parent,
			Name:        n.Name,
			Kind:        n.Kind.String(),
			Size:        n.Size,
			SubtreeSize: n.SubtreeSize,
			Deployment:  n.Deployment,
		}

		switch out.Mode {
		case layout.ModeDiscV:
			p := e.DiscV().Params(id)
			d.Disc = &discDump{Radius: p.Radius, Theta: p.Theta, Center: e.DiscV().NodePos(id)}
		case layout.ModeMapV:
			p := e.MapV().Params(id)
			d.Map = &mapDump{C0: p.C0, C1: p.C1, Z0: e.MapV().NodeZ0(id), Height: p.Height}
		case layout.ModeTreeV:
			d.Tree = dumpTreeV(e, id)
		}
		out.Nodes = append(out.Nodes, d)
	}
	return out
}

func dumpTreeV(e *layout.Engine, id model.NodeID) *treeDump {
	l := e.TreeV()
	p := l.Params(id)
	form, _ := l.Form(id)
	d := &treeDump{
		Form:         form.String(),
		LeafTheta:    p.Leaf.Theta,
		LeafDistance: p.Leaf.Distance,
		LeafHeight:   p.Leaf.Height,
	}
	if !l.IsLeaf(id) {
		d.PlatformR0 = l.PlatformR0(id)
		d.PlatformTheta = l.PlatformTheta(id)
		d.PlatformDepth = p.Platform.Depth
		d.ArcWidth = p.Platform.ArcWidth
		d.SubtreeArcWidth = p.Platform.SubtreeArcWidth
	}
	return d
}
