package model

import (
	"path/filepath"
	"strings"
)

// NodeID is a dense index into Tree.Nodes
type NodeID int32

const (
	// NoNode marks a missing parent/child reference
	NoNode NodeID = -1

	// MetaRoot is the synthetic node above the scanned root directory
	MetaRoot NodeID = 0

	// RootDir is the scanned root directory (only child of MetaRoot)
	RootDir NodeID = 1
)

// Node represents a file or directory in the scanned tree
type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string
	Size     int64 // own size in bytes (not including descendants)
	Parent   NodeID
	Children []NodeID

	// Directory and metanode fields
	SubtreeSize   int64           // sum of all descendant sizes
	SubtreeCounts [NumKinds]int32 // descendant counts per kind
	Deployment    float64         // 0 = collapsed, 1 = expanded; owned by the morph driver

	// Change tracking
	IsDeleted bool
}

// IsDir reports whether the node is a real directory
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// HasSubtree reports whether the node can have children (directory or metanode)
func (n *Node) HasSubtree() bool {
	return n.Kind == KindDirectory || n.Kind == KindMetaRoot
}

// TotalSize returns own size plus descendant sizes
func (n *Node) TotalSize() int64 {
	return n.Size + n.SubtreeSize
}

// Tree is an arena of nodes. Index 0 is the metanode, index 1 the root directory.
type Tree struct {
	Nodes    []Node
	RootPath string
}

// NewTree creates a tree holding a metanode and an empty root directory
func NewTree(rootPath string) *Tree {
	t := &Tree{
		Nodes:    make([]Node, 0, 1024),
		RootPath: rootPath,
	}
	t.Nodes = append(t.Nodes, Node{
		ID:         MetaRoot,
		Kind:       KindMetaRoot,
		Parent:     NoNode,
		Deployment: 1,
	})
	t.Add(MetaRoot, filepath.Base(rootPath), KindDirectory, 0)
	return t
}

// Add appends a node under parent and returns its ID
func (t *Tree) Add(parent NodeID, name string, kind Kind, size int64) NodeID {
	id := NodeID(len(t.Nodes))
	if size < 0 {
		size = 0
	}
	t.Nodes = append(t.Nodes, Node{
		ID:     id,
		Kind:   kind,
		Name:   name,
		Size:   size,
		Parent: parent,
	})
	p := &t.Nodes[parent]
	p.Children = append(p.Children, id)
	return id
}

// Len returns the number of nodes, including the metanode
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Node returns the node with the given ID
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Children returns the ordered children of a node
func (t *Tree) Children(id NodeID) []NodeID {
	return t.Nodes[id].Children
}

// Parent returns the parent of a node (NoNode for the metanode)
func (t *Tree) Parent(id NodeID) NodeID {
	return t.Nodes[id].Parent
}

// IsDir reports whether id is a real directory
func (t *Tree) IsDir(id NodeID) bool {
	return t.Nodes[id].Kind == KindDirectory
}

// Deployment returns the deployment scalar of a directory
func (t *Tree) Deployment(id NodeID) float64 {
	return t.Nodes[id].Deployment
}

// SetDeployment stores the deployment scalar of a directory, clamped to [0,1]
func (t *Tree) SetDeployment(id NodeID, v float64) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	t.Nodes[id].Deployment = v
}

// EffectiveSize returns max(minSize, size), plus the subtree size for directories.
// This is the quantity every layout mode makes node area proportional to.
func (t *Tree) EffectiveSize(id NodeID, minSize int64) int64 {
	n := &t.Nodes[id]
	size := max(minSize, n.Size)
	if n.IsDir() {
		size += n.SubtreeSize
	}
	return size
}

// Depth returns the number of directories between id and the root directory
func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for p := t.Nodes[id].Parent; p != NoNode && p != MetaRoot; p = t.Nodes[p].Parent {
		depth++
	}
	return depth
}

// IsAncestor reports whether ancestor lies on the parent chain of id (or is id)
func (t *Tree) IsAncestor(ancestor, id NodeID) bool {
	for n := id; n != NoNode; n = t.Nodes[n].Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Path returns the absolute filesystem path of a node
func (t *Tree) Path(id NodeID) string {
	if id == MetaRoot {
		return ""
	}
	var parts []string
	for n := id; n != RootDir && n != NoNode; n = t.Nodes[n].Parent {
		parts = append(parts, t.Nodes[n].Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return filepath.Join(append([]string{t.RootPath}, parts...)...)
}

// FindPath looks up a node by absolute path, returning NoNode if absent
func (t *Tree) FindPath(path string) NodeID {
	rel, err := filepath.Rel(t.RootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return NoNode
	}
	id := RootDir
	if rel == "." {
		return id
	}
	for _, name := range strings.Split(rel, string(filepath.Separator)) {
		next := NoNode
		for _, c := range t.Nodes[id].Children {
			if t.Nodes[c].Name == name {
				next = c
				break
			}
		}
		if next == NoNode {
			return NoNode
		}
		id = next
	}
	return id
}

// MarkDeleted flags a node and its descendants as deleted
func (t *Tree) MarkDeleted(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.Nodes[n].IsDeleted = true
		stack = append(stack, t.Nodes[n].Children...)
	}
}
