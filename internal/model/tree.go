package model

import "sort"

// Finalize accumulates subtree sizes and per-kind counts, then sorts every
// child list. Must be called once after the tree is fully populated.
func (t *Tree) Finalize() {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		n.SubtreeSize = 0
		n.SubtreeCounts = [NumKinds]int32{}
	}

	// Children always have a higher ID than their parent, so a reverse
	// sweep visits every subtree before its owner.
	for i := len(t.Nodes) - 1; i > int(MetaRoot); i-- {
		n := &t.Nodes[i]
		p := &t.Nodes[n.Parent]
		p.SubtreeSize += n.Size + n.SubtreeSize
		p.SubtreeCounts[n.Kind]++
		for k := range p.SubtreeCounts {
			p.SubtreeCounts[k] += n.SubtreeCounts[k]
		}
	}

	for i := range t.Nodes {
		if len(t.Nodes[i].Children) > 1 {
			t.SortChildren(NodeID(i))
		}
	}
}

// SortChildren orders a child list: directories first, then by total size
// descending, then by name ascending
func (t *Tree) SortChildren(id NodeID) {
	children := t.Nodes[id].Children
	sort.SliceStable(children, func(i, j int) bool {
		return t.less(children[i], children[j])
	})
}

func (t *Tree) less(a, b NodeID) bool {
	na, nb := &t.Nodes[a], &t.Nodes[b]
	if da, db := na.IsDir(), nb.IsDir(); da != db {
		return da
	}
	if sa, sb := na.TotalSize(), nb.TotalSize(); sa != sb {
		return sa > sb
	}
	return na.Name < nb.Name
}

// SortBySize sorts IDs by total size descending, then by name ascending
func (t *Tree) SortBySize(ids []NodeID) {
	sort.SliceStable(ids, func(i, j int) bool {
		ni, nj := &t.Nodes[ids[i]], &t.Nodes[ids[j]]
		si, sj := ni.TotalSize(), nj.TotalSize()
		if si != sj {
			return si > sj
		}
		return ni.Name < nj.Name
	})
}

// FirstLeafChild returns the index of the first non-directory child, or
// len(children) when every child is a directory
func (t *Tree) FirstLeafChild(id NodeID) int {
	children := t.Nodes[id].Children
	for i, c := range children {
		if !t.Nodes[c].IsDir() {
			return i
		}
	}
	return len(children)
}

// Walk visits id and its descendants depth-first (pre-order) using an
// explicit stack. Returning false from fn skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID) bool) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		children := t.Nodes[n].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}
