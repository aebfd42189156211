package cache

import "github.com/lumipallolabs/fsview/internal/model"

// Unseen marks a node absent from the previous snapshot
const Unseen int64 = -1

// Changes holds the previous total size of each node, indexed by NodeID
type Changes struct {
	PrevSize []int64
}

// Delta returns the growth of a node since the previous scan and whether
// the node existed then
func (c *Changes) Delta(tree *model.Tree, id model.NodeID) (int64, bool) {
	if c == nil || int(id) >= len(c.PrevSize) || c.PrevSize[id] == Unseen {
		return 0, false
	}
	return tree.Node(id).TotalSize() - c.PrevSize[id], true
}

// Diff matches the current tree against a previous one by path
func Diff(current, previous *model.Tree) *Changes {
	changes := &Changes{PrevSize: make([]int64, current.Len())}
	for i := range changes.PrevSize {
		changes.PrevSize[i] = Unseen
	}
	if previous == nil {
		return changes
	}

	changes.PrevSize[model.MetaRoot] = previous.Node(model.MetaRoot).TotalSize()

	// Walk both trees in lockstep, pairing children by name
	type pair struct{ cur, prev model.NodeID }
	stack := []pair{{model.RootDir, model.RootDir}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		changes.PrevSize[p.cur] = previous.Node(p.prev).TotalSize()

		prevChildren := previous.Children(p.prev)
		if len(prevChildren) == 0 {
			continue
		}
		byName := make(map[string]model.NodeID, len(prevChildren))
		for _, c := range prevChildren {
			byName[previous.Node(c).Name] = c
		}
		for _, c := range current.Children(p.cur) {
			if prev, ok := byName[current.Node(c).Name]; ok {
				stack = append(stack, pair{c, prev})
			}
		}
	}
	return changes
}
