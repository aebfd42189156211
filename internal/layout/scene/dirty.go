package scene

import (
	"slices"

	"github.com/lumipallolabs/fsview/internal/model"
)

// DirtySet collects nodes whose geometry must be rebuilt before the next
// draw, plus a flag for a full uncached redraw. The renderer polls it.
type DirtySet struct {
	nodes       map[model.NodeID]struct{}
	invalidated bool
}

// NewDirtySet returns an empty set
func NewDirtySet() *DirtySet {
	return &DirtySet{nodes: make(map[model.NodeID]struct{})}
}

// MarkDirty queues a node for geometry rebuild
func (d *DirtySet) MarkDirty(id model.NodeID) {
	d.nodes[id] = struct{}{}
}

// Invalidate requests a full redraw without rebuilding cached geometry
func (d *DirtySet) Invalidate() {
	d.invalidated = true
}

// Dirty reports whether anything is pending
func (d *DirtySet) Dirty() bool {
	return d.invalidated || len(d.nodes) > 0
}

// Has reports whether id is queued
func (d *DirtySet) Has(id model.NodeID) bool {
	_, ok := d.nodes[id]
	return ok
}

// Len returns the number of queued nodes
func (d *DirtySet) Len() int {
	return len(d.nodes)
}

// Take drains the queued nodes in ascending order and clears the
// invalidate flag
func (d *DirtySet) Take() []model.NodeID {
	ids := make([]model.NodeID, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	d.Reset()
	return ids
}

// Reset clears everything
func (d *DirtySet) Reset() {
	clear(d.nodes)
	d.invalidated = false
}
