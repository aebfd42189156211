// Package anim drives directory deployment morphs over time. The layout
// engines only read deployment; this package is what moves it between 0
// and 1 while a directory collapses or expands.
package anim

import (
	"math"
	"slices"
	"time"

	"github.com/lumipallolabs/fsview/internal/model"
)

// DefaultDuration is the length of a full 0 to 1 morph
const DefaultDuration = 400 * time.Millisecond

// Easing maps linear progress in [0,1] to eased progress in [0,1]
type Easing func(t float64) float64

// Linear is the identity easing
func Linear(t float64) float64 { return t }

// Smoothstep eases in and out
func Smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

type morph struct {
	from, to float64
	start    time.Time
	duration time.Duration
}

// Driver owns the running morphs of one tree. It is not safe for
// concurrent use.
type Driver struct {
	tree     *model.Tree
	duration time.Duration
	ease     Easing
	morphs   map[model.NodeID]*morph
}

// NewDriver creates a driver. A non-positive duration makes every morph
// complete on its first step; a nil easing means Smoothstep.
func NewDriver(tree *model.Tree, duration time.Duration, ease Easing) *Driver {
	if ease == nil {
		ease = Smoothstep
	}
	return &Driver{
		tree:     tree,
		duration: duration,
		ease:     ease,
		morphs:   make(map[model.NodeID]*morph),
	}
}

// Start morphs dir from its current deployment towards 1 (expand) or 0
// (collapse). Reversing a running morph continues from where it is, taking
// proportionally less time.
func (d *Driver) Start(dir model.NodeID, expand bool, now time.Time) {
	to := 0.0
	if expand {
		to = 1
	}
	from := d.tree.Deployment(dir)
	d.morphs[dir] = &morph{
		from:     from,
		to:       to,
		start:    now,
		duration: time.Duration(math.Abs(to-from) * float64(d.duration)),
	}
}

// BreakMorph drops any running morph on dir, leaving its deployment where
// it is
func (d *Driver) BreakMorph(dir model.NodeID) {
	delete(d.morphs, dir)
}

// Active reports whether any morph is running
func (d *Driver) Active() bool {
	return len(d.morphs) > 0
}

// Running reports whether dir has a running morph
func (d *Driver) Running(dir model.NodeID) bool {
	_, ok := d.morphs[dir]
	return ok
}

// Step advances every morph to now and returns the directories whose
// deployment changed, sorted. Finished morphs land exactly on 0 or 1 and
// are removed.
func (d *Driver) Step(now time.Time) []model.NodeID {
	if len(d.morphs) == 0 {
		return nil
	}
	changed := make([]model.NodeID, 0, len(d.morphs))
	for dir, m := range d.morphs {
		t := 1.0
		if m.duration > 0 {
			t = min(1, max(0, float64(now.Sub(m.start))/float64(m.duration)))
		}
		v := m.to
		if t < 1 {
			v = m.from + (m.to-m.from)*d.ease(t)
		} else {
			delete(d.morphs, dir)
		}
		if v != d.tree.Deployment(dir) {
			d.tree.SetDeployment(dir, v)
			changed = append(changed, dir)
		}
	}
	slices.Sort(changed)
	return changed
}
