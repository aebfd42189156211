// Package layout selects and drives one of the three layout engines over a
// scanned tree, and forwards expand/collapse events to it.
package layout

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lumipallolabs/fsview/internal/layout/discv"
	"github.com/lumipallolabs/fsview/internal/layout/mapv"
	"github.com/lumipallolabs/fsview/internal/layout/scene"
	"github.com/lumipallolabs/fsview/internal/layout/treev"
	"github.com/lumipallolabs/fsview/internal/model"
)

// Stage is the point in a collapse/expand at which the engine is notified
type Stage int

const (
	// StageInitiated fires once, before the deployment morph starts
	StageInitiated Stage = iota
	// StageInProgress fires after every deployment change, including the last
	StageInProgress
)

// Option configures an Engine
type Option func(*Engine)

// WithMorphBreaker installs the hook that cancels running deployment morphs
func WithMorphBreaker(m scene.MorphBreaker) Option {
	return func(e *Engine) { e.env.Morph = m }
}

// WithCameraNotifier installs the hook fired when the TreeV core radius changes
func WithCameraNotifier(c scene.CameraNotifier) Option {
	return func(e *Engine) { e.env.Camera = c }
}

// WithLogger sets the logger used for numeric fallbacks and convergence
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.env.Log = l }
}

// Engine owns the per-mode layouts for one tree. It is not safe for
// concurrent use; all calls come from the UI goroutine.
type Engine struct {
	env   scene.Env
	mode  Mode
	ready bool
	busy  bool

	disc  *discv.Layout
	mapv  *mapv.Layout
	treev *treev.Layout
}

// New creates an engine over tree. Nothing is laid out until Init.
func New(tree *model.Tree, browser scene.Browser, opts ...Option) *Engine {
	e := &Engine{
		env: scene.Env{
			Tree:    tree,
			Browser: browser,
			Dirty:   scene.NewDirtySet(),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.disc = discv.New(&e.env)
	e.mapv = mapv.New(&e.env)
	e.treev = treev.New(&e.env)
	return e
}

// enter guards against a layout pass being started from inside a hook
// fired by another pass
func (e *Engine) enter() {
	if e.busy {
		panic("layout: re-entrant call")
	}
	e.busy = true
}

func (e *Engine) leave() {
	e.busy = false
}

// Init lays out the whole tree in mode
func (e *Engine) Init(mode Mode) {
	e.enter()
	defer e.leave()

	tree := e.env.Tree
	tree.SetDeployment(model.MetaRoot, 1)
	e.env.Dirty.MarkDirty(model.MetaRoot)

	switch mode {
	case ModeDiscV:
		e.disc.Init()
	case ModeMapV:
		e.mapv.Init()
	case ModeTreeV:
		e.treev.Init()
	default:
		panic(fmt.Sprintf("layout: unknown mode %d", int(mode)))
	}
	e.mode = mode
	e.ready = true
	e.env.Logger().Debug("layout initialized", "mode", mode, "nodes", tree.Len())
}

// OnExpandCollapse is called when dir is about to collapse or expand
// (StageInitiated) and after each step of its deployment morph
// (StageInProgress)
func (e *Engine) OnExpandCollapse(dir model.NodeID, stage Stage) {
	if !e.env.Tree.IsDir(dir) {
		panic("layout: OnExpandCollapse on a non-directory")
	}
	if !e.ready {
		return
	}
	e.enter()
	defer e.leave()

	switch stage {
	case StageInitiated:
		// A directory about to expand may be appearing for the first time,
		// or its inner radius may have changed while it was collapsed
		if e.mode == ModeTreeV && e.env.Tree.Deployment(dir) < scene.Epsilon {
			e.treev.Shape(dir)
		}
	case StageInProgress:
		e.env.Dirty.MarkDirty(dir)
		if e.mode == ModeTreeV {
			e.treev.QueueRearrange(dir)
		}
	}
}

// Update brings pending geometry up to date and drains the dirty set,
// returning the nodes whose cached drawing must be rebuilt
func (e *Engine) Update() []model.NodeID {
	e.enter()
	defer e.leave()

	if !e.env.Dirty.Dirty() {
		return nil
	}
	if e.ready && e.mode == ModeTreeV {
		e.treev.Update()
	}
	return e.env.Dirty.Take()
}

// Dirty reports whether anything needs redrawing
func (e *Engine) Dirty() bool {
	return e.env.Dirty.Dirty()
}

// Ready reports whether Init has run
func (e *Engine) Ready() bool { return e.ready }

// Mode returns the mode of the last Init
func (e *Engine) Mode() Mode { return e.mode }

// Tree returns the tree being laid out
func (e *Engine) Tree() *model.Tree { return e.env.Tree }

// DiscV returns the disc layout
func (e *Engine) DiscV() *discv.Layout { return e.disc }

// MapV returns the treemap layout
func (e *Engine) MapV() *mapv.Layout { return e.mapv }

// TreeV returns the city layout
func (e *Engine) TreeV() *treev.Layout { return e.treev }
