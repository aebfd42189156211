// Package scene holds the geometry types and collaborator hooks shared by
// the DiscV, MapV and TreeV layout engines.
package scene

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/lumipallolabs/fsview/internal/model"
)

// Epsilon is the threshold below which a deployment counts as collapsed
// (and above 1-Epsilon as expanded)
const Epsilon = 1e-6

// Browser answers whether a directory is expanded in the UI
type Browser interface {
	Expanded(id model.NodeID) bool
}

// BrowserFunc adapts a function to the Browser interface
type BrowserFunc func(id model.NodeID) bool

// Expanded calls f(id)
func (f BrowserFunc) Expanded(id model.NodeID) bool { return f(id) }

// MorphBreaker stops a running deployment animation on a directory
type MorphBreaker interface {
	BreakMorph(id model.NodeID)
}

// CameraNotifier is told when the TreeV core radius changes, so the camera
// can be repositioned
type CameraNotifier interface {
	CoreRadiusChanged()
}

// Env is what an engine pass needs from the outside world. Morph and
// Camera may be nil.
type Env struct {
	Tree    *model.Tree
	Browser Browser
	Morph   MorphBreaker
	Camera  CameraNotifier
	Dirty   *DirtySet
	Log     *log.Logger
}

var discard = log.New(io.Discard)

// Logger returns the pass logger, or a discarding one when none is set
func (e *Env) Logger() *log.Logger {
	if e.Log == nil {
		return discard
	}
	return e.Log
}

// SnapDeployment breaks any morph on a directory, sets its deployment to
// 0 or 1 from the expanded predicate and marks it dirty
func (e *Env) SnapDeployment(id model.NodeID) {
	if e.Morph != nil {
		e.Morph.BreakMorph(id)
	}
	if e.Browser.Expanded(id) {
		e.Tree.SetDeployment(id, 1)
	} else {
		e.Tree.SetDeployment(id, 0)
	}
	e.Dirty.MarkDirty(id)
}

// NotifyCoreRadius fires the camera hook if one is installed
func (e *Env) NotifyCoreRadius() {
	if e.Camera != nil {
		e.Camera.CoreRadiusChanged()
	}
}

// XY is a point or extent in the plane
type XY struct {
	X, Y float64
}

// Add returns a+b
func (a XY) Add(b XY) XY { return XY{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b
func (a XY) Sub(b XY) XY { return XY{a.X - b.X, a.Y - b.Y} }

// RT is a polar coordinate (theta in degrees)
type RT struct {
	R, Theta float64
}

// RTZ is a cylindrical coordinate (theta in degrees)
type RTZ struct {
	R, Theta, Z float64
}

// Rad converts degrees to radians
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Deg converts radians to degrees
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Polar returns the cartesian offset of a point at dist along heading deg
func Polar(dist, deg float64) XY {
	s, c := math.Sincos(Rad(deg))
	return XY{dist * c, dist * s}
}
