package core

import (
	"github.com/google/uuid"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/model"
)

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	ScanID uuid.UUID
	Path   string
}

func (ScanStartedEvent) isEvent() {}

// ScanProgressEvent is emitted during scanning
type ScanProgressEvent struct {
	ScanID       uuid.UUID
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
}

func (ScanProgressEvent) isEvent() {}

// ScanPhaseChangedEvent is emitted when scan phase changes
type ScanPhaseChangedEvent struct {
	ScanID uuid.UUID
	Phase  ScanPhase
}

func (ScanPhaseChangedEvent) isEvent() {}

// ScanCompletedEvent is emitted when scan finishes. The tree is not laid
// out yet; the UI calls InitLayout on its own goroutine.
type ScanCompletedEvent struct {
	ScanID uuid.UUID
	Tree   *model.Tree
	Err    error
}

func (ScanCompletedEvent) isEvent() {}

// PathRemovedEvent is emitted by the watcher when a node of Tree disappears
type PathRemovedEvent struct {
	Tree *model.Tree
	Node model.NodeID
	Path string
}

func (PathRemovedEvent) isEvent() {}

// DeletionDetectedEvent reports space freed by a deletion
type DeletionDetectedEvent struct {
	Node         model.NodeID
	Path         string
	Size         int64
	SessionFreed int64
	TotalFreed   int64
}

func (DeletionDetectedEvent) isEvent() {}

// TreeExpandedEvent is emitted when a directory starts expanding or collapsing
type TreeExpandedEvent struct {
	Dir      model.NodeID
	Expanded bool
}

func (TreeExpandedEvent) isEvent() {}

// ModeChangedEvent is emitted when the layout mode changes
type ModeChangedEvent struct {
	Mode layout.Mode
}

func (ModeChangedEvent) isEvent() {}

// CoreRadiusChangedEvent is emitted when the tree layout's core radius
// grows or shrinks, so the view can be refit
type CoreRadiusChangedEvent struct {
	Radius float64
}

func (CoreRadiusChangedEvent) isEvent() {}

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isEvent() {}
