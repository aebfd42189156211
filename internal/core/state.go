package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/lumipallolabs/fsview/internal/model"
)

// ScanPhase represents the current phase of scanning
type ScanPhase int

const (
	PhaseIdle ScanPhase = iota
	PhaseScanning
	PhaseComparing
	PhaseComplete
)

// String returns a human-readable phase name
func (p ScanPhase) String() string {
	switch p {
	case PhaseScanning:
		return "Scanning files"
	case PhaseComparing:
		return "Comparing with last scan"
	case PhaseComplete:
		return "Complete"
	default:
		return ""
	}
}

// ScanState holds the current scan state
type ScanState struct {
	ID           uuid.UUID
	Phase        ScanPhase
	StartTime    time.Time
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
}

// IsScanning returns true if a scan is in progress (including the brief "Complete" display)
func (s ScanState) IsScanning() bool {
	return s.Phase == PhaseScanning || s.Phase == PhaseComparing || s.Phase == PhaseComplete
}

// Elapsed returns time since scan started
func (s ScanState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}

// FreedState tracks space recovered from deletions
type FreedState struct {
	Session  int64 // Bytes freed this session
	Lifetime int64 // Bytes freed all time
}

// TreeState holds tree navigation state. It is the expanded predicate the
// layout engine consults, so it must only be touched from the UI goroutine.
type TreeState struct {
	Selected model.NodeID
	ShowDiff bool
	expanded map[model.NodeID]bool
}

// NewTreeState creates a tree state with the root directory expanded and
// selected
func NewTreeState() *TreeState {
	return &TreeState{
		Selected: model.RootDir,
		expanded: map[model.NodeID]bool{model.RootDir: true},
	}
}

// Expanded reports whether a directory is expanded
func (s *TreeState) Expanded(id model.NodeID) bool {
	return s.expanded[id]
}

// SetExpanded records a directory as expanded or collapsed
func (s *TreeState) SetExpanded(id model.NodeID, expanded bool) {
	if expanded {
		s.expanded[id] = true
	} else {
		delete(s.expanded, id)
	}
}

// ExpandedCount returns the number of expanded directories
func (s *TreeState) ExpandedCount() int {
	return len(s.expanded)
}

// Row is one line of the tree panel
type Row struct {
	ID    model.NodeID
	Depth int
}

// Visible lists the nodes shown by the tree panel: the root directory and,
// under every expanded directory, its children in tree order
func (s *TreeState) Visible(tree *model.Tree) []Row {
	var rows []Row
	stack := []Row{{model.RootDir, 0}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rows = append(rows, r)
		if !tree.IsDir(r.ID) || !s.expanded[r.ID] {
			continue
		}
		children := tree.Children(r.ID)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, Row{children[i], r.Depth + 1})
		}
	}
	return rows
}

// AppState holds the complete application state (read-only view)
type AppState struct {
	Path   string
	Volume model.Volume
	Scan   ScanState
	Freed  FreedState
	Tree   *TreeState
	Error  error
}
