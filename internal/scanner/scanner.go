package scanner

import (
	"context"
	"errors"

	"github.com/lumipallolabs/fsview/internal/model"
)

// ErrNotDir is returned when the scan root is not a directory
var ErrNotDir = errors.New("scan root is not a directory")

// Progress reports scanning progress
type Progress struct {
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
}

// Scanner defines the interface for filesystem scanning
type Scanner interface {
	// Scan scans the given root path and returns a finalized tree
	Scan(ctx context.Context, root string) (*model.Tree, error)

	// Progress returns a channel that receives progress updates
	Progress() <-chan Progress
}
