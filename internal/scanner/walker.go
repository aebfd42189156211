package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/lumipallolabs/fsview/internal/logging"
	"github.com/lumipallolabs/fsview/internal/model"
)

// progressEvery is the number of entries between progress reports
const progressEvery = 2048

// Walker implements parallel filesystem scanning
type Walker struct {
	workers    int
	progressCh chan Progress
	files      atomic.Int64
	dirs       atomic.Int64
	bytes      atomic.Int64
}

// NewWalker creates a new parallel filesystem walker
func NewWalker(workers int) *Walker {
	if workers < 1 {
		workers = 8
	}
	return &Walker{
		workers:    workers,
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel
func (w *Walker) Progress() <-chan Progress {
	return w.progressCh
}

// entry is a temporary structure for building the tree
type entry struct {
	path string
	name string
	size int64
	kind model.Kind
}

// Scan scans the filesystem starting at root using fastwalk
func (w *Walker) Scan(ctx context.Context, root string) (*model.Tree, error) {
	defer close(w.progressCh)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", absRoot, ErrNotDir)
	}

	rootInfo := getPlatformRootInfo(absRoot)

	// Collect entries in background without blocking the walkers
	entryCh := make(chan entry, 50000)
	var entries []entry
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for e := range entryCh {
			entries = append(entries, e)
		}
	}()

	// Track seen inodes for deduplication
	var seenItems sync.Map

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			logging.Scanner.Debug("skipping unreadable entry", "path", path, "err", err)
			return nil
		}
		if path == absRoot {
			return nil
		}

		kind := model.KindFromMode(d.Type())
		var size int64
		if kind == model.KindDirectory {
			if shouldSkipDir(path, d, rootInfo, &seenItems) {
				return fs.SkipDir
			}
			w.dirs.Add(1)
		} else {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			size = getFileSize(info, &seenItems)
			if size < 0 {
				// Hard link already counted
				return nil
			}
			w.bytes.Add(size)
			if n := w.files.Add(1); n%progressEvery == 0 {
				w.report()
			}
		}

		entryCh <- entry{path: path, name: d.Name(), size: size, kind: kind}
		return nil
	})

	close(entryCh)
	collectWg.Wait()

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("walk %s: %w", absRoot, walkErr)
	}

	w.report()
	tree := buildTree(absRoot, entries)
	tree.Finalize()

	logging.Scanner.Info("scan complete",
		"root", absRoot,
		"nodes", tree.Len(),
		"bytes", tree.Node(model.RootDir).SubtreeSize)
	return tree, nil
}

// report sends a progress snapshot without blocking the walk
func (w *Walker) report() {
	p := Progress{
		FilesScanned: w.files.Load(),
		DirsScanned:  w.dirs.Load(),
		BytesFound:   w.bytes.Load(),
	}
	select {
	case w.progressCh <- p:
	default:
	}
}

// buildTree constructs the arena tree from flat entries. Sorting by path
// puts every directory ahead of its contents, so parents get lower IDs.
func buildTree(rootPath string, entries []entry) *model.Tree {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].path < entries[j].path
	})

	tree := model.NewTree(rootPath)
	ids := make(map[string]model.NodeID, len(entries)/4+1)
	ids[rootPath] = model.RootDir

	for i := range entries {
		e := &entries[i]
		parent, ok := ids[filepath.Dir(e.path)]
		if !ok {
			// Parent was skipped (mount point or duplicate inode)
			continue
		}
		id := tree.Add(parent, e.name, e.kind, e.size)
		if e.kind == model.KindDirectory {
			ids[e.path] = id
		}
	}
	return tree
}

// Ensure Walker implements Scanner
var _ Scanner = (*Walker)(nil)
