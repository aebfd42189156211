// Package watcher reports deletions under a scanned root so the tree can
// flag nodes that are gone. The platform backends only read OS events; the
// Watcher resolves their paths against the tree and delivers Events on a
// buffered channel, dropping them when it is full.
package watcher

import (
	"sync"

	"github.com/lumipallolabs/fsview/internal/logging"
	"github.com/lumipallolabs/fsview/internal/model"
)

// Event reports that a scanned node was deleted or moved out of the root
type Event struct {
	Node model.NodeID
	Path string
}

const eventBuffer = 100

// backend is the OS-specific part of a watcher
type backend interface {
	// add starts watching root and everything below it
	add(root string) error
	// run reports removed paths until done is closed
	run(done <-chan struct{}, removed func(path string))
	// wake unblocks a run loop that is waiting on the OS
	wake()
	// close releases OS resources once run has returned
	close() error
}

// Watcher watches a scanned tree for deletions
type Watcher struct {
	tree    *model.Tree
	backend backend
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New creates a watcher for tree. The tree's structure is only read, so
// the UI may keep using it while the watcher runs.
func New(tree *model.Tree) (*Watcher, error) {
	b, err := newBackend()
	if err != nil {
		return nil, err
	}
	return newWatcher(tree, b), nil
}

func newWatcher(tree *model.Tree, b backend) *Watcher {
	return &Watcher{
		tree:    tree,
		backend: b,
		eventCh: make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}
}

// Events returns the channel of deletions. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// AddRecursive watches the tree's root directory recursively
func (w *Watcher) AddRecursive() error {
	return w.backend.add(w.tree.RootPath)
}

// Start begins delivering events
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.backend.run(w.done, w.removed)
	}()
}

// removed resolves a path reported by the backend and queues its event
func (w *Watcher) removed(path string) {
	id := w.tree.FindPath(path)
	if id == model.NoNode {
		logging.Debug.Debug("delete event for path not in tree", "path", path)
		return
	}
	select {
	case w.eventCh <- Event{Node: id, Path: path}:
	default:
		logging.Debug.Warn("watcher dropped event", "path", path)
	}
}

// Stop ends watching and closes the event channel. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.backend.wake()
	w.wg.Wait()
	err := w.backend.close()
	close(w.eventCh)
	return err
}
