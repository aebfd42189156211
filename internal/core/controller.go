package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lumipallolabs/fsview/internal/anim"
	"github.com/lumipallolabs/fsview/internal/cache"
	"github.com/lumipallolabs/fsview/internal/config"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/logging"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/lumipallolabs/fsview/internal/prefs"
	"github.com/lumipallolabs/fsview/internal/scanner"
	"github.com/lumipallolabs/fsview/internal/watcher"
)

// MinSignificantSize is the minimum size for a deletion to count in freed stats
const MinSignificantSize = 200 * 1024 // 200 KB

// Controller manages the core application logic without UI dependencies.
//
// Scans and the watcher run on their own goroutines and deliver events on
// channels. Everything that touches the layout engine (InitLayout, Toggle,
// Tick, SetMode) must be called from one goroutine, normally the UI's.
type Controller struct {
	mu sync.RWMutex

	// State
	path    string
	cfg     config.Config
	tree    *model.Tree
	state   *TreeState
	scan    ScanState
	freed   FreedState
	volume  model.Volume
	changes *cache.Changes
	mode    layout.Mode

	// Layout
	engine *layout.Engine
	morph  *anim.Driver

	// Internal services
	scanner scanner.Scanner
	watcher *watcher.Watcher
	prefs   *prefs.Manager
	cache   *cache.Cache

	// Event handling
	eventCh chan Event
	log     *log.Logger
}

// NewController creates a controller for path. prefsMgr may be nil.
func NewController(path string, cfg config.Config, prefsMgr *prefs.Manager) *Controller {
	c := &Controller{
		path:    path,
		cfg:     cfg,
		state:   NewTreeState(),
		mode:    cfg.LayoutMode(),
		prefs:   prefsMgr,
		eventCh: make(chan Event, 100),
		log:     logging.Debug.WithPrefix("controller"),
	}
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		c.cache = cache.New(dir)
	}
	if prefsMgr != nil {
		c.freed.Lifetime = prefsMgr.FreedLifetime()
	}
	return c
}

// Events returns the channel carrying events raised outside of a scan or
// watch: expand/collapse, mode and core radius changes
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// State returns a read-only snapshot of the current state
func (c *Controller) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return AppState{
		Path:   c.path,
		Volume: c.volume,
		Scan:   c.scan,
		Freed:  c.freed,
		Tree:   c.state,
	}
}

// Path returns the scan root
func (c *Controller) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Tree returns the scanned tree, or nil before the first scan completes
func (c *Controller) Tree() *model.Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// TreeState returns the navigation state
func (c *Controller) TreeState() *TreeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ScanState returns the current scan state
func (c *Controller) ScanState() ScanState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scan
}

// FreedState returns the current freed space state
func (c *Controller) FreedState() FreedState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freed
}

// Changes returns the size deltas against the previous scan of the same
// root, or nil when there was none
func (c *Controller) Changes() *cache.Changes {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changes
}

// Mode returns the active layout mode
func (c *Controller) Mode() layout.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Engine returns the layout engine, or nil until InitLayout
func (c *Controller) Engine() *layout.Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// IsShowingDiff returns whether diff mode is enabled
func (c *Controller) IsShowingDiff() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.ShowDiff
}

// ToggleDiff toggles diff display mode
func (c *Controller) ToggleDiff() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ShowDiff = !c.state.ShowDiff
	return c.state.ShowDiff
}

// StartScan begins scanning the configured path
func (c *Controller) StartScan(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()

	if c.path == "" {
		c.mu.Unlock()
		return nil, nil
	}
	path := c.path

	// Reset state for new scan
	c.scanner = scanner.NewWalker(c.cfg.Scan.Workers)
	c.scan = ScanState{
		ID:    uuid.New(),
		Phase: PhaseScanning,
	}
	c.tree = nil
	c.changes = nil
	c.engine = nil
	c.morph = nil
	c.state = NewTreeState()
	scanID := c.scan.ID
	sc := c.scanner

	c.mu.Unlock()

	if c.prefs != nil {
		c.prefs.SetLastPath(path)
	}

	// Create event channel for this scan
	eventCh := make(chan Event, 100)

	go c.runScan(ctx, sc, scanID, path, eventCh)

	return eventCh, nil
}

// runScan executes the scan in a goroutine
func (c *Controller) runScan(ctx context.Context, sc scanner.Scanner, scanID uuid.UUID, path string, eventCh chan Event) {
	defer close(eventCh)

	c.log.Info("starting scan", "path", path, "scan", scanID)

	c.mu.Lock()
	c.scan.StartTime = time.Now()
	c.mu.Unlock()

	eventCh <- ScanStartedEvent{ScanID: scanID, Path: path}

	// Listen for progress in separate goroutine
	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		for progress := range sc.Progress() {
			c.mu.Lock()
			c.scan.FilesScanned = progress.FilesScanned
			c.scan.DirsScanned = progress.DirsScanned
			c.scan.BytesFound = progress.BytesFound
			c.mu.Unlock()

			eventCh <- ScanProgressEvent{
				ScanID:       scanID,
				FilesScanned: progress.FilesScanned,
				DirsScanned:  progress.DirsScanned,
				BytesFound:   progress.BytesFound,
			}
		}
	}()

	tree, err := sc.Scan(ctx, path)
	progressWg.Wait()

	if err != nil {
		c.mu.Lock()
		c.scan.Phase = PhaseIdle
		c.mu.Unlock()

		eventCh <- ScanCompletedEvent{ScanID: scanID, Err: err}
		eventCh <- ErrorEvent{Err: err}
		return
	}

	// Comparing phase
	c.mu.Lock()
	c.scan.Phase = PhaseComparing
	c.mu.Unlock()

	eventCh <- ScanPhaseChangedEvent{ScanID: scanID, Phase: PhaseComparing}

	changes := c.compareWithCache(scanID, tree)

	volume, err := model.VolumeOf(path)
	if err != nil {
		c.log.Warn("volume info unavailable", "path", path, "err", err)
	}

	// Complete
	c.mu.Lock()
	c.scan.Phase = PhaseComplete
	c.tree = tree
	c.changes = changes
	c.volume = volume
	c.mu.Unlock()

	eventCh <- ScanPhaseChangedEvent{ScanID: scanID, Phase: PhaseComplete}
	eventCh <- ScanCompletedEvent{ScanID: scanID, Tree: tree}

	c.log.Info("scan complete", "scan", scanID, "nodes", tree.Len())
}

// compareWithCache diffs tree against the last snapshot of the same root
// and stores tree as the newest snapshot. Cache failures only lose the diff.
func (c *Controller) compareWithCache(scanID uuid.UUID, tree *model.Tree) *cache.Changes {
	if c.cache == nil {
		return nil
	}

	var changes *cache.Changes
	prev, err := c.cache.LoadLatest(tree.RootPath)
	switch {
	case err == nil:
		changes = cache.Diff(tree, prev.Tree())
		c.log.Debug("compared with previous scan", "previous", prev.ScanID, "at", prev.ScannedAt)
	case errors.Is(err, cache.ErrNoCache):
	default:
		c.log.Warn("failed to load previous scan", "err", err)
	}

	if err := c.cache.Save(scanID, tree); err != nil {
		c.log.Warn("failed to save scan", "err", err)
	} else if err := c.cache.Prune(tree.RootPath, c.cfg.Cache.Keep); err != nil {
		c.log.Warn("failed to prune cache", "err", err)
	}
	return changes
}

// FinalizeScan marks the scan as fully complete (after UI delay)
func (c *Controller) FinalizeScan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scan.Phase = PhaseIdle
}

// InitLayout lays out the scanned tree in the active mode
func (c *Controller) InitLayout() {
	c.mu.Lock()
	if c.tree == nil {
		c.mu.Unlock()
		return
	}
	tree := c.tree
	c.morph = anim.NewDriver(tree, c.cfg.Animation.Duration.Duration, anim.Smoothstep)
	c.engine = layout.New(tree, c.state,
		layout.WithMorphBreaker(c.morph),
		layout.WithCameraNotifier(c),
		layout.WithLogger(logging.Layout),
	)
	engine, mode := c.engine, c.mode
	c.mu.Unlock()

	engine.Init(mode)
}

// CoreRadiusChanged is called by the tree layout when its core grows or
// shrinks
func (c *Controller) CoreRadiusChanged() {
	c.emit(CoreRadiusChangedEvent{Radius: c.engine.TreeV().CoreRadius()})
}

// SetMode switches the layout mode, relaying out the tree if one is loaded
func (c *Controller) SetMode(mode layout.Mode) {
	c.mu.Lock()
	if c.mode == mode {
		c.mu.Unlock()
		return
	}
	c.mode = mode
	engine := c.engine
	c.mu.Unlock()

	if engine != nil {
		engine.Init(mode)
	}
	if c.prefs != nil {
		c.prefs.SetLastMode(mode.String())
	}
	c.emit(ModeChangedEvent{Mode: mode})
}

// Toggle starts expanding a collapsed directory or collapsing an expanded one
func (c *Controller) Toggle(dir model.NodeID, now time.Time) {
	c.SetExpanded(dir, !c.state.Expanded(dir), now)
}

// SetExpanded starts a morph of dir towards expanded or collapsed. Before
// the layout is initialized it only records the flag.
func (c *Controller) SetExpanded(dir model.NodeID, expanded bool, now time.Time) {
	tree := c.Tree()
	if tree == nil || !tree.IsDir(dir) || c.state.Expanded(dir) == expanded {
		return
	}

	if c.engine == nil {
		c.state.SetExpanded(dir, expanded)
		return
	}
	c.engine.OnExpandCollapse(dir, layout.StageInitiated)
	c.state.SetExpanded(dir, expanded)
	c.morph.Start(dir, expanded, now)
	c.emit(TreeExpandedEvent{Dir: dir, Expanded: expanded})
}

// Animating reports whether any directory is mid-morph
func (c *Controller) Animating() bool {
	return c.morph != nil && c.morph.Active()
}

// Tick advances running morphs to now, feeds every deployment change to the
// engine and returns the nodes whose geometry must be redrawn
func (c *Controller) Tick(now time.Time) []model.NodeID {
	if c.engine == nil {
		return nil
	}
	for _, dir := range c.morph.Step(now) {
		c.engine.OnExpandCollapse(dir, layout.StageInProgress)
	}
	return c.engine.Update()
}

// StartWatching starts the filesystem watcher for the current scan root.
// The returned channel carries PathRemovedEvents; apply each one on the UI
// goroutine with ApplyDeletion.
func (c *Controller) StartWatching() (<-chan Event, error) {
	c.mu.Lock()

	if c.path == "" || c.tree == nil {
		c.mu.Unlock()
		return nil, nil
	}

	// Stop existing watcher
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}

	tree := c.tree
	w, err := watcher.New(tree)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.watcher = w
	c.mu.Unlock()

	if err := w.AddRecursive(); err != nil {
		c.log.Warn("failed to add recursive watch", "path", tree.RootPath, "err", err)
	}
	w.Start()
	c.log.Info("filesystem watcher started", "path", tree.RootPath)

	eventCh := make(chan Event, 100)
	go c.watchLoop(w, tree, eventCh)
	return eventCh, nil
}

// watchLoop forwards watcher events. It only reads the tree's structure;
// the deleted flag is written by ApplyDeletion.
func (c *Controller) watchLoop(w *watcher.Watcher, tree *model.Tree, eventCh chan Event) {
	defer close(eventCh)

	for ev := range w.Events() {
		eventCh <- PathRemovedEvent{Tree: tree, Node: ev.Node, Path: ev.Path}
	}
}

// ApplyDeletion marks the removed node deleted and updates the freed
// stats. It must run on the goroutine that reads the tree. ok is false when
// the event is stale, a repeat, or too small to count as freed space.
func (c *Controller) ApplyDeletion(ev PathRemovedEvent) (DeletionDetectedEvent, bool) {
	c.mu.RLock()
	tree := c.tree
	c.mu.RUnlock()

	if tree == nil || ev.Tree != tree || tree.Node(ev.Node).IsDeleted {
		return DeletionDetectedEvent{}, false
	}

	size := tree.Node(ev.Node).TotalSize()
	tree.MarkDeleted(ev.Node)
	c.log.Debug("marked deleted", "path", ev.Path, "size", size)
	if size < MinSignificantSize {
		return DeletionDetectedEvent{}, false
	}

	c.mu.Lock()
	c.freed.Session += size
	c.freed.Lifetime += size
	freed := c.freed
	c.mu.Unlock()

	if c.prefs != nil {
		c.prefs.AddFreed(size)
	}
	c.log.Debug("space freed", "size", size, "session", freed.Session, "lifetime", freed.Lifetime)

	return DeletionDetectedEvent{
		Node:         ev.Node,
		Path:         ev.Path,
		Size:         size,
		SessionFreed: freed.Session,
		TotalFreed:   freed.Lifetime,
	}, true
}

// Stop cleans up resources
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		_ = c.watcher.Stop()
		c.watcher = nil
	}
	if c.prefs != nil {
		_ = c.prefs.Close()
	}
}

// emit sends an event to the controller's event channel
func (c *Controller) emit(event Event) {
	select {
	case c.eventCh <- event:
	default:
		// Channel full, drop event
	}
}
