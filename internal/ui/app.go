// Package ui implements the terminal user interface for fsview using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/fsview/internal/core"
	"github.com/lumipallolabs/fsview/internal/logging"
	"github.com/lumipallolabs/fsview/internal/model"
)

// Panel identifies which panel is active
type Panel int

const (
	PanelTree Panel = iota
	PanelCanvas
)

// Message types for Bubble Tea
type (
	scanStartMsg         struct{}
	scanEventMsg         struct{ event core.Event }
	scanCompleteDelayMsg struct{}
	pathRemovedMsg       struct{ event core.PathRemovedEvent }
	controllerEventMsg   struct{ event core.Event }
	spinnerTickMsg       struct{}
	frameMsg             time.Time
)

// Spinner frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Timing constants
const (
	spinnerTickInterval = 80 * time.Millisecond
	frameInterval       = 33 * time.Millisecond
	borderRotationSpeed = 50 // milliseconds per frame
	completeDisplayTime = 500 * time.Millisecond
)

// App is the main application model
type App struct {
	ctrl *core.Controller

	// Components
	header Header
	tree   TreePanel
	canvas CanvasPanel
	help   HelpOverlay
	keys   KeyMap

	// UI state
	activePanel Panel
	info        NodeInfo
	hasInfo     bool
	animating   bool
	err         error

	// Event channels, re-armed after each event
	scanEventCh    <-chan core.Event
	watcherEventCh <-chan core.Event

	// Dimensions
	width  int
	height int
}

// NewApp creates the application model around a controller
func NewApp(ctrl *core.Controller) App {
	keys := DefaultKeyMap()
	a := App{
		ctrl:        ctrl,
		header:      NewHeader(ctrl.Path(), ctrl.Mode()),
		tree:        NewTreePanel(),
		canvas:      NewCanvasPanel(),
		help:        NewHelpOverlay(keys),
		keys:        keys,
		activePanel: PanelTree,
	}
	a.tree.SetFocused(true)
	a.header.SetScanning(true, "")

	freed := ctrl.FreedState()
	a.header.SetFreedStats(freed.Session, freed.Lifetime)
	return a
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("FSVIEW"),
		func() tea.Msg { return scanStartMsg{} },
		a.listenForControllerEvents(),
	)
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case scanStartMsg:
		return a.startScan()

	case scanEventMsg:
		return a.handleScanEvent(msg.event)

	case scanCompleteDelayMsg:
		return a.finalizeScan()

	case pathRemovedMsg:
		// Deletions are applied here so only this goroutine touches the tree
		if freed, ok := a.ctrl.ApplyDeletion(msg.event); ok {
			a.header.SetFreedStats(freed.SessionFreed, freed.TotalFreed)
		}
		a.tree.RefreshVisible()
		a.describeSelection()
		return a, a.listenForWatcherEvents()

	case controllerEventMsg:
		a.handleControllerEvent(msg.event)
		return a, a.listenForControllerEvents()

	case frameMsg:
		return a.frame(time.Time(msg))

	case spinnerTickMsg:
		if a.ctrl.ScanState().IsScanning() {
			return a, spinnerTick()
		}
		return a, nil
	}

	return a, nil
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerTickInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// startScan begins the scanning process
func (a App) startScan() (tea.Model, tea.Cmd) {
	eventCh, err := a.ctrl.StartScan(context.Background())
	if err != nil {
		a.err = err
		return a, nil
	}
	if eventCh == nil {
		return a, nil
	}

	a.scanEventCh = eventCh
	a.err = nil
	a.hasInfo = false
	a.tree.SetTree(nil, nil, nil)
	a.canvas.SetEngine(nil, nil)
	a.header.SetScanning(true, "")

	return a, tea.Batch(a.listenForScanEvents(), spinnerTick())
}

// listenForScanEvents creates a command that waits for the next scan event
func (a App) listenForScanEvents() tea.Cmd {
	if a.scanEventCh == nil {
		return nil
	}
	eventCh := a.scanEventCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil
		}
		return scanEventMsg{event: event}
	}
}

// handleScanEvent processes scan events and continues listening
func (a App) handleScanEvent(event core.Event) (tea.Model, tea.Cmd) {
	switch e := event.(type) {
	case core.ScanProgressEvent:
		state := a.ctrl.ScanState()
		progress := fmt.Sprintf("%d files, %s, %s",
			state.FilesScanned,
			FormatSize(state.BytesFound),
			state.Elapsed())
		a.header.SetScanning(true, progress)
		return a, a.listenForScanEvents()

	case core.ScanPhaseChangedEvent:
		logging.Debug.Debug("scan phase changed", "phase", e.Phase)
		return a, a.listenForScanEvents()

	case core.ScanCompletedEvent:
		if e.Err != nil {
			a.err = e.Err
			a.header.SetScanning(false, "")
			return a, nil
		}
		// Show "Complete" briefly before showing data
		return a, tea.Tick(completeDisplayTime, func(time.Time) tea.Msg {
			return scanCompleteDelayMsg{}
		})

	default:
		return a, a.listenForScanEvents()
	}
}

// finalizeScan lays out the scanned tree and shows it
func (a App) finalizeScan() (tea.Model, tea.Cmd) {
	a.ctrl.FinalizeScan()
	a.ctrl.InitLayout()
	a.ctrl.Tick(time.Now())

	state := a.ctrl.State()
	a.header.SetScanning(false, "")
	a.header.SetVolume(state.Volume)
	a.tree.SetTree(a.ctrl.Tree(), a.ctrl.TreeState(), a.ctrl.Changes())
	a.tree.SetShowDiff(a.ctrl.IsShowingDiff())
	a.canvas.SetEngine(a.ctrl.Engine(), a.ctrl.Changes())
	a.canvas.SetShowDiff(a.ctrl.IsShowingDiff())
	a.updateLayout()
	a.describeSelection()

	return a, a.startWatcher()
}

// startWatcher starts watching for deletions
func (a *App) startWatcher() tea.Cmd {
	eventCh, err := a.ctrl.StartWatching()
	if err != nil {
		logging.Debug.Warn("watcher unavailable", "err", err)
		return nil
	}
	if eventCh == nil {
		return nil
	}
	a.watcherEventCh = eventCh
	return a.listenForWatcherEvents()
}

// listenForWatcherEvents creates a command that waits for the next watcher event
func (a App) listenForWatcherEvents() tea.Cmd {
	if a.watcherEventCh == nil {
		return nil
	}
	eventCh := a.watcherEventCh
	return func() tea.Msg {
		for event := range eventCh {
			if e, ok := event.(core.PathRemovedEvent); ok {
				return pathRemovedMsg{event: e}
			}
		}
		return nil
	}
}

// listenForControllerEvents creates a command that waits for the next
// expand/collapse, mode or core radius event
func (a App) listenForControllerEvents() tea.Cmd {
	eventCh := a.ctrl.Events()
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil
		}
		return controllerEventMsg{event: event}
	}
}

func (a *App) handleControllerEvent(event core.Event) {
	switch e := event.(type) {
	case core.TreeExpandedEvent:
		a.tree.RefreshVisible()
	case core.ModeChangedEvent:
		a.header.SetMode(e.Mode)
		a.canvas.Refresh()
		a.describeSelection()
	case core.CoreRadiusChangedEvent:
		// The camera reframes on the next refresh
		logging.Debug.Debug("core radius changed", "radius", e.Radius)
		a.canvas.Refresh()
	}
}

// animate starts the frame loop if it is not already running
func (a *App) animate() tea.Cmd {
	if a.animating {
		return nil
	}
	a.animating = true
	return frameTick()
}

// frame advances morphs and redraws whatever the engine reports dirty
func (a App) frame(now time.Time) (tea.Model, tea.Cmd) {
	if dirty := a.ctrl.Tick(now); len(dirty) > 0 {
		a.canvas.Refresh()
	}
	if a.ctrl.Animating() {
		return a, frameTick()
	}
	a.animating = false
	a.describeSelection()
	return a, nil
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.help.IsVisible() {
		if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Back) {
			a.help.SetVisible(false)
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.ctrl.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Rescan):
		if !a.ctrl.ScanState().IsScanning() {
			return a.startScan()
		}
		return a, nil
	}

	if a.ctrl.Engine() == nil {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Tab):
		a.activePanel = 1 - a.activePanel
		a.tree.SetFocused(a.activePanel == PanelTree)
		a.canvas.SetFocused(a.activePanel == PanelCanvas)

	case key.Matches(msg, a.keys.Up):
		a.tree.MoveUp()
		a.syncSelection()

	case key.Matches(msg, a.keys.Down):
		a.tree.MoveDown()
		a.syncSelection()

	case key.Matches(msg, a.keys.PageUp):
		a.tree.PageUp()
		a.syncSelection()

	case key.Matches(msg, a.keys.PageDown):
		a.tree.PageDown()
		a.syncSelection()

	case key.Matches(msg, a.keys.Top):
		a.tree.GoToTop()
		a.syncSelection()

	case key.Matches(msg, a.keys.Bottom):
		a.tree.GoToBottom()
		a.syncSelection()

	case key.Matches(msg, a.keys.Right):
		id := a.tree.Selected()
		tree := a.ctrl.Tree()
		if tree.IsDir(id) && !a.ctrl.TreeState().Expanded(id) {
			return a, a.setExpanded(id, true)
		}
		a.tree.MoveDown()
		a.syncSelection()

	case key.Matches(msg, a.keys.Left):
		id := a.tree.Selected()
		if a.ctrl.Tree().IsDir(id) && a.ctrl.TreeState().Expanded(id) {
			return a, a.setExpanded(id, false)
		}
		a.tree.SelectParent()
		a.syncSelection()

	case key.Matches(msg, a.keys.Enter):
		id := a.tree.Selected()
		if a.ctrl.Tree().IsDir(id) {
			return a, a.setExpanded(id, !a.ctrl.TreeState().Expanded(id))
		}

	case key.Matches(msg, a.keys.Back):
		a.canvas.ZoomOut()

	case key.Matches(msg, a.keys.ZoomIn):
		a.canvas.ZoomIn()

	case key.Matches(msg, a.keys.ZoomOut):
		a.canvas.ZoomOut()

	case key.Matches(msg, a.keys.Mode):
		a.ctrl.SetMode(a.ctrl.Mode().Next())
		a.ctrl.Tick(time.Now())
		a.header.SetMode(a.ctrl.Mode())
		a.canvas.Refresh()
		a.describeSelection()

	case key.Matches(msg, a.keys.ToggleDiff):
		show := a.ctrl.ToggleDiff()
		a.tree.SetShowDiff(show)
		a.canvas.SetShowDiff(show)

	case key.Matches(msg, a.keys.Open):
		a.openInExplorer()
	}

	return a, nil
}

// setExpanded starts a morph on dir and the frame loop that drives it
func (a *App) setExpanded(dir model.NodeID, expanded bool) tea.Cmd {
	a.ctrl.SetExpanded(dir, expanded, time.Now())
	a.tree.RefreshVisible()
	a.updateLayout()
	return a.animate()
}

// syncSelection mirrors the tree selection onto the canvas and info bar
func (a *App) syncSelection() {
	a.canvas.SetSelected(a.tree.Selected())
	a.describeSelection()
}

func (a *App) describeSelection() {
	id := a.tree.Selected()
	engine := a.ctrl.Engine()
	if id == model.NoNode || engine == nil {
		a.hasInfo = false
		return
	}
	a.canvas.SetSelected(id)
	a.info = DescribeNode(engine, a.ctrl.Changes(), id)
	a.hasInfo = true
}

// openInExplorer opens the selected directory, or a file's directory, in
// the system file manager
func (a *App) openInExplorer() {
	id := a.tree.Selected()
	tree := a.ctrl.Tree()
	if id == model.NoNode || tree == nil {
		return
	}
	if !tree.IsDir(id) {
		id = tree.Parent(id)
	}
	path := tree.Path(id)
	logging.Debug.Debug("opening in file manager", "path", path)
	if err := openInFileManager(path); err != nil {
		logging.Debug.Warn("open in file manager failed", "path", path, "err", err)
	}
}

// updateLayout calculates component sizes based on window dimensions
func (a *App) updateLayout() {
	headerHeight := 1
	infoBarHeight := 1
	helpBarHeight := 1

	panelHeight := max(3, a.height-headerHeight-infoBarHeight-helpBarHeight)

	// Tree panel takes only what it needs, max 40% of screen
	treeWidth := min(a.tree.RequiredWidth(), a.width*2/5)
	treeWidth = max(treeWidth, 20)

	a.header.SetWidth(a.width)
	a.tree.SetSize(treeWidth, panelHeight)
	a.canvas.SetSize(a.width-treeWidth, panelHeight)
	a.help.SetSize(a.width, a.height)
}

// View implements tea.Model
func (a App) View() string {
	state := a.ctrl.ScanState()

	if a.width == 0 || a.height == 0 {
		if state.IsScanning() {
			return "Scanning..."
		}
		return "Loading..."
	}

	if a.help.IsVisible() {
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.help.View(),
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(ColorBackground),
		)
	}

	var sections []string
	sections = append(sections, a.header.View())

	if a.err != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(ColorDanger).
			Padding(0, 1)
		sections = append(sections, errStyle.Render(fmt.Sprintf("Error: %v", a.err)))
	}

	if state.IsScanning() || a.ctrl.Engine() == nil {
		sections = append(sections, a.renderScanningPanel(state))
	} else {
		panels := lipgloss.JoinHorizontal(lipgloss.Top, a.tree.View(), a.canvas.View())
		sections = append(sections, panels)
		if a.hasInfo {
			sections = append(sections, a.info.View(a.width, a.ctrl.IsShowingDiff()))
		}
	}

	sections = append(sections, HelpBar(a.keys, a.width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderScanningPanel renders the boot-style scan progress box
func (a App) renderScanningPanel(state core.ScanState) string {
	panelHeight := max(1, a.height-3)

	doneStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	activeStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	spinnerIdx := int(time.Now().UnixMilli()/spinnerTickInterval.Milliseconds()) % len(spinnerFrames)
	spinner := spinnerFrames[spinnerIdx]

	phases := []core.ScanPhase{core.PhaseScanning, core.PhaseComparing, core.PhaseComplete}
	var logLines []string
	for _, p := range phases {
		if p > state.Phase {
			break
		}
		if p < state.Phase || p == core.PhaseComplete {
			logLines = append(logLines, fmt.Sprintf("  %s %s", doneStyle.Render("✓"), doneStyle.Render(p.String())))
		} else {
			logLines = append(logLines, fmt.Sprintf("  %s %s", activeStyle.Render(spinner), activeStyle.Render(p.String())))
		}
	}

	if state.FilesScanned > 0 {
		labelStyle := lipgloss.NewStyle().Foreground(ColorMuted)
		fileStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
		dataStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
		timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true)

		logLines = append(logLines, "")
		logLines = append(logLines, fmt.Sprintf("    %s %s", labelStyle.Render("FILES"), fileStyle.Render(fmt.Sprintf("%d files, %d dirs", state.FilesScanned, state.DirsScanned))))
		logLines = append(logLines, fmt.Sprintf("    %s  %s", labelStyle.Render("DATA"), dataStyle.Render(FormatSize(state.BytesFound))))
		logLines = append(logLines, fmt.Sprintf("    %s  %s", labelStyle.Render("TIME"), timeStyle.Render(state.Elapsed().String())))
	}

	innerContent := lipgloss.NewStyle().
		Padding(0, 3).
		Width(48).
		Render(strings.Join(logLines, "\n"))

	boxHeight := 9
	scanningBox := renderSpinningBorder(
		lipgloss.Place(48, boxHeight-2, lipgloss.Left, lipgloss.Center, innerContent),
		50, boxHeight, time.Now())

	return lipgloss.Place(a.width, panelHeight, lipgloss.Center, lipgloss.Center, scanningBox)
}

// renderSpinningBorder draws a box with a gradient border that spins over time
func renderSpinningBorder(content string, width, height int, t time.Time) string {
	shades := []string{
		"#00FFFF", "#00D4FF", "#00AAFF", "#0080FF", "#4060FF", "#8040FF",
		"#A020F0", "#C020C0", "#E040A0", "#FF60B0", "#E040A0", "#C020C0",
		"#A020F0", "#8040FF", "#4060FF", "#0080FF", "#00AAFF", "#00D4FF",
	}

	innerW := width - 2
	innerH := height - 2
	perimeter := 2*innerW + 2*innerH + 4

	offset := int(t.UnixMilli()/borderRotationSpeed) % perimeter

	colorAt := func(pos int) lipgloss.Style {
		adjusted := (pos - offset + perimeter) % perimeter
		shade := (adjusted * len(shades) / perimeter) % len(shades)
		return lipgloss.NewStyle().Foreground(lipgloss.Color(shades[shade]))
	}

	var result strings.Builder
	pos := 0

	result.WriteString(colorAt(pos).Render("╭"))
	pos++
	for i := 0; i < innerW; i++ {
		result.WriteString(colorAt(pos).Render("─"))
		pos++
	}
	result.WriteString(colorAt(pos).Render("╮"))
	pos++
	result.WriteString("\n")

	contentLines := strings.Split(content, "\n")
	for i := 0; i < innerH; i++ {
		result.WriteString(colorAt(perimeter - 1 - i).Render("│"))

		line := ""
		if i < len(contentLines) {
			line = contentLines[i]
		}
		if w := lipgloss.Width(line); w < innerW {
			line += strings.Repeat(" ", innerW-w)
		}
		result.WriteString(line)

		result.WriteString(colorAt(pos).Render("│"))
		pos++
		result.WriteString("\n")
	}

	bottomStart := pos
	result.WriteString(colorAt(perimeter - innerH - 1).Render("╰"))
	for i := 0; i < innerW; i++ {
		result.WriteString(colorAt(bottomStart + innerW - i).Render("─"))
	}
	result.WriteString(colorAt(bottomStart).Render("╯"))

	return result.String()
}
