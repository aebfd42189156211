package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/model"
)

const headerProgressBarWidth = 20 // Width of volume usage progress bar

// Header displays mode tabs, the scan root and volume stats
type Header struct {
	path         string
	mode         layout.Mode
	volume       model.Volume
	width        int
	scanning     bool
	scanProgress string
	freedSession int64
	freedTotal   int64
}

// NewHeader creates a new header component
func NewHeader(path string, mode layout.Mode) Header {
	return Header{path: path, mode: mode}
}

// SetMode sets the highlighted layout mode
func (h *Header) SetMode(mode layout.Mode) {
	h.mode = mode
}

// SetVolume sets the volume shown in the usage bar
func (h *Header) SetVolume(v model.Volume) {
	h.volume = v
}

// SetScanning sets the scanning state
func (h *Header) SetScanning(scanning bool, progress string) {
	h.scanning = scanning
	h.scanProgress = progress
}

// SetFreedStats sets the freed space statistics
func (h *Header) SetFreedStats(session, total int64) {
	h.freedSession = session
	h.freedTotal = total
}

// ScanProgress returns the current scan progress text
func (h Header) ScanProgress() string {
	return h.scanProgress
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
func (h Header) View() string {
	appName := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Render("FSVIEW")

	var tabs []string
	for _, m := range layout.Modes {
		if m == h.mode {
			tabs = append(tabs, ModeTabActive.Render(m.String()))
		} else {
			tabs = append(tabs, ModeTabInactive.Render(m.String()))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	pathStr := lipgloss.NewStyle().Foreground(ColorCyan).Render(h.path)

	var freedStats string
	if h.freedSession > 0 || h.freedTotal > 0 {
		dim := lipgloss.NewStyle().Foreground(ColorMuted)
		freedStats = dim.Render("Freed: ") +
			ShrunkStyle.Render(FormatSize(h.freedSession)+" session") +
			dim.Render(" | ") +
			dim.Render(FormatSize(h.freedTotal)+" total")
	}

	var stats, statsCompact string
	switch {
	case h.scanning:
		stats = StatsStyle.Render(h.scanProgress)
		statsCompact = stats
	case h.volume.TotalBytes > 0:
		usedPct := h.volume.UsedPercent()
		filled := min(headerProgressBarWidth, int(usedPct/100*headerProgressBarWidth))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", headerProgressBarWidth-filled)
		stats = StatsStyle.Render(fmt.Sprintf(
			"Used: %s / %s  [%s] %.0f%%",
			FormatSize(h.volume.UsedBytes()),
			FormatSize(h.volume.TotalBytes),
			bar,
			usedPct,
		))
		statsCompact = StatsStyle.Render(fmt.Sprintf(
			"Used: %s / %s",
			FormatSize(h.volume.UsedBytes()),
			FormatSize(h.volume.TotalBytes),
		))
	}

	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")
	left := appName + sep + modeTabs + sep + pathStr

	leftWidth := lipgloss.Width(left)
	freedWidth := lipgloss.Width(freedStats)
	statsWidth := lipgloss.Width(stats)
	totalContent := leftWidth + freedWidth + statsWidth + 4

	// Narrow terminals drop the usage bar, then freed stats, then stats
	if h.width < totalContent && statsCompact != "" {
		stats = statsCompact
		statsWidth = lipgloss.Width(stats)
		totalContent = leftWidth + freedWidth + statsWidth + 4
	}
	if h.width < totalContent && freedWidth > 0 {
		freedStats = ""
		freedWidth = 0
		totalContent = leftWidth + statsWidth + 2
	}
	if h.width < totalContent && statsWidth > 0 {
		stats = ""
		totalContent = leftWidth
	}

	remaining := max(2, h.width-totalContent)
	leftGap := max(1, remaining/2)
	rightGap := max(1, remaining-leftGap)

	line := left + strings.Repeat(" ", leftGap) + freedStats + strings.Repeat(" ", rightGap) + stats

	return HeaderStyle.MaxHeight(1).Render(line)
}
