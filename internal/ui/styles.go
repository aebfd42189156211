package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/fsview/internal/model"
)

// Colors
var (
	ColorPrimary    = lipgloss.Color("#C084FC") // soft violet
	ColorSuccess    = lipgloss.Color("#39FF14")
	ColorDanger     = lipgloss.Color("#FF5555")
	ColorMuted      = lipgloss.Color("#6B7280")
	ColorBorder     = lipgloss.Color("#4A5568")
	ColorBackground = lipgloss.Color("#1F1F23")
	ColorCyan       = lipgloss.Color("#00FFFF")
	ColorDir        = lipgloss.Color("#00FFFF")
	ColorFile       = lipgloss.Color("#A0A0A0")
	ColorText       = lipgloss.Color("#E4E4E7")

	// Change colors
	ColorGrew   = lipgloss.Color("#FCA5A5") // light red
	ColorShrunk = lipgloss.Color("#5EEAD4") // teal
	ColorNew    = lipgloss.Color("#FDE047") // yellow
	ColorGone   = lipgloss.Color("#EF4444")
)

// kindColors fill canvas cells by node kind
var kindColors = [model.NumKinds]lipgloss.Color{
	model.KindMetaRoot:    "#111114",
	model.KindDirectory:   "#1E3A5F",
	model.KindRegular:     "#3F3F46",
	model.KindSymlink:     "#365314",
	model.KindFIFO:        "#7C2D12",
	model.KindSocket:      "#831843",
	model.KindCharDevice:  "#713F12",
	model.KindBlockDevice: "#713F12",
	model.KindUnknown:     "#27272A",
}

// KindColor returns the canvas fill color for a node kind
func KindColor(k model.Kind) lipgloss.Color {
	if k >= model.NumKinds {
		return kindColors[model.KindUnknown]
	}
	return kindColors[k]
}

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Background(ColorBackground).
			Padding(0, 1)

	ModeTabActive = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1).
			Bold(true)

	ModeTabInactive = lipgloss.NewStyle().
			Background(lipgloss.Color("#3F3F46")).
			Foreground(lipgloss.Color("#A1A1AA")).
			Padding(0, 1)

	StatsStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Tree
	TreePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TreeItemSelected = lipgloss.NewStyle().
				Background(ColorPrimary).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	TreeItemSelectedUnfocused = lipgloss.NewStyle().
					Background(lipgloss.Color("#3F3F46")).
					Foreground(ColorText)

	// Canvas
	CanvasPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder)

	// Help bar
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	// Change indicators
	GrewStyle = lipgloss.NewStyle().
			Foreground(ColorGrew)

	ShrunkStyle = lipgloss.NewStyle().
			Foreground(ColorShrunk)

	NewBadge = lipgloss.NewStyle().
			Background(ColorNew).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 1).
			Bold(true)

	DeletedBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)
)

// FormatSize formats bytes to human readable string
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	negative := bytes < 0
	if negative {
		bytes = -bytes
	}

	var result string
	switch {
	case bytes >= TB:
		result = fmt.Sprintf("%.1fTB", float64(bytes)/TB)
	case bytes >= GB:
		result = fmt.Sprintf("%.1fGB", float64(bytes)/GB)
	case bytes >= MB:
		result = fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		result = fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		result = fmt.Sprintf("%dB", bytes)
	}

	if negative {
		return "-" + result
	}
	return result
}

// FormatDelta formats a size change with an explicit sign
func FormatDelta(delta int64) string {
	if delta > 0 {
		return "+" + FormatSize(delta)
	}
	return FormatSize(delta)
}

// FormatTime formats a time for display, using shorter format for current year
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Year() == time.Now().Year() {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Jan 2, 2006 15:04")
}
