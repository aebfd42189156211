package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const helpKeyColumnWidth = 12

// helpSections names the groups of KeyMap.FullHelp, in order
var helpSections = []string{"MOVE", "JUMP", "VIEW", "ACTIONS", "OTHER"}

// diffLegend lists the canvas colors used while diff mode is on
var diffLegend = []struct {
	color lipgloss.Color
	desc  string
}{
	{ColorNew, "new since last scan"},
	{ColorGrew, "grew"},
	{ColorShrunk, "shrank"},
	{ColorGone, "deleted"},
}

// HelpOverlay lists every key binding in a box centered over the app
type HelpOverlay struct {
	keys    KeyMap
	visible bool
	width   int
	height  int
}

// NewHelpOverlay creates a hidden overlay for keys
func NewHelpOverlay(keys KeyMap) HelpOverlay {
	return HelpOverlay{keys: keys}
}

// Toggle flips visibility
func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

// SetVisible shows or hides the overlay
func (h *HelpOverlay) SetVisible(visible bool) {
	h.visible = visible
}

// IsVisible reports whether the overlay is shown
func (h HelpOverlay) IsVisible() bool {
	return h.visible
}

// SetSize sets the area the box is centered in
func (h *HelpOverlay) SetSize(w, height int) {
	h.width = w
	h.height = height
}

// View renders the overlay, or "" when hidden
func (h HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	title := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	section := lipgloss.NewStyle().Foreground(ColorMuted).Bold(true).MarginTop(1)
	desc := lipgloss.NewStyle().Foreground(ColorText)

	lines := []string{title.Render("Keyboard Shortcuts")}
	for i, group := range h.keys.FullHelp() {
		name := "MORE"
		if i < len(helpSections) {
			name = helpSections[i]
		}
		lines = append(lines, section.Render(name))
		for _, b := range group {
			lines = append(lines, bindingLine(b, desc))
		}
	}

	lines = append(lines, section.Render("DIFF COLORS"))
	for _, l := range diffLegend {
		swatch := lipgloss.NewStyle().Foreground(l.color).Width(helpKeyColumnWidth).Render("████")
		lines = append(lines, swatch+desc.Render(l.desc))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}

// bindingLine renders one binding as a key column followed by its description
func bindingLine(b key.Binding, desc lipgloss.Style) string {
	hk := b.Help()
	return HelpKey.Width(helpKeyColumnWidth).Render(hk.Key) + desc.Render(hk.Desc)
}

// HelpBar renders the bottom bar of short key hints
func HelpBar(keys KeyMap, width int) string {
	h := help.New()
	h.Width = width - 2
	h.Styles.ShortKey = HelpKey
	h.Styles.ShortDesc = HelpStyle.UnsetPadding()
	h.Styles.ShortSeparator = HelpStyle.UnsetPadding()
	h.ShortSeparator = "  |  "
	return HelpStyle.Width(width).Render(h.ShortHelpView(keys.ShortHelp()))
}
