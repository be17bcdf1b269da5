package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - for titles, highlights
	ColorHighlight = "205" // Magenta - for focused widgets, borders
	ColorDanger    = "196" // Red - for errors
	ColorMuted     = "241" // Gray - for dimmed text, hints
	ColorText      = "252" // Light gray - for normal text
	ColorWarning   = "208" // Orange - for running traces
	ColorOK        = "2"   // Green - for completed traces
)

// Styles contains shared style definitions used by the renderer and views.
var Styles = struct {
	Title   lipgloss.Style // Bold accent color - for the window title
	Box     lipgloss.Style // Standard box with rounded border
	HelpBox lipgloss.Style // Leader help bar

	Focused lipgloss.Style // Focused widget (bold highlight color)
	Muted   lipgloss.Style // Dimmed text
	Normal  lipgloss.Style // Normal text
	Status  lipgloss.Style // Status label (accent color)
	Error   lipgloss.Style // Error line
	Empty   lipgloss.Style // Placeholder text (muted, italic)
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	HelpBox: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(lipgloss.Color(ColorMuted)),
	Focused: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
}
