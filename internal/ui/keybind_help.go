package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// RenderKeybindHelp produces the transient help bar shown after the leader.
func RenderKeybindHelp(h *KeyHandler) string {
	if h == nil || !h.LeaderWaiting {
		return ""
	}
	bindings := NewKeyMap(h).ShortHelp()
	if len(bindings) == 0 {
		return ""
	}

	helpModel := help.New()
	helpModel.Styles.ShortKey = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true)
	helpModel.Styles.ShortDesc = Styles.Muted
	helpModel.Styles.ShortSeparator = Styles.Muted

	prefix := strings.Join(h.Buffer, " ")
	return Styles.HelpBox.Render(Styles.Muted.Render(prefix) + " " + helpModel.ShortHelpView(bindings))
}
