package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gui/internal/trace"
)

// TraceView displays the most recent operation as a delivery tree.
type TraceView struct {
	traces   *trace.Manager
	trace    *trace.Trace
	viewport viewport.Model
	width    int
	visible  bool
}

// NewTraceView creates a hidden trace view reading from m.
func NewTraceView(m *trace.Manager) *TraceView {
	vp := viewport.New(50, 12)
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		Padding(0, 1)
	return &TraceView{traces: m, viewport: vp, width: 50}
}

// Update handles scrolling while visible.
func (v *TraceView) Update(msg tea.Msg) tea.Cmd {
	if !v.visible {
		return nil
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

func (v *TraceView) View() string {
	if !v.visible {
		return ""
	}
	return v.viewport.View()
}

// SetSize sets the size of the trace view
func (v *TraceView) SetSize(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = height
	v.Refresh()
}

// Toggle shows or hides the view and returns the new state.
func (v *TraceView) Toggle() bool {
	v.visible = !v.visible
	if v.visible {
		v.Refresh()
	}
	return v.visible
}

func (v *TraceView) IsVisible() bool { return v.visible }

// Refresh reloads the newest trace from the manager.
func (v *TraceView) Refresh() {
	v.trace = nil
	if v.traces != nil {
		if recent := v.traces.Summaries(); len(recent) > 0 {
			v.trace = v.traces.Snapshot(recent[0].ID)
		}
	}
	v.viewport.SetContent(v.content())
}

func (v *TraceView) content() string {
	t := v.trace
	if t == nil || t.RootSpan == nil {
		return Styles.Muted.Render("No traces yet")
	}

	statusColor := ColorOK
	if t.Status == "running" {
		statusColor = ColorWarning
	}
	header := fmt.Sprintf("%s %s (%s) %s",
		t.RootSpan.Name,
		shortTraceID(t.ID),
		formatDuration(t.RootSpan.Duration),
		lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor)).Render(t.Status))
	lines := []string{Styles.Title.Render(header)}
	if msg := t.RootSpan.Attributes[trace.AttrError]; msg != "" {
		lines = append(lines, Styles.Error.Render("  "+msg))
	}
	if len(t.RootSpan.Children) == 0 {
		lines = append(lines, Styles.Muted.Render("  (no deliveries)"))
	}
	for i, child := range t.RootSpan.Children {
		lines = append(lines, v.renderSpan(child, "", i == len(t.RootSpan.Children)-1)...)
	}
	return strings.Join(lines, "\n")
}

// renderSpan renders a span and its children as a tree.
func (v *TraceView) renderSpan(span *trace.Span, prefix string, isLast bool) []string {
	connector := "├─"
	if isLast {
		connector = "└─"
	}

	name := span.Name
	if origin := span.Attributes[trace.AttrOrigin]; origin != "" {
		name += " from " + origin
	}
	maxNameLen := v.width - len(prefix) - len(connector) - 24
	if maxNameLen < 20 {
		maxNameLen = 20
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	line := prefix + connector + " " + name
	if result := span.Attributes[trace.AttrResult]; result != "" {
		line += " " + Styles.Status.Render("→ "+result)
	}
	line += " " + Styles.Muted.Render(formatDuration(span.Duration))
	lines := []string{line}

	childPrefix := prefix + "│  "
	if isLast {
		childPrefix = prefix + "   "
	}
	for i, child := range span.Children {
		lines = append(lines, v.renderSpan(child, childPrefix, i == len(span.Children)-1)...)
	}
	return lines
}

// formatDuration rounds to a precision that suits handler timings.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.Round(100 * time.Microsecond).String()
	}
}

// shortTraceID returns a shortened version of the trace ID for display
func shortTraceID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
