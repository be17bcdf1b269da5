// Package ui runs a gui.Ui inside Bubble Tea.
//
// Core pieces:
//   - KeybindRegistry / KeyHandler: key sequences (with a ctrl+x leader) to events
//   - FocusManager: focus ring rebuilt from the displayed tree
//   - TextRenderer: gui.Renderer drawing widgets as indented lipgloss lines
//   - TraceView: delivery tree of the latest operation
//   - AppModel: the tea.Model tying them together
package ui
