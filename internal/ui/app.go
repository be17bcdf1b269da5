package ui

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"gui/internal/gui"
	"gui/internal/trace"
	"gui/internal/widgets"
)

const traceHeight = 12

// AppModel drives a widgets.Demo from Bubble Tea. Keys are resolved by the
// keybind registry or sent to the tree as key events; events that come back
// unhandled are interpreted here.
type AppModel struct {
	Demo      *widgets.Demo
	Keys      *KeyHandler
	Focus     *FocusManager
	Renderer  *TextRenderer
	Traces    *trace.Manager // may be nil
	TraceView *TraceView
	Logger    *slog.Logger
	Err       error // last dispatch error, shown until the next key
}

// NewAppModel wires a demo to the default keybinds and focuses the first
// focusable widget.
func NewAppModel(demo *widgets.Demo, traces *trace.Manager) *AppModel {
	m := &AppModel{
		Demo:      demo,
		Keys:      NewKeyHandler(DefaultKeybinds()),
		Focus:     &FocusManager{},
		Renderer:  NewTextRenderer(),
		Traces:    traces,
		TraceView: NewTraceView(traces),
		Logger:    slog.Default().With("component", "ui"),
	}
	m.Focus.OnChange = func(_, to gui.ID) {
		if err := demo.UI.Focus(to); err != nil {
			m.fail("focus", err)
		}
	}
	m.Focus.Rebuild(demo.UI.Cap())
	m.Focus.Next()
	m.render()
	return m
}

// HandleKey resolves a key and dispatches the resulting event. It returns
// tea.Quit when the tree leaves a quit event unhandled.
func (m *AppModel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	m.Err = nil
	ev, ok, consumed := m.Keys.Handle(msg)
	switch {
	case consumed && !ok:
		return nil
	case !consumed:
		if m.TraceView.IsVisible() && isScrollKey(msg.String()) {
			return m.TraceView.Update(msg)
		}
		ev = widgets.KeyEvent(msg.String())
	}
	return m.Dispatch(ev)
}

// Dispatch sends ev into the tree, acts on what comes back unhandled and
// re-renders.
func (m *AppModel) Dispatch(ev widgets.Event) tea.Cmd {
	unhandled, err := m.Demo.UI.Dispatch(context.Background(), ev)
	if err != nil {
		m.fail("dispatch", err)
	}

	var cmd tea.Cmd
	if unhandled != nil {
		switch unhandled.Event.Kind {
		case widgets.EventQuit:
			cmd = tea.Quit
		case widgets.EventFocusNext:
			m.Focus.Next()
		case widgets.EventFocusPrev:
			m.Focus.Prev()
		case widgets.EventTrace:
			m.TraceView.Toggle()
		default:
			m.Logger.Debug("unhandled event", "event", unhandled.Event.String())
		}
	}

	m.Focus.Rebuild(m.Demo.UI.Cap())
	m.render()
	if m.TraceView.IsVisible() {
		m.TraceView.Refresh()
	}
	return cmd
}

// Resize adapts the renderer and trace panel to the terminal size.
func (m *AppModel) Resize(width, height int) {
	m.Renderer.Width = width
	m.Renderer.Height = max(height-traceHeight-4, 4)
	m.TraceView.SetSize(max(width-4, 20), traceHeight-2)
	m.render()
}

func (m *AppModel) render() {
	if err := m.Demo.UI.Render(m.Renderer); err != nil {
		m.fail("render", err)
	}
}

func (m *AppModel) fail(op string, err error) {
	m.Err = err
	m.Logger.Warn(op+" failed", "error", err)
}

func (m *AppModel) footer() string {
	if m.Traces == nil {
		return ""
	}
	recent := m.Traces.Summaries()
	if len(recent) == 0 {
		return ""
	}
	last := recent[0]
	return Styles.Muted.Render("last " + last.Name + ": " +
		strconv.Itoa(last.Deliveries) + " deliveries in " + formatDuration(last.Duration))
}

// View composes the tree, trace panel, footer, error and leader help.
func (m *AppModel) View() string {
	parts := []string{m.Renderer.View()}
	if tv := m.TraceView.View(); tv != "" {
		parts = append(parts, tv)
	}
	if f := m.footer(); f != "" {
		parts = append(parts, f)
	}
	if m.Err != nil {
		parts = append(parts, Styles.Error.Render("error: "+m.Err.Error()))
	}
	if help := RenderKeybindHelp(m.Keys); help != "" {
		parts = append(parts, help)
	}
	return strings.Join(parts, "\n")
}

func isScrollKey(s string) bool {
	switch s {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		return true
	}
	return false
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

func (a *appModelAdapter) Init() tea.Cmd { return nil }

func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.Resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return a, a.HandleKey(msg)
	}
	return a, nil
}

func (a *appModelAdapter) View() string { return a.AppModel.View() }

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}
