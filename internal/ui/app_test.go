package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gui/internal/gui"
	"gui/internal/trace"
	"gui/internal/widgets"
)

func typeText(m *AppModel, s string) {
	for _, r := range s {
		m.HandleKey(keyMsg(string(r)))
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewAppModel_FocusesFirstInput(t *testing.T) {
	d := newDemo(t)
	m := NewAppModel(d, nil)

	if m.Focus.Current != d.Inputs[0] {
		t.Errorf("focus ring current = %v, want %v", m.Focus.Current, d.Inputs[0])
	}
	if id, ok := d.UI.Focused(); !ok || id != d.Inputs[0] {
		t.Errorf("ui focused = %v, want %v", id, d.Inputs[0])
	}
}

func TestAppModel_SubmitFlow(t *testing.T) {
	d := newDemo(t)
	m := NewAppModel(d, nil)

	typeText(m, "hi")
	if cmd := m.HandleKey(keyMsg("enter")); cmd != nil {
		t.Error("submit should not produce a command")
	}

	in := gui.DataOf[*widgets.InputData](dataOf(t, d, d.Inputs[0]))
	if in.Text != "" {
		t.Errorf("input should be cleared after submit, got %q", in.Text)
	}
	counter := gui.DataOf[*widgets.CounterData](dataOf(t, d, d.Counter))
	if counter.Value != 1 {
		t.Errorf("counter = %d, want 1", counter.Value)
	}
	status := gui.DataOf[*widgets.LabelData](dataOf(t, d, d.Status))
	if status.Text != "submitted hi" {
		t.Errorf("status = %q", status.Text)
	}
	if !strings.Contains(m.View(), "submitted hi") {
		t.Errorf("view should show the new status:\n%s", m.View())
	}
}

func TestAppModel_TabMovesFocus(t *testing.T) {
	d := newDemo(t)
	m := NewAppModel(d, nil)

	m.HandleKey(keyMsg("tab"))
	if id, _ := d.UI.Focused(); id != d.Counter {
		t.Fatalf("tab should focus the counter, got %v", id)
	}
	m.HandleKey(keyMsg("+"))
	m.HandleKey(keyMsg("+"))
	if v := gui.DataOf[*widgets.CounterData](dataOf(t, d, d.Counter)).Value; v != 2 {
		t.Errorf("counter = %d, want 2", v)
	}

	m.HandleKey(keyMsg("shift+tab"))
	if id, _ := d.UI.Focused(); id != d.Inputs[0] {
		t.Errorf("shift+tab should go back to the first input, got %v", id)
	}
}

func TestAppModel_Quit(t *testing.T) {
	m := NewAppModel(newDemo(t), nil)

	if !isQuit(m.HandleKey(keyMsg("ctrl+c"))) {
		t.Error("ctrl+c should quit")
	}
	m.HandleKey(keyMsg("ctrl+x"))
	if !isQuit(m.HandleKey(keyMsg("q"))) {
		t.Error("ctrl+x q should quit")
	}
	if isQuit(m.HandleKey(keyMsg("q"))) {
		t.Error("plain q is typed into the input")
	}
}

func TestAppModel_Query(t *testing.T) {
	d := newDemo(t)
	m := NewAppModel(d, nil)
	typeText(m, "a")
	m.HandleKey(keyMsg("enter"))

	m.HandleKey(keyMsg("ctrl+x"))
	m.HandleKey(keyMsg("c"))

	status := gui.DataOf[*widgets.LabelData](dataOf(t, d, d.Status))
	if status.Text != "count is 1" {
		t.Errorf("status = %q, want count is 1", status.Text)
	}
}

func TestAppModel_LeaderHelpInView(t *testing.T) {
	m := NewAppModel(newDemo(t), nil)

	m.HandleKey(keyMsg("ctrl+x"))
	if !strings.Contains(m.View(), "Toggle trace") {
		t.Errorf("leader help missing from view:\n%s", m.View())
	}
	m.HandleKey(keyMsg("esc"))
	if strings.Contains(m.View(), "Toggle trace") {
		t.Error("leader help should be gone after esc")
	}
}

func TestAppModel_TraceFooterAndPanel(t *testing.T) {
	mgr := trace.NewManager(10)
	d := newDemo(t, gui.WithObserver(trace.NewRecorder(mgr)))
	m := NewAppModel(d, mgr)

	typeText(m, "x")
	if !strings.Contains(m.View(), "last dispatch") {
		t.Errorf("footer should describe the last operation:\n%s", m.View())
	}

	m.HandleKey(keyMsg("ctrl+x"))
	m.HandleKey(keyMsg("t"))
	if !m.TraceView.IsVisible() {
		t.Fatal("ctrl+x t should show the trace panel")
	}
	if !strings.Contains(m.View(), "bubble") {
		t.Errorf("trace panel should list deliveries:\n%s", m.View())
	}
}

func TestAppModel_TracePanelWithoutManager(t *testing.T) {
	m := NewAppModel(newDemo(t), nil)
	m.TraceView.Toggle()
	if !strings.Contains(m.View(), "No traces yet") {
		t.Errorf("expected empty trace panel:\n%s", m.View())
	}
}

func TestAppModel_TeaAdapter(t *testing.T) {
	d := newDemo(t)
	tm := NewAppModel(d, nil).AsTeaModel()

	if tm.Init() != nil {
		t.Error("Init should not return a command")
	}
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 70, Height: 40})
	tm, _ = tm.Update(keyMsg("z"))
	if !strings.Contains(tm.View(), "z") {
		t.Errorf("typed key should be visible:\n%s", tm.View())
	}
}

func dataOf(t *testing.T, d *widgets.Demo, id gui.ID) dataHolder {
	t.Helper()
	raw, err := d.UI.Cap().WidgetData(id)
	if err != nil {
		t.Fatalf("WidgetData(%v): %v", id, err)
	}
	return dataHolder{raw}
}

type dataHolder struct{ v any }

func (h dataHolder) Data() any { return h.v }
