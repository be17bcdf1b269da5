package widgets

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"gui/internal/gui"
)

const (
	KindWindow  gui.Kind = "widgets.window"
	KindLabel   gui.Kind = "widgets.label"
	KindCounter gui.Kind = "widgets.counter"
	KindInput   gui.Kind = "widgets.input"
)

// Focusable widgets take part in the focus ring.
type Focusable interface {
	Focusable() bool
}

var errUnsupported = errors.New("unsupported message")

// WindowData is the root's data. Status and Counter are wired after the
// children exist.
type WindowData struct {
	Title   string
	Keys    int
	Status  gui.ID
	Counter gui.ID
}

// Window is the root. It counts key presses with a global hook, handles
// submissions from inputs and answers queries by calling the counter.
type Window struct {
	Base
}

func NewWindow(title string) (gui.DataFunc, gui.WidgetFunc[Event, Message]) {
	newData := func() any { return &WindowData{Title: title} }
	newWidget := func(id gui.ID, cap gui.BuildCap[Event, Message]) (gui.Widget[Event, Message], error) {
		cap.Hook(gui.Hooks[Event, Message]{
			Scope: gui.ScopeGlobal,
			Pre:   countKeys,
		})
		return &Window{Base: gui.NewBase[Event, Message](id)}, nil
	}
	return newData, newWidget
}

func countKeys(_ context.Context, cap Cap, e Event) (Event, bool) {
	if e.Kind == EventKey {
		gui.DataOf[*WindowData](cap).Keys++
	}
	return Event{}, false
}

func (*Window) Kind() gui.Kind { return KindWindow }

func (w *Window) HandleEvent(ctx context.Context, cap Cap, e Event) Outcome {
	d := gui.DataOf[*WindowData](cap)
	switch e.Kind {
	case EventSubmit:
		if err := cap.Send(d.Status, Message{Kind: MsgSetText, Text: "submitted " + e.Text}); err != nil {
			cap.Logger().Warn("status update failed", "error", err)
		}
		if err := cap.Send(d.Counter, Message{Kind: MsgIncrement, Value: 1}); err != nil {
			cap.Logger().Warn("counter update failed", "error", err)
		}
		return gui.Consumed[Event]()
	case EventQuery:
		resp, err := cap.Call(ctx, d.Counter, Message{Kind: MsgGet})
		text := "count unavailable"
		if err != nil {
			cap.Logger().Warn("counter query failed", "error", err)
		} else {
			text = "count is " + strconv.Itoa(resp.Value)
		}
		if err := cap.Send(d.Status, Message{Kind: MsgSetText, Text: text}); err != nil {
			cap.Logger().Warn("status update failed", "error", err)
		}
		return gui.Consumed[Event]()
	}
	return gui.Bubble(e)
}

type LabelData struct {
	Text string
}

// Label shows text set through MsgSetText.
type Label struct {
	Base
}

func NewLabel(text string) (gui.DataFunc, gui.WidgetFunc[Event, Message]) {
	return func() any { return &LabelData{Text: text} },
		func(id gui.ID, _ gui.BuildCap[Event, Message]) (gui.Widget[Event, Message], error) {
			return &Label{Base: gui.NewBase[Event, Message](id)}, nil
		}
}

func (*Label) Kind() gui.Kind { return KindLabel }

func (l *Label) React(_ context.Context, cap Cap, m Message) {
	if m.Kind == MsgSetText {
		gui.DataOf[*LabelData](cap).Text = m.Text
	}
}

func (l *Label) Respond(_ context.Context, cap Cap, m Message) (Message, error) {
	if m.Kind != MsgGet {
		return Message{}, errUnsupported
	}
	return Message{Kind: MsgValue, Text: gui.DataOf[*LabelData](cap).Text}, nil
}

type CounterData struct {
	Name  string
	Value int
}

// Counter changes with "+" and "-" while focused and answers MsgGet.
type Counter struct {
	Base
}

func NewCounter(name string) (gui.DataFunc, gui.WidgetFunc[Event, Message]) {
	return func() any { return &CounterData{Name: name} },
		func(id gui.ID, _ gui.BuildCap[Event, Message]) (gui.Widget[Event, Message], error) {
			return &Counter{Base: gui.NewBase[Event, Message](id)}, nil
		}
}

func (*Counter) Kind() gui.Kind { return KindCounter }

func (*Counter) Focusable() bool { return true }

func (c *Counter) HandleEvent(_ context.Context, cap Cap, e Event) Outcome {
	if e.Kind != EventKey {
		return gui.Bubble(e)
	}
	d := gui.DataOf[*CounterData](cap)
	switch e.Key {
	case "+", "=", "up":
		d.Value++
	case "-", "down":
		d.Value--
	default:
		return gui.Bubble(e)
	}
	return gui.Consumed[Event]()
}

func (c *Counter) React(_ context.Context, cap Cap, m Message) {
	d := gui.DataOf[*CounterData](cap)
	switch m.Kind {
	case MsgIncrement:
		d.Value += m.Value
	case MsgSet:
		d.Value = m.Value
	}
}

func (c *Counter) Respond(_ context.Context, cap Cap, m Message) (Message, error) {
	if m.Kind != MsgGet {
		return Message{}, errUnsupported
	}
	return Message{Kind: MsgValue, Value: gui.DataOf[*CounterData](cap).Value}, nil
}

type InputData struct {
	Placeholder string
	Text        string
	Focused     bool
	// JustFocused is set on focus and cleared after the next render.
	JustFocused bool
}

// Input edits a line of text. Enter hands the text to the parent as a
// returnable submit event and clears it once the parent is done.
type Input struct {
	Base
}

func NewInput(placeholder string) (gui.DataFunc, gui.WidgetFunc[Event, Message]) {
	return func() any { return &InputData{Placeholder: placeholder} },
		func(id gui.ID, _ gui.BuildCap[Event, Message]) (gui.Widget[Event, Message], error) {
			return &Input{Base: gui.NewBase[Event, Message](id)}, nil
		}
}

func (*Input) Kind() gui.Kind { return KindInput }

func (*Input) Focusable() bool { return true }

func (in *Input) HandleEvent(_ context.Context, cap Cap, e Event) Outcome {
	if e.Kind != EventKey {
		return gui.Bubble(e)
	}
	d := gui.DataOf[*InputData](cap)
	switch e.Key {
	case "enter":
		parent, ok, err := cap.Parent(cap.Self())
		if err != nil || !ok || d.Text == "" {
			return gui.Bubble(e)
		}
		return gui.Returnable(parent, Event{Kind: EventSubmit, Text: d.Text})
	case "backspace":
		if d.Text != "" {
			_, size := utf8.DecodeLastRuneInString(d.Text)
			d.Text = d.Text[:len(d.Text)-size]
		}
		return gui.Consumed[Event]()
	case " ", "space":
		d.Text += " "
		return gui.Consumed[Event]()
	}
	if utf8.RuneCountInString(e.Key) == 1 && strings.TrimSpace(e.Key) != "" {
		d.Text += e.Key
		return gui.Consumed[Event]()
	}
	return gui.Bubble(e)
}

// HandleReturn clears the text once the submission was handled.
func (in *Input) HandleReturn(_ context.Context, cap Cap, e Event) Outcome {
	if e.Kind == EventSubmit {
		gui.DataOf[*InputData](cap).Text = ""
	}
	return gui.Consumed[Event]()
}

func (in *Input) FocusChanged(_ gui.Cap, data any, focused bool) {
	d := data.(*InputData)
	d.Focused = focused
	d.JustFocused = focused
}

func (in *Input) RenderDone(_ gui.Cap, data any) {
	data.(*InputData).JustFocused = false
}
