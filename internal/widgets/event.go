// Package widgets holds the demo widgets driven by cmd/guidemo together
// with the event and message types they exchange.
package widgets

import (
	"fmt"

	"gui/internal/gui"
)

// EventKind identifies an Event.
type EventKind int

const (
	EventNone EventKind = iota
	EventKey
	EventQuit
	EventFocusNext
	EventFocusPrev
	EventSubmit // Text was entered into an Input
	EventQuery  // ask the window to report the counter
	EventCount  // Value is a count; counts merge by summing
	EventTrace  // show or hide the trace panel
)

func (k EventKind) String() string {
	switch k {
	case EventKey:
		return "key"
	case EventQuit:
		return "quit"
	case EventFocusNext:
		return "focus-next"
	case EventFocusPrev:
		return "focus-prev"
	case EventSubmit:
		return "submit"
	case EventQuery:
		return "query"
	case EventCount:
		return "count"
	case EventTrace:
		return "trace"
	default:
		return "none"
	}
}

// Event is the input event type of the demo Ui.
type Event struct {
	Kind  EventKind
	Key   string
	Text  string
	Value int
}

var _ gui.Mergeable[Event] = Event{}

// KeyEvent wraps a key as reported by Bubble Tea ("a", "enter", "ctrl+c").
func KeyEvent(key string) Event { return Event{Kind: EventKey, Key: key} }

func Quit() Event { return Event{Kind: EventQuit} }

func Count(n int) Event { return Event{Kind: EventCount, Value: n} }

func (e Event) String() string {
	switch e.Kind {
	case EventKey:
		return fmt.Sprintf("key(%s)", e.Key)
	case EventSubmit:
		return fmt.Sprintf("submit(%q)", e.Text)
	case EventCount:
		return fmt.Sprintf("count(%d)", e.Value)
	default:
		return e.Kind.String()
	}
}

// MergeWith combines two unhandled events of one dispatch. Quit wins over
// everything, counts add up, and otherwise the earlier event is kept.
func (e Event) MergeWith(later Event) Event {
	switch {
	case e.Kind == EventQuit || later.Kind == EventQuit:
		return Quit()
	case e.Kind == EventNone:
		return later
	case e.Kind == EventCount && later.Kind == EventCount:
		return Count(e.Value + later.Value)
	default:
		return e
	}
}

// MessageKind identifies a Message.
type MessageKind int

const (
	MsgGet MessageKind = iota
	MsgSet
	MsgIncrement
	MsgSetText
	MsgValue // response carrying Value or Text
)

// Message is the message type of the demo Ui.
type Message struct {
	Kind  MessageKind
	Value int
	Text  string
}

type (
	Ui      = gui.Ui[Event, Message]
	Cap     = gui.MutCap[Event, Message]
	Outcome = gui.Outcome[Event]
	Base    = gui.Base[Event, Message]
)
