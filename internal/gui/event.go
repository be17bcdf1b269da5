package gui

import "fmt"

type outcomeKind uint8

const (
	outcomeConsumed outcomeKind = iota
	outcomeBubble
	outcomeDirected
	outcomeReturnable
)

// Outcome is what a handler decides to do with an event.
type Outcome[E any] struct {
	kind   outcomeKind
	event  E
	target ID
}

// Consumed stops the event.
func Consumed[E any]() Outcome[E] {
	return Outcome[E]{kind: outcomeConsumed}
}

// Bubble passes event to the parent of the handling widget. Bubbling past
// the root makes it the unhandled result.
func Bubble[E any](event E) Outcome[E] {
	return Outcome[E]{kind: outcomeBubble, event: event}
}

// Directed delivers event straight to target.
func Directed[E any](target ID, event E) Outcome[E] {
	return Outcome[E]{kind: outcomeDirected, event: event, target: target}
}

// Returnable delivers event to target, then hands it back to the widget
// that returned this outcome.
func Returnable[E any](target ID, event E) Outcome[E] {
	return Outcome[E]{kind: outcomeReturnable, event: event, target: target}
}

func (o Outcome[E]) IsConsumed() bool { return o.kind == outcomeConsumed }

// Event returns the carried event, if any.
func (o Outcome[E]) Event() (E, bool) {
	return o.event, o.kind != outcomeConsumed
}

// Target returns the target of a directed or returnable outcome.
func (o Outcome[E]) Target() (ID, bool) {
	return o.target, o.kind == outcomeDirected || o.kind == outcomeReturnable
}

func (o Outcome[E]) String() string {
	switch o.kind {
	case outcomeBubble:
		return "bubble"
	case outcomeDirected:
		return fmt.Sprintf("directed(%s)", o.target)
	case outcomeReturnable:
		return fmt.Sprintf("returnable(%s)", o.target)
	default:
		return "consumed"
	}
}

// Unhandled carries the merged events nobody consumed during a dispatch.
type Unhandled[E any] struct {
	Event E
}

// Mergeable events know how to combine with an event produced after them.
type Mergeable[E any] interface {
	MergeWith(later E) E
}

// mergeResults left-folds results in production order.
func (u *Ui[E, M]) mergeResults(results []E) (E, bool) {
	if len(results) == 0 {
		var zero E
		return zero, false
	}
	acc := results[0]
	for _, next := range results[1:] {
		if u.merge != nil {
			acc = u.merge(acc, next)
			continue
		}
		if m, ok := any(acc).(Mergeable[E]); ok {
			acc = m.MergeWith(next)
			continue
		}
		u.logger.Debug("dropping unmergeable unhandled event", "kept", acc, "dropped", next)
	}
	return acc, true
}
