// Package gui organises widgets into an id-addressed tree, dispatches input
// events through it and lets widgets exchange messages.
//
// It does not draw, lay out or poll input. A backend drives it:
//
//	ui, root, err := gui.New(newWindowData, newWindow)
//	id, err := ui.Add(root, newLabelData, newLabel)
//	unhandled, err := ui.Dispatch(ctx, event)
//	err = ui.Render(renderer)
//
// # Events
//
// Dispatch delivers an event to the focused widget. Its handler returns an
// Outcome: Consumed stops it, Bubble passes it to the parent, Directed sends
// it to another widget and Returnable sends it to another widget and hands
// it back afterwards. Events that bubble past the root, together with
// events emitted by hooks, are merged into the Unhandled result.
//
// # Messages
//
// Widgets talk through their MutCap. Send queues a one-way message; Call
// runs the target's Respond immediately. Calling a widget that already has
// a handler on the stack fails with KindCallCycle.
//
// # Ordering
//
// Every operation has one queue. The continuation of the current chain runs
// first; posted events and sent messages run after it in FIFO order. The
// queue is empty when the operation returns.
package gui
