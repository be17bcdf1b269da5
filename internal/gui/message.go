package gui

import (
	"context"

	"github.com/pkg/errors"
)

func (c *mutCap[E, M]) Send(to ID, msg M) error {
	const op = "gui.Send"
	if err := c.check(op); err != nil {
		return err
	}
	if _, err := c.u.arena.get(op, to); err != nil {
		return err
	}
	c.u.op.pushBack(work[E, M]{kind: DeliverSend, target: to, origin: c.self, msg: msg})
	return nil
}

func (c *mutCap[E, M]) Post(to ID, event E) error {
	const op = "gui.Post"
	if err := c.check(op); err != nil {
		return err
	}
	if _, err := c.u.arena.get(op, to); err != nil {
		return err
	}
	c.u.op.pushBack(work[E, M]{kind: DeliverDirected, target: to, origin: c.self, event: event})
	return nil
}

func (c *mutCap[E, M]) Call(ctx context.Context, to ID, msg M) (M, error) {
	if err := c.check("gui.Call"); err != nil {
		var zero M
		return zero, err
	}
	return c.u.call(ctx, c.self, to, msg)
}

// Send queues msg for to from outside any widget and drains the queue.
// Events posted while draining that bubble past the root have no caller to
// return to; they are dropped and logged at debug level.
func (u *Ui[E, M]) Send(ctx context.Context, to ID, msg M) (err error) {
	const op = "gui.Send"
	if err := u.begin(op, "send", to); err != nil {
		return err
	}
	defer func() { u.end(err) }()
	if _, err := u.arena.get(op, to); err != nil {
		return err
	}
	u.op.pushBack(work[E, M]{kind: DeliverSend, target: to, msg: msg})
	if err := u.drain(ctx); err != nil {
		return err
	}
	u.dropUnhandled(op)
	return nil
}

// Call runs to's Respond from outside any widget. Messages sent while
// responding are delivered before Call returns. Unhandled events are
// dropped as in Send.
func (u *Ui[E, M]) Call(ctx context.Context, to ID, msg M) (_ M, err error) {
	const op = "gui.Call"
	var zero M
	if err := u.begin(op, "call", to); err != nil {
		return zero, err
	}
	defer func() { u.end(err) }()
	resp, err := u.call(ctx, ID{}, to, msg)
	if err != nil {
		return zero, err
	}
	if err := u.drain(ctx); err != nil {
		return zero, err
	}
	u.dropUnhandled(op)
	return resp, nil
}

func (u *Ui[E, M]) dropUnhandled(op string) {
	if n := len(u.op.results); n > 0 {
		u.logger.Debug("unhandled events dropped", "op", op, "count", n)
	}
}

// call runs to's Respond inline. A widget that already has a handler on
// the stack cannot be called again.
func (u *Ui[E, M]) call(ctx context.Context, from, to ID, msg M) (M, error) {
	const op = "gui.Call"
	var zero M
	if err := ctx.Err(); err != nil {
		return zero, newError(op, KindCanceled, to, err)
	}
	s, err := u.arena.get(op, to)
	if err != nil {
		return zero, err
	}
	if _, busy := u.op.active[to.index]; busy {
		return zero, newError(op, KindCallCycle, to, errors.Errorf("call from %s", from))
	}
	done, err := u.track(op, DeliverCall, to, from)
	if err != nil {
		return zero, err
	}
	resp, err := s.widget.Respond(ctx, u.newMutCap(to), msg)
	if err != nil {
		done("error")
		if KindOfError(err) != KindUnknown {
			return zero, err
		}
		return zero, errors.WithMessagef(err, "call %s", to)
	}
	done("response")
	return resp, nil
}

func (u *Ui[E, M]) react(ctx context.Context, w work[E, M]) error {
	s, err := u.arena.get("gui.Send", w.target)
	if err != nil {
		return err
	}
	done, err := u.track("gui.Send", DeliverSend, w.target, w.origin)
	if err != nil {
		return err
	}
	s.widget.React(ctx, u.newMutCap(w.target), w.msg)
	done("reacted")
	return nil
}
