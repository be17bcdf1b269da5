package gui

import (
	"context"
	"slices"
)

// work is one pending delivery.
type work[E, M any] struct {
	kind   DeliveryKind
	target ID
	origin ID
	event  E
	msg    M
	// primary marks the chain started by the top-level event.
	primary bool
}

type operation[E, M any] struct {
	info       OperationInfo
	seq        uint64
	queue      []work[E, M]
	results    []E
	deliveries int
	active     map[uint32]struct{}
	stack      []int

	unhandled    E
	hasUnhandled bool
}

func (op *operation[E, M]) pushFront(w work[E, M]) {
	op.queue = slices.Insert(op.queue, 0, w)
}

func (op *operation[E, M]) pushBack(w work[E, M]) {
	op.queue = append(op.queue, w)
}

// begin starts a top-level operation. Every successful begin is paired
// with end.
func (u *Ui[E, M]) begin(op, name string, target ID) error {
	if u.closed {
		return newError(op, KindClosed, target, ErrClosed)
	}
	if u.busy {
		return newError(op, KindReentrant, target, ErrReentrant)
	}
	u.busy = true
	u.opSeq++
	info := OperationInfo{Seq: u.opSeq, Name: name, Target: target}
	u.op = &operation[E, M]{info: info, seq: u.opSeq, active: make(map[uint32]struct{})}
	u.observer.OnOperationStart(info)
	return nil
}

func (u *Ui[E, M]) end(err error) {
	op := u.op
	u.op = nil
	u.busy = false
	u.logger.Debug("operation done", "op", op.info.Name, "seq", op.info.Seq, "deliveries", op.deliveries, "error", err)
	u.observer.OnOperationEnd(op.info, err)
}

// Dispatch delivers event to the focused widget, or the root when nothing
// is focused, and bubbles it toward the root. It returns nil when every
// resulting event was consumed.
func (u *Ui[E, M]) Dispatch(ctx context.Context, event E) (*Unhandled[E], error) {
	start := u.focused
	if start.IsZero() {
		start = u.root
	}
	return u.dispatch(ctx, "gui.Dispatch", work[E, M]{kind: DeliverBubble, target: start, event: event, primary: true})
}

// DispatchAt is Dispatch starting at start.
func (u *Ui[E, M]) DispatchAt(ctx context.Context, start ID, event E) (*Unhandled[E], error) {
	return u.dispatch(ctx, "gui.DispatchAt", work[E, M]{kind: DeliverBubble, target: start, event: event, primary: true})
}

// DispatchTo delivers event directly to target. If target bubbles it, the
// walk continues from target's parent.
func (u *Ui[E, M]) DispatchTo(ctx context.Context, target ID, event E) (*Unhandled[E], error) {
	return u.dispatch(ctx, "gui.DispatchTo", work[E, M]{kind: DeliverDirected, target: target, event: event, primary: true})
}

func (u *Ui[E, M]) dispatch(ctx context.Context, opName string, first work[E, M]) (_ *Unhandled[E], err error) {
	if err := u.begin(opName, "dispatch", first.target); err != nil {
		return nil, err
	}
	defer func() { u.end(err) }()
	if _, err := u.arena.get(opName, first.target); err != nil {
		return nil, err
	}

	if err := u.runGlobal(ctx, true, first.event); err != nil {
		return nil, err
	}
	u.op.pushBack(first)
	if err := u.drain(ctx); err != nil {
		return nil, err
	}
	if err := u.runGlobal(ctx, false, first.event); err != nil {
		return nil, err
	}
	if err := u.drain(ctx); err != nil {
		return nil, err
	}

	merged, ok := u.mergeResults(u.op.results)
	if !ok {
		return nil, nil
	}
	u.logger.Debug("event unhandled", "op", opName, "results", len(u.op.results))
	return &Unhandled[E]{Event: merged}, nil
}

// drain runs queued work until the queue is empty. Any error drops the
// remaining work.
func (u *Ui[E, M]) drain(ctx context.Context) error {
	op := u.op
	for len(op.queue) > 0 {
		if err := ctx.Err(); err != nil {
			u.logger.Debug("dropping queued deliveries", "count", len(op.queue), "reason", err)
			op.queue = nil
			return newError("gui.drain", KindCanceled, ID{}, err)
		}
		w := op.queue[0]
		op.queue = op.queue[1:]

		var err error
		switch w.kind {
		case DeliverSend:
			err = u.react(ctx, w)
		case DeliverReturn:
			err = u.finalize(ctx, w)
		default:
			err = u.deliver(ctx, w)
		}
		if err != nil {
			if n := len(op.queue); n > 0 {
				u.logger.Debug("dropping queued deliveries", "count", n, "reason", err)
			}
			op.queue = nil
			return err
		}
	}
	return nil
}

// track counts a delivery against the budget and reports it to the
// observer. The returned func closes the delivery.
func (u *Ui[E, M]) track(opName string, kind DeliveryKind, target, origin ID) (func(result string), error) {
	op := u.op
	if op.deliveries >= u.maxDeliv {
		return nil, newError(opName, KindLimit, target, ErrDeliveryLimit)
	}
	op.deliveries++
	info := DeliveryInfo{
		Op:     op.seq,
		Seq:    op.deliveries,
		Kind:   kind,
		Target: target,
		Origin: origin,
	}
	if n := len(op.stack); n > 0 {
		info.Parent = op.stack[n-1]
	}
	op.active[target.index] = struct{}{}
	op.stack = append(op.stack, info.Seq)
	u.observer.OnDeliveryStart(info)
	return func(result string) {
		delete(op.active, target.index)
		op.stack = op.stack[:len(op.stack)-1]
		u.observer.OnDeliveryEnd(info, result)
	}, nil
}

type eventHandler[E, M any] func(ctx context.Context, cap MutCap[E, M], event E) Outcome[E]

// invoke runs one event delivery with the target's widget hooks around it.
// A nil handler treats the event as consumed without running hooks.
func (u *Ui[E, M]) invoke(ctx context.Context, w work[E, M], handle eventHandler[E, M]) (Outcome[E], error) {
	s, err := u.arena.get("gui.deliver", w.target)
	if err != nil {
		return Outcome[E]{}, err
	}
	done, err := u.track("gui.deliver", w.kind, w.target, w.origin)
	if err != nil {
		return Outcome[E]{}, err
	}
	if handle == nil {
		done("consumed")
		return Consumed[E](), nil
	}
	cap := u.newMutCap(w.target)
	hooks := s.hooks
	if hooks.widget() && hooks.Pre != nil {
		if e, ok := hooks.Pre(ctx, cap, w.event); ok {
			u.op.results = append(u.op.results, e)
		}
	}
	outcome := handle(ctx, cap, w.event)
	if hooks.widget() && hooks.Post != nil {
		if e, ok := hooks.Post(ctx, cap, w.event, outcome); ok {
			u.op.results = append(u.op.results, e)
		}
	}
	done(outcome.String())
	return outcome, nil
}

func (u *Ui[E, M]) deliver(ctx context.Context, w work[E, M]) error {
	s, err := u.arena.get("gui.deliver", w.target)
	if err != nil {
		return err
	}
	outcome, err := u.invoke(ctx, w, s.widget.HandleEvent)
	if err != nil {
		return err
	}
	if w.kind == DeliverReturnable {
		return u.sendBack(w, outcome)
	}
	return u.follow(w, outcome)
}

// follow queues the continuation of the chain w belongs to.
func (u *Ui[E, M]) follow(w work[E, M], o Outcome[E]) error {
	switch o.kind {
	case outcomeBubble:
		parent, ok := u.arena.parentOf(w.target)
		if !ok {
			u.op.results = append(u.op.results, o.event)
			if w.primary {
				u.op.unhandled, u.op.hasUnhandled = o.event, true
			}
			return nil
		}
		u.op.pushFront(work[E, M]{kind: DeliverBubble, target: parent, origin: w.target, event: o.event, primary: w.primary})
	case outcomeDirected, outcomeReturnable:
		kind := DeliverDirected
		if o.kind == outcomeReturnable {
			kind = DeliverReturnable
		}
		if _, err := u.arena.get("gui.follow", o.target); err != nil {
			return err
		}
		u.op.pushFront(work[E, M]{kind: kind, target: o.target, origin: w.target, event: o.event, primary: w.primary})
	}
	return nil
}

// sendBack hands a returnable event back to its origin. The origin gets
// what the target bubbled, or the original event otherwise. Anything else
// the target produced runs after the return.
func (u *Ui[E, M]) sendBack(w work[E, M], o Outcome[E]) error {
	back := w.event
	switch o.kind {
	case outcomeBubble:
		back = o.event
	case outcomeDirected, outcomeReturnable:
		if err := u.follow(w, o); err != nil {
			return err
		}
	}
	if _, err := u.arena.get("gui.return", w.origin); err != nil {
		return err
	}
	u.op.pushFront(work[E, M]{kind: DeliverReturn, target: w.origin, origin: w.target, event: back, primary: w.primary})
	return nil
}

func (u *Ui[E, M]) finalize(ctx context.Context, w work[E, M]) error {
	s, err := u.arena.get("gui.return", w.target)
	if err != nil {
		return err
	}
	var handle eventHandler[E, M]
	if f, ok := s.widget.(Finalizer[E, M]); ok {
		handle = f.HandleReturn
	}
	outcome, err := u.invoke(ctx, w, handle)
	if err != nil {
		return err
	}
	return u.follow(w, outcome)
}

// runGlobal runs the ScopeGlobal hooks in registration order.
func (u *Ui[E, M]) runGlobal(ctx context.Context, pre bool, event E) error {
	outcome := Consumed[E]()
	if u.op.hasUnhandled {
		outcome = Bubble(u.op.unhandled)
	}
	for _, id := range slices.Clone(u.global) {
		s := u.arena.lookup(id)
		if s == nil {
			continue
		}
		hooks := s.hooks
		if (pre && hooks.Pre == nil) || (!pre && hooks.Post == nil) {
			continue
		}
		done, err := u.track("gui.hook", DeliverHook, id, ID{})
		if err != nil {
			return err
		}
		cap := u.newMutCap(id)
		var (
			e  E
			ok bool
		)
		if pre {
			e, ok = hooks.Pre(ctx, cap, event)
		} else {
			e, ok = hooks.Post(ctx, cap, event, outcome)
		}
		if ok {
			u.op.results = append(u.op.results, e)
		}
		done("hook")
	}
	return nil
}
