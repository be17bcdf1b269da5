package gui

import (
	"context"
	"log/slog"
	"slices"
)

// TreeCap answers questions about the tree's shape, focus and visibility.
// It never exposes widget data.
type TreeCap interface {
	Root() ID
	Parent(id ID) (ID, bool, error)
	Children(id ID) ([]ID, error)
	Widget(id ID) (Object, error)
	Kind(id ID) (Kind, error)
	Focused() (ID, bool)
	IsFocused(id ID) bool
	// IsVisible reports the widget's own visibility flag.
	IsVisible(id ID) bool
	// IsDisplayed reports whether the widget and all its ancestors are visible.
	IsDisplayed(id ID) bool
}

// Cap is read-only access to the tree and every widget's data. Renderers
// and focus code get it from Ui.Cap; handlers never do.
type Cap interface {
	TreeCap
	// WidgetData returns id's data. Callers must not mutate it.
	WidgetData(id ID) (any, error)
}

// MutCap is handed to a widget for the duration of one delivery. It grants
// mutable access to the widget's own data and lets it talk to others, but
// offers no structural operations and no access to other widgets' data.
type MutCap[E, M any] interface {
	TreeCap
	Self() ID
	// Data returns the widget's own data, or nil once the operation that
	// issued the capability has ended.
	Data() any
	// Send queues msg for to. It never runs the target's handler.
	Send(to ID, msg M) error
	// Call runs to's Respond now and returns its response.
	Call(ctx context.Context, to ID, msg M) (M, error)
	// Post queues event as a directed event for to, after the current chain.
	Post(to ID, event E) error
	Logger() *slog.Logger
}

// BuildCap is handed to a widget factory. It is only valid while the
// factory runs.
type BuildCap[E, M any] interface {
	TreeCap
	Self() ID
	// Data returns the data of the widget being built, or nil once the
	// factory has returned.
	Data() any
	// Hook installs hooks on the widget being built. It panics with an
	// ErrExpired error once the factory has returned.
	Hook(hooks Hooks[E, M])
}

// treeView implements TreeCap. capView adds data access on top of it.
type treeView[E, M any] struct {
	u *Ui[E, M]
}

type capView[E, M any] struct {
	treeView[E, M]
}

func (c treeView[E, M]) Root() ID { return c.u.root }

func (c treeView[E, M]) Parent(id ID) (ID, bool, error) {
	if _, err := c.u.arena.get("gui.Parent", id); err != nil {
		return ID{}, false, err
	}
	p, ok := c.u.arena.parentOf(id)
	return p, ok, nil
}

func (c treeView[E, M]) Children(id ID) ([]ID, error) {
	s, err := c.u.arena.get("gui.Children", id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.children), nil
}

func (c treeView[E, M]) Widget(id ID) (Object, error) {
	s, err := c.u.arena.get("gui.Widget", id)
	if err != nil {
		return nil, err
	}
	return s.widget, nil
}

func (c treeView[E, M]) Kind(id ID) (Kind, error) {
	s, err := c.u.arena.get("gui.Kind", id)
	if err != nil {
		return "", err
	}
	return s.kind, nil
}

func (c capView[E, M]) WidgetData(id ID) (any, error) {
	s, err := c.u.arena.get("gui.WidgetData", id)
	if err != nil {
		return nil, err
	}
	return s.data, nil
}

func (c treeView[E, M]) Focused() (ID, bool) {
	return c.u.focused, !c.u.focused.IsZero()
}

func (c treeView[E, M]) IsFocused(id ID) bool {
	return !id.IsZero() && c.u.focused == id
}

func (c treeView[E, M]) IsVisible(id ID) bool {
	s := c.u.arena.lookup(id)
	return s != nil && !s.hidden
}

func (c treeView[E, M]) IsDisplayed(id ID) bool {
	s := c.u.arena.lookup(id)
	for s != nil {
		if s.hidden {
			return false
		}
		if s.parent < 0 {
			return true
		}
		s = &c.u.arena.slots[s.parent]
	}
	return false
}

// mutCap is bound to one operation. Once that operation ends, Data returns
// nil and every method that would touch the queue fails with KindCapability.
type mutCap[E, M any] struct {
	treeView[E, M]
	self ID
	op   uint64
}

func (u *Ui[E, M]) newMutCap(self ID) *mutCap[E, M] {
	return &mutCap[E, M]{treeView: treeView[E, M]{u: u}, self: self, op: u.op.seq}
}

func (c *mutCap[E, M]) Self() ID { return c.self }

func (c *mutCap[E, M]) Data() any {
	if c.check("gui.Data") != nil {
		return nil
	}
	if s := c.u.arena.lookup(c.self); s != nil {
		return s.data
	}
	return nil
}

func (c *mutCap[E, M]) Logger() *slog.Logger {
	return c.u.logger.With("widget", c.self.String())
}

func (c *mutCap[E, M]) check(op string) error {
	if c.u.op == nil || c.u.op.seq != c.op {
		return newError(op, KindCapability, c.self, ErrExpired)
	}
	return nil
}

// buildCap is valid until its factory returns. done is set by build.
type buildCap[E, M any] struct {
	treeView[E, M]
	self  ID
	hooks Hooks[E, M]
	done  bool
}

func (c *buildCap[E, M]) Self() ID { return c.self }

// building returns the slot under construction while the factory runs.
func (c *buildCap[E, M]) building() *slot[E, M] {
	if c.done || int(c.self.index) >= len(c.u.arena.slots) {
		return nil
	}
	s := &c.u.arena.slots[c.self.index]
	if s.state != slotBuilding || s.gen != c.self.gen {
		return nil
	}
	return s
}

func (c *buildCap[E, M]) Data() any {
	if s := c.building(); s != nil {
		return s.data
	}
	return nil
}

func (c *buildCap[E, M]) Hook(hooks Hooks[E, M]) {
	if c.building() == nil {
		panic(newError("gui.Hook", KindCapability, c.self, ErrExpired))
	}
	c.hooks = hooks
}
