package gui

import (
	"log/slog"
	"slices"

	"github.com/pkg/errors"
)

// DefaultMaxDeliveries bounds the handler invocations of one operation.
const DefaultMaxDeliveries = 4096

// DataFunc produces a widget's data. It runs exactly once per widget.
type DataFunc func() any

// WidgetFunc builds a widget for the slot id. It runs exactly once.
type WidgetFunc[E, M any] func(id ID, cap BuildCap[E, M]) (Widget[E, M], error)

type config struct {
	logger        *slog.Logger
	observers     []Observer
	maxDeliveries int
	merge         any
}

// Option configures a Ui.
type Option func(*config)

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithObserver adds observers for dispatch and message callbacks.
func WithObserver(obs ...Observer) Option {
	return func(c *config) { c.observers = append(c.observers, obs...) }
}

// WithMaxDeliveries sets the per-operation delivery budget.
func WithMaxDeliveries(n int) Option {
	return func(c *config) { c.maxDeliveries = n }
}

// WithMerge sets how unhandled events of one dispatch are combined. It takes
// precedence over E implementing Mergeable.
func WithMerge[E any](fn func(earlier, later E) E) Option {
	return func(c *config) { c.merge = fn }
}

// Ui owns a widget tree and runs dispatch and message operations on it.
//
// A Ui is not safe for concurrent use. Operations run to completion on the
// calling goroutine, and handlers run synchronously inside them.
type Ui[E, M any] struct {
	arena    arena[E, M]
	root     ID
	focused  ID
	global   []ID
	logger   *slog.Logger
	observer Observer
	merge    func(earlier, later E) E
	maxDeliv int

	busy   bool
	closed bool
	opSeq  uint64
	op     *operation[E, M]
}

// New creates a Ui whose root widget is built from newData and newRoot.
func New[E, M any](newData DataFunc, newRoot WidgetFunc[E, M], opts ...Option) (*Ui[E, M], ID, error) {
	cfg := config{logger: slog.Default(), maxDeliveries: DefaultMaxDeliveries}
	for _, opt := range opts {
		opt(&cfg)
	}
	u := &Ui[E, M]{
		arena:    newArena[E, M](),
		logger:   cfg.logger,
		observer: nopObserver{},
		maxDeliv: cfg.maxDeliveries,
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	if u.maxDeliv <= 0 {
		u.maxDeliv = DefaultMaxDeliveries
	}
	switch len(cfg.observers) {
	case 0:
	case 1:
		u.observer = cfg.observers[0]
	default:
		m := NewMultiObserver(cfg.observers...)
		m.logger = u.logger
		u.observer = m
	}
	if cfg.merge != nil {
		fn, ok := cfg.merge.(func(E, E) E)
		if !ok {
			return nil, ID{}, newError("gui.New", KindInvalid, ID{}, errors.Errorf("merge function %T does not match the event type", cfg.merge))
		}
		u.merge = fn
	}
	root, err := u.add("gui.New", -1, newData, newRoot)
	if err != nil {
		return nil, ID{}, err
	}
	u.root = root
	return u, root, nil
}

// Root returns the id of the root widget.
func (u *Ui[E, M]) Root() ID { return u.root }

// Focused returns the focused widget.
func (u *Ui[E, M]) Focused() (ID, bool) { return u.focused, !u.focused.IsZero() }

// Len returns the number of live widgets.
func (u *Ui[E, M]) Len() int { return u.arena.live }

// Cap returns a read-only view of the tree.
func (u *Ui[E, M]) Cap() Cap { return capView[E, M]{treeView[E, M]{u: u}} }

// Logger returns the Ui's logger.
func (u *Ui[E, M]) Logger() *slog.Logger { return u.logger }

// admin guards the structural operations.
func (u *Ui[E, M]) admin(op string) error {
	if u.closed {
		return newError(op, KindClosed, ID{}, ErrClosed)
	}
	if u.busy {
		return newError(op, KindCapability, ID{}, ErrInFlight)
	}
	return nil
}

// Add creates a widget as the last child of parent.
func (u *Ui[E, M]) Add(parent ID, newData DataFunc, newWidget WidgetFunc[E, M]) (ID, error) {
	const op = "gui.Add"
	if err := u.admin(op); err != nil {
		return ID{}, err
	}
	if _, err := u.arena.get(op, parent); err != nil {
		return ID{}, err
	}
	return u.add(op, int32(parent.index), newData, newWidget)
}

func (u *Ui[E, M]) add(op string, parent int32, newData DataFunc, newWidget WidgetFunc[E, M]) (ID, error) {
	if newWidget == nil {
		return ID{}, newError(op, KindBuild, ID{}, ErrNilWidget)
	}
	u.busy = true
	defer func() { u.busy = false }()

	id := u.arena.alloc(parent)
	w, hooks, err := u.build(op, id, newData, newWidget)
	if err != nil {
		u.arena.release(id.index)
		u.logger.Debug("widget build failed", "id", id, "error", err)
		return ID{}, err
	}
	s := &u.arena.slots[id.index]
	s.widget = w
	s.kind = KindOf(w)
	s.hooks = hooks
	u.arena.commit(id)
	if parent >= 0 {
		p := &u.arena.slots[parent]
		p.children = append(p.children, id)
	}
	if hooks.global() {
		u.global = append(u.global, id)
	}
	u.logger.Debug("widget added", "id", id, "kind", s.kind)
	return id, nil
}

func (u *Ui[E, M]) build(op string, id ID, newData DataFunc, newWidget WidgetFunc[E, M]) (w Widget[E, M], hooks Hooks[E, M], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(op, KindBuild, id, errors.Errorf("factory panicked: %v", r))
		}
	}()
	if newData != nil {
		u.arena.slots[id.index].data = newData()
	}
	bc := &buildCap[E, M]{treeView: treeView[E, M]{u: u}, self: id}
	defer func() { bc.done = true }()
	w, err = newWidget(id, bc)
	if err != nil {
		return nil, Hooks[E, M]{}, newError(op, KindBuild, id, err)
	}
	if w == nil {
		return nil, Hooks[E, M]{}, newError(op, KindBuild, id, ErrNilWidget)
	}
	if got := w.ID(); got != id {
		return nil, Hooks[E, M]{}, newError(op, KindBuild, id, errors.Errorf("widget reports id %s", got))
	}
	return w, bc.hooks, nil
}

// Remove deletes id and its whole subtree. Their ids become stale.
func (u *Ui[E, M]) Remove(id ID) error {
	const op = "gui.Remove"
	if err := u.admin(op); err != nil {
		return err
	}
	s, err := u.arena.get(op, id)
	if err != nil {
		return err
	}
	if s.parent < 0 {
		return newError(op, KindInvalid, id, ErrRemoveRoot)
	}
	p := &u.arena.slots[s.parent]
	p.children = slices.DeleteFunc(p.children, func(c ID) bool { return c == id })

	n := u.drop(id)
	u.logger.Debug("widgets removed", "id", id, "count", n)
	return nil
}

func (u *Ui[E, M]) drop(id ID) int {
	n := 1
	for _, c := range u.arena.slots[id.index].children {
		n += u.drop(c)
	}
	if u.focused == id {
		u.focused = ID{}
	}
	u.global = slices.DeleteFunc(u.global, func(g ID) bool { return g == id })
	u.arena.release(id.index)
	return n
}

// Focus makes id the focused widget. Focus implies visibility, so id and
// its ancestors are shown.
func (u *Ui[E, M]) Focus(id ID) error {
	const op = "gui.Focus"
	if err := u.admin(op); err != nil {
		return err
	}
	if _, err := u.arena.get(op, id); err != nil {
		return err
	}
	u.show(id)
	if u.focused == id {
		return nil
	}
	prev := u.focused
	u.focused = id
	u.notifyFocus(prev, false)
	u.notifyFocus(id, true)
	return nil
}

// Blur clears the focus.
func (u *Ui[E, M]) Blur() error {
	if err := u.admin("gui.Blur"); err != nil {
		return err
	}
	u.blur()
	return nil
}

func (u *Ui[E, M]) blur() {
	prev := u.focused
	u.focused = ID{}
	u.notifyFocus(prev, false)
}

func (u *Ui[E, M]) notifyFocus(id ID, focused bool) {
	s := u.arena.lookup(id)
	if s == nil {
		return
	}
	if fa, ok := s.widget.(FocusAware); ok {
		fa.FocusChanged(u.Cap(), s.data, focused)
	}
}

// Show makes id and its ancestors visible.
func (u *Ui[E, M]) Show(id ID) error {
	const op = "gui.Show"
	if err := u.admin(op); err != nil {
		return err
	}
	if _, err := u.arena.get(op, id); err != nil {
		return err
	}
	u.show(id)
	return nil
}

func (u *Ui[E, M]) show(id ID) {
	for s := u.arena.lookup(id); s != nil; {
		s.hidden = false
		if s.parent < 0 {
			return
		}
		s = &u.arena.slots[s.parent]
	}
}

// Hide hides id. If that leaves the focused widget undisplayed, focus is
// cleared.
func (u *Ui[E, M]) Hide(id ID) error {
	const op = "gui.Hide"
	if err := u.admin(op); err != nil {
		return err
	}
	s, err := u.arena.get(op, id)
	if err != nil {
		return err
	}
	s.hidden = true
	if !u.focused.IsZero() && !u.Cap().IsDisplayed(u.focused) {
		u.blur()
	}
	return nil
}

// SetHooks replaces id's hooks and returns the previous ones.
func (u *Ui[E, M]) SetHooks(id ID, hooks Hooks[E, M]) (Hooks[E, M], error) {
	const op = "gui.SetHooks"
	if err := u.admin(op); err != nil {
		return Hooks[E, M]{}, err
	}
	s, err := u.arena.get(op, id)
	if err != nil {
		return Hooks[E, M]{}, err
	}
	prev := s.hooks
	s.hooks = hooks
	u.global = slices.DeleteFunc(u.global, func(g ID) bool { return g == id })
	if hooks.global() {
		u.global = append(u.global, id)
	}
	return prev, nil
}

// Close marks the Ui closed. Later operations fail with KindClosed.
func (u *Ui[E, M]) Close() error {
	if u.busy {
		return newError("gui.Close", KindCapability, ID{}, ErrInFlight)
	}
	u.closed = true
	return nil
}
