package gui

import (
	"strconv"
	"sync/atomic"
)

var uiSeq atomic.Uint32

// ID addresses a widget in one Ui. The zero ID never refers to a widget.
//
// An ID stays valid until its widget is removed. Slots are reused, but each
// reuse bumps the slot generation, so an old ID can never reach the new
// occupant.
type ID struct {
	ui    uint32
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool { return id.gen == 0 }

func (id ID) String() string {
	if id.IsZero() {
		return "none"
	}
	return strconv.FormatUint(uint64(id.index), 10) + "." + strconv.FormatUint(uint64(id.gen), 10)
}

type slotState uint8

const (
	slotFree slotState = iota
	slotBuilding
	slotLive
)

type slot[E, M any] struct {
	state    slotState
	gen      uint32
	parent   int32 // -1 for the root
	children []ID
	widget   Widget[E, M]
	kind     Kind
	data     any
	hooks    Hooks[E, M]
	hidden   bool
}

// arena owns every widget and its data. Index and generation together form
// the ID handed out to callers.
type arena[E, M any] struct {
	ui    uint32
	slots []slot[E, M]
	free  []uint32
	live  int
}

func newArena[E, M any]() arena[E, M] {
	return arena[E, M]{ui: uiSeq.Add(1)}
}

// alloc reserves a slot in the building state. It is not reachable through
// get until commit.
func (a *arena[E, M]) alloc(parent int32) ID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[E, M]{})
	}
	s := &a.slots[idx]
	s.gen++
	s.state = slotBuilding
	s.parent = parent
	return ID{ui: a.ui, index: idx, gen: s.gen}
}

func (a *arena[E, M]) commit(id ID) {
	a.slots[id.index].state = slotLive
	a.live++
}

// release frees the slot. The generation is kept so the next alloc bumps it.
func (a *arena[E, M]) release(idx uint32) {
	s := &a.slots[idx]
	if s.state == slotLive {
		a.live--
	}
	*s = slot[E, M]{gen: s.gen, parent: -1}
	a.free = append(a.free, idx)
}

// lookup returns the live slot for id, or nil.
func (a *arena[E, M]) lookup(id ID) *slot[E, M] {
	if id.IsZero() || id.ui != a.ui || int(id.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.index]
	if s.state != slotLive || s.gen != id.gen {
		return nil
	}
	return s
}

// get is lookup with a typed error for op.
func (a *arena[E, M]) get(op string, id ID) (*slot[E, M], error) {
	if s := a.lookup(id); s != nil {
		return s, nil
	}
	if !id.IsZero() && id.ui != a.ui {
		return nil, newError(op, KindStaleID, id, ErrForeignID)
	}
	return nil, newError(op, KindStaleID, id, ErrStaleID)
}

// idAt returns the current ID of the slot at idx.
func (a *arena[E, M]) idAt(idx int32) ID {
	return ID{ui: a.ui, index: uint32(idx), gen: a.slots[idx].gen}
}

func (a *arena[E, M]) parentOf(id ID) (ID, bool) {
	p := a.slots[id.index].parent
	if p < 0 {
		return ID{}, false
	}
	return a.idAt(p), true
}
