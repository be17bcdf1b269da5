package ui

import (
	"slices"

	"gui/internal/gui"
	"gui/internal/widgets"
)

// FocusManager tracks and rotates focus across the focusable widgets of
// a tree. Order is rebuilt from the tree, so hidden or removed widgets
// drop out of the ring.
type FocusManager struct {
	Current  gui.ID   // currently focused widget
	Order    []gui.ID // tab order, pre-order of the displayed tree
	OnChange func(from, to gui.ID)
}

// Rebuild collects the displayed widgets that report Focusable, in
// pre-order starting at the root. Current is cleared when it left the ring.
func (f *FocusManager) Rebuild(cap gui.Cap) {
	f.Order = f.Order[:0]
	f.collect(cap, cap.Root())
	if !slices.Contains(f.Order, f.Current) {
		f.Current = gui.ID{}
	}
}

func (f *FocusManager) collect(cap gui.Cap, id gui.ID) {
	if !cap.IsVisible(id) {
		return
	}
	if obj, err := cap.Widget(id); err == nil {
		if fw, ok := obj.(widgets.Focusable); ok && fw.Focusable() {
			f.Order = append(f.Order, id)
		}
	}
	children, err := cap.Children(id)
	if err != nil {
		return
	}
	for _, c := range children {
		f.collect(cap, c)
	}
}

// Next advances focus to the next widget in order.
// Returns the new current focus ID.
func (f *FocusManager) Next() gui.ID {
	return f.step(1)
}

// Prev moves focus to the previous widget in order.
func (f *FocusManager) Prev() gui.ID {
	return f.step(-1)
}

func (f *FocusManager) step(delta int) gui.ID {
	if len(f.Order) == 0 {
		return gui.ID{}
	}
	idx := slices.Index(f.Order, f.Current)
	var next int
	switch {
	case idx < 0 && delta < 0:
		next = len(f.Order) - 1
	case idx < 0:
		next = 0
	default:
		next = (idx + delta + len(f.Order)) % len(f.Order)
	}
	f.set(f.Order[next])
	return f.Current
}

// SetFocus sets focus to the given widget.
// Returns true if the ID exists in order.
func (f *FocusManager) SetFocus(id gui.ID) bool {
	if !slices.Contains(f.Order, id) {
		return false
	}
	f.set(id)
	return true
}

func (f *FocusManager) set(id gui.ID) {
	from := f.Current
	f.Current = id
	if f.OnChange != nil && from != id {
		f.OnChange(from, id)
	}
}
