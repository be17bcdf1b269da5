package gui

import "iter"

// BBox is a rectangle in renderer units.
type BBox struct {
	X, Y, W, H int
}

func (b BBox) Empty() bool { return b.W <= 0 || b.H <= 0 }

// Renderer is a drawing backend driven by Ui.Render.
type Renderer interface {
	RenderableArea() BBox
	PreRender()
	// Render draws obj inside bbox and returns the box left for its
	// children. An empty box skips the children.
	Render(obj Object, cap Cap, bbox BBox) BBox
	RenderDone(obj Object, cap Cap, bbox BBox)
	PostRender()
}

// Render walks the displayed widgets in pre-order, children in creation
// order. After the renderer is done with a widget, the widget's own
// RenderDone runs.
func (u *Ui[E, M]) Render(r Renderer) error {
	if err := u.admin("gui.Render"); err != nil {
		return err
	}
	u.busy = true
	defer func() { u.busy = false }()

	r.PreRender()
	u.render(u.root, r, r.RenderableArea())
	r.PostRender()
	return nil
}

func (u *Ui[E, M]) render(id ID, r Renderer, bbox BBox) {
	s := &u.arena.slots[id.index]
	if s.hidden {
		return
	}
	c := u.Cap()
	inner := r.Render(s.widget, c, bbox)
	if !inner.Empty() {
		for _, child := range s.children {
			u.render(child, r, inner)
		}
	}
	r.RenderDone(s.widget, c, bbox)
	s.widget.RenderDone(c, s.data)
}

// Visible yields the displayed widgets in the order Render visits them.
func (u *Ui[E, M]) Visible() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		u.visit(u.root, yield)
	}
}

func (u *Ui[E, M]) visit(id ID, yield func(ID) bool) bool {
	s := u.arena.lookup(id)
	if s == nil || s.hidden {
		return true
	}
	if !yield(id) {
		return false
	}
	for _, child := range s.children {
		if !u.visit(child, yield) {
			return false
		}
	}
	return true
}

// RenderDone notifies id that a backend finished drawing it. Backends that
// walk Visible instead of using Render call it.
func (u *Ui[E, M]) RenderDone(id ID) error {
	const op = "gui.RenderDone"
	if err := u.admin(op); err != nil {
		return err
	}
	s, err := u.arena.get(op, id)
	if err != nil {
		return err
	}
	s.widget.RenderDone(u.Cap(), s.data)
	return nil
}
