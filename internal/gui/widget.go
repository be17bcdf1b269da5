package gui

import (
	"context"
	"fmt"
	"reflect"
)

// Kind names a widget type. Renderers key their drawing code on it.
type Kind string

// Object is the type-erased view of a widget.
type Object interface {
	ID() ID
}

// Kinded lets a widget choose its own Kind instead of the reflected type name.
type Kinded interface {
	Kind() Kind
}

// Renderable is notified once per rendering pass, after the widget and its
// children were drawn.
type Renderable interface {
	RenderDone(cap Cap, data any)
}

// Handleable is the behaviour a widget exposes to the dispatch and message
// engines.
type Handleable[E, M any] interface {
	HandleEvent(ctx context.Context, cap MutCap[E, M], event E) Outcome[E]
	React(ctx context.Context, cap MutCap[E, M], msg M)
	Respond(ctx context.Context, cap MutCap[E, M], msg M) (M, error)
}

// Widget is everything a Ui needs from a widget.
type Widget[E, M any] interface {
	Object
	Renderable
	Handleable[E, M]
}

// Finalizer receives returnable events coming back from their target.
// Widgets without it treat the return as consumed.
type Finalizer[E, M any] interface {
	HandleReturn(ctx context.Context, cap MutCap[E, M], event E) Outcome[E]
}

// FocusAware widgets are told when they gain or lose focus.
type FocusAware interface {
	FocusChanged(cap Cap, data any, focused bool)
}

// Base provides default behaviour for widgets that embed it: events bubble,
// messages are ignored, calls fail with KindNoResponse.
type Base[E, M any] struct {
	id ID
}

func NewBase[E, M any](id ID) Base[E, M] {
	return Base[E, M]{id: id}
}

func (b Base[E, M]) ID() ID { return b.id }

func (b Base[E, M]) HandleEvent(_ context.Context, _ MutCap[E, M], event E) Outcome[E] {
	return Bubble(event)
}

func (b Base[E, M]) React(context.Context, MutCap[E, M], M) {}

func (b Base[E, M]) Respond(context.Context, MutCap[E, M], M) (M, error) {
	var zero M
	return zero, newError("gui.Respond", KindNoResponse, b.id, ErrNoResponder)
}

func (b Base[E, M]) RenderDone(Cap, any) {}

// KindOf returns obj's Kind: its own when it implements Kinded, otherwise
// "<pkgpath>.<TypeName>".
func KindOf(obj Object) Kind {
	if k, ok := obj.(Kinded); ok {
		return k.Kind()
	}
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return Kind(t.String())
	}
	return Kind(t.PkgPath() + "." + t.Name())
}

// As downcasts a type-erased widget.
func As[T any](obj Object) (T, bool) {
	t, ok := obj.(T)
	return t, ok
}

// DataOf returns the caller's own data as D. It panics when the data has a
// different type, which is a wiring bug.
func DataOf[D any](c interface{ Data() any }) D {
	raw := c.Data()
	d, ok := raw.(D)
	if !ok {
		panic(fmt.Sprintf("gui: widget data is %T, not %s", raw, reflect.TypeFor[D]()))
	}
	return d
}
