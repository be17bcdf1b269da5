package gui

import "context"

// HookScope selects which deliveries a hook observes.
type HookScope int

const (
	// ScopeWidget hooks run around every delivery to their own widget.
	ScopeWidget HookScope = iota
	// ScopeGlobal hooks see every top-level event: Pre before the walk
	// starts, Post once after the queue drained.
	ScopeGlobal
)

func (s HookScope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "widget"
}

// PreHook runs before the handler. Returning true emits an extra event.
type PreHook[E, M any] func(ctx context.Context, cap MutCap[E, M], event E) (E, bool)

// PostHook runs after the handler with its outcome. For global hooks the
// outcome is Consumed, or Bubble with the unhandled event of the top-level
// chain.
type PostHook[E, M any] func(ctx context.Context, cap MutCap[E, M], event E, outcome Outcome[E]) (E, bool)

// Hooks attached to a widget. Emitted events join the dispatch result and
// are merged with it; they never run ahead of the triggering delivery.
type Hooks[E, M any] struct {
	Pre   PreHook[E, M]
	Post  PostHook[E, M]
	Scope HookScope
}

func (h Hooks[E, M]) empty() bool { return h.Pre == nil && h.Post == nil }

func (h Hooks[E, M]) widget() bool { return h.Scope == ScopeWidget && !h.empty() }

func (h Hooks[E, M]) global() bool { return h.Scope == ScopeGlobal && !h.empty() }
