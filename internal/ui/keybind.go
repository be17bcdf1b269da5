package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"gui/internal/widgets"
)

// KeybindRegistry maps key sequences to the events they dispatch.
// Sequences use tea key names separated by spaces: "tab", "ctrl+x q".
// Space is written "SPC".
type KeybindRegistry struct {
	bindings     map[string]widgets.Event
	descriptions map[string]string
}

// NewKeybindRegistry creates an empty registry.
func NewKeybindRegistry() *KeybindRegistry {
	return &KeybindRegistry{
		bindings:     make(map[string]widgets.Event),
		descriptions: make(map[string]string),
	}
}

// DefaultKeybinds returns the bindings used by guidemo.
func DefaultKeybinds() *KeybindRegistry {
	r := NewKeybindRegistry()
	r.Bind("tab", widgets.Event{Kind: widgets.EventFocusNext})
	r.Bind("shift+tab", widgets.Event{Kind: widgets.EventFocusPrev})
	r.Bind("ctrl+c", widgets.Quit())
	r.BindWithDesc("ctrl+x q", widgets.Quit(), "Quit")
	r.BindWithDesc("ctrl+x c", widgets.Event{Kind: widgets.EventQuery}, "Report count")
	r.BindWithDesc("ctrl+x n", widgets.Event{Kind: widgets.EventFocusNext}, "Next field")
	r.BindWithDesc("ctrl+x p", widgets.Event{Kind: widgets.EventFocusPrev}, "Previous field")
	r.BindWithDesc("ctrl+x t", widgets.Event{Kind: widgets.EventTrace}, "Toggle trace")
	return r
}

// Bind registers a key sequence to an event.
// Overwrites any existing binding for the sequence.
func (r *KeybindRegistry) Bind(seq string, ev widgets.Event) {
	r.BindWithDesc(seq, ev, "")
}

// BindWithDesc registers a key sequence with a description for the help view.
func (r *KeybindRegistry) BindWithDesc(seq string, ev widgets.Event, desc string) {
	n := normalizeSeq(seq)
	r.bindings[n] = ev
	if desc != "" {
		r.descriptions[n] = desc
	}
}

// Lookup returns the event bound to a key sequence.
func (r *KeybindRegistry) Lookup(seq string) (widgets.Event, bool) {
	ev, ok := r.bindings[normalizeSeq(seq)]
	return ev, ok
}

// HasPrefix returns true if any binding starts with seq and a space (i.e. more keys follow).
func (r *KeybindRegistry) HasPrefix(seq string) bool {
	prefix := normalizeSeq(seq) + " "
	for k := range r.bindings {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// LeaderHints returns the keys that may follow currentSeq, with their
// descriptions. Keys that open a further level are shown as "key…".
func (r *KeybindRegistry) LeaderHints(currentSeq string) map[string]string {
	out := make(map[string]string)
	prefix := normalizeSeq(currentSeq) + " "
	for seq := range r.bindings {
		if !strings.HasPrefix(seq, prefix) {
			continue
		}
		rest := strings.TrimPrefix(seq, prefix)
		k := rest
		if parts := strings.Fields(rest); len(parts) > 0 {
			k = parts[0]
		}
		switch {
		case r.HasPrefix(prefix + k):
			out[k] = k + "…"
		case r.descriptions[seq] != "":
			out[k] = r.descriptions[seq]
		default:
			out[k] = seq
		}
	}
	return out
}

// normalizeSeq converts tea key strings to our canonical format.
// "space" -> "SPC", "ctrl+c" -> "ctrl+c", "j" -> "j".
func normalizeSeq(seq string) string {
	if seq == " " {
		return "SPC"
	}
	parts := strings.Fields(seq)
	for i, p := range parts {
		parts[i] = keyToSeqPart(p)
	}
	return strings.Join(parts, " ")
}

// keyToSeqPart converts a tea key string to our sequence part.
func keyToSeqPart(s string) string {
	if s == " " || s == "space" {
		return "SPC"
	}
	return s
}

// KeyHandler tracks leader state and resolves keys to events.
type KeyHandler struct {
	Registry      *KeybindRegistry
	LeaderKey     string // tea.KeyMsg.String() of the leader
	LeaderWaiting bool   // true when waiting for key after leader
	Buffer        []string
}

// NewKeyHandler creates a handler with ctrl+x as leader. Space stays
// free for typing into inputs.
func NewKeyHandler(reg *KeybindRegistry) *KeyHandler {
	return &KeyHandler{
		Registry:  reg,
		LeaderKey: "ctrl+x",
	}
}

// Handle processes a KeyMsg. If consumed is true the key belongs to the
// keybind system; ok reports whether it completed a binding, in which case
// ev is the event to dispatch.
func (h *KeyHandler) Handle(msg tea.KeyMsg) (ev widgets.Event, ok, consumed bool) {
	s := msg.String()

	if s == "esc" && h.LeaderWaiting {
		h.reset()
		return widgets.Event{}, false, true
	}

	if s == h.LeaderKey && !h.LeaderWaiting {
		h.LeaderWaiting = true
		h.Buffer = []string{h.LeaderKey}
		return widgets.Event{}, false, true
	}

	if h.LeaderWaiting {
		h.Buffer = append(h.Buffer, keyToSeqPart(s))
		seq := strings.Join(h.Buffer, " ")
		if ev, ok := h.Registry.Lookup(seq); ok {
			h.reset()
			return ev, true, true
		}
		// Stay in leader mode if a longer binding exists
		if h.Registry.HasPrefix(seq) {
			return widgets.Event{}, false, true
		}
		h.reset()
		return widgets.Event{}, false, true
	}

	if ev, ok := h.Registry.Lookup(keyToSeqPart(s)); ok {
		return ev, true, true
	}
	return widgets.Event{}, false, false
}

func (h *KeyHandler) reset() {
	h.LeaderWaiting = false
	h.Buffer = nil
}

// KeyMap implements help.KeyMap for the leader hints of a KeyHandler.
type KeyMap struct {
	handler *KeyHandler
}

func NewKeyMap(h *KeyHandler) help.KeyMap {
	return &KeyMap{handler: h}
}

// ShortHelp returns one binding per hint plus esc, sorted by key.
func (km *KeyMap) ShortHelp() []key.Binding {
	if km.handler == nil || km.handler.Registry == nil {
		return nil
	}
	seq := km.handler.LeaderKey
	if len(km.handler.Buffer) > 0 {
		seq = strings.Join(km.handler.Buffer, " ")
	}
	hints := km.handler.Registry.LeaderHints(seq)
	if len(hints) == 0 {
		return nil
	}

	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bindings := make([]key.Binding, 0, len(keys)+1)
	for _, k := range keys {
		bindings = append(bindings, key.NewBinding(
			key.WithKeys(k),
			key.WithHelp(k, hints[k]),
		))
	}
	bindings = append(bindings, key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	))
	return bindings
}

// FullHelp returns a single column with the ShortHelp bindings.
func (km *KeyMap) FullHelp() [][]key.Binding {
	short := km.ShortHelp()
	if len(short) == 0 {
		return nil
	}
	return [][]key.Binding{short}
}
