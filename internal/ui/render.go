package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gui/internal/gui"
	"gui/internal/widgets"
)

// DrawFunc renders one widget as lines of text. width is the space left
// at the widget's indentation.
type DrawFunc func(cap gui.Cap, id gui.ID, data any, width int) []string

type drawer struct {
	draw      DrawFunc
	container bool
}

// TextRenderer is a gui.Renderer that lays widgets out as indented lines.
// Containers indent their children by two columns; leaves get no inner box,
// so their children are skipped.
type TextRenderer struct {
	Width  int
	Height int

	drawers map[gui.Kind]drawer
	lines   []string
}

var _ gui.Renderer = (*TextRenderer)(nil)

// NewTextRenderer creates a renderer with drawers for the widgets package.
func NewTextRenderer() *TextRenderer {
	r := &TextRenderer{drawers: make(map[gui.Kind]drawer)}
	r.Register(widgets.KindWindow, drawWindow, true)
	r.Register(widgets.KindLabel, drawLabel, false)
	r.Register(widgets.KindCounter, drawCounter, false)
	r.Register(widgets.KindInput, drawInput, false)
	return r
}

// Register sets the drawer for a widget kind, replacing any previous one.
func (r *TextRenderer) Register(kind gui.Kind, fn DrawFunc, container bool) {
	r.drawers[kind] = drawer{draw: fn, container: container}
}

func (r *TextRenderer) RenderableArea() gui.BBox {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return gui.BBox{W: w, H: h}
}

func (r *TextRenderer) PreRender() { r.lines = r.lines[:0] }

func (r *TextRenderer) Render(obj gui.Object, cap gui.Cap, bbox gui.BBox) gui.BBox {
	id := obj.ID()
	kind, err := cap.Kind(id)
	if err != nil {
		return gui.BBox{}
	}
	data, _ := cap.WidgetData(id)
	d, ok := r.drawers[kind]
	if !ok {
		d = drawer{draw: drawUnknown(kind)}
	}

	limit := bbox.Y + bbox.H
	indent := strings.Repeat(" ", max(bbox.X, 0))
	for _, line := range d.draw(cap, id, data, bbox.W) {
		if len(r.lines) >= limit {
			break
		}
		r.lines = append(r.lines, indent+line)
	}
	if !d.container {
		return gui.BBox{}
	}
	return gui.BBox{
		X: bbox.X + 2,
		Y: len(r.lines),
		W: bbox.W - 2,
		H: limit - len(r.lines),
	}
}

func (r *TextRenderer) RenderDone(gui.Object, gui.Cap, gui.BBox) {}

func (r *TextRenderer) PostRender() {}

// Lines returns the output of the last render.
func (r *TextRenderer) Lines() []string { return r.lines }

// View returns the last render framed by the standard box.
func (r *TextRenderer) View() string {
	box := Styles.Box
	if r.Width > 4 {
		box = box.Width(r.Width - 2)
	}
	return box.Render(strings.Join(r.lines, "\n"))
}

func drawWindow(_ gui.Cap, _ gui.ID, data any, _ int) []string {
	d, ok := data.(*widgets.WindowData)
	if !ok {
		return nil
	}
	return []string{
		Styles.Title.Render(d.Title) + "  " + Styles.Muted.Render("keys "+strconv.Itoa(d.Keys)),
		"",
	}
}

func drawLabel(_ gui.Cap, _ gui.ID, data any, _ int) []string {
	d, ok := data.(*widgets.LabelData)
	if !ok {
		return nil
	}
	return []string{Styles.Status.Render(d.Text), ""}
}

func drawCounter(cap gui.Cap, id gui.ID, data any, _ int) []string {
	d, ok := data.(*widgets.CounterData)
	if !ok {
		return nil
	}
	text := d.Name + ": " + strconv.Itoa(d.Value)
	if cap.IsFocused(id) {
		return []string{Styles.Focused.Render("▸ " + text + "  (+/-)")}
	}
	return []string{Styles.Normal.Render("  " + text)}
}

func drawInput(cap gui.Cap, id gui.ID, data any, width int) []string {
	d, ok := data.(*widgets.InputData)
	if !ok {
		return nil
	}
	text := Styles.Normal.Render(d.Text)
	if d.Text == "" {
		text = Styles.Empty.Render(d.Placeholder)
	}
	if !cap.IsFocused(id) {
		return []string{"  " + text}
	}
	line := Styles.Focused.Render("▸ ") + text + Styles.Focused.Render("_")
	if d.JustFocused {
		line += " " + Styles.Muted.Render("enter to submit")
	}
	if width > 0 && lipgloss.Width(line) > width {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return []string{line}
}

func drawUnknown(kind gui.Kind) DrawFunc {
	return func(gui.Cap, gui.ID, any, int) []string {
		return []string{Styles.Muted.Render("[" + string(kind) + "]")}
	}
}
