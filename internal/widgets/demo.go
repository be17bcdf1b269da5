package widgets

import (
	"github.com/pkg/errors"

	"gui/internal/gui"
)

// Demo is the widget tree shown by cmd/guidemo.
type Demo struct {
	UI      *Ui
	Root    gui.ID
	Status  gui.ID
	Counter gui.ID
	Inputs  []gui.ID
}

// NewDemo builds a window holding a status label, two inputs and a counter.
func NewDemo(opts ...gui.Option) (*Demo, error) {
	newData, newWindow := NewWindow("gui demo")
	ui, root, err := gui.New(newData, newWindow, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create ui")
	}
	d := &Demo{UI: ui, Root: root}

	add := func(newData gui.DataFunc, newWidget gui.WidgetFunc[Event, Message]) gui.ID {
		if err != nil {
			return gui.ID{}
		}
		var id gui.ID
		id, err = ui.Add(root, newData, newWidget)
		return id
	}
	d.Status = add(NewLabel("tab to move, enter to submit, ctrl+x for commands"))
	d.Inputs = append(d.Inputs, add(NewInput("name")))
	d.Counter = add(NewCounter("submissions"))
	d.Inputs = append(d.Inputs, add(NewInput("note")))
	if err != nil {
		return nil, errors.Wrap(err, "build demo tree")
	}

	raw, err := ui.Cap().WidgetData(root)
	if err != nil {
		return nil, err
	}
	wd := raw.(*WindowData)
	wd.Status = d.Status
	wd.Counter = d.Counter
	return d, nil
}
