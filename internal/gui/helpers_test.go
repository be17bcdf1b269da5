package gui

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Name string
	N    int
}

type testMsg struct {
	Op string
	N  int
}

type probeData struct {
	Count    int
	Rendered int
	Focused  bool
}

func newProbeData() any { return &probeData{} }

type handlerFunc func(ctx context.Context, cap MutCap[testEvent, testMsg], e testEvent) Outcome[testEvent]

// probe records every delivery into the fixture log.
type probe struct {
	Base[testEvent, testMsg]
	name      string
	log       *[]string
	onEvent   handlerFunc
	onReact   func(ctx context.Context, cap MutCap[testEvent, testMsg], m testMsg)
	onRespond func(ctx context.Context, cap MutCap[testEvent, testMsg], m testMsg) (testMsg, error)
}

func (p *probe) HandleEvent(ctx context.Context, cap MutCap[testEvent, testMsg], e testEvent) Outcome[testEvent] {
	*p.log = append(*p.log, p.name+":"+e.Name)
	if p.onEvent != nil {
		return p.onEvent(ctx, cap, e)
	}
	return Bubble(e)
}

func (p *probe) React(ctx context.Context, cap MutCap[testEvent, testMsg], m testMsg) {
	*p.log = append(*p.log, fmt.Sprintf("%s<-%s", p.name, m.Op))
	if p.onReact != nil {
		p.onReact(ctx, cap, m)
	}
}

func (p *probe) Respond(ctx context.Context, cap MutCap[testEvent, testMsg], m testMsg) (testMsg, error) {
	*p.log = append(*p.log, fmt.Sprintf("%s?%s", p.name, m.Op))
	if p.onRespond != nil {
		return p.onRespond(ctx, cap, m)
	}
	return p.Base.Respond(ctx, cap, m)
}

func (p *probe) RenderDone(_ Cap, data any) {
	data.(*probeData).Rendered++
	*p.log = append(*p.log, p.name+":done")
}

func (p *probe) FocusChanged(_ Cap, data any, focused bool) {
	data.(*probeData).Focused = focused
}

// finalProbe also receives returned events.
type finalProbe struct {
	*probe
	onReturn handlerFunc
}

func (p *finalProbe) HandleReturn(ctx context.Context, cap MutCap[testEvent, testMsg], e testEvent) Outcome[testEvent] {
	*p.log = append(*p.log, p.name+":return:"+e.Name)
	if p.onReturn != nil {
		return p.onReturn(ctx, cap, e)
	}
	return Consumed[testEvent]()
}

type fixture struct {
	t      *testing.T
	ui     *Ui[testEvent, testMsg]
	log    []string
	probes map[string]*probe
	finals map[string]*finalProbe
	ids    map[string]ID
}

// newFixture builds a Ui whose root probe is named "R".
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		probes: make(map[string]*probe),
		finals: make(map[string]*finalProbe),
		ids:    make(map[string]ID),
	}
	ui, root, err := New(newProbeData, f.factory("R", false), opts...)
	require.NoError(t, err)
	f.ui = ui
	f.ids["R"] = root
	return f
}

func (f *fixture) factory(name string, final bool) WidgetFunc[testEvent, testMsg] {
	return func(id ID, _ BuildCap[testEvent, testMsg]) (Widget[testEvent, testMsg], error) {
		p := &probe{Base: NewBase[testEvent, testMsg](id), name: name, log: &f.log}
		f.probes[name] = p
		if final {
			fp := &finalProbe{probe: p}
			f.finals[name] = fp
			return fp, nil
		}
		return p, nil
	}
}

func (f *fixture) add(parent, name string) ID {
	f.t.Helper()
	id, err := f.ui.Add(f.ids[parent], newProbeData, f.factory(name, false))
	require.NoError(f.t, err)
	f.ids[name] = id
	return id
}

func (f *fixture) addFinal(parent, name string) ID {
	f.t.Helper()
	id, err := f.ui.Add(f.ids[parent], newProbeData, f.factory(name, true))
	require.NoError(f.t, err)
	f.ids[name] = id
	return id
}

func (f *fixture) data(name string) *probeData {
	f.t.Helper()
	d, err := f.ui.Cap().WidgetData(f.ids[name])
	require.NoError(f.t, err)
	return d.(*probeData)
}

func (f *fixture) reset() { f.log = nil }

func consume(context.Context, MutCap[testEvent, testMsg], testEvent) Outcome[testEvent] {
	return Consumed[testEvent]()
}

func ev(name string) testEvent { return testEvent{Name: name} }
