package trace

import (
	"strconv"
	"time"

	"gui/internal/gui"
)

// Span attribute keys written by Recorder.
const (
	AttrKind   = "kind"
	AttrTarget = "target"
	AttrOrigin = "origin"
	AttrResult = "result"
	AttrError  = "error"
	AttrSeq    = "seq"
)

// Recorder turns gui.Observer callbacks into trace events for a Manager.
// Like the Ui it observes, it is not safe for concurrent use.
type Recorder struct {
	manager *Manager
	now     func() time.Time

	traceID string
	rootID  string
	spans   map[int]string // delivery seq -> span ID
}

var _ gui.Observer = (*Recorder)(nil)

func NewRecorder(m *Manager) *Recorder {
	return &Recorder{manager: m, now: time.Now, spans: make(map[int]string)}
}

func (r *Recorder) OnOperationStart(op gui.OperationInfo) {
	r.traceID = NewTraceID()
	r.rootID = NewSpanID()
	clear(r.spans)
	r.manager.HandleEvent(TraceEvent{
		TraceID:   r.traceID,
		SpanID:    r.rootID,
		Type:      EventOperationStart,
		Name:      op.Name,
		Timestamp: r.now(),
		Attributes: map[string]string{
			AttrSeq:    strconv.FormatUint(op.Seq, 10),
			AttrTarget: op.Target.String(),
		},
	})
}

func (r *Recorder) OnDeliveryStart(d gui.DeliveryInfo) {
	span := NewSpanID()
	r.spans[d.Seq] = span
	parent := r.rootID
	if p, ok := r.spans[d.Parent]; ok && d.Parent != 0 {
		parent = p
	}
	attrs := map[string]string{
		AttrKind:   d.Kind.String(),
		AttrTarget: d.Target.String(),
	}
	if !d.Origin.IsZero() {
		attrs[AttrOrigin] = d.Origin.String()
	}
	r.manager.HandleEvent(TraceEvent{
		TraceID:    r.traceID,
		SpanID:     span,
		ParentID:   parent,
		Type:       EventDeliveryStart,
		Name:       d.Kind.String() + " " + d.Target.String(),
		Timestamp:  r.now(),
		Attributes: attrs,
	})
}

func (r *Recorder) OnDeliveryEnd(d gui.DeliveryInfo, result string) {
	span, ok := r.spans[d.Seq]
	if !ok {
		return
	}
	r.manager.HandleEvent(TraceEvent{
		TraceID:    r.traceID,
		SpanID:     span,
		Type:       EventDeliveryEnd,
		Timestamp:  r.now(),
		Attributes: map[string]string{AttrResult: result},
	})
}

func (r *Recorder) OnOperationEnd(op gui.OperationInfo, err error) {
	attrs := map[string]string{}
	if err != nil {
		attrs[AttrError] = err.Error()
	}
	r.manager.HandleEvent(TraceEvent{
		TraceID:    r.traceID,
		SpanID:     r.rootID,
		Type:       EventOperationEnd,
		Name:       op.Name,
		Timestamp:  r.now(),
		Attributes: attrs,
	})
	r.traceID, r.rootID = "", ""
}
