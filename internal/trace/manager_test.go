package trace

import (
	"sync"
	"testing"
	"time"
)

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(0)
	if m.maxTraces != 10 {
		t.Errorf("NewManager(0): expected maxTraces=10, got %d", m.maxTraces)
	}
	if m.traces == nil || m.pendingSpans == nil {
		t.Error("NewManager: expected maps to be initialized")
	}
}

func opStart(traceID, spanID string, at time.Time) TraceEvent {
	return TraceEvent{TraceID: traceID, SpanID: spanID, Type: EventOperationStart, Name: "dispatch", Timestamp: at}
}

func opEnd(traceID, spanID string, at time.Time) TraceEvent {
	return TraceEvent{TraceID: traceID, SpanID: spanID, Type: EventOperationEnd, Name: "dispatch", Timestamp: at}
}

func TestHandleEvent_OperationStart_CreatesTrace(t *testing.T) {
	m := NewManager(10)
	traceID := NewTraceID()
	event := opStart(traceID, NewSpanID(), time.Now())

	trace := m.HandleEvent(event)
	if trace == nil {
		t.Fatal("HandleEvent(operation_start): expected trace, got nil")
	}
	if trace.ID != traceID {
		t.Errorf("HandleEvent(operation_start): expected trace ID %q, got %q", traceID, trace.ID)
	}
	if trace.Status != "running" {
		t.Errorf("HandleEvent(operation_start): expected status 'running', got %q", trace.Status)
	}
	if m.ActiveTrace() != trace {
		t.Error("ActiveTrace: expected the running trace")
	}
}

func TestHandleEvent_DeliveriesNestUnderOperation(t *testing.T) {
	m := NewManager(10)
	traceID := NewTraceID()
	root, outer, call := NewSpanID(), NewSpanID(), NewSpanID()
	now := time.Now()

	m.HandleEvent(opStart(traceID, root, now))
	m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: outer, ParentID: root, Type: EventDeliveryStart,
		Name: "bubble 1.1", Timestamp: now.Add(10 * time.Millisecond), Attributes: map[string]string{AttrKind: "bubble"}})
	m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: call, ParentID: outer, Type: EventDeliveryStart,
		Name: "call 2.1", Timestamp: now.Add(20 * time.Millisecond)})
	m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: call, Type: EventDeliveryEnd,
		Timestamp: now.Add(30 * time.Millisecond), Attributes: map[string]string{AttrResult: "response"}})
	m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: outer, Type: EventDeliveryEnd,
		Timestamp: now.Add(40 * time.Millisecond), Attributes: map[string]string{AttrResult: "consumed"}})
	m.HandleEvent(opEnd(traceID, root, now.Add(50*time.Millisecond)))

	trace := m.Trace(traceID)
	if trace == nil || trace.RootSpan == nil {
		t.Fatal("Trace: expected trace with root span")
	}
	if trace.Status != "completed" {
		t.Errorf("Status: expected completed, got %q", trace.Status)
	}
	if trace.RootSpan.Duration != 50*time.Millisecond {
		t.Errorf("RootSpan.Duration: expected 50ms, got %v", trace.RootSpan.Duration)
	}
	if got := trace.Deliveries(); got != 2 {
		t.Errorf("Deliveries: expected 2, got %d", got)
	}
	if len(trace.RootSpan.Children) != 1 {
		t.Fatalf("RootSpan.Children: expected 1 child, got %d", len(trace.RootSpan.Children))
	}
	outerSpan := trace.RootSpan.Children[0]
	if outerSpan.Duration != 30*time.Millisecond {
		t.Errorf("outer.Duration: expected 30ms, got %v", outerSpan.Duration)
	}
	if outerSpan.Attributes[AttrKind] != "bubble" || outerSpan.Attributes[AttrResult] != "consumed" {
		t.Errorf("outer.Attributes: expected start and end attributes merged, got %v", outerSpan.Attributes)
	}
	if len(outerSpan.Children) != 1 || outerSpan.Children[0].SpanID != call {
		t.Fatalf("outer.Children: expected the call span, got %v", outerSpan.Children)
	}
}

func TestHandleEvent_OrphansAttachWhenParentArrives(t *testing.T) {
	m := NewManager(10)
	traceID := NewTraceID()
	root, child := NewSpanID(), NewSpanID()
	now := time.Now()

	m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: child, ParentID: root, Type: EventDeliveryStart, Name: "send 1.1", Timestamp: now})
	m.HandleEvent(opStart(traceID, root, now))

	trace := m.Trace(traceID)
	if trace.RootSpan == nil || trace.RootSpan.SpanID != root {
		t.Fatal("RootSpan: expected operation span as root")
	}
	if len(trace.RootSpan.Children) != 1 || trace.RootSpan.Children[0].SpanID != child {
		t.Errorf("RootSpan.Children: expected orphan to be attached, got %v", trace.RootSpan.Children)
	}
}

func TestHandleEvent_EndWithoutStart_Ignored(t *testing.T) {
	m := NewManager(10)
	if trace := m.HandleEvent(opEnd(NewTraceID(), NewSpanID(), time.Now())); trace != nil {
		t.Errorf("HandleEvent(end without start): expected nil, got %v", trace)
	}
}

func TestRecentTraces_NewestFirstAndEvicts(t *testing.T) {
	m := NewManager(3)

	var traceIDs []string
	for range 5 {
		traceID := NewTraceID()
		traceIDs = append(traceIDs, traceID)
		m.HandleEvent(opStart(traceID, NewSpanID(), time.Now()))
	}

	recent := m.RecentTraces()
	if len(recent) != 3 {
		t.Fatalf("RecentTraces: expected 3 traces, got %d", len(recent))
	}
	if recent[0].ID != traceIDs[4] {
		t.Errorf("RecentTraces[0]: expected newest trace %q, got %q", traceIDs[4], recent[0].ID)
	}
	if m.Trace(traceIDs[0]) != nil || m.Trace(traceIDs[1]) != nil {
		t.Error("RingBuffer: expected oldest traces to be evicted")
	}
	if got := len(m.Summaries()); got != 3 {
		t.Errorf("Summaries: expected 3, got %d", got)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	m := NewManager(10)
	traceID, root := NewTraceID(), NewSpanID()
	m.HandleEvent(opStart(traceID, root, time.Now()))

	snap := m.Snapshot(traceID)
	if snap == nil || snap.RootSpan == nil {
		t.Fatal("Snapshot: expected trace")
	}
	snap.RootSpan.Attributes["x"] = "y"
	if _, ok := m.Trace(traceID).RootSpan.Attributes["x"]; ok {
		t.Error("Snapshot: mutation leaked into the manager")
	}
	if m.Snapshot("missing") != nil {
		t.Error("Snapshot: expected nil for unknown trace")
	}
}

func TestSetOnChange_CallbackCalled(t *testing.T) {
	m := NewManager(10)
	var mu sync.Mutex
	calls := 0
	m.SetOnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	traceID, spanID := NewTraceID(), NewSpanID()
	m.HandleEvent(opStart(traceID, spanID, time.Now()))
	m.HandleEvent(opEnd(traceID, spanID, time.Now()))

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("SetOnChange: expected 2 calls, got %d", calls)
	}
}

func TestConcurrentAccess_Safe(t *testing.T) {
	m := NewManager(10)
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			traceID, root := NewTraceID(), NewSpanID()
			m.HandleEvent(opStart(traceID, root, time.Now()))
			for range 10 {
				spanID := NewSpanID()
				m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: spanID, ParentID: root, Type: EventDeliveryStart, Timestamp: time.Now()})
				m.HandleEvent(TraceEvent{TraceID: traceID, SpanID: spanID, Type: EventDeliveryEnd, Timestamp: time.Now()})
				m.Trace(traceID)
				m.ActiveTrace()
				m.Summaries()
				m.Snapshot(traceID)
			}
			m.HandleEvent(opEnd(traceID, root, time.Now()))
		}()
	}
	wg.Wait()

	if got := len(m.RecentTraces()); got > m.maxTraces {
		t.Errorf("ConcurrentAccess: expected at most %d traces, got %d", m.maxTraces, got)
	}
}
