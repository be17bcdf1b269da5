package trace

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// Span is one operation or delivery with its nested deliveries.
type Span struct {
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	ParentID   string            `json:"parent_id,omitempty"`
	Name       string            `json:"name"`
	StartTime  time.Time         `json:"start_time"`
	Duration   time.Duration     `json:"duration"` // 0 while in progress
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*Span           `json:"children,omitempty"`
}

// Count returns the number of spans in the subtree rooted at s.
func (s *Span) Count() int {
	if s == nil {
		return 0
	}
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}

// Trace is one top-level Ui operation.
type Trace struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	RootSpan  *Span     `json:"root"`
	Status    string    `json:"status"` // "running" or "completed"
}

// Deliveries returns the number of handler invocations recorded.
func (t *Trace) Deliveries() int {
	if t.RootSpan == nil {
		return 0
	}
	return t.RootSpan.Count() - 1
}

// Manager builds span trees from start/end events and keeps the most
// recent traces.
type Manager struct {
	mu            sync.RWMutex
	traces        map[string]*Trace      // traceID -> Trace
	pendingSpans  map[string]*TraceEvent // spanID -> start event (waiting for end)
	orphanedSpans map[string][]*Span     // parentID -> spans waiting for parent
	recentIDs     []string               // oldest first
	maxTraces     int
	onChange      func()
	exporter      *OTLPExporter
	logger        *slog.Logger
}

// NewManager creates a trace manager. Completed traces are exported when
// OTEL_EXPORTER_OTLP_ENDPOINT is set.
func NewManager(maxTraces int) *Manager {
	if maxTraces <= 0 {
		maxTraces = 10
	}
	logger := slog.Default().With("component", "trace")
	exporter, err := NewOTLPExporter(context.Background())
	if err != nil {
		logger.Warn("otlp export disabled", "error", err)
	}
	return &Manager{
		traces:        make(map[string]*Trace),
		pendingSpans:  make(map[string]*TraceEvent),
		orphanedSpans: make(map[string][]*Span),
		recentIDs:     make([]string, 0, maxTraces),
		maxTraces:     maxTraces,
		exporter:      exporter,
		logger:        logger,
	}
}

// HandleEvent processes a trace event and returns the affected trace.
// Start events create an in-progress span right away; end events fill in
// the duration.
func (m *Manager) HandleEvent(event TraceEvent) *Trace {
	m.mu.Lock()
	defer m.mu.Unlock()

	trace := m.traces[event.TraceID]
	switch {
	case event.Type.IsStart():
		return m.handleStartEvent(event, trace)
	case event.Type.IsEnd():
		return m.handleEndEvent(event, trace)
	}
	return nil
}

// handleStartEvent must be called with m.mu held.
func (m *Manager) handleStartEvent(event TraceEvent, trace *Trace) *Trace {
	m.pendingSpans[event.SpanID] = &event

	span := &Span{
		TraceID:    event.TraceID,
		SpanID:     event.SpanID,
		ParentID:   event.ParentID,
		Name:       event.Name,
		StartTime:  event.Timestamp,
		Attributes: make(map[string]string, len(event.Attributes)),
	}
	maps.Copy(span.Attributes, event.Attributes)

	if trace == nil {
		trace = &Trace{ID: event.TraceID, StartTime: event.Timestamp, Status: "running"}
		m.traces[event.TraceID] = trace
		m.addToRecentIDs(event.TraceID)
	}

	switch {
	case event.Type == EventOperationStart || event.ParentID == "":
		if trace.RootSpan == nil || event.Type == EventOperationStart {
			trace.StartTime = event.Timestamp
			trace.RootSpan = span
		}
		m.attachOrphanedChildren(span)
	default:
		var parent *Span
		if trace.RootSpan != nil {
			parent = findSpanByID(trace.RootSpan, event.ParentID)
		}
		if parent != nil {
			parent.Children = append(parent.Children, span)
		} else {
			m.orphanedSpans[event.ParentID] = append(m.orphanedSpans[event.ParentID], span)
		}
	}

	m.callOnChange()
	return trace
}

// handleEndEvent must be called with m.mu held.
func (m *Manager) handleEndEvent(event TraceEvent, trace *Trace) *Trace {
	start, found := m.pendingSpans[event.SpanID]
	if !found {
		return nil
	}
	delete(m.pendingSpans, event.SpanID)

	if trace != nil && trace.RootSpan != nil {
		if span := findSpanByID(trace.RootSpan, event.SpanID); span != nil {
			span.Duration = event.Timestamp.Sub(start.Timestamp)
			maps.Copy(span.Attributes, event.Attributes)
		}
	}

	if event.Type == EventOperationEnd && trace != nil {
		trace.EndTime = event.Timestamp
		trace.Status = "completed"
		m.export(trace)
	}

	m.callOnChange()
	return trace
}

// export runs synchronously so the last operation is not lost on exit.
func (m *Manager) export(trace *Trace) {
	if m.exporter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.exporter.ExportTrace(ctx, trace); err != nil {
		m.logger.Debug("trace export failed", "trace", trace.ID, "error", err)
	}
}

func findSpanByID(root *Span, spanID string) *Span {
	if root == nil {
		return nil
	}
	if root.SpanID == spanID {
		return root
	}
	for _, child := range root.Children {
		if found := findSpanByID(child, spanID); found != nil {
			return found
		}
	}
	return nil
}

// attachOrphanedChildren adopts spans whose start arrived before their
// parent's, recursively.
func (m *Manager) attachOrphanedChildren(parent *Span) {
	orphans, ok := m.orphanedSpans[parent.SpanID]
	if !ok {
		return
	}
	parent.Children = append(parent.Children, orphans...)
	delete(m.orphanedSpans, parent.SpanID)
	for _, child := range orphans {
		m.attachOrphanedChildren(child)
	}
}

// addToRecentIDs records traceID as newest and evicts the oldest trace
// beyond maxTraces.
func (m *Manager) addToRecentIDs(traceID string) {
	if i := slices.Index(m.recentIDs, traceID); i >= 0 {
		m.recentIDs = append(slices.Delete(m.recentIDs, i, i+1), traceID)
		return
	}
	m.recentIDs = append(m.recentIDs, traceID)
	if len(m.recentIDs) > m.maxTraces {
		oldest := m.recentIDs[0]
		m.recentIDs = m.recentIDs[1:]
		delete(m.traces, oldest)
	}
}

func (m *Manager) callOnChange() {
	if m.onChange != nil {
		m.onChange()
	}
}

// Trace returns a trace by ID
func (m *Manager) Trace(id string) *Trace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.traces[id]
}

// ActiveTrace returns the currently running trace (if any)
func (m *Manager) ActiveTrace() *Trace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, trace := range m.traces {
		if trace.Status == "running" {
			return trace
		}
	}
	return nil
}

// RecentTraces returns recent traces (newest first)
func (m *Manager) RecentTraces() []*Trace {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Trace, 0, len(m.recentIDs))
	for _, id := range slices.Backward(m.recentIDs) {
		if trace, ok := m.traces[id]; ok {
			result = append(result, trace)
		}
	}
	return result
}

// Summaries returns listing entries for recent traces (newest first)
func (m *Manager) Summaries() []TraceSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]TraceSummary, 0, len(m.recentIDs))
	for _, id := range slices.Backward(m.recentIDs) {
		if trace, ok := m.traces[id]; ok {
			out = append(out, Summarize(trace))
		}
	}
	return out
}

// Snapshot returns a deep copy of a trace that can be read without holding
// the manager's lock.
func (m *Manager) Snapshot(id string) *Trace {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.traces[id]
	if !ok {
		return nil
	}
	cp := *t
	cp.RootSpan = t.RootSpan.clone()
	return &cp
}

func (s *Span) clone() *Span {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Attributes = maps.Clone(s.Attributes)
	cp.Children = make([]*Span, len(s.Children))
	for i, c := range s.Children {
		cp.Children[i] = c.clone()
	}
	return &cp
}

// SetOnChange sets callback for state changes (thread-safe)
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Shutdown flushes pending exports and closes the OTLP exporter.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	exporter := m.exporter
	m.mu.Unlock()
	return exporter.Shutdown(ctx)
}
