package trace

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// EventType identifies the kind of trace event
type EventType string

const (
	EventOperationStart EventType = "operation_start" // Dispatch, send or call begins
	EventOperationEnd   EventType = "operation_end"   // Queue drained, result known
	EventDeliveryStart  EventType = "delivery_start"  // Handler or hook invoked
	EventDeliveryEnd    EventType = "delivery_end"    // Handler returned
)

// IsStart reports whether t opens a span.
func (t EventType) IsStart() bool {
	return t == EventOperationStart || t == EventDeliveryStart
}

// IsEnd reports whether t closes a span.
func (t EventType) IsEnd() bool {
	return t == EventOperationEnd || t == EventDeliveryEnd
}

// TraceEvent is a single start or end record of one Ui operation.
type TraceEvent struct {
	TraceID    string            `json:"trace_id"`  // One per top-level operation
	SpanID     string            `json:"span_id"`   // Unique ID for this span
	ParentID   string            `json:"parent_id"` // Parent span ID (empty for root)
	Type       EventType         `json:"type"`
	Name       string            `json:"name"` // "dispatch", "bubble 3.1", ...
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes"`
}

// NewTraceID generates a random 16-byte trace ID as hex string (32 characters)
func NewTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// NewSpanID generates a random 8-byte span ID as hex string (16 characters)
func NewSpanID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
