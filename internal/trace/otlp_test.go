package trace

import (
	"context"
	"testing"
	"time"
)

func TestNewOTLPExporter_DisabledWhenNotConfigured(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	exp, err := NewOTLPExporter(context.Background())
	if err != nil {
		t.Fatalf("NewOTLPExporter: %v", err)
	}
	if exp != nil {
		t.Fatal("NewOTLPExporter: expected nil exporter without endpoint")
	}
	// A nil exporter is a no-op.
	if err := exp.ExportTrace(context.Background(), &Trace{ID: NewTraceID(), RootSpan: &Span{}}); err != nil {
		t.Errorf("ExportTrace on nil exporter: %v", err)
	}
	if err := exp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil exporter: %v", err)
	}
}

func TestNewOTLPExporter_ExportsWhenConfigured(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "127.0.0.1:1")
	exp, err := NewOTLPExporter(context.Background())
	if err != nil {
		t.Fatalf("NewOTLPExporter: %v", err)
	}
	if exp == nil {
		t.Fatal("NewOTLPExporter: expected exporter")
	}
	now := time.Now()
	tr := &Trace{
		ID: NewTraceID(),
		RootSpan: &Span{
			Name:      "dispatch",
			StartTime: now,
			Duration:  time.Millisecond,
			Children:  []*Span{{Name: "bubble 1.1", StartTime: now, Attributes: map[string]string{AttrKind: "bubble"}}},
		},
	}
	if err := exp.ExportTrace(context.Background(), tr); err != nil {
		t.Errorf("ExportTrace: %v", err)
	}
	if err := exp.ExportTrace(context.Background(), &Trace{ID: "zz", RootSpan: &Span{}}); err == nil {
		t.Error("ExportTrace: expected error for invalid trace id")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = exp.Shutdown(ctx) // nothing listens on the endpoint
}

func TestSpanAttributes_Namespaced(t *testing.T) {
	attrs := spanAttributes(map[string]string{AttrKind: "call", AttrTarget: "1.1", "custom": "v"})
	got := make(map[string]string)
	for _, kv := range attrs {
		got[string(kv.Key)] = kv.Value.AsString()
	}
	want := map[string]string{
		"gui.delivery.kind": "call",
		"gui.widget.id":     "1.1",
		"gui.custom":        "v",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %s: expected %q, got %q", k, v, got[k])
		}
	}
}
