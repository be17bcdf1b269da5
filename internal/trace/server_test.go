package trace

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServer_ListAndGet(t *testing.T) {
	m := NewManager(10)
	traceID, root := NewTraceID(), NewSpanID()
	now := time.Now()
	m.HandleEvent(opStart(traceID, root, now))
	m.HandleEvent(opEnd(traceID, root, now.Add(time.Millisecond)))

	srv := NewServer(m, "127.0.0.1:0")
	ts := httptest.NewServer(srv.server.Handler)
	defer ts.Close()

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/traces")
		if err != nil {
			t.Fatalf("GET /traces: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out []TraceSummary
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out) != 1 || out[0].ID != traceID || out[0].Status != "completed" {
			t.Errorf("unexpected listing: %+v", out)
		}
		if out[0].Duration != time.Millisecond {
			t.Errorf("Duration: expected 1ms, got %v", out[0].Duration)
		}
	})

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/traces/" + traceID)
		if err != nil {
			t.Fatalf("GET /traces/{id}: %v", err)
		}
		defer resp.Body.Close()
		var got Trace
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.RootSpan == nil || got.RootSpan.SpanID != root {
			t.Errorf("expected root span %q, got %+v", root, got.RootSpan)
		}
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/traces/nope")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("method", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/traces", "application/json", nil)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})
}
