package trace

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// TraceSummary is the listing entry served by GET /traces.
type TraceSummary struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	Deliveries int           `json:"deliveries"`
}

// Summarize returns the listing entry for t.
func Summarize(t *Trace) TraceSummary {
	s := TraceSummary{
		ID:         t.ID,
		Status:     t.Status,
		StartTime:  t.StartTime,
		Deliveries: t.Deliveries(),
	}
	if t.RootSpan != nil {
		s.Name = t.RootSpan.Name
		s.Duration = t.RootSpan.Duration
	}
	return s
}

// Server exposes the manager's recent traces as JSON for inspection while
// the terminal is taken over by the UI.
type Server struct {
	manager  *Manager
	server   *http.Server
	listener net.Listener
}

// NewServer creates a trace server for addr, e.g. "127.0.0.1:9876".
func NewServer(manager *Manager, addr string) *Server {
	s := &Server{manager: manager}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /traces", s.handleList)
	mux.HandleFunc("GET /traces/{id}", s.handleGet)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start listens and serves in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.server.Addr)
	}
	s.listener = ln
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("trace server stopped", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.manager.Summaries())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t := s.manager.Snapshot(r.PathValue("id"))
	if t == nil {
		http.Error(w, "trace not found", http.StatusNotFound)
		return
	}
	writeJSON(w, t)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write trace response", "error", err)
	}
}
