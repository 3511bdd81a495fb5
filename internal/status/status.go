// Package status serves a read-only HTTP view of a running session for
// watch mode: liveness, the last known color, counters and a
// Prometheus scrape endpoint.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"piled/internal/metrics"
	"piled/internal/session"
	"piled/util"
)

// Source is the session state the endpoint reports.
type Source interface {
	Snapshot() session.Snapshot
}

// State is the body of GET /state.  Fields without a value yet are
// left out.
type State struct {
	session.Snapshot
	Color       string      `json:"color,omitempty"`
	RGB         *[3]float64 `json:"rgb,omitempty"`
	ConnectedAt *time.Time  `json:"connected_at,omitempty"`
	LastPush    *time.Time  `json:"last_push,omitempty"`
}

func newState(snap session.Snapshot) State {
	st := State{Snapshot: snap}
	if snap.HaveColor {
		var rgb [3]float64
		rgb[0], rgb[1], rgb[2] = snap.Color.Floats()
		st.Color = snap.Color.Hex()
		st.RGB = &rgb
	}
	if t := snap.ConnectedAt; !t.IsZero() {
		st.ConnectedAt = &t
	}
	if t := snap.LastPush; !t.IsZero() {
		st.LastPush = &t
	}
	return st
}

// NewRouter mounts /healthz, /state, /stats and /metrics.
func NewRouter(src Source, m *metrics.Collector) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := m.Register(reg, metrics.DefaultNamespace); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if src.Snapshot().State != session.Connected {
			http.Error(w, "disconnected", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n")) //nolint:errcheck
	})
	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, newState(src.Snapshot()))
	})
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, m.Snapshot())
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}

// Server runs the router on its own listener.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *util.Logger
}

// Start listens on addr and serves in the background.
func Start(addr string, src Source, m *metrics.Collector, logger *util.Logger) (*Server, error) {
	h, err := NewRouter(src, m)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		srv:    &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
		logger: logger.Named("status"),
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server: %v", err)
		}
	}()
	s.logger.Verbose("serving on http://%s", ln.Addr())
	return s, nil
}

// Addr is the bound address, useful with port 0.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Shutdown stops the server, waiting at most until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
