// Package monitor serves debugging views of a running diffusion
// simulation: HTML charts of column profiles and recorded fluxes, plus the
// diagnostics database's admin routes. It is a debugging surface, not a
// public API; none of the endpoints are authenticated.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/diag"
)

// WebServer serves the monitor endpoints.
type WebServer struct {
	mu    sync.RWMutex
	cols  []*column.Column
	rho   [][]float64 // per-column cell-average density, refreshed with Update
	step  int
	runID string

	store *diag.Store
	addr  string
}

// WebServerConfig configures a monitor server.
type WebServerConfig struct {
	ListenAddr string
	Store      *diag.Store // may be nil; disables flux and admin routes
	RunID      string
}

// NewWebServer creates a monitor server.
func NewWebServer(config WebServerConfig) *WebServer {
	return &WebServer{
		store: config.Store,
		addr:  config.ListenAddr,
		runID: config.RunID,
	}
}

// Update publishes the current simulation state to the server. The columns
// are the already-cloned output of a step; the server never mutates them.
func (ws *WebServer) Update(cols []*column.Column, rho [][]float64, step int) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.cols = cols
	ws.rho = rho
	ws.step = step
}

// Start runs the HTTP server until the context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    ws.addr,
		Handler: ws.setupRoutes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("monitor server shutdown error: %v", err)
		}
	}()

	log.Printf("monitor server listening on %s", ws.addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/monitor/profiles", ws.handleProfiles)
	mux.HandleFunc("/monitor/state", ws.handleState)
	if ws.store != nil {
		mux.HandleFunc("/monitor/fluxes", ws.handleFluxes)
		mux.HandleFunc("/monitor/counters", ws.handleCounters)
		ws.store.AttachAdminRoutes(mux)
	}
	return mux
}

// handleState reports the current step and column shapes as JSON, a cheap
// liveness probe for scripts.
func (ws *WebServer) handleState(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	type colInfo struct {
		Layers int     `json:"layers"`
		Depth  float64 `json:"depth"`
	}
	out := struct {
		Step    int       `json:"step"`
		RunID   string    `json:"run_id,omitempty"`
		Columns []colInfo `json:"columns"`
	}{Step: ws.step, RunID: ws.runID}
	for _, c := range ws.cols {
		out.Columns = append(out.Columns, colInfo{Layers: c.NumLayers(), Depth: c.Depth()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("failed to encode state: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
