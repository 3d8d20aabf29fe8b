// Package introspect provides a lightweight HTTP API for runtime inspection
// of a running queuebench process.
//
// Endpoints:
//
//	GET /status   - variant name, capacity, uptime
//	GET /metrics  - stats.Snapshot as JSON
//
// The server is served over cleartext HTTP/2 (h2c) rather than HTTP/1.1,
// so a single long-lived connection can interleave concurrent /metrics
// polls from a scraper without head-of-line blocking.
package introspect

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/laplaque/dedupqueue/stats"
)

// Server is the introspection API server for a single running queue.
type Server struct {
	variant   string
	capacity  uint32
	startTime time.Time
	counters  *stats.Counters
	token     string // bearer token for auth; empty = no auth
}

// New creates an introspection server reporting on the given queue variant
// and counters. An empty token disables authentication.
func New(variant string, capacity uint32, counters *stats.Counters, token string) *Server {
	s := &Server{
		variant:   variant,
		capacity:  capacity,
		startTime: time.Now(),
		counters:  counters,
		token:     token,
	}
	if s.token != "" {
		log.Printf("[INTROSPECT] Bearer token authentication enabled")
	}
	return s
}

// Handler returns the HTTP handler for the introspection API, upgradeable
// to cleartext HTTP/2 via h2c.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return h2c.NewHandler(s.authMiddleware(mux), &http2.Server{})
}

// authMiddleware checks for a valid Bearer token if one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(auth[len(prefix):])), []byte(s.token)) != 1 {
			log.Printf("[INTROSPECT] Unauthorized access attempt from %s to %s", r.RemoteAddr, r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := struct {
		Status   string `json:"status"`
		Variant  string `json:"variant"`
		Capacity uint32 `json:"capacity"`
		Uptime   string `json:"uptime"`
	}{
		Status:   "running",
		Variant:  s.variant,
		Capacity: s.capacity,
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.counters == nil {
		http.Error(w, "metrics not enabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.counters.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[INTROSPECT] JSON encode error: %v", err)
	}
}

// ListenAndServe starts the introspection HTTP/2-cleartext server and blocks
// until ctx is cancelled or the server fails.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("introspect: listen %s: %w", addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INTROSPECT] Listening on %s (h2c)", addr)
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
