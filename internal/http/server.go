// Package http serves the local OAuth redirect, health checks, metrics and
// the playback snapshot.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunedeck/internal/core"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	metrics  *Metrics
	registry *prometheus.Registry
	state    *core.StateStore
	callback atomic.Pointer[CallbackHandler]
	ready    atomic.Bool
}

// NewServer builds the server. state may be nil until playback exists.
func NewServer(config *core.ServerConfig, state *core.StateStore, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		config:   config,
		logger:   logger,
		metrics:  newMetrics(registry),
		registry: registry,
		state:    state,
	}
	s.server = createHTTPServer(config, setupRoutes(s))
	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func setupRoutes(s *Server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok", "service": "tunedeck"})
	})
	mux.HandleFunc("/readyz", s.readyHandler)
	mux.HandleFunc("/now-playing", s.nowPlayingHandler)
	mux.HandleFunc("/callback", s.callbackHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", homeHandler(s.logger))

	return mux
}

func (s *Server) readyHandler(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, s.logger, http.StatusServiceUnavailable, map[string]string{"status": "starting", "service": "tunedeck"})
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ready", "service": "tunedeck"})
}

func (s *Server) callbackHandler(w http.ResponseWriter, r *http.Request) {
	handler := s.callback.Load()
	if handler == nil {
		http.Error(w, "No login in progress", http.StatusNotFound)
		return
	}
	handler.ServeHTTP(w, r)
}

func (s *Server) nowPlayingHandler(w http.ResponseWriter, _ *http.Request) {
	if s.state == nil {
		writeJSON(w, s.logger, http.StatusOK, nowPlaying{})
		return
	}
	writeJSON(w, s.logger, http.StatusOK, newNowPlaying(s.state.Snapshot()))
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>tunedeck</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #1DB954; }
    </style>
</head>
<body>
    <h1>tunedeck</h1>
    <p>Terminal Spotify client</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><a href="/now-playing">Now playing</a> - Playback snapshot</div>
    <div class="endpoint"><a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint"><a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint"><a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug("Failed to write response", zap.Error(err))
	}
}

// Start serves until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// SetReady flips /readyz to 200.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ExpectCallback routes the next /callback request to a new handler and
// returns it; its Wait is handed to the login.
func (s *Server) ExpectCallback(state string, exchange ExchangeFunc) *CallbackHandler {
	handler := NewCallbackHandler(state, exchange)
	s.callback.Store(handler)
	return handler
}
