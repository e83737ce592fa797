package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/danmuck/rscwire/internal/auth"
	"github.com/danmuck/rscwire/internal/observability"
	"github.com/danmuck/rscwire/internal/transport/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router serves the websocket game endpoint next to health and metrics.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(observability.RequestMetrics)

	r.Get("/healthz", s.handleHealth)
	metrics := promhttp.Handler()
	if s.cfg.MetricsToken != "" {
		metrics = auth.Require(auth.StaticToken{Token: s.cfg.MetricsToken})(metrics)
	}
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/ws", s.handleWebsocket)
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"uptime":   time.Since(s.started).String(),
		"service":  "rscd",
		"version":  Version,
		"sessions": s.Sessions(),
	})
}

func (s *Service) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	s.wg.Add(1)
	defer s.wg.Done()
	conn, err := ws.Accept(w, r, &s.upgrader, s.cfg.Session)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("server.handleWebsocket upgrade failed")
		return
	}
	s.handleConn(r.Context(), conn, ws.Name)
}
