// Package server assembles the gateway's HTTP surface: the status panel
// page, the health/config endpoints the panel polls, diagnostics, the
// voice WebSocket, and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/realtime"
	"github.com/voxgate/voxgate/internal/session"
	"github.com/voxgate/voxgate/internal/tools"
)

// New constructs the HTTP handler for the gateway.
func New(cfg config.ServerConfig, version string, reg *session.Registry, preg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range MiddlewareChain() {
		r.Use(m)
	}

	if reg == nil {
		reg = session.NewRegistry()
	}
	dial := func(ctx context.Context) (session.Upstream, error) {
		return realtime.Dial(ctx, realtime.Options{
			APIKey:         cfg.OpenAIAPIKey,
			URL:            cfg.RealtimeURL,
			Assistant:      cfg.Assistant,
			ConnectTimeout: cfg.ConnectTimeout,
		})
	}
	exec := &tools.Executor{FallbackURL: tools.ExtractWebhookURL(cfg.Assistant.SystemPrompt)}
	prober := &realtime.Prober{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL}

	r.Get("/", StatusPageHandler())
	r.Get("/health", HealthHandler(cfg, version, prober))
	r.Get("/config", ConfigHandler(cfg))
	r.Get("/api/diagnostics", DiagnosticsHandler(cfg, reg, prober))
	r.Get("/api/audio/check", AudioCheckHandler(cfg))
	r.Get("/api/openapi.json", OpenAPIHandler())
	r.Handle(cfg.WSPath, session.Handler(reg, dial, exec))

	if preg != nil && cfg.MetricsAddr == fmt.Sprintf(":%d", cfg.Port) {
		r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	}

	return r
}
