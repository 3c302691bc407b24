package server

import (
	"encoding/json"
	"net/http"

	"github.com/voxgate/voxgate/internal/logx"
)

var openapiJSON = mustOpenAPISchema()

func mustOpenAPISchema() []byte {
	schema := map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":   "voxgate API",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/health": map[string]any{
				"get": map[string]any{
					"summary": "Backend health summary",
					"responses": map[string]any{
						"200": map[string]any{"description": "Health status"},
					},
				},
			},
			"/config": map[string]any{
				"get": map[string]any{
					"summary": "Assistant operating parameters",
					"responses": map[string]any{
						"200": map[string]any{"description": "Configuration"},
					},
				},
			},
			"/api/diagnostics": map[string]any{
				"get": map[string]any{
					"summary": "Readiness tests and recommendations",
					"responses": map[string]any{
						"200": map[string]any{"description": "Diagnostics report"},
					},
				},
			},
			"/api/audio/check": map[string]any{
				"get": map[string]any{
					"summary": "Silent WAV for playback verification",
					"responses": map[string]any{
						"200": map[string]any{"description": "WAV audio"},
					},
				},
			},
			"/api/openapi.json": map[string]any{
				"get": map[string]any{
					"summary": "This document",
					"responses": map[string]any{
						"200": map[string]any{"description": "OpenAPI schema"},
					},
				},
			},
		},
	}
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return b
}

// OpenAPIHandler serves the embedded OpenAPI schema.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(openapiJSON); err != nil {
			logx.Log.Error().Err(err).Msg("write openapi")
		}
	}
}
