package server

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/realtime"
	"github.com/voxgate/voxgate/internal/serverstate"
	"github.com/voxgate/voxgate/internal/session"
)

type diagServer struct {
	Status        string     `json:"status"`
	UptimeSeconds uint64     `json:"uptime_seconds"`
	Memory        memoryInfo `json:"memory"`
	GoVersion     string     `json:"go_version"`
	Port          int        `json:"port"`
}

type diagConfiguration struct {
	Model            string `json:"model"`
	Voice            string `json:"voice"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	APIKeyPreview    string `json:"api_key_preview"`
}

type diagTest struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TestEndpoint string `json:"test_endpoint,omitempty"`
}

type diagSessions struct {
	Active   int  `json:"active"`
	Draining bool `json:"draining"`
}

type diagOverall struct {
	HealthScore        string `json:"health_score"`
	Status             string `json:"status"`
	ReadyForConnection bool   `json:"ready_for_connection"`
}

type diagnosticsResponse struct {
	Timestamp       string            `json:"timestamp"`
	Server          diagServer        `json:"server"`
	Configuration   diagConfiguration `json:"configuration"`
	Endpoints       map[string]string `json:"endpoints"`
	OpenAI          diagTest          `json:"openai"`
	Sessions        diagSessions      `json:"sessions"`
	Recommendations []string          `json:"recommendations"`
	Tests           map[string]string `json:"tests"`
	Overall         diagOverall       `json:"overall"`
}

func apiKeyPreview(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 8 {
		return key[:2] + "..."
	}
	return key[:8] + "..."
}

// DiagnosticsHandler runs the readiness tests and reports them with a
// pass/fail summary and recommendations.
func DiagnosticsHandler(cfg config.ServerConfig, reg *session.Registry, prober *realtime.Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime, _ := host.Uptime()
		d := diagnosticsResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Server: diagServer{
				Status:        "running",
				UptimeSeconds: uptime,
				Memory:        readMemory(),
				GoVersion:     runtime.Version(),
				Port:          cfg.Port,
			},
			Configuration: diagConfiguration{
				Model:            cfg.Assistant.Model,
				Voice:            cfg.Assistant.Voice,
				APIKeyConfigured: cfg.OpenAIAPIKey != "",
				APIKeyPreview:    apiKeyPreview(cfg.OpenAIAPIKey),
			},
			Endpoints: map[string]string{
				"health":      "/health",
				"config":      "/config",
				"diagnostics": "/api/diagnostics",
				"websocket":   cfg.WSPath,
			},
			Sessions: diagSessions{
				Active:   reg.Count(),
				Draining: serverstate.IsDraining(),
			},
			Recommendations: []string{},
			Tests:           map[string]string{},
		}

		if cfg.OpenAIAPIKey == "" {
			d.Tests["api_key_present"] = "failed"
			d.Recommendations = append(d.Recommendations, "Set OPENAI_API_KEY to enable voice sessions")
		} else {
			d.Tests["api_key_present"] = "passed"
		}

		if err := prober.Check(r.Context()); err != nil {
			d.OpenAI = diagTest{Status: "error", Message: err.Error(), TestEndpoint: "/v1/models"}
			d.Tests["api_connectivity"] = "failed"
			d.Recommendations = append(d.Recommendations,
				"OpenAI API is unreachable",
				"Check the API key and network connectivity")
		} else {
			d.OpenAI = diagTest{Status: "accessible", Message: "API is responding", TestEndpoint: "/v1/models"}
			d.Tests["api_connectivity"] = "passed"
		}

		if serverstate.GetState() == "ready" && !serverstate.IsDraining() {
			d.Tests["session_readiness"] = "passed"
		} else {
			d.Tests["session_readiness"] = "failed"
			d.Recommendations = append(d.Recommendations, "Server is not accepting new sessions")
		}

		passed := 0
		for _, result := range d.Tests {
			if result == "passed" {
				passed++
			}
		}
		total := len(d.Tests)
		status := "unhealthy"
		switch {
		case passed == total:
			status = "healthy"
		case passed > 0:
			status = "partial"
		}
		d.Overall = diagOverall{
			HealthScore:        fmt.Sprintf("%d/%d", passed, total),
			Status:             status,
			ReadyForConnection: d.Tests["api_connectivity"] == "passed" && d.Tests["session_readiness"] == "passed",
		}
		if status == "healthy" {
			d.Recommendations = append(d.Recommendations, "All checks passed")
		}

		writeJSON(w, http.StatusOK, d)
	}
}
