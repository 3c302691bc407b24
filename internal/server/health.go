package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/logx"
	"github.com/voxgate/voxgate/internal/realtime"
	"github.com/voxgate/voxgate/internal/serverstate"
)

type memoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

type healthResponse struct {
	Status           string     `json:"status"`
	OpenAIConfigured bool       `json:"openai_configured"`
	Version          string     `json:"version"`
	Timestamp        string     `json:"timestamp"`
	UptimeSeconds    uint64     `json:"uptime_seconds"`
	Memory           memoryInfo `json:"memory"`
	GoVersion        string     `json:"go_version"`
	OpenAIAPI        string     `json:"openai_api"`
	State            string     `json:"state"`
	APIError         string     `json:"api_error,omitempty"`
}

type configResponse struct {
	Model            string `json:"model"`
	Voice            string `json:"voice"`
	SampleRate       int    `json:"sample_rate"`
	FunctionsEnabled bool   `json:"functions_enabled"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("write response")
	}
}

func readMemory() memoryInfo {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return memoryInfo{}
	}
	return memoryInfo{
		Total:       vm.Total,
		Available:   vm.Available,
		Used:        vm.Used,
		UsedPercent: vm.UsedPercent,
	}
}

// HealthHandler reports the backend's readiness summary. The response is
// always 200: a failed upstream probe degrades the status field rather
// than the status code, so the panel can render the degraded state as an
// error row instead of a blank failure.
func HealthHandler(cfg config.ServerConfig, version string, prober *realtime.Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime, _ := host.Uptime()
		resp := healthResponse{
			Status:           "healthy",
			OpenAIConfigured: cfg.OpenAIAPIKey != "",
			Version:          version,
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
			UptimeSeconds:    uptime,
			Memory:           readMemory(),
			GoVersion:        runtime.Version(),
			OpenAIAPI:        "accessible",
			State:            serverstate.GetState(),
		}
		if err := prober.Check(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.OpenAIAPI = "error"
			resp.APIError = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ConfigHandler reports the assistant operating parameters.
func ConfigHandler(cfg config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, configResponse{
			Model:            cfg.Assistant.Model,
			Voice:            cfg.Assistant.Voice,
			SampleRate:       cfg.Assistant.SampleRate,
			FunctionsEnabled: cfg.Assistant.FunctionsEnabled(),
		})
	}
}
