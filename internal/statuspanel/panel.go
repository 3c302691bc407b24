// Package statuspanel renders the operational status of a voice-assistant
// backend. Rendering is a pure function from the two backend payloads to a
// UIState; fetching and display live in separate shells so the row logic
// stays testable on its own.
package statuspanel

import "strconv"

// HealthStatus mirrors the backend /health payload.
type HealthStatus struct {
	Status           string `json:"status"`
	OpenAIConfigured bool   `json:"openai_configured"`
	Version          string `json:"version"`
}

// ServiceConfig mirrors the backend /config payload.
type ServiceConfig struct {
	Model            string `json:"model"`
	Voice            string `json:"voice"`
	SampleRate       int    `json:"sample_rate"`
	FunctionsEnabled bool   `json:"functions_enabled"`
}

// Visual classes attached to rows.
const (
	ClassOK    = "ok"
	ClassError = "error"
)

// Row is one labeled status line.
type Row struct {
	Label string
	Value string
	Class string
}

// UIState is the complete rendered panel: the status rows plus a version
// footer. Err carries the refresh failure; an errored panel has a single
// error-class row derived from it and no version.
type UIState struct {
	Rows    []Row
	Version string
	Err     string
}

// Errored reports whether the state renders a failure instead of status
// rows.
func (u UIState) Errored() bool {
	return u.Err != ""
}

// Render merges the two payloads into the six status rows. Row order is
// fixed: service status, API key, model, voice, sample rate, function
// calling. The backend version lands in the footer.
func Render(health HealthStatus, cfg ServiceConfig) UIState {
	keyValue, keyClass := "Not configured", ClassError
	if health.OpenAIConfigured {
		keyValue, keyClass = "Configured", ClassOK
	}
	statusClass := ClassError
	if health.Status == "healthy" {
		statusClass = ClassOK
	}
	functions := "Disabled"
	if cfg.FunctionsEnabled {
		functions = "Enabled"
	}
	return UIState{
		Rows: []Row{
			{Label: "Service Status", Value: health.Status, Class: statusClass},
			{Label: "OpenAI API Key", Value: keyValue, Class: keyClass},
			{Label: "Model", Value: cfg.Model, Class: ClassOK},
			{Label: "Voice", Value: cfg.Voice, Class: ClassOK},
			{Label: "Sample Rate", Value: strconv.Itoa(cfg.SampleRate) + " Hz", Class: ClassOK},
			{Label: "Function Calling", Value: functions, Class: ClassOK},
		},
		Version: health.Version,
	}
}

// RenderError produces the single-row failure panel. None of the normal
// rows survive a failed refresh.
func RenderError(err error) UIState {
	return UIState{
		Rows: []Row{{Label: "Error", Value: err.Error(), Class: ClassError}},
		Err:  err.Error(),
	}
}
