package statuspanel

import (
	"errors"
	"testing"
)

func TestRenderRowOrder(t *testing.T) {
	health := HealthStatus{Status: "healthy", OpenAIConfigured: true, Version: "1.4.0"}
	cfg := ServiceConfig{Model: "gpt-4o-realtime-preview-2024-10-01", Voice: "alloy", SampleRate: 24000, FunctionsEnabled: true}

	ui := Render(health, cfg)
	if len(ui.Rows) != 6 {
		t.Fatalf("rows = %d; want 6", len(ui.Rows))
	}
	want := []Row{
		{Label: "Service Status", Value: "healthy", Class: ClassOK},
		{Label: "OpenAI API Key", Value: "Configured", Class: ClassOK},
		{Label: "Model", Value: "gpt-4o-realtime-preview-2024-10-01", Class: ClassOK},
		{Label: "Voice", Value: "alloy", Class: ClassOK},
		{Label: "Sample Rate", Value: "24000 Hz", Class: ClassOK},
		{Label: "Function Calling", Value: "Enabled", Class: ClassOK},
	}
	for i, w := range want {
		if ui.Rows[i] != w {
			t.Errorf("row %d = %+v; want %+v", i, ui.Rows[i], w)
		}
	}
	if ui.Version != "1.4.0" {
		t.Errorf("version = %q; want 1.4.0", ui.Version)
	}
	if ui.Errored() {
		t.Error("healthy render reported as errored")
	}
}

func TestRenderClasses(t *testing.T) {
	tests := []struct {
		name      string
		health    HealthStatus
		cfg       ServiceConfig
		row       int
		wantValue string
		wantClass string
	}{
		{"healthy status ok", HealthStatus{Status: "healthy"}, ServiceConfig{}, 0, "healthy", ClassOK},
		{"degraded status error", HealthStatus{Status: "degraded"}, ServiceConfig{}, 0, "degraded", ClassError},
		{"empty status error", HealthStatus{}, ServiceConfig{}, 0, "", ClassError},
		{"key configured", HealthStatus{OpenAIConfigured: true}, ServiceConfig{}, 1, "Configured", ClassOK},
		{"key missing", HealthStatus{OpenAIConfigured: false}, ServiceConfig{}, 1, "Not configured", ClassError},
		{"functions enabled", HealthStatus{}, ServiceConfig{FunctionsEnabled: true}, 5, "Enabled", ClassOK},
		{"functions disabled", HealthStatus{}, ServiceConfig{FunctionsEnabled: false}, 5, "Disabled", ClassOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := Render(tt.health, tt.cfg)
			row := ui.Rows[tt.row]
			if row.Value != tt.wantValue {
				t.Errorf("value = %q; want %q", row.Value, tt.wantValue)
			}
			if row.Class != tt.wantClass {
				t.Errorf("class = %q; want %q", row.Class, tt.wantClass)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	ui := RenderError(errors.New("fetch /health: connection refused"))
	if len(ui.Rows) != 1 {
		t.Fatalf("rows = %d; want 1", len(ui.Rows))
	}
	row := ui.Rows[0]
	if row.Label != "Error" || row.Class != ClassError {
		t.Fatalf("error row = %+v", row)
	}
	if row.Value != "fetch /health: connection refused" {
		t.Fatalf("error text = %q", row.Value)
	}
	if ui.Version != "" {
		t.Fatalf("errored panel has version %q", ui.Version)
	}
	if !ui.Errored() {
		t.Fatal("Errored() = false for error render")
	}
	if ui.Err != "fetch /health: connection refused" {
		t.Fatalf("Err = %q", ui.Err)
	}
}

// Errored must come from the carried failure, not from what the row
// text happens to say.
func TestErroredIgnoresRowText(t *testing.T) {
	health := HealthStatus{Status: "Error"}
	ui := Render(health, ServiceConfig{})
	if ui.Errored() {
		t.Fatal("Errored() = true for a successful render")
	}

	trimmed := RenderError(errors.New("backend down"))
	trimmed.Rows = nil
	if !trimmed.Errored() {
		t.Fatal("Errored() = false once rows are discarded")
	}
}
