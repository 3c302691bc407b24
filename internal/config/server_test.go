package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name        string
		goos        string
		home        string
		programData string
		want        string
	}{
		{
			name: "linux",
			goos: "linux",
			home: "/home/user",
			want: "/etc/voxgate/server.yaml",
		},
		{
			name: "darwin",
			goos: "darwin",
			home: "/Users/test",
			want: "/Users/test/Library/Application Support/voxgate/server.yaml",
		},
		{
			name:        "windows",
			goos:        "windows",
			programData: "C:\\ProgramData",
			want:        "C:/ProgramData/voxgate/server.yaml",
		},
		{
			name: "windows default ProgramData",
			goos: "windows",
			want: "C:/ProgramData/voxgate/server.yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveConfigPath(tt.goos, tt.home, tt.programData, "server.yaml")
			got = strings.ReplaceAll(got, "\\", "/")
			if got != tt.want {
				t.Errorf("config path: got %q want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfigPathDirOverride(t *testing.T) {
	t.Setenv("VOXGATE_CONFIG_DIR", "/opt/voxgate/etc")
	got := filepath.ToSlash(DefaultConfigPath("server.yaml"))
	if got != "/opt/voxgate/etc/server.yaml" {
		t.Errorf("config path: got %q want %q", got, "/opt/voxgate/etc/server.yaml")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := `
port: 9090
log_level: debug
ws_path: /voice
drain_timeout: 30s
assistant:
  model: gpt-4o-realtime-preview-2024-10-01
  voice: verse
  sample_rate: 16000
  functions:
    - send_webhook
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg ServerConfig
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port: got %d want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q want %q", cfg.LogLevel, "debug")
	}
	if cfg.WSPath != "/voice" {
		t.Errorf("ws path: got %q want %q", cfg.WSPath, "/voice")
	}
	if cfg.DrainTimeout != 30*time.Second {
		t.Errorf("drain timeout: got %v want 30s", cfg.DrainTimeout)
	}
	if cfg.Assistant.Voice != "verse" {
		t.Errorf("voice: got %q want %q", cfg.Assistant.Voice, "verse")
	}
	if cfg.Assistant.SampleRate != 16000 {
		t.Errorf("sample rate: got %d want 16000", cfg.Assistant.SampleRate)
	}
	if !cfg.Assistant.FunctionsEnabled() {
		t.Errorf("functions enabled: got false want true")
	}
}

func TestLoadFileMissing(t *testing.T) {
	var cfg ServerConfig
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSplitComma(t *testing.T) {
	if got := splitComma(""); got != nil {
		t.Fatalf("empty input: got %v want nil", got)
	}
	got := splitComma("send_webhook, lookup ,")
	want := []string{"send_webhook", "lookup", ""}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("part %d: got %q want %q", i, got[i], want[i])
		}
	}
}
