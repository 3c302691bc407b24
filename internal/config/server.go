package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AssistantConfig holds the operating parameters of the voice assistant
// session established for each client.
type AssistantConfig struct {
	Model             string   `yaml:"model"`
	Voice             string   `yaml:"voice"`
	SampleRate        int      `yaml:"sample_rate"`
	SystemPrompt      string   `yaml:"system_prompt"`
	Temperature       float64  `yaml:"temperature"`
	MaxResponseTokens int      `yaml:"max_response_tokens"`
	Functions         []string `yaml:"functions"`
}

// FunctionsEnabled reports whether any assistant function is configured.
func (a AssistantConfig) FunctionsEnabled() bool {
	return len(a.Functions) > 0
}

// ServerConfig holds configuration for the voxgate server.
type ServerConfig struct {
	Port           int             `yaml:"port"`
	MetricsAddr    string          `yaml:"metrics_addr"`
	LogLevel       string          `yaml:"log_level"`
	ConfigFile     string          `yaml:"-"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RedisAddr      string          `yaml:"redis_addr"`
	WSPath         string          `yaml:"ws_path"`
	OpenAIAPIKey   string          `yaml:"openai_api_key"`
	OpenAIBaseURL  string          `yaml:"openai_base_url"`
	RealtimeURL    string          `yaml:"realtime_url"`
	ConnectTimeout time.Duration   `yaml:"-"`
	DrainTimeout   time.Duration   `yaml:"-"`
	Assistant      AssistantConfig `yaml:"assistant"`
}

// UnmarshalYAML decodes the config, accepting durations in time.ParseDuration
// notation (e.g. "30s", "5m").
func (c *ServerConfig) UnmarshalYAML(value *yaml.Node) error {
	type alias ServerConfig
	aux := struct {
		alias          `yaml:",inline"`
		ConnectTimeout string `yaml:"connect_timeout"`
		DrainTimeout   string `yaml:"drain_timeout"`
	}{alias: alias(*c)}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*c = ServerConfig(aux.alias)
	if aux.ConnectTimeout != "" {
		d, err := time.ParseDuration(aux.ConnectTimeout)
		if err != nil {
			return fmt.Errorf("connect_timeout: %w", err)
		}
		c.ConnectTimeout = d
	}
	if aux.DrainTimeout != "" {
		d, err := time.ParseDuration(aux.DrainTimeout)
		if err != nil {
			return fmt.Errorf("drain_timeout: %w", err)
		}
		c.DrainTimeout = d
	}
	return nil
}

// BindFlags populates the struct with defaults from environment variables and
// binds command line flags so main can call flag.Parse().
func (c *ServerConfig) BindFlags() {
	c.ConfigFile = getEnv("CONFIG_FILE", DefaultConfigPath("server.yaml"))
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	c.Port = port
	mp := getEnv("METRICS_PORT", "")
	switch {
	case mp == "":
		c.MetricsAddr = fmt.Sprintf(":%d", port)
	case strings.Contains(mp, ":"):
		c.MetricsAddr = mp
	default:
		c.MetricsAddr = ":" + mp
	}
	c.AllowedOrigins = splitComma(getEnv("ALLOWED_ORIGINS", ""))
	c.RedisAddr = getEnv("REDIS_ADDR", "")
	c.WSPath = getEnv("WS_PATH", "/ws")
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", "https://api.openai.com")
	c.RealtimeURL = getEnv("REALTIME_URL", "wss://api.openai.com/v1/realtime")
	if d, err := time.ParseDuration(getEnv("CONNECT_TIMEOUT", "30s")); err == nil {
		c.ConnectTimeout = d
	} else {
		c.ConnectTimeout = 30 * time.Second
	}
	if d, err := time.ParseDuration(getEnv("DRAIN_TIMEOUT", "5m")); err == nil {
		c.DrainTimeout = d
	} else {
		c.DrainTimeout = 5 * time.Minute
	}

	c.Assistant = AssistantConfig{
		Model:             getEnv("MODEL", "gpt-4o-realtime-preview-2024-10-01"),
		Voice:             getEnv("VOICE", "alloy"),
		SystemPrompt:      getEnv("SYSTEM_PROMPT", "You are a helpful voice assistant. Respond briefly and naturally."),
		Temperature:       0.7,
		MaxResponseTokens: 500,
		Functions:         splitComma(getEnv("FUNCTIONS", "")),
	}
	if sr, err := strconv.Atoi(getEnv("SAMPLE_RATE", "24000")); err == nil {
		c.Assistant.SampleRate = sr
	} else {
		c.Assistant.SampleRate = 24000
	}

	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the public API")
	flag.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port; defaults to the value of --port")
	flag.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis connection URL for server state")
	flag.StringVar(&c.WSPath, "ws-path", c.WSPath, "path clients use to establish voice WebSocket connections")
	flag.StringVar(&c.OpenAIAPIKey, "openai-api-key", c.OpenAIAPIKey, "OpenAI API key used for realtime sessions; leave empty to run unconfigured")
	flag.StringVar(&c.OpenAIBaseURL, "openai-base-url", c.OpenAIBaseURL, "OpenAI REST API base URL used for health probes")
	flag.StringVar(&c.RealtimeURL, "realtime-url", c.RealtimeURL, "OpenAI Realtime API WebSocket URL")
	flag.DurationVar(&c.ConnectTimeout, "connect-timeout", c.ConnectTimeout, "maximum time to establish the upstream realtime connection")
	flag.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to wait for active sessions on shutdown (0 to exit immediately)")
	flag.StringVar(&c.Assistant.Model, "model", c.Assistant.Model, "realtime model requested from OpenAI")
	flag.StringVar(&c.Assistant.Voice, "voice", c.Assistant.Voice, "voice used for speech synthesis")
	flag.IntVar(&c.Assistant.SampleRate, "sample-rate", c.Assistant.SampleRate, "PCM sample rate in Hz expected from clients")
	flag.StringVar(&c.Assistant.SystemPrompt, "system-prompt", c.Assistant.SystemPrompt, "system instructions for the assistant")
	flag.Func("functions", "comma separated list of enabled assistant functions", func(v string) error {
		c.Assistant.Functions = splitComma(v)
		return nil
	})
	flag.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
}

// LoadFile populates the config from a YAML file.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
