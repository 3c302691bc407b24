package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "voxgate_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "voxgate_sessions_active",
			Help: "Number of voice sessions currently connected",
		},
	)

	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxgate_sessions_total",
			Help: "Number of voice sessions by outcome",
		},
		[]string{"outcome"},
	)

	sessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voxgate_session_duration_seconds",
			Help:    "Voice session duration",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	audioBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxgate_audio_bytes_total",
			Help: "Audio bytes relayed per direction",
		},
		[]string{"direction"},
	)

	clientMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxgate_client_messages_total",
			Help: "Client control messages by type",
		},
		[]string{"type"},
	)

	upstreamReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "voxgate_upstream_reconnects_total",
			Help: "Reconnections to the realtime upstream",
		},
	)

	functionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxgate_function_calls_total",
			Help: "Assistant function executions",
		},
		[]string{"name", "outcome"},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, sessionsActive, sessionsTotal, sessionDuration, audioBytes, clientMessages, upstreamReconnects, functionCalls)
}

// SetServerBuildInfo sets the build info metric for the server.
func SetServerBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// SessionStarted increments the active session gauge.
func SessionStarted() {
	sessionsActive.Inc()
}

// SessionEnded records a finished session with its outcome and duration.
func SessionEnded(outcome string, d time.Duration) {
	sessionsActive.Dec()
	sessionsTotal.WithLabelValues(outcome).Inc()
	sessionDuration.Observe(d.Seconds())
}

// RecordAudioBytes counts relayed audio bytes for a direction ("in" or "out").
func RecordAudioBytes(direction string, n int) {
	if n > 0 {
		audioBytes.WithLabelValues(direction).Add(float64(n))
	}
}

// RecordClientMessage counts a client control message by type.
func RecordClientMessage(msgType string) {
	clientMessages.WithLabelValues(msgType).Inc()
}

// RecordUpstreamReconnect counts a retried dial to the realtime upstream.
func RecordUpstreamReconnect() {
	upstreamReconnects.Inc()
}

// RecordFunctionCall counts an assistant function execution.
func RecordFunctionCall(name string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	functionCalls.WithLabelValues(name, outcome).Inc()
}
