package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	SetServerBuildInfo("1.0.0", "abc", "2024-01-01")
	SessionStarted()
	RecordAudioBytes("in", 3200)
	RecordAudioBytes("out", 0)
	RecordClientMessage("input_audio_buffer.append")
	RecordFunctionCall("send_webhook", true)
	RecordUpstreamReconnect()
	SessionEnded("completed", 100*time.Millisecond)

	if v := testutil.ToFloat64(sessionsActive); v != 0 {
		t.Fatalf("active sessions: %v", v)
	}
	if v := testutil.ToFloat64(sessionsTotal.WithLabelValues("completed")); v != 1 {
		t.Fatalf("sessions total: %v", v)
	}
	if v := testutil.ToFloat64(audioBytes.WithLabelValues("in")); v != 3200 {
		t.Fatalf("audio bytes in: %v", v)
	}
	if v := testutil.ToFloat64(audioBytes.WithLabelValues("out")); v != 0 {
		t.Fatalf("audio bytes out: %v", v)
	}
	if v := testutil.ToFloat64(clientMessages.WithLabelValues("input_audio_buffer.append")); v != 1 {
		t.Fatalf("client messages: %v", v)
	}
	if v := testutil.ToFloat64(functionCalls.WithLabelValues("send_webhook", "success")); v != 1 {
		t.Fatalf("function calls: %v", v)
	}
	if v := testutil.ToFloat64(upstreamReconnects); v != 1 {
		t.Fatalf("upstream reconnects: %v", v)
	}
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("2024-01-01", "abc", "1.0.0")); v != 1 {
		t.Fatalf("build info: %v", v)
	}
}
