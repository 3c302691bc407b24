package server

import (
	"net/http"

	"github.com/voxgate/voxgate/internal/audio"
	"github.com/voxgate/voxgate/internal/config"
)

// AudioCheckHandler serves a short silent WAV at the configured sample
// rate so operators can verify the client playback path end to end.
func AudioCheckHandler(cfg config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate := cfg.Assistant.SampleRate
		if rate <= 0 {
			rate = 24000
		}
		// 200ms of PCM16 silence.
		pcm := make([]byte, rate/5*2)
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(audio.WAVFromPCM(pcm, rate, 2, 1))
	}
}
