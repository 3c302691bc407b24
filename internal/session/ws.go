// Package session relays voice traffic between browser clients and the
// realtime upstream. Each client WebSocket gets its own upstream
// connection; control messages are acknowledged per event id and audio
// flows through as base64 chunks in and binary frames out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxgate/voxgate/internal/audio"
	"github.com/voxgate/voxgate/internal/logx"
	"github.com/voxgate/voxgate/internal/metrics"
	"github.com/voxgate/voxgate/internal/realtime"
	"github.com/voxgate/voxgate/internal/tools"
)

// minCommitBytes rejects commits of buffers too short to transcribe
// (100ms of PCM16 at 16kHz).
const minCommitBytes = 3200

// redialDelay spaces the single retry after a transient dial failure.
const redialDelay = 200 * time.Millisecond

// Upstream is the realtime connection a session relays to.
type Upstream interface {
	AppendAudio(ctx context.Context, pcm []byte) error
	CommitAudio(ctx context.Context) error
	ClearAudio(ctx context.Context) error
	CancelResponse(ctx context.Context) error
	SendFunctionResult(ctx context.Context, callID string, result any) error
	ReadEvent(ctx context.Context) (realtime.Event, error)
	Close() error
}

// Dialer establishes the upstream connection for a new session.
type Dialer func(ctx context.Context) (Upstream, error)

// conn serializes writes to the client socket; the read loop and the
// upstream pump both send.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(ctx context.Context, kind websocket.MessageType, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.Write(ctx, kind, data)
}

func (c *conn) sendJSON(ctx context.Context, data []byte) {
	c.write(ctx, websocket.MessageText, data)
}

func (c *conn) sendBinary(ctx context.Context, data []byte) {
	c.write(ctx, websocket.MessageBinary, data)
}

// Handler accepts client voice connections.
func Handler(reg *Registry, dial Dialer, exec *tools.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		id := uuid.NewString()
		log := logx.Log.With().Str("session_id", id).Logger()
		log.Info().Str("remote_addr", r.RemoteAddr).Msg("session accepted")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		c := &conn{ws: ws}

		up, err := dial(ctx)
		if err != nil && !errors.Is(err, realtime.ErrNoAPIKey) {
			// One retry absorbs transient upstream failures.
			log.Warn().Err(err).Msg("upstream dial failed, retrying")
			metrics.RecordUpstreamReconnect()
			select {
			case <-time.After(redialDelay):
			case <-ctx.Done():
			}
			up, err = dial(ctx)
		}
		if err != nil {
			code := codeConnectFailed
			msg := "Could not connect to the assistant backend"
			if errors.Is(err, realtime.ErrNoAPIKey) {
				code = codeNoAPIKey
				msg = "Missing OpenAI API key"
			}
			log.Warn().Err(err).Str("code", code).Msg("upstream dial failed")
			c.sendJSON(ctx, errorJSON(code, msg))
			_ = ws.Close(websocket.StatusPolicyViolation, code)
			return
		}
		defer func() { _ = up.Close() }()

		reg.Add(Info{ID: id, RemoteAddr: r.RemoteAddr, ConnectedAt: time.Now()})
		metrics.SessionStarted()
		start := time.Now()
		outcome := "completed"
		defer func() {
			reg.Remove(id)
			metrics.SessionEnded(outcome, time.Since(start))
			log.Info().Str("outcome", outcome).Dur("duration", time.Since(start)).Msg("session closed")
		}()

		b, _ := json.Marshal(statusMessage{Type: "connection_status", Status: "connected", Message: "Session established"})
		c.sendJSON(ctx, b)

		var upstreamErr atomic.Bool
		upstreamDone := make(chan struct{})
		go func() {
			defer close(upstreamDone)
			defer cancel()
			if pumpUpstream(ctx, c, up, exec, log) {
				upstreamErr.Store(true)
			}
		}()

		s := &state{conn: c, up: up, log: log}
		for {
			kind, data, err := ws.Read(ctx)
			if err != nil {
				cancel()
				<-upstreamDone
				if upstreamErr.Load() {
					outcome = "upstream_error"
				}
				_ = ws.Close(websocket.StatusNormalClosure, "")
				return
			}
			switch kind {
			case websocket.MessageText:
				s.handleText(ctx, data)
			case websocket.MessageBinary:
				s.buffer = append(s.buffer, data...)
				metrics.RecordAudioBytes("in", len(data))
				c.sendJSON(ctx, ackJSON("binary", ""))
			}
		}
	}
}

// state is the per-session mutable data touched only by the client read
// loop.
type state struct {
	conn   *conn
	up     Upstream
	log    zerolog.Logger
	buffer []byte
}

func (s *state) handleText(ctx context.Context, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.conn.sendJSON(ctx, errorJSON(codeUnknownMessageType, "Malformed message"))
		return
	}
	metrics.RecordClientMessage(msg.Type)

	switch msg.Type {
	case "ping":
		b, _ := json.Marshal(ackMessage{Type: "pong"})
		s.conn.sendJSON(ctx, b)

	case "input_audio_buffer.append":
		chunk, err := audio.DecodeBuffer(msg.Audio)
		if err != nil {
			s.conn.sendJSON(ctx, errorJSON(codeUnknownMessageType, "Invalid audio payload"))
			return
		}
		s.buffer = append(s.buffer, chunk...)
		metrics.RecordAudioBytes("in", len(chunk))
		if err := s.up.AppendAudio(ctx, chunk); err != nil {
			s.conn.sendJSON(ctx, errorJSON(codeNotConnected, "Lost connection to the assistant backend"))
			return
		}
		s.conn.sendJSON(ctx, ackJSON(msg.Type, msg.EventID))

	case "input_audio_buffer.commit":
		if len(s.buffer) < minCommitBytes {
			s.conn.sendJSON(ctx, warningJSON(codeBufferTooSmall, "Audio too short, try speaking longer"))
			s.buffer = s.buffer[:0]
			return
		}
		if err := s.up.CommitAudio(ctx); err != nil {
			s.conn.sendJSON(ctx, errorJSON(codeNotConnected, "Lost connection to the assistant backend"))
			return
		}
		s.buffer = s.buffer[:0]
		s.conn.sendJSON(ctx, ackJSON(msg.Type, msg.EventID))

	case "input_audio_buffer.clear":
		s.buffer = s.buffer[:0]
		if err := s.up.ClearAudio(ctx); err != nil {
			s.conn.sendJSON(ctx, errorJSON(codeNotConnected, "Lost connection to the assistant backend"))
			return
		}
		s.conn.sendJSON(ctx, ackJSON(msg.Type, msg.EventID))

	case "response.cancel":
		if err := s.up.CancelResponse(ctx); err != nil {
			s.conn.sendJSON(ctx, errorJSON(codeNotConnected, "Lost connection to the assistant backend"))
			return
		}
		s.conn.sendJSON(ctx, ackJSON(msg.Type, msg.EventID))

	default:
		s.conn.sendJSON(ctx, errorJSON(codeUnknownMessageType, "Unknown message type: "+msg.Type))
	}
}

// pumpUpstream forwards upstream events to the client until the upstream
// closes: errors pass through, audio is decoded into binary frames, and
// completed function calls are executed before forwarding. It reports
// whether the upstream failed while the session was still live.
func pumpUpstream(ctx context.Context, c *conn, up Upstream, exec *tools.Executor, log zerolog.Logger) bool {
	for {
		ev, err := up.ReadEvent(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("upstream connection lost")
				// A fresh context: the session context is about to be
				// cancelled, but the client should still see the error.
				sendCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				c.sendJSON(sendCtx, errorJSON(codeConnectionLost, "Connection to the assistant was lost"))
				cancel()
				return true
			}
			return false
		}

		switch ev.Type {
		case "audio":
			var payload struct {
				Data string `json:"data"`
			}
			if err := json.Unmarshal(ev.Raw, &payload); err != nil {
				continue
			}
			chunk, err := audio.DecodeBuffer(payload.Data)
			if err != nil {
				log.Debug().Err(err).Msg("dropping undecodable audio event")
				continue
			}
			metrics.RecordAudioBytes("out", len(chunk))
			c.sendBinary(ctx, chunk)

		case "response.function_call_arguments.done":
			handleFunctionCall(ctx, up, exec, ev.Raw, log)
			c.sendJSON(ctx, ev.Raw)

		default:
			c.sendJSON(ctx, ev.Raw)
		}
	}
}

func handleFunctionCall(ctx context.Context, up Upstream, exec *tools.Executor, raw json.RawMessage, log zerolog.Logger) {
	if exec == nil {
		return
	}
	fc, err := realtime.ParseFunctionCall(raw)
	if err != nil {
		log.Warn().Err(err).Msg("unparseable function call event")
		return
	}
	var args map[string]any
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			log.Warn().Err(err).Str("name", fc.Name).Msg("bad function arguments")
			args = nil
		}
	}
	res := exec.Execute(ctx, fc.Name, args)
	_, failed := res["error"]
	metrics.RecordFunctionCall(tools.NormalizeName(fc.Name), !failed)
	log.Info().Str("name", fc.Name).Str("call_id", fc.CallID).Bool("success", !failed).Msg("function executed")
	if err := up.SendFunctionResult(ctx, fc.CallID, res); err != nil {
		log.Warn().Err(err).Msg("send function result")
	}
}
