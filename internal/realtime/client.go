// Package realtime implements the WebSocket client for the OpenAI
// Realtime API used by voice sessions.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/audio"
	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/tools"
)

const (
	// maxMessageSize bounds a single upstream frame; audio responses can
	// be large.
	maxMessageSize = 15 * 1024 * 1024

	defaultConnectTimeout = 30 * time.Second
)

var (
	// ErrNoAPIKey is returned when dialing without a configured API key.
	ErrNoAPIKey = errors.New("realtime: no API key configured")
	// ErrClosed is returned for operations on a closed client.
	ErrClosed = errors.New("realtime: connection closed")
)

// Options configures a realtime connection.
type Options struct {
	APIKey         string
	URL            string
	Assistant      config.AssistantConfig
	ConnectTimeout time.Duration
}

// Event is a single upstream message. Raw holds the full JSON payload so
// unrecognized event types can be passed through untouched.
type Event struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// FunctionCall is the decoded form of a function_call_arguments.done event.
type FunctionCall struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ParseFunctionCall decodes the function call fields from an event payload.
func ParseFunctionCall(raw json.RawMessage) (FunctionCall, error) {
	var fc FunctionCall
	if err := json.Unmarshal(raw, &fc); err != nil {
		return FunctionCall{}, err
	}
	if fc.Name == "" || fc.CallID == "" {
		return FunctionCall{}, errors.New("realtime: incomplete function call event")
	}
	return fc, nil
}

// Client is a connection to the realtime upstream for one voice session.
type Client struct {
	conn *websocket.Conn
	opts Options
}

// Dial connects, configures the session, and returns a ready client.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u, err := sessionURL(opts.URL, opts.Assistant.Model)
	if err != nil {
		return nil, err
	}
	hdr := make(map[string][]string)
	hdr["Authorization"] = []string{"Bearer " + opts.APIKey}
	hdr["OpenAI-Beta"] = []string{"realtime=v1"}
	hdr["User-Agent"] = []string{"voxgate/1.0"}

	conn, _, err := websocket.Dial(dialCtx, u, &websocket.DialOptions{HTTPHeader: hdr})
	if err != nil {
		return nil, fmt.Errorf("realtime: dial: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{conn: conn, opts: opts}
	if err := c.sessionUpdate(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("realtime: session update: %w", err)
	}
	return c, nil
}

func sessionURL(base, model string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("realtime: parse url: %w", err)
	}
	q := u.Query()
	if q.Get("model") == "" && model != "" {
		q.Set("model", model)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// sessionUpdate pushes the assistant configuration: server-side voice
// activity detection, PCM16 in and out, voice, instructions, and the
// enabled tool definitions.
func (c *Client) sessionUpdate(ctx context.Context) error {
	a := c.opts.Assistant
	defs := tools.Resolve(a.Functions)
	toolSpecs := make([]map[string]any, 0, len(defs))
	for _, d := range defs {
		toolSpecs = append(toolSpecs, map[string]any{
			"type":        "function",
			"name":        d.Name,
			"description": d.Description,
			"parameters":  d.Parameters,
		})
	}
	toolChoice := "none"
	if len(toolSpecs) > 0 {
		toolChoice = "auto"
	}

	return c.send(ctx, map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"turn_detection": map[string]any{
				"type":                "server_vad",
				"threshold":           0.25,
				"prefix_padding_ms":   200,
				"silence_duration_ms": 300,
				"create_response":     true,
			},
			"input_audio_format":         "pcm16",
			"output_audio_format":        "pcm16",
			"voice":                      a.Voice,
			"instructions":               a.SystemPrompt,
			"modalities":                 []string{"text", "audio"},
			"temperature":                a.Temperature,
			"max_response_output_tokens": a.MaxResponseTokens,
			"tools":                      toolSpecs,
			"tool_choice":                toolChoice,
			"input_audio_transcription":  map[string]any{"model": "whisper-1"},
		},
	})
}

func (c *Client) send(ctx context.Context, v any) error {
	if c.conn == nil {
		return ErrClosed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, b)
}

// AppendAudio forwards a PCM16 chunk to the upstream input buffer.
func (c *Client) AppendAudio(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	return c.send(ctx, map[string]any{
		"type":     "input_audio_buffer.append",
		"audio":    audio.EncodeBuffer(pcm),
		"event_id": eventID("audio"),
	})
}

// CommitAudio signals that the user finished speaking.
func (c *Client) CommitAudio(ctx context.Context) error {
	return c.send(ctx, map[string]any{
		"type":     "input_audio_buffer.commit",
		"event_id": eventID("commit"),
	})
}

// ClearAudio discards any pending upstream input audio.
func (c *Client) ClearAudio(ctx context.Context) error {
	return c.send(ctx, map[string]any{
		"type":     "input_audio_buffer.clear",
		"event_id": eventID("clear"),
	})
}

// CancelResponse aborts the in-flight assistant response.
func (c *Client) CancelResponse(ctx context.Context) error {
	return c.send(ctx, map[string]any{
		"type":     "response.cancel",
		"event_id": eventID("cancel"),
	})
}

// SendFunctionResult reports a function execution result and asks the
// model for a follow-up response.
func (c *Client) SendFunctionResult(ctx context.Context, callID string, result any) error {
	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.send(ctx, map[string]any{
		"type":     "conversation.item.create",
		"event_id": eventID("funcres"),
		"item": map[string]any{
			"id":      shortID("func_"),
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(out),
		},
	}); err != nil {
		return err
	}
	a := c.opts.Assistant
	return c.send(ctx, map[string]any{
		"type":     "response.create",
		"event_id": eventID("resp_after_func"),
		"response": map[string]any{
			"modalities":        []string{"text", "audio"},
			"voice":             a.Voice,
			"instructions":      a.SystemPrompt,
			"temperature":       a.Temperature,
			"max_output_tokens": 200,
		},
	})
}

// ReadEvent blocks until the next upstream event arrives.
func (c *Client) ReadEvent(ctx context.Context) (Event, error) {
	if c.conn == nil {
		return Event{}, ErrClosed
	}
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return Event{}, err
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("realtime: decode event: %w", err)
	}
	ev.Raw = data
	return ev, nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "closing")
	c.conn = nil
	return err
}

func eventID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// shortID generates an identifier of at most 32 characters, the limit
// the realtime API enforces on item ids.
func shortID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	max := 32 - len(prefix)
	if max < 0 {
		max = 0
	}
	if len(raw) > max {
		raw = raw[:max]
	}
	return prefix + raw
}
