package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	webhookTimeout     = 10 * time.Second
	maxResponsePreview = 500
)

// Result is the outcome handed back to the model as function_call_output.
// Failures are encoded in the payload, never surfaced as Go errors, so a
// bad tool call cannot take the session down.
type Result map[string]any

// Executor runs assistant functions.
type Executor struct {
	// HTTPClient is used for outbound webhook deliveries. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
	// FallbackURL is used when a send_webhook call omits the url argument;
	// typically extracted from the system prompt.
	FallbackURL string
}

// Execute runs the named function with the given arguments.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) Result {
	switch NormalizeName(name) {
	case "send_webhook":
		return e.sendWebhook(ctx, args)
	default:
		return Result{"error": fmt.Sprintf("Unknown function: %s", name), "status": "error"}
	}
}

func (e *Executor) sendWebhook(ctx context.Context, args map[string]any) Result {
	url, _ := args["url"].(string)
	if url == "" {
		url = e.FallbackURL
	}
	if url == "" {
		return Result{"error": "URL not provided", "status": "error"}
	}
	event, _ := args["event"].(string)
	if event == "" {
		event = "unknown"
	}
	data := args["data"]
	if data == nil {
		data = map[string]any{}
	}

	payload, err := json.Marshal(map[string]any{
		"event":     event,
		"data":      data,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		return Result{"error": err.Error(), "status": "error", "success": false}
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{"error": err.Error(), "status": "error", "success": false}
	}
	req.Header.Set("Content-Type", "application/json")

	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{"error": err.Error(), "status": "error", "success": false}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponsePreview))
	return Result{
		"status":   resp.StatusCode,
		"success":  resp.StatusCode < 400,
		"response": string(body),
		"message":  fmt.Sprintf("Webhook sent successfully with status %d", resp.StatusCode),
	}
}
