package statuspanel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client fetches the two status payloads from a backend.
type Client struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string
	// HTTPClient defaults to http.DefaultClient when nil.
	HTTPClient *http.Client
}

// Fetch retrieves /health and then /config. The calls run in sequence;
// any network failure, non-OK status, or undecodable body fails the
// whole refresh.
func (c *Client) Fetch(ctx context.Context) (HealthStatus, ServiceConfig, error) {
	var health HealthStatus
	var cfg ServiceConfig
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return HealthStatus{}, ServiceConfig{}, err
	}
	if err := c.getJSON(ctx, "/config", &cfg); err != nil {
		return HealthStatus{}, ServiceConfig{}, err
	}
	return health, cfg, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
