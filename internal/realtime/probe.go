package realtime

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const probeTimeout = 5 * time.Second

// Prober checks whether the OpenAI REST API is reachable with the
// configured key. A 401 still counts as reachable: the API answered,
// the key is the problem.
type Prober struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Check performs one reachability probe.
func (p *Prober) Check(ctx context.Context) error {
	base := p.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v1/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("User-Agent", "voxgate/1.0")

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("api status: %d", resp.StatusCode)
	}
	return nil
}
