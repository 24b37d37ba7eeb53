// Package geocode proxies free-text location lookups to LocationIQ,
// restricted to Mexico by default.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Errors surfaced to the HTTP layer.
var (
	ErrQueryRequired  = errors.New("query required")
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
)

const maxBodyBytes = 1 << 20

// Config configures the upstream call.
type Config struct {
	BaseURL      string
	APIKey       string
	CountryCodes string
	UserAgent    string
	Timeout      time.Duration
}

// Client calls the LocationIQ search endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// New constructs a Client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.CountryCodes == "" {
		cfg.CountryCodes = "mx"
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Geocode returns the upstream JSON body for q unchanged. It makes exactly
// one request and caches nothing.
func (c *Client) Geocode(ctx context.Context, q string) (json.RawMessage, error) {
	if strings.TrimSpace(q) == "" {
		return nil, ErrQueryRequired
	}
	endpoint, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("q", q)
	params.Set("countrycodes", c.cfg.CountryCodes)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("locationiq request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read locationiq body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("locationiq returned invalid json")
	}
	return json.RawMessage(body), nil
}
