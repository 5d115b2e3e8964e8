package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/intentsearch/internal/domain"
	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/metrics"
)

const (
	provider        = "http"
	maxResponseSize = 1 << 20
)

// Config holds the classification service settings.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client calls a classification service speaking the JSON contract
// POST {base}/classify {"query"} -> Response.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a classification client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
	}
}

// Classify implements the intent resolver's Classifier.
// Every failure wraps domain.ErrClassifierUnavailable.
func (c *Client) Classify(ctx context.Context, q query.Query) (intent.Classification, error) {
	body, err := json.Marshal(Request{Query: q.String()})
	if err != nil {
		return intent.Classification{}, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	data, err := c.do(ctx, http.MethodPost, "/classify", body)
	metrics.ClassifierRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues(provider, "error").Inc()
		return intent.Classification{}, err
	}

	cls, err := Decode(data)
	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues(provider, "invalid_response").Inc()
		return intent.Classification{}, err
	}
	metrics.ClassifierRequestsTotal.WithLabelValues(provider, "success").Inc()
	return cls, nil
}

// HealthCheck probes GET {base}/health.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/health", nil); err != nil {
		return fmt.Errorf("classifier health: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", err, domain.ErrClassifierUnavailable)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, err, domain.ErrClassifierUnavailable)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", err, domain.ErrClassifierUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, domain.ErrClassifierUnavailable)
	}
	return data, nil
}
