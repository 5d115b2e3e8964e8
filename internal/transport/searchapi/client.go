// Package searchapi calls the external keyword search services for products
// and blog content.
package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/kailas-cloud/intentsearch/internal/metrics"
)

const maxResponseSize = 4 << 20

// Config holds one search service's settings.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type searchParams struct {
	Keyword string `url:"keyword"`
}

type client struct {
	source  string
	baseURL string
	apiKey  string
	http    *http.Client
}

func newClient(source string, cfg Config) client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return client{
		source:  source,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
	}
}

// search issues GET {base}{path}?keyword= and decodes the JSON reply into out.
func (c client) search(ctx context.Context, path, keyword string, out any) error {
	start := time.Now()
	err := c.get(ctx, path, searchParams{Keyword: keyword}, out)
	metrics.SourceRequestDuration.WithLabelValues(c.source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.source, "error").Inc()
		return err
	}
	metrics.SourceRequestsTotal.WithLabelValues(c.source, "success").Inc()
	return nil
}

func (c client) get(ctx context.Context, path string, params any, out any) error {
	target := c.baseURL + path
	if params != nil {
		values, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		target += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// healthCheck probes GET {base}/health.
func (c client) healthCheck(ctx context.Context) error {
	if err := c.get(ctx, "/health", nil, nil); err != nil {
		return fmt.Errorf("%s health: %w", c.source, err)
	}
	return nil
}
