package searchapi

import (
	"context"

	"github.com/kailas-cloud/intentsearch/internal/domain/result"
)

// Content searches the blog service.
type Content struct {
	c client
}

// NewContent creates a content search client.
func NewContent(cfg Config) *Content {
	return &Content{c: newClient(string(result.Content), cfg)}
}

type postsResponse struct {
	Items []result.Post `json:"items"`
}

// SearchPosts calls GET {base}/posts/search?keyword=.
func (c *Content) SearchPosts(ctx context.Context, keyword string) ([]result.Post, error) {
	var resp postsResponse
	if err := c.c.search(ctx, "/posts/search", keyword, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// HealthCheck probes the service.
func (c *Content) HealthCheck(ctx context.Context) error { return c.c.healthCheck(ctx) }
