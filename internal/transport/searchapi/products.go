package searchapi

import (
	"context"

	"github.com/kailas-cloud/intentsearch/internal/domain/result"
)

// Products searches the product catalog service.
type Products struct {
	c client
}

// NewProducts creates a product search client.
func NewProducts(cfg Config) *Products {
	return &Products{c: newClient(string(result.Products), cfg)}
}

type productsResponse struct {
	Items []result.Product `json:"items"`
}

// SearchProducts calls GET {base}/products/search?keyword=.
func (p *Products) SearchProducts(ctx context.Context, keyword string) ([]result.Product, error) {
	var resp productsResponse
	if err := p.c.search(ctx, "/products/search", keyword, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// HealthCheck probes the service.
func (p *Products) HealthCheck(ctx context.Context) error { return p.c.healthCheck(ctx) }
