package aggregate

import (
	"context"

	"github.com/kailas-cloud/intentsearch/internal/domain/result"
)

// ProductSearcher queries the product search service by keyword.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, keyword string) ([]result.Product, error)
}

// ContentSearcher queries the content (blog) search service by keyword.
type ContentSearcher interface {
	SearchPosts(ctx context.Context, keyword string) ([]result.Post, error)
}

// Cache memoizes complete result sets by raw query, plan and fixed query.
type Cache interface {
	Get(key string) (result.Set, bool)
	Add(key string, value result.Set)
}
