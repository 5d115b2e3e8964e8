package search

import (
	"context"

	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/domain/route"
	"github.com/kailas-cloud/intentsearch/internal/usecase/session"
)

// Sessions looks up per-tab state.
type Sessions interface {
	Get(id string) (*session.Session, error)
	Peek(id string) (*session.Session, bool)
}

// RecentWriter records accepted queries per device.
type RecentWriter interface {
	Add(ctx context.Context, device string, q query.Query) error
}

// Router decides what to do with a classified query.
type Router interface {
	Route(q query.Query, c intent.Classification) route.Decision
	Evaluate(q query.Query, c intent.Classification) route.Decision
}

// Trending supplies the terms shown for gibberish and empty results.
type Trending interface {
	TrendingTerms() []string
}
