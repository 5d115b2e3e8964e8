package aggregate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/intentsearch/internal/domain"
	"github.com/kailas-cloud/intentsearch/internal/domain/catalog"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/domain/result"
	domroute "github.com/kailas-cloud/intentsearch/internal/domain/route"
	"github.com/kailas-cloud/intentsearch/internal/domain/text"
)

// DefaultSourceTimeout bounds one call to a search source.
const DefaultSourceTimeout = 5 * time.Second

// Sources bundles the network-backed search sources and their per-call timeouts.
type Sources struct {
	Products        ProductSearcher
	Content         ContentSearcher
	ProductsTimeout time.Duration
	ContentTimeout  time.Duration
}

// Aggregator builds result sets for one session.
type Aggregator struct {
	sources Sources
	catalog *catalog.Catalog
	cache   Cache
	logger  *zap.Logger
}

// New creates an aggregator.
func New(sources Sources, cat *catalog.Catalog, cache Cache, logger *zap.Logger) *Aggregator {
	if sources.ProductsTimeout <= 0 {
		sources.ProductsTimeout = DefaultSourceTimeout
	}
	if sources.ContentTimeout <= 0 {
		sources.ContentTimeout = DefaultSourceTimeout
	}
	return &Aggregator{sources: sources, catalog: cat, cache: cache, logger: logger}
}

// Aggregate returns the merged results for q. Only planned sources are called;
// community and static page matches against fixed (or the raw query when fixed
// is blank) are always computed locally.
// Sets are cached per raw query, plan and fixed query, so a set built from a
// degraded classification is not served once the classification recovers.
// If any source fails the whole aggregation fails with domain.ErrSourceUnavailable
// and nothing is cached.
func (a *Aggregator) Aggregate(
	ctx context.Context, q query.Query, fixed string, plan result.Plan,
) (result.Set, error) {
	key := q.String()
	if strings.TrimSpace(fixed) == "" {
		fixed = key
	}
	ck := cacheKey(key, fixed, plan)
	if set, ok := a.cache.Get(ck); ok {
		return set, nil
	}

	set := result.Set{
		Communities: a.matchCommunities(fixed),
		StaticPages: a.matchPages(fixed),
	}

	g, gctx := errgroup.WithContext(ctx)
	if plan.Includes(result.Products) {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.sources.ProductsTimeout)
			defer cancel()
			items, err := a.sources.Products.SearchProducts(callCtx, key)
			if err != nil {
				return domain.NewSourceError(string(result.Products), err)
			}
			set.Products = items
			return nil
		})
	}
	if plan.Includes(result.Content) {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.sources.ContentTimeout)
			defer cancel()
			items, err := a.sources.Content.SearchPosts(callCtx, key)
			if err != nil {
				return domain.NewSourceError(string(result.Content), err)
			}
			set.Content = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Warn("Aggregation failed",
			zap.String("query", key),
			zap.Strings("plan", sourceNames(plan)),
			zap.Error(err),
		)
		return result.Set{}, err
	}

	set = set.Normalize()
	a.cache.Add(ck, set)
	return set, nil
}

// matchCommunities returns sports whose title contains any word of fixed.
func (a *Aggregator) matchCommunities(fixed string) []result.Community {
	words := strings.Fields(text.Fold(fixed))
	if len(words) == 0 {
		return nil
	}
	var out []result.Community
	for _, s := range a.catalog.Sports {
		title := text.Fold(s.Title)
		for _, w := range words {
			if strings.Contains(title, w) {
				out = append(out, result.Community{
					Title:   s.Title,
					Imagery: s.Imagery,
					Path:    domroute.CommunityPath(s.Title),
				})
				break
			}
		}
	}
	return out
}

// matchPages returns static pages whose name contains fixed.
func (a *Aggregator) matchPages(fixed string) []result.StaticPage {
	fixed = strings.TrimSpace(fixed)
	if fixed == "" {
		return nil
	}
	var out []result.StaticPage
	for _, p := range a.catalog.Pages {
		if text.ContainsFold(p.Name, fixed) {
			out = append(out, result.StaticPage{Name: p.Name, Path: p.Path})
		}
	}
	return out
}

func cacheKey(raw, fixed string, plan result.Plan) string {
	return raw + "\x00" + strings.Join(sourceNames(plan), ",") + "\x00" + fixed
}

func sourceNames(plan result.Plan) []string {
	sources := plan.Sources()
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, string(s))
	}
	return names
}
