package route

import (
	"strings"

	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/domain/result"
	domroute "github.com/kailas-cloud/intentsearch/internal/domain/route"
	"github.com/kailas-cloud/intentsearch/internal/domain/text"
)

// Router maps a classified query to a decision. It holds no mutable state.
type Router struct {
	sports SportLookup
}

// New creates a router over the sport catalog.
func New(sports SportLookup) *Router {
	return &Router{sports: sports}
}

// Route applies the first matching rule:
// gibberish, static page, known community, brand, then aggregation.
func (r *Router) Route(_ query.Query, c intent.Classification) domroute.Decision {
	if c.IsGibberish() {
		return domroute.ShowTrending()
	}

	if pages := c.SuggestedPages(); c.Has(intent.StaticPage) && len(pages) > 0 {
		return domroute.NavigateTo(domroute.PagePath(pages[0]))
	}

	if c.Has(intent.Community) || c.Has(intent.Sport) {
		if sport, ok := r.sports.SportByTitle(c.FixedQuery()); ok {
			return domroute.NavigateTo(domroute.CommunityPath(sport.Title))
		}
	}

	if fixed := strings.TrimSpace(c.FixedQuery()); c.Has(intent.Brand) && fixed != "" {
		return domroute.NavigateTo(domroute.BrandPath(fixed))
	}

	var sources []result.Source
	if c.Has(intent.Product) {
		sources = append(sources, result.Products)
	}
	if c.Has(intent.Content) {
		sources = append(sources, result.Content)
	}
	return domroute.AggregateWith(result.NewPlan(sources...))
}

// Evaluate is Route behind the correction gate: when the service proposes a
// spelling different from what was typed, the user is asked to confirm it first.
func (r *Router) Evaluate(q query.Query, c intent.Classification) domroute.Decision {
	if NeedsCorrection(q, c) {
		return domroute.ShowCorrection(strings.TrimSpace(c.FixedQuery()))
	}
	return r.Route(q, c)
}

// NeedsCorrection reports whether c carries a usable fix that differs from q
// ignoring case.
func NeedsCorrection(q query.Query, c intent.Classification) bool {
	if c.IsGibberish() {
		return false
	}
	fixed := text.Fold(strings.TrimSpace(c.FixedQuery()))
	return fixed != "" && fixed != text.Fold(q.String())
}
