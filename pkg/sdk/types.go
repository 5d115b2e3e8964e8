package intentsearch

import (
	"github.com/kailas-cloud/intentsearch/internal/domain/catalog"
	"github.com/kailas-cloud/intentsearch/internal/domain/outcome"
	"github.com/kailas-cloud/intentsearch/internal/domain/result"
)

// Result and catalog entries share the engine's wire shapes.
type (
	Product    = result.Product
	Post       = result.Post
	Community  = result.Community
	StaticPage = result.StaticPage
	Sport      = catalog.Sport
	Page       = catalog.Page
)

// Kind is what the caller should do with an Outcome.
type Kind string

// Outcome kinds.
const (
	KindNavigate   Kind = Kind(outcome.Navigate)
	KindCorrection Kind = Kind(outcome.Correction)
	KindAggregate  Kind = Kind(outcome.Aggregate)
	KindNoResults  Kind = Kind(outcome.NoResults)
	KindGibberish  Kind = Kind(outcome.Gibberish)
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text     string
	IsRecent bool
}

// Results holds the aggregated matches of one query. Lists are never nil.
type Results struct {
	Products    []Product
	Content     []Post
	Communities []Community
	StaticPages []StaticPage
}

// Outcome is the answer to one submitted query.
type Outcome struct {
	Kind      Kind
	Query     string
	Sequence  uint64
	Path      string   // Navigate and Aggregate
	Suggested string   // Correction
	Results   Results  // Aggregate
	Trending  []string // Gibberish and NoResults
}

// Classification is what a Classifier reports for a query.
// Unknown intent names are ignored.
type Classification struct {
	Intents        []string // product, content, community, sport, staticPage, brand
	FixedQuery     string
	SuggestedPages []string
	IsGibberish    bool
}

// Catalog overrides the compiled-in reference data. Empty lists keep the defaults.
type Catalog struct {
	Sports   []Sport
	Pages    []Page
	Terms    []string
	Trending []string
}

func outcomeFromDomain(o outcome.Outcome) Outcome {
	out := Outcome{
		Kind:      Kind(o.Kind),
		Query:     o.Query,
		Sequence:  o.Sequence,
		Path:      o.Path,
		Suggested: o.Suggested,
		Trending:  o.Trending,
	}
	if o.Kind == outcome.Aggregate {
		set := o.Results.Normalize()
		out.Results = Results{
			Products:    set.Products,
			Content:     set.Content,
			Communities: set.Communities,
			StaticPages: set.StaticPages,
		}
	}
	return out
}
