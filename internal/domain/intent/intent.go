package intent

import (
	"slices"
	"sort"

	"github.com/kailas-cloud/intentsearch/internal/domain/query"
)

// Tag is a coarse intent category attached to a query by the classification service.
type Tag string

// Intent tags.
const (
	Product    Tag = "product"
	Content    Tag = "content"
	Community  Tag = "community"
	Sport      Tag = "sport" // more specific community tag
	StaticPage Tag = "staticPage"
	Brand      Tag = "brand"
)

// IsValid checks if the tag is one of the known values.
func (t Tag) IsValid() bool {
	switch t {
	case Product, Content, Community, Sport, StaticPage, Brand:
		return true
	}
	return false
}

// Classification is the resolved intent of a query. Immutable after creation.
type Classification struct {
	tags           map[Tag]struct{}
	fixedQuery     string
	suggestedPages []string
	isGibberish    bool
}

// New builds a classification from service output. Unknown tags are dropped.
func New(tags []string, fixedQuery string, suggestedPages []string, isGibberish bool) Classification {
	set := make(map[Tag]struct{}, len(tags))
	for _, s := range tags {
		if t := Tag(s); t.IsValid() {
			set[t] = struct{}{}
		}
	}
	return Classification{
		tags:           set,
		fixedQuery:     fixedQuery,
		suggestedPages: slices.Clone(suggestedPages),
		isGibberish:    isGibberish,
	}
}

// Fallback is the safe default used when the classification service fails:
// no tags, the original query as fixed query, no pages, not gibberish.
func Fallback(q query.Query) Classification {
	return Classification{
		tags:       map[Tag]struct{}{},
		fixedQuery: q.String(),
	}
}

// Has reports whether the classification carries tag t.
func (c Classification) Has(t Tag) bool {
	_, ok := c.tags[t]
	return ok
}

// Tags returns the tags in sorted order.
func (c Classification) Tags() []Tag {
	out := make([]Tag, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FixedQuery returns the spelling-corrected query proposed by the service.
func (c Classification) FixedQuery() string { return c.fixedQuery }

// SuggestedPages returns a copy of the ordered page suggestions.
func (c Classification) SuggestedPages() []string { return slices.Clone(c.suggestedPages) }

// IsGibberish reports whether the query was judged unrecognizable.
func (c Classification) IsGibberish() bool { return c.isGibberish }

// Equal reports structural equality.
func (c Classification) Equal(o Classification) bool {
	if c.fixedQuery != o.fixedQuery || c.isGibberish != o.isGibberish {
		return false
	}
	if len(c.tags) != len(o.tags) {
		return false
	}
	for t := range c.tags {
		if !o.Has(t) {
			return false
		}
	}
	return slices.Equal(c.suggestedPages, o.suggestedPages)
}
