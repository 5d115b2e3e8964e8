package route

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/intentsearch/internal/domain/result"
	"github.com/kailas-cloud/intentsearch/internal/domain/text"
)

// Kind identifies what the engine does with a submitted query.
type Kind string

// Decision kinds. Gibberish is a terminal state rather than a routing decision proper:
// it short-circuits the router and shows trending terms.
const (
	Navigate   Kind = "navigate"
	Correction Kind = "correction"
	Aggregate  Kind = "aggregate"
	Gibberish  Kind = "gibberish"
)

// Decision is the single output of routing a (query, classification) pair.
type Decision struct {
	kind      Kind
	path      string
	suggested string
	plan      result.Plan
}

// NavigateTo is a direct navigation to path.
func NavigateTo(path string) Decision { return Decision{kind: Navigate, path: path} }

// ShowCorrection asks the user to confirm the corrected query.
func ShowCorrection(suggested string) Decision {
	return Decision{kind: Correction, suggested: suggested}
}

// AggregateWith fetches results from the planned sources.
func AggregateWith(plan result.Plan) Decision { return Decision{kind: Aggregate, plan: plan} }

// ShowTrending is the gibberish terminal state.
func ShowTrending() Decision { return Decision{kind: Gibberish} }

// Kind returns the decision kind.
func (d Decision) Kind() Kind { return d.kind }

// Path returns the navigation target for Navigate decisions.
func (d Decision) Path() string { return d.path }

// Suggested returns the corrected query for Correction decisions.
func (d Decision) Suggested() string { return d.suggested }

// Plan returns the aggregation plan for Aggregate decisions.
func (d Decision) Plan() result.Plan { return d.plan }

// SearchPath is the canonical results page of an aggregated query.
func SearchPath(raw string) string {
	return "/search?query=" + url.QueryEscape(raw)
}

// CommunityPath is the page of a known community.
func CommunityPath(title string) string {
	return "/community/" + text.Slug(title)
}

// BrandPath is the product listing filtered by brand.
func BrandPath(brand string) string {
	return "/products?brand=" + url.QueryEscape(brand)
}

// PagePath is the path of a static page suggested by name, lower-cased.
func PagePath(name string) string {
	return "/" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "/")
}
