// Package outcome describes what a search submission resolved to, as
// delivered to the session that submitted it.
package outcome

import "github.com/kailas-cloud/intentsearch/internal/domain/result"

// Kind of a delivered outcome.
type Kind string

// Outcome kinds. NoResults and Gibberish are states, not errors: both carry
// trending terms instead of results.
const (
	Navigate   Kind = "navigate"
	Correction Kind = "correction"
	Aggregate  Kind = "aggregate"
	NoResults  Kind = "no_results"
	Gibberish  Kind = "gibberish"
)

// Outcome is the response to one submission.
type Outcome struct {
	Kind      Kind
	Query     string
	Sequence  uint64
	Path      string     // Navigate, Aggregate
	Suggested string     // Correction
	Results   result.Set // Aggregate
	Trending  []string   // NoResults, Gibberish
}
