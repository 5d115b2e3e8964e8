package suggest

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/domain/text"
)

// Defaults for Options fields left at zero.
const (
	DefaultMinChars       = 2
	DefaultMaxSuggestions = 10
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text     string
	IsRecent bool
}

// Options tunes the provider.
type Options struct {
	MinChars       int
	MaxSuggestions int
}

// Provider merges a device's recent queries with the term dictionary.
// It is local-only and never fails.
type Provider struct {
	recent   RecentReader
	terms    []string
	minChars int
	max      int
	logger   *zap.Logger
}

// New creates a suggestion provider over the given term dictionary.
func New(recent RecentReader, terms []string, opts Options, logger *zap.Logger) *Provider {
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	return &Provider{
		recent:   recent,
		terms:    terms,
		minChars: opts.MinChars,
		max:      opts.MaxSuggestions,
		logger:   logger,
	}
}

// MinChars returns the input length below which no suggestions are produced.
func (p *Provider) MinChars() int { return p.minChars }

// Suggest returns recent matches (substring) followed by dictionary matches (prefix),
// deduplicated case-insensitively and truncated to the configured maximum.
func (p *Provider) Suggest(ctx context.Context, device, partial string) []Suggestion {
	partial = strings.TrimSpace(partial)
	if utf8.RuneCountInString(partial) < p.minChars {
		return []Suggestion{}
	}
	needle := text.Fold(partial)

	recent, err := p.recent.Get(ctx, device)
	if err != nil {
		p.logger.Warn("Recent queries unavailable for suggestions",
			zap.String("device", device), zap.Error(err))
		recent = nil
	}

	out := make([]Suggestion, 0, p.max)
	seen := make(map[string]struct{}, p.max)
	for _, r := range recent {
		if len(out) == p.max {
			return out
		}
		folded := text.Fold(r)
		if strings.Contains(folded, needle) {
			seen[folded] = struct{}{}
			out = append(out, Suggestion{Text: r, IsRecent: true})
		}
	}
	for _, term := range p.terms {
		if len(out) == p.max {
			return out
		}
		folded := text.Fold(term)
		if _, dup := seen[folded]; dup || !strings.HasPrefix(folded, needle) {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, Suggestion{Text: term})
	}
	return out
}
