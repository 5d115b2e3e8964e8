package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/intentsearch/internal/domain"
)

// MaxLength is the maximum accepted query length in runes.
const MaxLength = 256

// Query is a trimmed, non-empty search string. Equality is case-sensitive.
type Query struct {
	raw string
}

// New trims raw input and validates it.
func New(raw string) (Query, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Query{}, domain.ErrEmptyQuery
	}
	if utf8.RuneCountInString(s) > MaxLength {
		return Query{}, fmt.Errorf("%w (max %d chars)", domain.ErrQueryTooLong, MaxLength)
	}
	return Query{raw: s}, nil
}

// MustNew is New for literals known to be valid. Panics otherwise.
func MustNew(raw string) Query {
	q, err := New(raw)
	if err != nil {
		panic(err)
	}
	return q
}

// String returns the raw trimmed text. It is the cache key for classifications and results.
func (q Query) String() string { return q.raw }

// IsZero reports whether q was never constructed.
func (q Query) IsZero() bool { return q.raw == "" }
