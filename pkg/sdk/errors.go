package intentsearch

import "github.com/kailas-cloud/intentsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrEmptyQuery        = domain.ErrEmptyQuery
	ErrQueryTooLong      = domain.ErrQueryTooLong
	ErrSourceUnavailable = domain.ErrSourceUnavailable
	ErrStaleResponse     = domain.ErrStaleResponse
)
