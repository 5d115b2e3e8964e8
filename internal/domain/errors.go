package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrQueryTooLong signals a query above the accepted length.
	ErrQueryTooLong = errors.New("query too long")
	// ErrClassifierUnavailable signals a failed call to the intent classification service.
	// It never leaves the intent resolver.
	ErrClassifierUnavailable = errors.New("intent classifier unavailable")
	// ErrSourceUnavailable signals that a search source failed during aggregation.
	ErrSourceUnavailable = errors.New("search source unavailable")
	// ErrStaleResponse signals a response superseded by a newer submission in the same session.
	ErrStaleResponse = errors.New("stale response")
)

// SourceError wraps ErrSourceUnavailable with the failing source name.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return ErrSourceUnavailable.Error() + ": " + e.Source + ": " + e.Err.Error()
}

// Is reports ErrSourceUnavailable so callers can match on the sentinel.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError creates a source failure error.
func NewSourceError(source string, err error) error {
	return &SourceError{Source: source, Err: err}
}
