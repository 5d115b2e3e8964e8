package chi

import (
	"github.com/kailas-cloud/intentsearch/internal/domain/outcome"
	"github.com/kailas-cloud/intentsearch/internal/domain/result"
	suggestuc "github.com/kailas-cloud/intentsearch/internal/usecase/suggest"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeStaleResponse     ErrorCode = "stale_response"
	ErrorCodeSourceUnavailable ErrorCode = "source_unavailable"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable,omitempty"`
}

// SuggestionItem is one autocomplete entry.
type SuggestionItem struct {
	Text     string `json:"text"`
	IsRecent bool   `json:"is_recent"`
}

// SuggestResponse is the reply of GET /v1/suggest.
type SuggestResponse struct {
	Suggestions []SuggestionItem `json:"suggestions"`
}

// LiveRequest is a keystroke sent over the live suggestion socket.
type LiveRequest struct {
	Q string `json:"q"`
}

// LiveMessage is pushed over the live suggestion socket.
type LiveMessage struct {
	Type        string           `json:"type"`
	Q           string           `json:"q"`
	Suggestions []SuggestionItem `json:"suggestions"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query            string `json:"query"`
	AcceptCorrection bool   `json:"accept_correction"`
}

// OutcomeResponse is the reply of POST /v1/search and GET /v1/search/latest.
type OutcomeResponse struct {
	Kind      outcome.Kind `json:"kind"`
	Query     string       `json:"query"`
	Sequence  uint64       `json:"sequence"`
	Path      string       `json:"path,omitempty"`
	Suggested string       `json:"suggested,omitempty"`
	Results   *result.Set  `json:"results,omitempty"`
	Trending  []string     `json:"trending,omitempty"`
}

// RecentResponse is the reply of GET /v1/recent.
type RecentResponse struct {
	Queries []string `json:"queries"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func suggestionsToDTO(in []suggestuc.Suggestion) []SuggestionItem {
	out := make([]SuggestionItem, len(in))
	for i, s := range in {
		out[i] = SuggestionItem{Text: s.Text, IsRecent: s.IsRecent}
	}
	return out
}

func outcomeToDTO(o outcome.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Kind:      o.Kind,
		Query:     o.Query,
		Sequence:  o.Sequence,
		Path:      o.Path,
		Suggested: o.Suggested,
		Trending:  o.Trending,
	}
	if o.Kind == outcome.Aggregate {
		set := o.Results.Normalize()
		resp.Results = &set
	}
	return resp
}
