package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/intentsearch/internal/domain"
	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
)

// Request is the body sent to the classification service.
type Request struct {
	Query string `json:"query"`
}

// Response is the classification service reply. Unknown intent tags are dropped.
type Response struct {
	Intent         []string `json:"intent"`
	FixedQuery     string   `json:"fixedQuery"`
	SuggestedPages []string `json:"suggestedPages"`
	IsGibberish    bool     `json:"isGibberish"`
}

// ToDomain converts the reply to a classification.
func (r Response) ToDomain() intent.Classification {
	return intent.New(r.Intent, r.FixedQuery, r.SuggestedPages, r.IsGibberish)
}

// Decode parses a reply body. Any parse failure is reported as
// domain.ErrClassifierUnavailable.
func Decode(data []byte) (intent.Classification, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return intent.Classification{}, fmt.Errorf("decode classification: %w: %w", err, domain.ErrClassifierUnavailable)
	}
	return r.ToDomain(), nil
}
