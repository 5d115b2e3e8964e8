package intent

import (
	"context"

	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
)

// Classifier calls the intent classification service.
type Classifier interface {
	Classify(ctx context.Context, q query.Query) (intent.Classification, error)
}

// Cache memoizes successful classifications by raw query.
type Cache interface {
	Get(key string) (intent.Classification, bool)
	Add(key string, value intent.Classification)
}
