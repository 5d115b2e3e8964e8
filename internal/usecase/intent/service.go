package intent

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domintent "github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/telemetry"
)

// DefaultTimeout bounds one classification call.
const DefaultTimeout = 3 * time.Second

// Resolver turns a query into a classification for one session.
// Successful classifications are memoized; failures degrade to the fallback
// classification, which is not memoized.
type Resolver struct {
	classifier Classifier
	cache      Cache
	events     telemetry.Emitter
	timeout    time.Duration
	flight     singleflight.Group
	logger     *zap.Logger
}

// New creates a resolver. events may be nil.
func New(
	classifier Classifier, cache Cache, events telemetry.Emitter,
	timeout time.Duration, logger *zap.Logger,
) *Resolver {
	if events == nil {
		events = telemetry.Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		classifier: classifier,
		cache:      cache,
		events:     events,
		timeout:    timeout,
		logger:     logger,
	}
}

// Resolve never fails. Exactly one search_submitted event is emitted per call.
func (r *Resolver) Resolve(ctx context.Context, q query.Query) domintent.Classification {
	key := q.String()

	if c, ok := r.cache.Get(key); ok {
		r.emit(ctx, q, &c, false, true)
		return c
	}

	v, err, shared := r.flight.Do(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		c, err := r.classifier.Classify(callCtx, q)
		if err != nil {
			return nil, err
		}
		r.cache.Add(key, c)
		return c, nil
	})
	if err != nil {
		r.logger.Warn("Intent classification failed, using fallback",
			zap.String("query", key),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		fb := domintent.Fallback(q)
		r.emit(ctx, q, nil, true, false)
		return fb
	}

	c := v.(domintent.Classification)
	r.emit(ctx, q, &c, false, false)
	return c
}

func (r *Resolver) emit(ctx context.Context, q query.Query, c *domintent.Classification, fallback, cached bool) {
	r.events.Emit(ctx, telemetry.Event{
		Name:           telemetry.EventSearchSubmitted,
		Query:          q.String(),
		Classification: c,
		Fallback:       fallback,
		Cached:         cached,
	})
}
