// Package telemetry emits fire-and-forget search analytics events.
// Nothing is persisted: events become a structured log line and a counter.
package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	logpkg "github.com/kailas-cloud/intentsearch/internal/logger"
)

// EventSearchSubmitted is emitted once per intent resolution attempt.
const EventSearchSubmitted = "search_submitted"

// Event describes one search submission.
type Event struct {
	ID             string
	Name           string
	Query          string
	Classification *intent.Classification // nil when the service was unavailable
	Fallback       bool
	Cached         bool
	At             time.Time
}

// Emitter accepts events. Emit must not block on I/O or fail the caller.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// LogEmitter writes events through zap and counts them.
type LogEmitter struct {
	logger *zap.Logger
	total  *prometheus.CounterVec
	now    func() time.Time
}

// NewLogEmitter creates an emitter. total has labels "event" and "fallback"; nil disables counting.
func NewLogEmitter(logger *zap.Logger, total *prometheus.CounterVec) *LogEmitter {
	return &LogEmitter{logger: logger, total: total, now: time.Now}
}

// Emit logs the event with the request-scoped logger when one is present in ctx.
func (l *LogEmitter) Emit(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = l.now()
	}

	fields := []zap.Field{
		zap.String("event_id", e.ID),
		zap.String("query", e.Query),
		zap.Bool("fallback", e.Fallback),
		zap.Bool("cached", e.Cached),
		zap.Time("at", e.At),
	}
	if c := e.Classification; c != nil {
		tags := make([]string, 0, len(c.Tags()))
		for _, t := range c.Tags() {
			tags = append(tags, string(t))
		}
		fields = append(fields,
			zap.Strings("intent", tags),
			zap.String("fixed_query", c.FixedQuery()),
			zap.Strings("suggested_pages", c.SuggestedPages()),
			zap.Bool("is_gibberish", c.IsGibberish()),
		)
	}

	log := l.logger
	if reqLogger := logpkg.FromContext(ctx); reqLogger.Core().Enabled(zap.InfoLevel) {
		log = reqLogger
	}
	log.Info(e.Name, fields...)

	if l.total != nil {
		l.total.WithLabelValues(e.Name, strconv.FormatBool(e.Fallback)).Inc()
	}
}

// Nop discards events.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(context.Context, Event) {}
