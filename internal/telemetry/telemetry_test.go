package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/intentsearch/internal/domain/intent"
	logpkg "github.com/kailas-cloud/intentsearch/internal/logger"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_events_total"}, []string{"event", "fallback"})
}

func TestLogEmitter_WithClassification(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	total := newCounter()
	e := NewLogEmitter(zap.New(core), total)

	c := intent.New([]string{"product"}, "running shoes", nil, false)
	e.Emit(context.Background(), Event{
		Name:           EventSearchSubmitted,
		Query:          "runing shoes",
		Classification: &c,
	})

	entries := logs.FilterMessage(EventSearchSubmitted).All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["query"] != "runing shoes" {
		t.Errorf("query = %v", fields["query"])
	}
	if fields["fixed_query"] != "running shoes" {
		t.Errorf("fixed_query = %v", fields["fixed_query"])
	}
	if id, _ := fields["event_id"].(string); id == "" {
		t.Error("expected generated event id")
	}
	if got := testutil.ToFloat64(total.WithLabelValues(EventSearchSubmitted, "false")); got != 1 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestLogEmitter_FallbackHasNoClassification(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	total := newCounter()
	e := NewLogEmitter(zap.New(core), total)

	e.Emit(context.Background(), Event{Name: EventSearchSubmitted, Query: "x", Fallback: true})

	fields := logs.All()[0].ContextMap()
	if _, ok := fields["fixed_query"]; ok {
		t.Error("fallback events must not carry classification fields")
	}
	if got := testutil.ToFloat64(total.WithLabelValues(EventSearchSubmitted, "true")); got != 1 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestLogEmitter_PrefersRequestLogger(t *testing.T) {
	baseCore, baseLogs := observer.New(zap.InfoLevel)
	reqCore, reqLogs := observer.New(zap.InfoLevel)
	e := NewLogEmitter(zap.New(baseCore), nil)

	ctx := logpkg.ContextWithLogger(context.Background(), zap.New(reqCore))
	e.Emit(ctx, Event{Name: EventSearchSubmitted, Query: "x"})

	if baseLogs.Len() != 0 {
		t.Error("base logger should not be used when the context carries one")
	}
	if reqLogs.Len() != 1 {
		t.Errorf("expected 1 entry on request logger, got %d", reqLogs.Len())
	}
}
