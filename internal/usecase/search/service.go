package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/domain"
	"github.com/kailas-cloud/intentsearch/internal/domain/outcome"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/domain/route"
	"github.com/kailas-cloud/intentsearch/internal/metrics"
	"github.com/kailas-cloud/intentsearch/internal/usecase/session"
)

// Service runs a submitted query through resolution, routing and aggregation.
type Service struct {
	sessions Sessions
	recent   RecentWriter
	router   Router
	trending Trending
	logger   *zap.Logger
}

// New creates a search service.
func New(sessions Sessions, recent RecentWriter, router Router, trending Trending, logger *zap.Logger) *Service {
	return &Service{
		sessions: sessions,
		recent:   recent,
		router:   router,
		trending: trending,
		logger:   logger,
	}
}

// Submit handles one submission from a session. acceptCorrection marks the
// submission of a previously suggested correction, which skips the correction gate.
// A submission superseded by a later one from the same session before it
// completes returns domain.ErrStaleResponse.
func (s *Service) Submit(
	ctx context.Context, sessionID, device, raw string, acceptCorrection bool,
) (outcome.Outcome, error) {
	q, err := query.New(raw)
	if err != nil {
		return outcome.Outcome{}, err
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return outcome.Outcome{}, fmt.Errorf("get session: %w", err)
	}
	seq := sess.Begin()

	if err := s.recent.Add(ctx, device, q); err != nil {
		s.logger.Warn("Failed to record recent query",
			zap.String("device", device), zap.Error(err))
	}

	out, err := s.resolve(ctx, sess, q, acceptCorrection)
	if err != nil {
		if !sess.IsCurrent(seq) {
			return outcome.Outcome{}, s.stale(sessionID, q, seq)
		}
		metrics.SearchOutcomesTotal.WithLabelValues("error").Inc()
		return outcome.Outcome{}, err
	}

	if !sess.Deliver(seq, out) {
		return outcome.Outcome{}, s.stale(sessionID, q, seq)
	}
	out.Sequence = seq
	metrics.SearchOutcomesTotal.WithLabelValues(string(out.Kind)).Inc()
	return out, nil
}

// Latest returns the last outcome delivered to the session.
func (s *Service) Latest(sessionID string) (outcome.Outcome, error) {
	sess, ok := s.sessions.Peek(sessionID)
	if !ok {
		return outcome.Outcome{}, fmt.Errorf("session %q: %w", sessionID, domain.ErrNotFound)
	}
	out, ok := sess.Latest()
	if !ok {
		return outcome.Outcome{}, fmt.Errorf("session %q has no outcome: %w", sessionID, domain.ErrNotFound)
	}
	return out, nil
}

func (s *Service) resolve(
	ctx context.Context, sess *session.Session, q query.Query, acceptCorrection bool,
) (outcome.Outcome, error) {
	c := sess.Resolver().Resolve(ctx, q)

	var d route.Decision
	if acceptCorrection {
		d = s.router.Route(q, c)
	} else {
		d = s.router.Evaluate(q, c)
	}

	out := outcome.Outcome{Query: q.String()}
	switch d.Kind() {
	case route.Gibberish:
		out.Kind = outcome.Gibberish
		out.Trending = s.trending.TrendingTerms()
	case route.Correction:
		out.Kind = outcome.Correction
		out.Suggested = d.Suggested()
	case route.Navigate:
		out.Kind = outcome.Navigate
		out.Path = d.Path()
	case route.Aggregate:
		set, err := sess.Aggregator().Aggregate(ctx, q, c.FixedQuery(), d.Plan())
		if err != nil {
			return outcome.Outcome{}, fmt.Errorf("aggregate: %w", err)
		}
		if set.IsEmpty() {
			out.Kind = outcome.NoResults
			out.Trending = s.trending.TrendingTerms()
			break
		}
		out.Kind = outcome.Aggregate
		out.Path = route.SearchPath(q.String())
		out.Results = set
	default:
		return outcome.Outcome{}, fmt.Errorf("unsupported decision: %s", d.Kind())
	}
	return out, nil
}

func (s *Service) stale(sessionID string, q query.Query, seq uint64) error {
	metrics.SearchOutcomesTotal.WithLabelValues("stale").Inc()
	s.logger.Debug("Dropping superseded search response",
		zap.String("session_id", sessionID),
		zap.String("query", q.String()),
		zap.Uint64("sequence", seq),
	)
	return domain.ErrStaleResponse
}
