package session

import (
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/intentsearch/internal/domain/outcome"
	"github.com/kailas-cloud/intentsearch/internal/usecase/aggregate"
	usecaseintent "github.com/kailas-cloud/intentsearch/internal/usecase/intent"
)

// Session is the per-tab state: its memo caches (inside the resolver and the
// aggregator), a submission sequence used for fencing, and the last
// delivered outcome.
type Session struct {
	id         string
	resolver   *usecaseintent.Resolver
	aggregator *aggregate.Aggregator

	seq    atomic.Uint64
	mu     sync.RWMutex
	latest *outcome.Outcome
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Resolver returns the session's intent resolver.
func (s *Session) Resolver() *usecaseintent.Resolver { return s.resolver }

// Aggregator returns the session's result aggregator.
func (s *Session) Aggregator() *aggregate.Aggregator { return s.aggregator }

// Begin starts a submission and returns its fencing token.
func (s *Session) Begin() uint64 { return s.seq.Add(1) }

// IsCurrent reports whether no submission started after seq.
func (s *Session) IsCurrent(seq uint64) bool { return s.seq.Load() == seq }

// Deliver records o as the latest outcome if seq is still current.
// It reports false for a superseded submission, whose outcome is dropped.
func (s *Session) Deliver(seq uint64, o outcome.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.IsCurrent(seq) {
		return false
	}
	o.Sequence = seq
	s.latest = &o
	return true
}

// Latest returns the last delivered outcome.
func (s *Session) Latest() (outcome.Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return outcome.Outcome{}, false
	}
	return *s.latest, true
}
