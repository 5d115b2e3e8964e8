package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/cache"
	"github.com/kailas-cloud/intentsearch/internal/domain/catalog"
	domintent "github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/result"
	"github.com/kailas-cloud/intentsearch/internal/metrics"
	"github.com/kailas-cloud/intentsearch/internal/telemetry"
	"github.com/kailas-cloud/intentsearch/internal/usecase/aggregate"
	usecaseintent "github.com/kailas-cloud/intentsearch/internal/usecase/intent"
)

// Registry defaults.
const (
	DefaultCapacity = 1024
	DefaultIdle     = 30 * time.Minute
)

// Config bounds the registry and the caches of each session.
type Config struct {
	Capacity               int
	Idle                   time.Duration
	ClassificationCapacity int
	ResultCapacity         int
	ClassifierTimeout      time.Duration
}

// Deps are shared by every session.
type Deps struct {
	Classifier usecaseintent.Classifier
	Events     telemetry.Emitter
	Sources    aggregate.Sources
	Catalog    *catalog.Catalog
	Logger     *zap.Logger
}

// Registry holds sessions by id, evicting the least recently used beyond
// capacity and any session idle longer than the configured window.
type Registry struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
	cfg      Config
	deps     Deps
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, deps Deps) *Registry {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultIdle
	}
	onEvict := func(string, *Session) { metrics.SessionsActive.Dec() }
	return &Registry{
		sessions: expirable.NewLRU[string, *Session](cfg.Capacity, onEvict, cfg.Idle),
		cfg:      cfg,
		deps:     deps,
	}
}

// Get returns the session for id, creating it on first use.
// Every access restarts the session's idle window.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions.Get(id); ok {
		r.sessions.Add(id, s)
		return s, nil
	}

	s, err := r.build(id)
	if err != nil {
		return nil, err
	}
	r.sessions.Remove(id) // drops an expired entry not yet purged
	r.sessions.Add(id, s)
	metrics.SessionsActive.Inc()
	return s, nil
}

// Peek returns an existing session without creating one.
func (r *Registry) Peek(id string) (*Session, bool) {
	return r.sessions.Peek(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int { return r.sessions.Len() }

func (r *Registry) build(id string) (*Session, error) {
	classifications, err := cache.New[string, domintent.Classification](
		"classification", r.cfg.ClassificationCapacity, metrics.CacheTotal)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	results, err := cache.New[string, result.Set]("result", r.cfg.ResultCapacity, metrics.CacheTotal)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	logger := r.deps.Logger.With(zap.String("session_id", id))
	return &Session{
		id: id,
		resolver: usecaseintent.New(
			r.deps.Classifier, classifications, r.deps.Events, r.cfg.ClassifierTimeout, logger),
		aggregator: aggregate.New(r.deps.Sources, r.deps.Catalog, results, logger),
	}, nil
}
