package intentsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/db"
	"github.com/kailas-cloud/intentsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/intentsearch/internal/db/redis"
	"github.com/kailas-cloud/intentsearch/internal/domain/catalog"
	domintent "github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/outcome"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/repository/recent"
	"github.com/kailas-cloud/intentsearch/internal/transport/classifier"
	"github.com/kailas-cloud/intentsearch/internal/transport/searchapi"
	"github.com/kailas-cloud/intentsearch/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/intentsearch/internal/usecase/health"
	intentuc "github.com/kailas-cloud/intentsearch/internal/usecase/intent"
	"github.com/kailas-cloud/intentsearch/internal/usecase/route"
	searchuc "github.com/kailas-cloud/intentsearch/internal/usecase/search"
	"github.com/kailas-cloud/intentsearch/internal/usecase/session"
	suggestuc "github.com/kailas-cloud/intentsearch/internal/usecase/suggest"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "intentsearch:"
)

// Classifier labels a query with intents. Errors make the engine fall back
// to a plain aggregated search.
type Classifier interface {
	Classify(ctx context.Context, query string) (Classification, error)
}

// ProductSearcher is a keyword product search.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, keyword string) ([]Product, error)
}

// ContentSearcher is a keyword blog post search.
type ContentSearcher interface {
	SearchPosts(ctx context.Context, keyword string) ([]Post, error)
}

// Internal interfaces, swapped out in tests.
type suggestUseCase interface {
	Suggest(ctx context.Context, device, partial string) []suggestuc.Suggestion
}

type searchUseCase interface {
	Submit(ctx context.Context, sessionID, device, raw string, acceptCorrection bool) (outcome.Outcome, error)
	Latest(sessionID string) (outcome.Outcome, error)
}

type recentUseCase interface {
	Get(ctx context.Context, device string) ([]string, error)
	Clear(ctx context.Context, device string) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Client is the intentsearch SDK entry point.
type Client struct {
	store     db.Store
	provider  *suggestuc.Provider
	suggest   suggestUseCase
	search    searchUseCase
	recent    recentUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:    "memory",
		keyPrefix: defaultKeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.classifier == nil && cfg.classifierURL == "" {
		return nil, errors.New("intentsearch: classifier required (use WithClassifier or WithClassifierURL)")
	}
	if cfg.products == nil && cfg.productsURL == "" {
		return nil, errors.New("intentsearch: product search required (use WithProducts or WithProductsURL)")
	}
	if cfg.content == nil && cfg.contentURL == "" {
		return nil, errors.New("intentsearch: content search required (use WithContent or WithContentURL)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("intentsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return memory.NewStore(), nil
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("intentsearch: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("intentsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()
	cat := buildCatalog(cfg.catalog)

	var cls intentuc.Classifier
	if cfg.classifier != nil {
		cls = &classifierAdapter{inner: cfg.classifier}
	} else {
		cls = classifier.NewClient(classifier.Config{BaseURL: cfg.classifierURL, APIKey: cfg.classifierKey})
	}

	var products aggregate.ProductSearcher = cfg.products
	if products == nil {
		products = searchapi.NewProducts(searchapi.Config{BaseURL: cfg.productsURL, APIKey: cfg.productsKey})
	}
	var content aggregate.ContentSearcher = cfg.content
	if content == nil {
		content = searchapi.NewContent(searchapi.Config{BaseURL: cfg.contentURL, APIKey: cfg.contentKey})
	}

	recentStore := recent.New(store, cfg.keyPrefix, cfg.recentCapacity, logger,
		recent.WithRetention(cfg.recentTTL))
	sessions := session.NewRegistry(
		session.Config{
			Capacity:               cfg.sessionCapacity,
			Idle:                   cfg.sessionIdle,
			ClassificationCapacity: cfg.cacheCapacity,
			ResultCapacity:         cfg.cacheCapacity,
			ClassifierTimeout:      cfg.classifierTimeout,
		},
		session.Deps{
			Classifier: cls,
			Sources: aggregate.Sources{
				Products:        products,
				Content:         content,
				ProductsTimeout: cfg.sourceTimeout,
				ContentTimeout:  cfg.sourceTimeout,
			},
			Catalog: cat,
			Logger:  logger,
		},
	)

	// Only probe what can report its health; in-process fakes usually cannot.
	upstream := make(map[string]healthuc.Checker)
	for name, dep := range map[string]any{"classifier": cls, "products": products, "content": content} {
		if hc, ok := dep.(healthChecker); ok {
			upstream[name] = hc
		}
	}

	provider := suggestuc.New(recentStore, cat.Terms, suggestuc.Options{}, logger)
	return &Client{
		store:     store,
		provider:  provider,
		suggest:   provider,
		search:    searchuc.New(sessions, recentStore, route.New(cat), cat, logger),
		recent:    recentStore,
		healthSvc: healthuc.New(store, upstream),
		obs:       obs,
	}
}

func buildCatalog(c Catalog) *catalog.Catalog {
	cat := catalog.Default()
	if len(c.Sports) > 0 {
		cat.Sports = c.Sports
	}
	if len(c.Pages) > 0 {
		cat.Pages = c.Pages
	}
	if len(c.Terms) > 0 {
		cat.Terms = c.Terms
	}
	if len(c.Trending) > 0 {
		cat.Trending = c.Trending
	}
	return cat
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Suggest returns autocomplete entries for partial: the device's matching
// recent searches first, then dictionary terms, at most ten.
func (c *Client) Suggest(ctx context.Context, device, partial string) []Suggestion {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, nil) }()

	return toSuggestions(c.suggest.Suggest(ctx, device, partial))
}

// Submit resolves a query typed in session (a browser tab) on device.
// Set acceptCorrection when resubmitting an offered correction.
func (c *Client) Submit(
	ctx context.Context, sessionID, device, q string, acceptCorrection bool,
) (out Outcome, err error) {
	start := time.Now()
	defer func() { c.obs.observe("submit", start, err) }()

	o, err := c.search.Submit(ctx, sessionID, device, q, acceptCorrection)
	if err != nil {
		return Outcome{}, fmt.Errorf("submit: %w", err)
	}
	return outcomeFromDomain(o), nil
}

// Latest returns the last outcome delivered to session.
func (c *Client) Latest(sessionID string) (Outcome, error) {
	o, err := c.search.Latest(sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("latest: %w", err)
	}
	return outcomeFromDomain(o), nil
}

// Recent lists the device's recent searches, most recent first.
func (c *Client) Recent(ctx context.Context, device string) (queries []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recent", start, err) }()

	queries, err = c.recent.Get(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	return queries, nil
}

// ClearRecent forgets the device's recent searches.
func (c *Client) ClearRecent(ctx context.Context, device string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("clear_recent", start, err) }()

	if err = c.recent.Clear(ctx, device); err != nil {
		return fmt.Errorf("clear recent: %w", err)
	}
	return nil
}

// LiveSuggester debounces keystrokes of one search box.
type LiveSuggester struct {
	live *suggestuc.LiveSession
}

// Live starts a debounced suggestion stream for device. emit runs on a timer
// goroutine after delay of keystroke silence (300ms when delay <= 0), or
// immediately with an empty list when the input is too short.
// Cancel ctx or call Close to stop.
func (c *Client) Live(
	ctx context.Context, device string, delay time.Duration, emit func(partial string, s []Suggestion),
) *LiveSuggester {
	live := suggestuc.NewLiveSession(ctx, c.provider, device, nil, delay,
		func(partial string, s []suggestuc.Suggestion) { emit(partial, toSuggestions(s)) })
	return &LiveSuggester{live: live}
}

// Input records the current text of the search box.
func (l *LiveSuggester) Input(partial string) { l.live.Input(partial) }

// Close cancels pending work.
func (l *LiveSuggester) Close() { l.live.Close() }

func toSuggestions(in []suggestuc.Suggestion) []Suggestion {
	out := make([]Suggestion, len(in))
	for i, s := range in {
		out[i] = Suggestion{Text: s.Text, IsRecent: s.IsRecent}
	}
	return out
}

// classifierAdapter wraps the public Classifier to satisfy the resolver.
type classifierAdapter struct {
	inner Classifier
}

func (a *classifierAdapter) Classify(ctx context.Context, q query.Query) (domintent.Classification, error) {
	c, err := a.inner.Classify(ctx, q.String())
	if err != nil {
		return domintent.Classification{}, fmt.Errorf("classify: %w", err)
	}
	return domintent.New(c.Intents, c.FixedQuery, c.SuggestedPages, c.IsGibberish), nil
}
