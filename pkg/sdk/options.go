package intentsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "valkey", "redis" or "memory"
	addrs     []string
	password  string
	keyPrefix string

	classifier    Classifier
	classifierURL string
	classifierKey string

	products    ProductSearcher
	productsURL string
	productsKey string
	content     ContentSearcher
	contentURL  string
	contentKey  string

	catalog Catalog

	classifierTimeout time.Duration
	sourceTimeout     time.Duration
	cacheCapacity     int
	sessionCapacity   int
	sessionIdle       time.Duration
	recentCapacity    int
	recentTTL         time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey keeps recent searches in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis keeps recent searches in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces the recent-search keys. Default: "intentsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithClassifier sets an in-process intent classifier.
func WithClassifier(cl Classifier) Option {
	return optionFunc(func(c *clientConfig) {
		c.classifier = cl
	})
}

// WithClassifierURL uses a classification service speaking POST {url}/classify.
func WithClassifierURL(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.classifierURL = url
		c.classifierKey = apiKey
	})
}

// WithProducts sets an in-process product search.
func WithProducts(p ProductSearcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.products = p
	})
}

// WithProductsURL uses a product search service speaking GET {url}/products/search.
func WithProductsURL(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.productsURL = url
		c.productsKey = apiKey
	})
}

// WithContent sets an in-process blog content search.
func WithContent(s ContentSearcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.content = s
	})
}

// WithContentURL uses a content search service speaking GET {url}/posts/search.
func WithContentURL(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.contentURL = url
		c.contentKey = apiKey
	})
}

// WithCatalog overrides the sports, static pages, autocomplete terms or trending terms.
func WithCatalog(cat Catalog) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalog = cat
	})
}

// WithTimeouts bounds each classification and each source call.
// Defaults: 3s and 5s.
func WithTimeouts(classifier, source time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.classifierTimeout = classifier
		c.sourceTimeout = source
	})
}

// WithSessionLimits bounds the number of live sessions, their idle lifetime
// and the size of each session's classification and result caches.
// Defaults: 1024 sessions, 30m, 128 entries.
func WithSessionLimits(sessions int, idle time.Duration, cacheCapacity int) Option {
	return optionFunc(func(c *clientConfig) {
		c.sessionCapacity = sessions
		c.sessionIdle = idle
		c.cacheCapacity = cacheCapacity
	})
}

// WithRecentCapacity sets how many recent searches are kept per device. Default: 8.
func WithRecentCapacity(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.recentCapacity = n
	})
}

// WithRecentTTL expires a device's recent searches after ttl without new queries.
func WithRecentTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.recentTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
