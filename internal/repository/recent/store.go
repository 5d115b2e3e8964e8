package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/db"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
)

// DefaultCapacity is the number of recent queries kept per device.
const DefaultCapacity = 8

const namespace = "recent_searches:"

// store is the consumer interface for recent query persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Store persists each device's recent queries as a JSON array of strings,
// most-recent-first, under a fixed namespace key.
// Writes are read-modify-write with last-write-wins semantics.
type Store struct {
	store     store
	keyPrefix string
	capacity  int
	retention time.Duration
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRetention expires a device's list after ttl without new queries.
// Zero keeps lists forever.
func WithRetention(ttl time.Duration) Option {
	return func(s *Store) { s.retention = ttl }
}

// New creates a recent query store. capacity <= 0 uses DefaultCapacity.
func New(s store, keyPrefix string, capacity int, logger *zap.Logger, opts ...Option) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	st := &Store{store: s, keyPrefix: keyPrefix, capacity: capacity, logger: logger}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Get returns the device's recent queries, most-recent-first.
// A missing key is an empty list; a corrupt value is logged and treated as empty.
func (s *Store) Get(ctx context.Context, device string) ([]string, error) {
	data, err := s.store.Get(ctx, s.key(device))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("get recent queries: %w", err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("Discarding corrupt recent query list",
			zap.String("device", device), zap.Error(err))
		return []string{}, nil
	}
	if len(list) > s.capacity {
		list = list[:s.capacity]
	}
	return list, nil
}

// Add moves q to the front of the device's list, dropping a previous occurrence
// and evicting the oldest entry beyond capacity.
func (s *Store) Add(ctx context.Context, device string, q query.Query) error {
	current, err := s.Get(ctx, device)
	if err != nil {
		return err
	}

	next := make([]string, 0, s.capacity)
	next = append(next, q.String())
	for _, existing := range current {
		if len(next) == s.capacity {
			break
		}
		if existing != q.String() {
			next = append(next, existing)
		}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode recent queries: %w", err)
	}
	if err := s.save(ctx, device, data); err != nil {
		return fmt.Errorf("save recent queries: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, device string, data []byte) error {
	if s.retention > 0 {
		return s.store.SetWithTTL(ctx, s.key(device), data, s.retention)
	}
	return s.store.Set(ctx, s.key(device), data)
}

// Clear forgets the device's history.
func (s *Store) Clear(ctx context.Context, device string) error {
	if err := s.store.Del(ctx, s.key(device)); err != nil {
		return fmt.Errorf("clear recent queries: %w", err)
	}
	return nil
}

func (s *Store) key(device string) string {
	return s.keyPrefix + namespace + device
}
