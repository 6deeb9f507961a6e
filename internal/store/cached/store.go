// Package cached puts a write-through read cache in front of any store.
package cached

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-api/internal/store"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type Store struct {
	next    store.Store
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// New caches reads from next for ttl.
func New(next store.Store, ttl time.Duration, m *metrics.Metrics) *Store {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Store{
		next:    next,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.cache.Get(key); ok {
		s.metrics.StoreCacheHits.WithLabelValues("hit").Inc()
		return clone(v.([]byte)), nil
	}
	s.metrics.StoreCacheHits.WithLabelValues("miss").Inc()

	v, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, clone(v))
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		s.cache.Delete(key)
		return err
	}
	s.cache.SetDefault(key, clone(value))
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return s.next.Delete(ctx, key)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Store) Close() error {
	s.cache.Flush()
	return s.next.Close()
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
