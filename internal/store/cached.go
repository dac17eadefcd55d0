package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore layers an LRU read cache over another Store. Writes go
// through to the inner store and update the cache, so a single process
// always reads its own writes. Counters and scans are never cached.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, []byte]
}

// NewCachedStore wraps inner with a cache of the given size.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if doc, ok := s.cache.Get(key); ok {
		out := make([]byte, len(doc))
		copy(out, doc)
		return out, nil
	}
	doc, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, doc)
	return doc, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		return err
	}
	doc := make([]byte, len(value))
	copy(doc, value)
	s.cache.Add(key, doc)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	if err := s.inner.Delete(ctx, key); err != nil {
		return err
	}
	s.cache.Remove(key)
	return nil
}

func (s *CachedStore) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	return s.inner.Incr(ctx, key, delta)
}

func (s *CachedStore) Scan(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.Scan(ctx, prefix)
}
