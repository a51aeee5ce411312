package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tendermatch/backend/internal/domain"
)

// cacheEntry is one cached candidate set with its expiration
type cacheEntry struct {
	products   []domain.CatalogProduct
	expiration time.Time
}

// CandidateCache is a thread-safe in-memory cache of candidate lookups
// keyed by OKPD2 code, with TTL support.
type CandidateCache struct {
	data  map[string]cacheEntry
	mutex sync.RWMutex
	ttl   time.Duration
}

// NewCandidateCache creates a candidate cache with the given TTL.
func NewCandidateCache(ttl time.Duration) *CandidateCache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	cache := &CandidateCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
	}

	// Start cleanup goroutine to remove expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached candidate set for the code.
func (c *CandidateCache) Get(okpd2Code string) ([]domain.CatalogProduct, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[okpd2Code]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	// Check if expired
	if time.Now().After(entry.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return entry.products, nil
}

// Set stores a candidate set for the code.
func (c *CandidateCache) Set(okpd2Code string, products []domain.CatalogProduct) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[okpd2Code] = cacheEntry{
		products:   products,
		expiration: time.Now().Add(c.ttl),
	}
}

// cleanupExpired removes expired entries from the cache periodically
func (c *CandidateCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, entry := range c.data {
			if now.After(entry.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of cached candidate sets (for debugging/monitoring)
func (c *CandidateCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all cached candidate sets.
func (c *CandidateCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheEntry)
}

// Repository decorates a CatalogRepository with candidate caching. Lookup
// failures are never cached, only successful candidate sets.
type Repository struct {
	inner domain.CatalogRepository
	cache *CandidateCache
}

// NewRepository wraps the inner repository with a candidate cache.
func NewRepository(inner domain.CatalogRepository, ttl time.Duration) *Repository {
	return &Repository{
		inner: inner,
		cache: NewCandidateCache(ttl),
	}
}

// FindCandidates serves from the cache when possible, falling through to
// the inner repository on a miss.
func (r *Repository) FindCandidates(ctx context.Context, okpd2Code string) ([]domain.CatalogProduct, error) {
	if products, err := r.cache.Get(okpd2Code); err == nil {
		return products, nil
	}

	products, err := r.inner.FindCandidates(ctx, okpd2Code)
	if err != nil {
		return nil, err
	}

	r.cache.Set(okpd2Code, products)
	return products, nil
}
