// Package cache keeps recent analysis results so repeated requests for the
// same document skip the pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/models"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// ResultCache is a size-bounded LRU of analysis results with a per-entry
// TTL. Stored results are shared between callers and must not be modified.
type ResultCache struct {
	lru    *expirable.LRU[string, *models.AnalysisResult]
	logger *logging.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache holding at most maxEntries results. A ttl of zero
// keeps entries until they are evicted.
func New(maxEntries int, ttl time.Duration) (*ResultCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("maxEntries must be positive, got %d", maxEntries)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("ttl must not be negative, got %v", ttl)
	}
	c := &ResultCache{logger: logging.GetLogger("cache")}
	c.lru = expirable.NewLRU[string, *models.AnalysisResult](maxEntries, nil, ttl)
	c.logger.Debug("Result cache initialized: maxEntries=%d, ttl=%v", maxEntries, ttl)
	return c, nil
}

// Key derives the cache key for one request. The operation name keeps
// different views of the same input apart. Every field of every entity is
// part of the key, NUL separated.
func Key(operation, text string, entities []models.Entity) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", operation, text)
	for _, e := range entities {
		fmt.Fprintf(h, "%s\x00%s\x00%g\x00%d\x00%d\x00%s\x00%s\x00",
			e.Text, e.Type, e.Confidence, e.BeginOffset, e.EndOffset, e.Category, e.Subcategory)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key.
func (c *ResultCache) Get(key string) (*models.AnalysisResult, bool) {
	r, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return r, true
}

// Put stores r under key.
func (c *ResultCache) Put(key string, r *models.AnalysisResult) {
	c.lru.Add(key, r)
}

// Purge drops every entry. Called when the pattern registry changes.
func (c *ResultCache) Purge() {
	n := c.lru.Len()
	c.lru.Purge()
	c.logger.Debug("Result cache purged (%d entries)", n)
}

// Stats returns current counters.
func (c *ResultCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{Entries: c.lru.Len(), Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}
