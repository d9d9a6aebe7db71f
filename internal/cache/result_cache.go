// Package cache memoizes period analysis results.
//
// Results are a pure function of (period, dataset revision, analysis config), so a key
// covering all three never needs invalidation; Clear exists for settings reloads that
// want to release memory eagerly.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/logging"
)

// Config holds cache configuration
type Config struct {
	MaxEntries int           // Max cached period results (default: 128)
	TTL        time.Duration // Entry TTL (default: 1 hour)
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxEntries: 128,
		TTL:        time.Hour,
	}
}

// Stats represents cache statistics
type Stats struct {
	Items     int     `json:"items"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Expired   uint64  `json:"expired"`
	HitRate   float64 `json:"hitRate"` // 0.0-1.0
}

type entry struct {
	result    *analysis.PeriodResult
	expiresAt time.Time
}

// ResultCache is an LRU cache of period results with TTL
type ResultCache struct {
	lru    *lru.Cache[string, *entry]
	ttl    time.Duration
	mu     sync.Mutex
	now    func() time.Time
	logger *logging.Logger

	// set while entries are removed explicitly so the evict callback skips them
	removing bool

	// Metrics (atomic)
	hits      uint64
	misses    uint64
	evictions uint64
	expired   uint64
}

// New creates a new result cache
func New(cfg Config) (*ResultCache, error) {
	if cfg.MaxEntries <= 0 {
		return nil, fmt.Errorf("MaxEntries must be positive, got %d", cfg.MaxEntries)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("TTL must be positive, got %v", cfg.TTL)
	}

	rc := &ResultCache{
		ttl:    cfg.TTL,
		now:    time.Now,
		logger: logging.GetLogger("cache"),
	}

	cache, err := lru.NewWithEvict[string, *entry](cfg.MaxEntries, func(key string, _ *entry) {
		if !rc.removing {
			atomic.AddUint64(&rc.evictions, 1)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	rc.lru = cache

	rc.logger.Debug("Result cache initialized: maxEntries=%d, TTL=%v", cfg.MaxEntries, cfg.TTL)
	return rc, nil
}

// Key creates a deterministic cache key for a period analysis
func Key(period, datasetRevision string, cfg analysis.Config) string {
	h := sha256.New()
	h.Write([]byte(period))
	h.Write([]byte{0})
	h.Write([]byte(datasetRevision))
	h.Write([]byte{0})
	h.Write([]byte(cfg.Signature()))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached result; expired entries are dropped and count as misses
func (rc *ResultCache) Get(key string) (*analysis.PeriodResult, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	e, ok := rc.lru.Get(key)
	if !ok {
		atomic.AddUint64(&rc.misses, 1)
		return nil, false
	}

	if rc.now().After(e.expiresAt) {
		rc.removing = true
		rc.lru.Remove(key)
		rc.removing = false
		atomic.AddUint64(&rc.expired, 1)
		atomic.AddUint64(&rc.misses, 1)
		return nil, false
	}

	atomic.AddUint64(&rc.hits, 1)
	return e.result, true
}

// Put stores a result
func (rc *ResultCache) Put(key string, result *analysis.PeriodResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.lru.Add(key, &entry{result: result, expiresAt: rc.now().Add(rc.ttl)})
	rc.logger.Debug("Result cache PUT: period=%s", result.Period)
}

// Clear removes all entries
func (rc *ResultCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	n := rc.lru.Len()
	rc.removing = true
	rc.lru.Purge()
	rc.removing = false
	rc.logger.Debug("Result cache CLEAR: %d entries removed", n)
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() Stats {
	rc.mu.Lock()
	items := rc.lru.Len()
	rc.mu.Unlock()

	hits := atomic.LoadUint64(&rc.hits)
	misses := atomic.LoadUint64(&rc.misses)
	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Items:     items,
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadUint64(&rc.evictions),
		Expired:   atomic.LoadUint64(&rc.expired),
		HitRate:   hitRate,
	}
}
