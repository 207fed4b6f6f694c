package moore

import (
	"fmt"
	"sync"
)

// predictionCache memoizes predictions per (base point, target year).
// Predictions are immutable once produced, so entries never expire.
type predictionCache struct {
	mu      sync.RWMutex
	entries map[string]MoorePrediction
	hits    int64
	misses  int64
}

func newPredictionCache() *predictionCache {
	return &predictionCache{entries: make(map[string]MoorePrediction)}
}

func cacheKey(base BasePoint, targetYear int) string {
	return fmt.Sprintf("%s|%d|%g|%g|%d", base.Name, base.Year, base.Transistors, base.ProcessNM, targetYear)
}

func (c *predictionCache) get(key string) (MoorePrediction, bool) {
	c.mu.RLock()
	pred, ok := c.entries[key]
	c.mu.RUnlock()

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	return pred, ok
}

func (c *predictionCache) put(key string, pred MoorePrediction) {
	c.mu.Lock()
	c.entries[key] = pred
	c.mu.Unlock()
}

func (c *predictionCache) stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
