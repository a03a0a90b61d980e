package fee

import "sync"

type cacheKey struct {
	StudentID    int
	AcademicYear string
	Term         string
}

// summaryCache memoizes resolved summaries per (student, year, term).
// Any Payment or Assignment mutation touching a key evicts it; assignment
// changes evict every student in the affected (year, term).
type summaryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]Summary
}

func newSummaryCache() *summaryCache {
	return &summaryCache{entries: make(map[cacheKey]Summary)}
}

func (c *summaryCache) get(key cacheKey) (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sum, ok := c.entries[key]
	return sum, ok
}

func (c *summaryCache) set(key cacheKey, sum Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = sum
}

func (c *summaryCache) invalidate(key cacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *summaryCache) invalidatePeriod(academicYear, term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.AcademicYear == academicYear && key.Term == term {
			delete(c.entries, key)
		}
	}
}
