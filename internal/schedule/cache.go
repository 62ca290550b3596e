package schedule

import "sync"

type cacheKey struct {
	job  int
	slot int
}

// SearchCache memoizes folded field values per job for one data snapshot.
// Jobs are identified by their position in the snapshot, so a cache must be
// thrown away together with the job list it was filled from.
type SearchCache struct {
	mu     sync.Mutex
	folded map[cacheKey]string
}

func NewSearchCache() *SearchCache {
	return &SearchCache{folded: make(map[cacheKey]string)}
}

func (c *SearchCache) get(job, slot int, compute func() string) string {
	if c == nil {
		return compute()
	}
	k := cacheKey{job: job, slot: slot}

	c.mu.Lock()
	v, ok := c.folded[k]
	c.mu.Unlock()
	if ok {
		return v
	}

	v = compute()
	c.mu.Lock()
	c.folded[k] = v
	c.mu.Unlock()
	return v
}

func (c *SearchCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.folded)
}
