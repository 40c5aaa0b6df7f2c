package enrich

import (
	"sync"

	"github.com/newelco/appraiser/pkg/listing"
)

// RunCache memoizes the partial update discovered for each URL for the
// lifetime of one appraisal run. Entries never expire or revalidate within a
// run: a URL is fetched at most once, and a failed fetch is cached as an
// empty update so the failure is not retried either.
//
// Keys are the original pre-redirect URLs as the search provider returned
// them, so a rerun over the same result set hits the cache verbatim.
type RunCache struct {
	mu      sync.Mutex
	entries map[string]listing.Update
}

// NewRunCache returns an empty per-run cache.
func NewRunCache() *RunCache {
	return &RunCache{entries: make(map[string]listing.Update)}
}

// Get returns the cached update for url, if any.
func (c *RunCache) Get(url string) (listing.Update, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[url]
	return u, ok
}

// Put records the update discovered for url.
func (c *RunCache) Put(url string, u listing.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = u
}

// Len returns the number of cached URLs.
func (c *RunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
