package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Staleness windows per resource kind. Messages turn over fastest; the
// category list is close to static.
const (
	TTLMessages      = 10 * time.Second
	TTLConversations = 10 * time.Second
	TTLJobs          = 30 * time.Second
	TTLApplications  = 30 * time.Second
	TTLNotifications = 30 * time.Second
	TTLKYC           = 30 * time.Second
	TTLWallet        = time.Minute
	TTLCategories    = time.Hour
)

// FetchFunc loads one resource from the backend.
type FetchFunc func(ctx context.Context) (any, error)

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// QueryCache is the process-wide keyed cache every screen reads through.
// Entries are independent: invalidating or writing one key never affects
// another. Reads within the staleness window are served from memory; stale
// reads return the old value immediately while one background refresh runs
// (stale-while-revalidate). Concurrent fetches of the same key are collapsed
// into a single upstream request.
//
// Each key carries an invalidation generation. A fetch records the
// generation it started under and its result is stored only while that
// generation is still current, so a mutation's Invalidate can never be
// undone by an in-flight fetch landing afterwards with pre-mutation data.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	gens    map[string]uint64
	group   singleflight.Group

	// refreshTimeout bounds background revalidation requests, which run
	// detached from the triggering request's context.
	refreshTimeout time.Duration
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries:        make(map[string]*cacheEntry),
		gens:           make(map[string]uint64),
		refreshTimeout: 30 * time.Second,
	}
}

// CacheKey derives a cache key from endpoint and filter parts.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get returns the value for key, fetching through fetch on a miss. A stale
// entry is returned as-is and revalidated in the background; previously
// displayed data is never cleared by a failed refresh.
func (c *QueryCache) Get(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (any, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		if time.Since(entry.fetchedAt) <= ttl {
			return entry.value, nil
		}
		// Stale: serve what we have, revalidate behind the request.
		go c.refresh(key, fetch)
		return entry.value, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.beginFetch(key)
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(key, gen, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// refresh revalidates key once. Concurrent stale readers share a single
// refresh via the same singleflight group that collapses cold fetches.
func (c *QueryCache) refresh(key string, fetch FetchFunc) {
	_, _, _ = c.group.Do(key, func() (any, error) {
		gen := c.beginFetch(key)

		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()

		v, err := fetch(ctx)
		if err != nil {
			// Keep the stale value; the next foreground read retries.
			slog.Debug("background refresh failed", "key", key, "error", err)
			return nil, err
		}
		c.storeIfCurrent(key, gen, v)
		return v, nil
	})
}

// beginFetch registers key in the generation table and returns the current
// generation. Registration is what lets InvalidatePrefix reach fetches that
// have no stored entry yet.
func (c *QueryCache) beginFetch(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.gens[key]; !ok {
		c.gens[key] = 0
	}
	return c.gens[key]
}

// storeIfCurrent stores a fetched value unless the key was invalidated
// after the fetch began. A late result from before the invalidation would
// resurrect pre-mutation data for a full staleness window.
func (c *QueryCache) storeIfCurrent(key string, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return
	}
	c.entries[key] = &cacheEntry{value: value, fetchedAt: time.Now()}
}

// Set stores a value directly. Used by optimistic appends (message sends)
// that deliberately patch a cached page ahead of reconciliation.
func (c *QueryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{value: value, fetchedAt: time.Now()}
}

// Peek returns the cached value without freshness checks or fetching.
func (c *QueryCache) Peek(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// Invalidate drops the given keys so the next read refetches, and bumps
// their generation so any in-flight fetch result is discarded. Mutations
// call this with the full set of keys they affect.
func (c *QueryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.gens[key]++
	}
}

// InvalidatePrefix drops every key under a prefix, e.g. all job listings
// for an account regardless of status tab. In-flight fetches under the
// prefix are invalidated too, via the generation table.
func (c *QueryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			if _, ok := c.gens[key]; !ok {
				c.gens[key] = 0
			}
		}
	}
	for key := range c.gens {
		if strings.HasPrefix(key, prefix) {
			c.gens[key]++
		}
	}
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
