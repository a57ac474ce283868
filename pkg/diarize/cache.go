package diarize

import (
	"container/list"
	"sync"
	"time"
)

// cachedFeatures is one feature-cache entry: everything needed to rerun
// clustering without re-reading audio.
type cachedFeatures struct {
	vectors  [][]float32
	times    []time.Duration
	duration time.Duration
}

// featureCache is a bounded LRU cache of extracted features keyed by
// recording id. Safe for concurrent use; a forced refresh overwrites
// the entry but never invalidates reads in flight on other recordings.
type featureCache struct {
	mu      sync.Mutex
	cap     int
	order   *list.List // front = most recent; values are cache keys
	entries map[string]*list.Element
	data    map[string]cachedFeatures
}

func newFeatureCache(capacity int) *featureCache {
	return &featureCache{
		cap:     capacity,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		data:    make(map[string]cachedFeatures),
	}
}

// get returns the entry for key, marking it most recently used.
func (c *featureCache) get(key string) (cachedFeatures, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return cachedFeatures{}, false
	}
	c.order.MoveToFront(el)
	return c.data[key], true
}

// put stores the entry for key, evicting the least recently used entry
// when the cache is at capacity.
func (c *featureCache) put(key string, f cachedFeatures) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.data[key] = f
		return
	}

	if c.order.Len() >= c.cap {
		oldest := c.order.Back()
		if oldest != nil {
			k := oldest.Value.(string)
			c.order.Remove(oldest)
			delete(c.entries, k)
			delete(c.data, k)
		}
	}

	c.entries[key] = c.order.PushFront(key)
	c.data[key] = f
}

// len returns the number of cached recordings.
func (c *featureCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// clear drops all entries.
func (c *featureCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.data = make(map[string]cachedFeatures)
}
