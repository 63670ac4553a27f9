// Package blobcache keeps authenticated binary resources (avatars,
// thumbnails) available to the UI as object-URL handles. Entries are
// reference counted; unreferenced ones are reclaimed LRU-style once the
// cache exceeds its bound.
package blobcache

import (
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"schoolcomm/client/internal/api"
)

const DefaultMaxItems = 150

type entry struct {
	url     string
	data    []byte
	refs    int
	lastHit time.Time
}

type Cache struct {
	client *api.Client
	max    int

	mu      sync.Mutex
	entries map[string]*entry
	byURL   map[string]string

	flight singleflight.Group
}

func New(client *api.Client, max int) *Cache {
	if max <= 0 {
		max = DefaultMaxItems
	}
	return &Cache{
		client:  client,
		max:     max,
		entries: map[string]*entry{},
		byURL:   map[string]string{},
	}
}

// Acquire returns an object-URL handle for path, fetching the blob with
// credentials on a miss. Concurrent misses for the same path share one
// fetch. Fetch errors propagate and insert nothing.
func (c *Cache) Acquire(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		e.refs++
		e.lastHit = time.Now()
		url := e.url
		c.mu.Unlock()
		return url, nil
	}
	c.mu.Unlock()

	result, err, _ := c.flight.Do(path, func() (any, error) {
		return c.fetch(ctx, path)
	})
	if err != nil {
		return "", err
	}
	data := result.([]byte)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another winner of the same flight may have inserted already.
	if e, ok := c.entries[path]; ok {
		e.refs++
		e.lastHit = time.Now()
		return e.url, nil
	}

	e := &entry{
		url:     "blob:" + uuid.NewString(),
		data:    data,
		refs:    1,
		lastHit: time.Now(),
	}
	c.entries[path] = e
	c.byURL[e.url] = path
	c.evict()
	return e.url, nil
}

// Release drops one reference. The entry stays cached past its last
// release; scroll reversals are common and the LRU pass reclaims it.
func (c *Cache) Release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return
	}
	if e.refs > 0 {
		e.refs--
	}
	e.lastHit = time.Now()
}

// Invalidate revokes and removes the entry regardless of references.
// Callers holding the URL downstream must discard it.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return
	}
	delete(c.byURL, e.url)
	delete(c.entries, path)
}

// Bytes resolves a live object-URL handle, the way the DOM would.
// Revoked handles resolve to nothing.
func (c *Cache) Bytes(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.byURL[url]
	if !ok {
		return nil, false
	}
	return c.entries[path].data, true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) fetch(ctx context.Context, path string) ([]byte, error) {
	header := http.Header{}
	header.Set("Accept", "*/*")

	res, err := c.client.Request(ctx, http.MethodGet, path, nil, header)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

// evict reclaims the oldest unreferenced entries until the bound holds.
// Referenced entries are never dropped, so the cache may temporarily
// exceed the bound. Caller holds the lock.
func (c *Cache) evict() {
	if len(c.entries) <= c.max {
		return
	}

	type candidate struct {
		path    string
		lastHit time.Time
	}
	var candidates []candidate
	for path, e := range c.entries {
		if e.refs <= 0 {
			candidates = append(candidates, candidate{path: path, lastHit: e.lastHit})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastHit.Before(candidates[j].lastHit)
	})

	for _, cand := range candidates {
		if len(c.entries) <= c.max {
			return
		}
		delete(c.byURL, c.entries[cand.path].url)
		delete(c.entries, cand.path)
	}
}
