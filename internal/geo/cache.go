package geo

import (
	"context"
	"sync"
)

// Lookuper resolves an IP to its Location. Satisfied by *Client.
type Lookuper interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
}

// Cache is a lookup-or-populate store shared by all workers of a
// session. On a concurrent miss for the same key exactly one caller
// performs the outbound lookup; the rest block until its result is in
// and then observe the same value. Failed lookups are not cached, so a
// later cycle may retry.
type Cache struct {
	mu      sync.Mutex
	client  Lookuper
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready chan struct{}
	loc   *Location
	err   error
}

// NewCache builds an empty cache around a client.
func NewCache(client Lookuper) *Cache {
	return &Cache{
		client:  client,
		entries: make(map[string]*cacheEntry),
	}
}

// Lookup returns the cached Location for ip, populating it via the
// client on first use.
func (c *Cache) Lookup(ctx context.Context, ip string) (*Location, error) {
	c.mu.Lock()
	if e, ok := c.entries[ip]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
			return e.loc, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[ip] = e
	c.mu.Unlock()

	e.loc, e.err = c.client.Lookup(ctx, ip)
	if e.err != nil {
		c.mu.Lock()
		delete(c.entries, ip)
		c.mu.Unlock()
	}
	close(e.ready)

	return e.loc, e.err
}

// Size returns the number of cached addresses.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
