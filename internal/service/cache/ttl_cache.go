package cache

import (
	"sync"
	"time"
)

type ttlEntry struct {
	body     []byte
	expireAt time.Time
}

// TTLCache is a process-local BytesCache. Expired entries are dropped on
// read; when the cache grows past maxEntries a full expired sweep runs and,
// if still over, the soonest-expiring entry is evicted.
type TTLCache struct {
	mu         sync.Mutex
	entries    map[string]ttlEntry
	maxEntries int
}

func NewTTLCache() *TTLCache {
	return &TTLCache{entries: make(map[string]ttlEntry), maxEntries: 4096}
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if now.After(e.expireAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.body, true, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.pruneLocked(now)
	}
	c.entries[key] = ttlEntry{body: value, expireAt: now.Add(ttl)}
	return nil
}

func (c *TTLCache) pruneLocked(now time.Time) {
	for key, e := range c.entries {
		if now.After(e.expireAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	var victim string
	var soonest time.Time
	for key, e := range c.entries {
		if victim == "" || e.expireAt.Before(soonest) {
			victim = key
			soonest = e.expireAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
