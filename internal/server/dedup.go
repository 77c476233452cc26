package server

import (
	"sync"
	"time"
)

const seenTTL = 5 * time.Minute

// seenCache remembers recently handled message ids; transports redeliver
// on reconnects and webhook timeouts.
type seenCache struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func newSeenCache() *seenCache {
	return &seenCache{seen: make(map[string]time.Time), now: time.Now}
}

// firstSeen marks id and reports whether it was new. Expired ids are swept on each call.
func (c *seenCache) firstSeen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cutoff := now.Add(-seenTTL)
	for k, ts := range c.seen {
		if ts.Before(cutoff) {
			delete(c.seen, k)
		}
	}

	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = now
	return true
}
