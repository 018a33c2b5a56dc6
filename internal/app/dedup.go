package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DedupCache remembers processed event ids until the next Reset.
// Replace with Redis SETNX for a multi-instance deployment.
type DedupCache struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupCache() *DedupCache {
	return &DedupCache{seen: make(map[string]struct{})}
}

// MarkSeen records id and reports whether it was new.
func (c *DedupCache) MarkSeen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = struct{}{}
	return true
}

// Forget drops id so a failed event can be retried.
func (c *DedupCache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, id)
}

func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *DedupCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]struct{})
}

// ScheduleReset clears the cache on the given cron spec ("@every 10m", "0 * * * *").
// The returned scheduler is already started; Stop it on shutdown.
func ScheduleReset(log *slog.Logger, cache *DedupCache, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n := cache.Len()
		cache.Reset()
		log.Debug("deduplication cache reset", slog.Int("evicted", n))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid dedup reset schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
