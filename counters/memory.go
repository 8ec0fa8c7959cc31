package counters

import (
	"context"
	"sync"
)

// MemoryCounts is the CountStore test double.
type MemoryCounts struct {
	mu     sync.RWMutex
	counts map[string]int64
}

func NewMemoryCounts() *MemoryCounts {
	return &MemoryCounts{counts: make(map[string]int64)}
}

func (c *MemoryCounts) Get(ctx context.Context, name string) (int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count, found := c.counts[name]
	return count, found, nil
}

func (c *MemoryCounts) Set(ctx context.Context, name string, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] = count
	return nil
}
