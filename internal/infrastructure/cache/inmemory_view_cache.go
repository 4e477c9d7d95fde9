package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gatetrack/backend/internal/application/invoiceview"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryViewCache implements the read-view cache in process memory.
// Suitable for single-instance deployments and testing. Entries are stored as
// JSON so Get semantics match the Redis implementation exactly.
type InMemoryViewCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewInMemoryViewCache creates an in-process view cache
func NewInMemoryViewCache() *InMemoryViewCache {
	return &InMemoryViewCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get reads a cached view into dest. Returns false on a miss or after expiry.
func (c *InMemoryViewCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached view: %w", err)
	}
	return true, nil
}

// Set stores a view snapshot with the given TTL. A zero TTL stores forever.
func (c *InMemoryViewCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode view for caching: %w", err)
	}

	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete drops the given view keys
func (c *InMemoryViewCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries (for testing/monitoring)
func (c *InMemoryViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryViewCache implements invoiceview.ViewCache
var _ invoiceview.ViewCache = (*InMemoryViewCache)(nil)
