package gate

import "sync"

// ResolvedCache tracks which field keys have already been sent to the
// language model within one run. It exists so a batch spanning many
// documents never pays for the same field twice, and it is passed
// explicitly into the gate rather than hiding in package state so the
// once-per-field property is directly testable. Safe for concurrent use.
type ResolvedCache struct {
	mu   sync.Mutex
	keys map[string]bool
}

// NewResolvedCache returns an empty run-scoped cache.
func NewResolvedCache() *ResolvedCache {
	return &ResolvedCache{keys: make(map[string]bool)}
}

// Resolved reports whether the key has already been resolved this run.
func (c *ResolvedCache) Resolved(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[key]
}

// MarkResolved records that the key has been resolved this run.
func (c *ResolvedCache) MarkResolved(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.keys[k] = true
	}
}

// Len returns the number of resolved keys.
func (c *ResolvedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}
