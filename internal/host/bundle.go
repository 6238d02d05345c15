package host

import (
	"sort"
	"sync"
)

// Bundle is a key/value state container persisted by the host across
// component recreation. The zero value is an empty bundle.
type Bundle struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewBundle creates an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{values: make(map[string]any)}
}

// Put stores value under key.
func (b *Bundle) Put(key string, value any) {
	b.mu.Lock()
	if b.values == nil {
		b.values = make(map[string]any)
	}
	b.values[key] = value
	b.mu.Unlock()
}

// Get returns the value under key, or nil.
func (b *Bundle) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.values[key]
}

// Has reports whether key is present.
func (b *Bundle) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.values[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (b *Bundle) Keys() []string {
	b.mu.RLock()
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	b.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (b *Bundle) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}
