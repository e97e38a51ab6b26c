package scope

import (
	"sync"

	"github.com/aretw0/sessionscope/pkg/ports"
)

var _ ports.AttributeCache = (*RequestCache)(nil)

// RequestCache is a request-scoped mirror of session attributes.
//
// Values are published through a sync.Map: a Get that observes a value
// happens after the Set that stored it, so a fully constructed instance is
// visible to any goroutine that finds it here without taking the per-type lock.
// A nil *RequestCache is valid and caches nothing.
type RequestCache struct {
	m sync.Map
}

// NewRequestCache returns an empty cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{}
}

// Get returns the value stored under key.
func (c *RequestCache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.m.Load(key)
}

// Set stores value under key.
func (c *RequestCache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.m.Store(key, value)
}

// Len returns the number of cached entries.
func (c *RequestCache) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
