package session

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/ports"
)

var _ ports.Session = (*Session)(nil)

// Session is an in-memory attribute store scoped to one user.
// It is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	attrs   map[string]any
	meta    domain.Metadata
	invalid bool

	locksMu sync.Mutex             // guards creation of per-key locks only
	locks   map[string]*sync.Mutex // per-key locks, see TypeLock
}

// New creates a live session with the given id, created at now.
func New(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		attrs: make(map[string]any),
		meta:  *domain.NewMetadata(id, now, ttl),
		locks: make(map[string]*sync.Mutex),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.meta.ID }

// Attribute returns the value stored under key.
// An invalidated session holds no attributes.
func (s *Session) Attribute(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.attrs[key]
	return v, ok
}

// SetAttribute stores value under key.
// On an invalidated session the value is dropped and domain.ErrSessionInvalidated returned.
func (s *Session) SetAttribute(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalid {
		return domain.ErrSessionInvalidated
	}
	s.attrs[key] = value
	return nil
}

// RemoveAttribute deletes the value stored under key.
func (s *Session) RemoveAttribute(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs, key)
}

// AttributeNames returns the sorted attribute keys.
func (s *Session) AttributeNames() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.attrs))
	for k := range s.attrs {
		names = append(names, k)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// TypeLock returns the mutex registered under key, creating it if absent.
// Creation is guarded by a single registry mutex held only for the lookup, so
// unrelated keys never wait on each other's critical sections.
func (s *Session) TypeLock(key string) sync.Locker {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// lockCount reports the number of registered per-key locks.
func (s *Session) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

// Metadata returns a copy of the session metadata.
func (s *Session) Metadata() domain.Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// Touch records an access at now, extending the expiry.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.meta.LastAccess) {
		s.meta.LastAccess = now
	}
}

// Valid reports whether the session has not been invalidated.
func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.invalid
}

// Invalidate destroys the session: attributes implementing io.Closer are
// closed, then all attributes and locks are dropped. Subsequent calls are no-ops.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	if s.invalid {
		s.mu.Unlock()
		return nil
	}
	s.invalid = true
	attrs := s.attrs
	s.attrs = make(map[string]any)
	s.mu.Unlock()

	s.locksMu.Lock()
	s.locks = make(map[string]*sync.Mutex)
	s.locksMu.Unlock()

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if c, ok := attrs[k].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close attribute %q: %w", k, err))
			}
		}
	}
	return errors.Join(errs...)
}
