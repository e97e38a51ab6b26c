package ports

import (
	"context"
	"sync"
)

// Session is a key-value store scoped to one user's interaction lifetime.
// Implementations must be safe for concurrent use by multiple requests.
type Session interface {
	// ID returns the stable session identifier.
	ID() string

	// Attribute returns the value stored under key, if any.
	Attribute(key string) (any, bool)

	// SetAttribute stores value under key, replacing any previous value.
	// It fails with domain.ErrSessionInvalidated once the session is destroyed,
	// in which case value is not retained.
	SetAttribute(key string, value any) error

	// RemoveAttribute deletes the value stored under key.
	RemoveAttribute(key string)

	// TypeLock returns the mutex registered under key, creating it on first use.
	// The same key always yields the same lock for the lifetime of the session.
	TypeLock(key string) sync.Locker
}

// AttributeCache is a fast-path mirror of session attributes, typically scoped
// to a single request. It is never authoritative.
type AttributeCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// ContextProvider resolves the ambient session state of a call.
type ContextProvider interface {
	// Session returns the session bound to ctx, or domain.ErrNoSession.
	Session(ctx context.Context) (Session, error)

	// Cache returns the request cache bound to ctx, or nil when there is none.
	Cache(ctx context.Context) AttributeCache
}
