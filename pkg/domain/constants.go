package domain

import "time"

// Key naming for session singletons.
const (
	// SingletonKeyPrefix prefixes every session attribute that holds a singleton.
	// The full key is the prefix followed by the fully-qualified type name.
	SingletonKeyPrefix = "sessionscope_singleton_"

	// LockKeySuffix is appended to the instance key to name the per-type lock.
	LockKeySuffix = "#typeLock"
)

// Session defaults.
const (
	// DefaultSessionTTL is the idle time after which a session expires.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultSweepInterval is how often expired sessions are collected.
	DefaultSweepInterval = time.Minute

	// DefaultCookieName names the HTTP cookie carrying the session id.
	DefaultCookieName = "sessionscope_id"
)
