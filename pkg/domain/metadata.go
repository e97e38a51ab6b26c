package domain

import "time"

// Metadata is the persisted description of a session.
// Singleton instances live in process memory; only this record is stored.
type Metadata struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	LastAccess time.Time     `json:"last_access"`
	TTL        time.Duration `json:"ttl"`
}

// NewMetadata creates metadata for a session created at now.
func NewMetadata(id string, now time.Time, ttl time.Duration) *Metadata {
	return &Metadata{
		ID:         id,
		CreatedAt:  now,
		LastAccess: now,
		TTL:        ttl,
	}
}

// ExpiresAt returns the instant the session expires. Zero TTL never expires.
func (m Metadata) ExpiresAt() time.Time {
	if m.TTL <= 0 {
		return time.Time{}
	}
	return m.LastAccess.Add(m.TTL)
}

// Expired reports whether the session is idle past its TTL at now.
func (m Metadata) Expired(now time.Time) bool {
	if m.TTL <= 0 {
		return false
	}
	return !now.Before(m.ExpiresAt())
}
