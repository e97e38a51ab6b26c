package ports

import (
	"context"

	"github.com/aretw0/sessionscope/pkg/domain"
)

// SessionIndex persists session metadata so sessions can be listed, inspected
// and removed from outside the serving process.
type SessionIndex interface {
	// Save persists the metadata under meta.ID.
	Save(ctx context.Context, meta *domain.Metadata) error

	// Load retrieves the metadata for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Metadata, error)

	// Delete removes the metadata for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all known sessions.
	List(ctx context.Context) ([]string, error)
}
