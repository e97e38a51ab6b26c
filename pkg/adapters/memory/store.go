package memory

import (
	"context"
	"sync"

	"github.com/aretw0/sessionscope/pkg/domain"
)

// Store implements ports.SessionIndex in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Metadata
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Metadata),
	}
}

// Save stores a copy of the metadata.
func (s *Store) Save(ctx context.Context, meta *domain.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[meta.ID] = *meta
	return nil
}

// Load retrieves a copy so callers can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &meta, nil
}

// Delete removes the metadata.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns known sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
