package session

import (
	"context"
	"testing"

	"github.com/aretw0/sessionscope/pkg/domain"
)

// mockIndex discards everything.
type mockIndex struct{}

func (m *mockIndex) Save(ctx context.Context, meta *domain.Metadata) error { return nil }
func (m *mockIndex) Load(ctx context.Context, sessionID string) (*domain.Metadata, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *mockIndex) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *mockIndex) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&mockIndex{})
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		s, err := mgr.Create(ctx)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := mgr.Get(ctx, s.ID()); err != nil {
			t.Fatalf("get: %v", err)
		}
		if err := mgr.Invalidate(ctx, s.ID()); err != nil {
			t.Fatalf("invalidate: %v", err)
		}
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Invalidate", lockCount)
	}
	if mgr.Len() != 0 {
		t.Errorf("expected no live sessions, got %d", mgr.Len())
	}
}

func TestSession_TypeLockRegistry(t *testing.T) {
	s := New("s1", timeZero, 0)

	a := s.TypeLock("a")
	if a != s.TypeLock("a") {
		t.Error("same key must yield the same lock")
	}
	if a == s.TypeLock("b") {
		t.Error("distinct keys must yield distinct locks")
	}
	if got := s.lockCount(); got != 2 {
		t.Errorf("lockCount = %d, want 2", got)
	}

	_ = s.Invalidate()
	if got := s.lockCount(); got != 0 {
		t.Errorf("locks must be dropped on invalidate, got %d", got)
	}
}
