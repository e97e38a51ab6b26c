package session_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/sessionscope/internal/logging"
	"github.com/aretw0/sessionscope/pkg/adapters/memory"
	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/ports"
	"github.com/aretw0/sessionscope/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManager(t *testing.T, opts ...session.Option) (*session.Manager, *memory.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	index := memory.NewStore()
	opts = append([]session.Option{session.WithClock(clock.Now), session.WithTTL(time.Minute)}, opts...)
	return session.NewManager(index, opts...), index, clock
}

func TestManager_CreateAndGet(t *testing.T) {
	mgr, index, clock := newManager(t)
	ctx := context.Background()

	s, err := mgr.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	meta, err := index.Load(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, meta.TTL)

	clock.Advance(30 * time.Second)
	got, err := mgr.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	meta, err = index.Load(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), meta.LastAccess, "access must be persisted")
}

func TestManager_GetUnknown(t *testing.T) {
	mgr, _, _ := newManager(t)

	_, err := mgr.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_GetExpired(t *testing.T) {
	mgr, index, clock := newManager(t)
	ctx := context.Background()

	s, err := mgr.Create(ctx)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = mgr.Get(ctx, s.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.False(t, s.Valid())

	_, err = index.Load(ctx, s.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

// failingDeleteIndex is a memory store whose Delete always fails.
type failingDeleteIndex struct {
	*memory.Store
}

func (f failingDeleteIndex) Delete(ctx context.Context, sessionID string) error {
	return errors.New("index offline")
}

func TestManager_GetExpiredLogsCleanupFailure(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	mgr := session.NewManager(failingDeleteIndex{memory.NewStore()},
		session.WithClock(clock.Now),
		session.WithTTL(time.Minute),
		session.WithLogger(logging.NewWithWriter(&buf, slog.LevelWarn)),
	)
	ctx := context.Background()

	s, err := mgr.Create(ctx)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = mgr.Get(ctx, s.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.False(t, s.Valid())

	out := buf.String()
	assert.Contains(t, out, "expired session cleanup incomplete")
	assert.Contains(t, out, "index offline")
	assert.Contains(t, out, s.ID())
}

func TestManager_GetOrCreate(t *testing.T) {
	mgr, _, clock := newManager(t)
	ctx := context.Background()

	first, err := mgr.GetOrCreate(ctx, "")
	require.NoError(t, err)

	again, err := mgr.GetOrCreate(ctx, first.ID())
	require.NoError(t, err)
	assert.Same(t, first, again)

	clock.Advance(time.Hour)
	fresh, err := mgr.GetOrCreate(ctx, first.ID())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), fresh.ID())
}

func TestManager_Invalidate(t *testing.T) {
	mgr, index, _ := newManager(t)
	ctx := context.Background()

	s, err := mgr.Create(ctx)
	require.NoError(t, err)
	s.SetAttribute("k", "v")

	require.NoError(t, mgr.Invalidate(ctx, s.ID()))
	assert.False(t, s.Valid())
	assert.Equal(t, 0, mgr.Len())

	_, err = index.Load(ctx, s.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Index-only entries (e.g. from another replica) are removed too.
	require.NoError(t, index.Save(ctx, domain.NewMetadata("remote", time.Now(), 0)))
	require.NoError(t, mgr.Invalidate(ctx, "remote"))
	_, err = index.Load(ctx, "remote")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_Sweep(t *testing.T) {
	mgr, _, clock := newManager(t)
	ctx := context.Background()

	stale, err := mgr.Create(ctx)
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	fresh, err := mgr.Create(ctx)
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	n, err := mgr.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, stale.Valid())
	assert.True(t, fresh.Valid())

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID()}, ids)
}

func TestManager_RunStopsWithContext(t *testing.T) {
	mgr, _, _ := newManager(t, session.WithSweepInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		mgr.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("redis down")
}

func TestManager_DistributedLockFailure(t *testing.T) {
	mgr, _, _ := newManager(t, session.WithLocker(failingLocker{}))

	_, err := mgr.Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire distributed lock")
	assert.Equal(t, 0, mgr.Len())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	mgr, _, _ := newManager(t)
	ctx := context.Background()

	s, err := mgr.Create(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := mgr.Get(ctx, s.ID())
			assert.NoError(t, err)
			assert.Same(t, s, got)
		}()
	}
	wg.Wait()
}
