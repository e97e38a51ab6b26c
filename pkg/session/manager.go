package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sessionscope/internal/logging"
	"github.com/aretw0/sessionscope/internal/metrics"
	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/ports"
	"github.com/google/uuid"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session lifecycle, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	index ports.SessionIndex

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	liveMu sync.RWMutex
	live   map[string]*Session

	locker        ports.DistributedLocker // Optional distributed locker
	lockTTL       time.Duration
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTTL sets the idle time after which sessions expire. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithSweepInterval sets how often Run collects expired sessions.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.sweepInterval = d
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager persisting metadata to index.
func NewManager(index ports.SessionIndex, opts ...Option) *Manager {
	m := &Manager{
		index:         index,
		locks:         make(map[string]*lockEntry),
		live:          make(map[string]*Session),
		lockTTL:       30 * time.Second,
		ttl:           domain.DefaultSessionTTL,
		sweepInterval: domain.DefaultSweepInterval,
		now:           time.Now,
		logger:        logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create starts a new session with a random id and persists its metadata.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	s := New(id, m.now(), m.ttl)

	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		meta := s.Metadata()
		if err := m.index.Save(ctx, &meta); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		m.liveMu.Lock()
		m.live[id] = s
		n := len(m.live)
		m.liveMu.Unlock()

		metrics.SessionsActive.Set(float64(n))
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("session created", "session_id", id)
	return s, nil
}

// Get resolves a live session and records the access.
// Unknown and expired sessions yield domain.ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		live, ok := m.lookup(sessionID)
		if !ok {
			return domain.ErrSessionNotFound
		}

		now := m.now()
		if live.Metadata().Expired(now) {
			if err := m.destroy(ctx, live, "expired"); err != nil {
				m.logger.Warn("expired session cleanup incomplete", "session_id", sessionID, "err", err)
			}
			metrics.SessionsExpired.Inc()
			return domain.ErrSessionNotFound
		}

		live.Touch(now)
		meta := live.Metadata()
		if err := m.index.Save(ctx, &meta); err != nil {
			return fmt.Errorf("failed to persist session access: %w", err)
		}
		s = live
		return nil
	})
	return s, err
}

// GetOrCreate resolves sessionID, starting a fresh session when it is empty,
// unknown or expired.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID != "" {
		s, err := m.Get(ctx, sessionID)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
	}
	return m.Create(ctx)
}

// Invalidate destroys the session and removes it from the index.
// Invalidating an unknown session only clears the index entry.
func (m *Manager) Invalidate(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if live, ok := m.lookup(sessionID); ok {
			return m.destroy(ctx, live, "invalidated")
		}
		return m.index.Delete(ctx, sessionID)
	})
}

// Sweep destroys every live session idle past its TTL and returns how many
// were collected.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	m.liveMu.RLock()
	candidates := make([]string, 0, len(m.live))
	now := m.now()
	for id, s := range m.live {
		if s.Metadata().Expired(now) {
			candidates = append(candidates, id)
		}
	}
	m.liveMu.RUnlock()

	var (
		count int
		errs  []error
	)
	for _, id := range candidates {
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			// Re-check: a request may have touched it since the snapshot.
			live, ok := m.lookup(id)
			if !ok || !live.Metadata().Expired(m.now()) {
				return nil
			}
			count++
			metrics.SessionsExpired.Inc()
			return m.destroy(ctx, live, "expired")
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return count, errors.Join(errs...)
}

// Run sweeps expired sessions every sweep interval until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.sweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				m.logger.Warn("session sweep incomplete", "err", err)
			}
			if n > 0 {
				m.logger.Info("expired sessions collected", "count", n)
			}
		}
	}
}

// List delegates to the index.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.index.List(ctx)
}

// Len reports the number of live sessions in this process.
func (m *Manager) Len() int {
	m.liveMu.RLock()
	defer m.liveMu.RUnlock()
	return len(m.live)
}

// Index returns the underlying session index.
func (m *Manager) Index() ports.SessionIndex {
	return m.index
}

func (m *Manager) lookup(sessionID string) (*Session, bool) {
	m.liveMu.RLock()
	defer m.liveMu.RUnlock()
	s, ok := m.live[sessionID]
	return s, ok
}

// destroy must be called while holding the session lock.
func (m *Manager) destroy(ctx context.Context, s *Session, reason string) error {
	m.liveMu.Lock()
	delete(m.live, s.ID())
	n := len(m.live)
	m.liveMu.Unlock()
	metrics.SessionsActive.Set(float64(n))

	var errs []error
	if err := s.Invalidate(); err != nil {
		m.logger.Warn("session attributes failed to close", "session_id", s.ID(), "err", err)
		errs = append(errs, err)
	}
	if err := m.index.Delete(ctx, s.ID()); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete session from index: %w", err))
	}

	m.logger.Debug("session destroyed", "session_id", s.ID(), "reason", reason)
	return errors.Join(errs...)
}
