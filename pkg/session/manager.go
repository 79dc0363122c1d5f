package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// ErrSessionNotLive is returned when a stored session is advanced by a
// process that does not hold its cursor.
var ErrSessionNotLive = errors.New("session is not live in this process")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // guards locks and live
	locks map[string]*lockEntry // active locks
	live  map[string]ports.SearchCursor

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
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

// NewManager creates a new session Manager with the given snapshot store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]ports.SearchCursor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
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
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) cursor(sessionID string) (ports.SearchCursor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.live[sessionID]
	return c, ok
}

// Create registers a cursor under a fresh session ID and persists its
// initial snapshot.
func (m *Manager) Create(ctx context.Context, cursor ports.SearchCursor) (string, error) {
	id := uuid.NewString()
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if err := m.store.Save(ctx, id, snapshotOf(id, cursor)); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		m.mu.Lock()
		m.live[id] = cursor
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return "", err
	}
	m.logger.Debug("session created", "session_id", id)
	return id, nil
}

// Next advances a live session by up to n solutions and persists the
// resulting snapshot.
func (m *Manager) Next(ctx context.Context, sessionID string, n int) ([]domain.SolutionRecord, bool, error) {
	var (
		found []domain.SolutionRecord
		done  bool
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		cursor, ok := m.cursor(sessionID)
		if !ok {
			if _, err := m.store.Load(ctx, sessionID); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", ErrSessionNotLive, sessionID)
		}

		var err error
		found, done, err = cursor.Next(ctx, n)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, snapshotOf(sessionID, cursor)); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	})
	return found, done, err
}

// Snapshot returns the current view of a session, preferring the live
// cursor over the stored copy.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if cursor, ok := m.cursor(sessionID); ok {
			snap = snapshotOf(sessionID, cursor)
			return nil
		}
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Delete drops the live cursor and removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.live, sessionID)
		m.mu.Unlock()
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
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

func snapshotOf(sessionID string, cursor ports.SearchCursor) *domain.Snapshot {
	snap := *cursor.Snapshot()
	snap.SessionID = sessionID
	return &snap
}
