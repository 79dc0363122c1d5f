package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/session"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, sessionID, snap)
}

// countingCursor yields one solution per state until it runs out.
// It is not safe for concurrent use, so the manager must serialise calls.
type countingCursor struct {
	limit  int
	states []domain.StateRecord
	found  []domain.SolutionRecord
	busy   bool
}

func (c *countingCursor) Next(ctx context.Context, n int) ([]domain.SolutionRecord, bool, error) {
	if c.busy {
		return nil, false, errors.New("concurrent Next")
	}
	c.busy = true
	defer func() { c.busy = false }()

	var out []domain.SolutionRecord
	for len(out) < n && len(c.states) < c.limit {
		if err := ctx.Err(); err != nil {
			return out, false, err
		}
		nr := len(c.states)
		c.states = append(c.states, domain.StateRecord{Nr: nr, Term: "a", Parent: nr - 1, Depth: nr})
		rec := domain.SolutionRecord{StateNr: nr}
		c.found = append(c.found, rec)
		out = append(out, rec)
		time.Sleep(time.Millisecond)
	}
	return out, len(c.states) >= c.limit, nil
}

func (c *countingCursor) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Module:     "TEST",
		Initial:    "a",
		SearchType: domain.AnySteps,
		Pattern:    "X",
		States:     append([]domain.StateRecord(nil), c.states...),
		Solutions:  append([]domain.SolutionRecord(nil), c.found...),
		Exhausted:  len(c.states) >= c.limit,
	}
}

func TestManager_CreateAndAdvance(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	id, err := manager.Create(ctx, &countingCursor{limit: 3})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "session IDs are UUIDs")

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.SessionID)
	assert.Empty(t, stored.States)

	found, done, err := manager.Next(ctx, id, 2)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []domain.SolutionRecord{{StateNr: 0}, {StateNr: 1}}, found)

	stored, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.States, 2, "every advance is persisted")

	found, done, err = manager.Next(ctx, id, 5)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, found, 1)

	snap, err := manager.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.True(t, snap.Exhausted)
	assert.Equal(t, []int{0, 1, 2}, snap.Path(2))
}

func TestManager_Locking(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()

	id, err := manager.Create(ctx, &countingCursor{limit: 100})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := manager.Next(ctx, id, 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := manager.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Len(t, snap.Solutions, 30)
}

func TestManager_StoredSessionIsNotLive(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := session.NewManager(store)
	id, err := first.Create(ctx, &countingCursor{limit: 3})
	require.NoError(t, err)
	_, _, err = first.Next(ctx, id, 1)
	require.NoError(t, err)

	// A second process sees the snapshot but cannot advance it.
	second := session.NewManager(store)
	snap, err := second.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Len(t, snap.States, 1)

	_, _, err = second.Next(ctx, id, 1)
	assert.ErrorIs(t, err, session.ErrSessionNotLive)
}

func TestManager_UnknownSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, _, err := manager.Next(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = manager.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_Delete(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	id, err := manager.Create(ctx, &countingCursor{limit: 1})
	require.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	require.NoError(t, manager.Delete(ctx, id))

	_, _, err = manager.Next(ctx, id, 1)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewFromClient(client)
	manager := session.NewManager(store,
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(time.Second),
	)
	ctx := context.Background()

	id, err := manager.Create(ctx, &countingCursor{limit: 2})
	require.NoError(t, err)

	_, done, err := manager.Next(ctx, id, 2)
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, mr.Exists("test:lock:"+id), "lock is released after each call")

	snap, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, snap.Exhausted)
}
