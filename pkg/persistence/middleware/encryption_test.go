package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/persistence/middleware"
	"github.com/aretw0/espalier/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		SessionID:  "s1",
		Module:     "EXAMPLE",
		Initial:    "f(a, a)",
		SearchType: domain.AnySteps,
		Pattern:    "f(X, c)",
		MaxDepth:   domain.Unbounded,
		States: []domain.StateRecord{
			{Nr: 0, Term: "f(a, a)", Parent: domain.NoParent},
			{Nr: 1, Term: "f(b, a)", Parent: 0, Depth: 1, Transition: "ab"},
		},
		Solutions: []domain.SolutionRecord{{StateNr: 1, Bindings: map[string]string{"X": "secret-term"}}},
	}
}

func seal(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	ports.RunSnapshotStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	original := sampleSnapshot()
	require.NoError(t, secure.Save(ctx, "s1", original))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)
	assert.Empty(t, stored.States)
	assert.Empty(t, stored.Solutions)
	assert.Equal(t, "EXAMPLE", stored.Module)
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-term")

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := seal(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "s1", sampleSnapshot()))

	newStore := seal(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})(underlying)
	loaded, err := newStore.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "f(a, a)", loaded.Initial)

	// Saving again re-seals with the new key only.
	require.NoError(t, newStore.Save(ctx, "s1", loaded))
	_, err = oldStore.Load(ctx, "s1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RefusesPlainSnapshots(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", sampleSnapshot()))

	secure := seal(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		cfg  middleware.EncryptionConfig
	}{
		{"Short active key", middleware.EncryptionConfig{ActiveKey: []byte("short-key")}},
		{"Short fallback key", middleware.EncryptionConfig{ActiveKey: make([]byte, 32), FallbackKeys: [][]byte{[]byte("old")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := middleware.NewEncryptionMiddleware(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestChain(t *testing.T) {
	var order []string
	trace := func(name string) middleware.Middleware {
		return func(next ports.SnapshotStore) ports.SnapshotStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), trace("outer"), trace("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
