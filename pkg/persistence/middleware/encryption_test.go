package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/arcty/pkg/adapters/memory"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/persistence/middleware"
	"github.com/aretw0/arcty/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"
	original := domain.NewState(sessionID)
	original.Seen = true
	original.Append(domain.UserMessage("my-secret-sauce", time.Now()))

	require.NoError(t, secureStore.Save(ctx, sessionID, original))

	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, stored.Transcript, "transcript must not be stored in the clear")
	assert.NotEmpty(t, stored.Sealed)
	assert.True(t, stored.Seen)
	assert.NotContains(t, string(stored.Sealed), "my-secret-sauce")

	loaded, err := secureStore.Load(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, loaded.Transcript, 1)
	assert.Equal(t, "my-secret-sauce", loaded.Transcript[0].Text)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	sessionID := "rotation-session"
	state := domain.NewState(sessionID)
	state.Append(domain.UserMessage("encrypted-with-old-key", time.Now()))

	require.NoError(t, secureStoreOld.Save(ctx, sessionID, state))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, sessionID)
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "encrypted-with-old-key", loaded.Transcript[0].Text)

	// Saving again re-encrypts with the new key only.
	require.NoError(t, secureStoreNew.Save(ctx, sessionID, loaded))
	_, err = secureStoreOld.Load(ctx, sessionID)
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainStateRejected(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "plain", domain.NewState("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestChain(t *testing.T) {
	underlyingStore := memory.NewStore()
	store := middleware.Chain(underlyingStore,
		middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	state := domain.NewState("s1")
	state.Append(domain.UserMessage("reach me at a@b.io", time.Now()))
	require.NoError(t, store.Save(ctx, "s1", state))

	stored, err := underlyingStore.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "reach me at ***", loaded.Transcript[0].Text)
}
