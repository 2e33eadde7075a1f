package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		at := time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC)
		state := domain.NewState(sessionID)
		state.Seen = true
		state.LastTimestamp = at
		state.Append(
			domain.Message{Kind: domain.MessageTimeBreak, Text: "Tue 2:00 pm", At: at},
			domain.UserMessage("hello world", at),
			domain.BotMessage("hi!", at),
		)

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.True(t, loaded.Seen)
		assert.True(t, at.Equal(loaded.LastTimestamp), "timestamp should survive a round trip")
		require.Len(t, loaded.Transcript, 3)
		assert.Equal(t, domain.MessageTimeBreak, loaded.Transcript[0].Kind)
		assert.Equal(t, "hi!", loaded.Transcript[2].Text)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewState(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the caller's copy must not leak into the store.
		state.Append(domain.UserMessage("late", time.Now()))
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Transcript)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
