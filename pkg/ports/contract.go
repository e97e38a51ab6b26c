package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionIndexContract runs a suite of tests to verify that a SessionIndex
// implementation adheres to the defined interface contract.
func RunSessionIndexContract(t *testing.T, index SessionIndex) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Save and Load", func(t *testing.T) {
		meta := domain.NewMetadata(sessionID, now, 10*time.Minute)

		err := index.Save(ctx, meta)
		require.NoError(t, err, "Save should not return error")

		loaded, err := index.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, meta.ID, loaded.ID)
		assert.True(t, meta.CreatedAt.Equal(loaded.CreatedAt), "CreatedAt should round-trip")
		assert.Equal(t, meta.TTL, loaded.TTL)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		meta := domain.NewMetadata(sessionID, now, 10*time.Minute)
		require.NoError(t, index.Save(ctx, meta))

		meta.LastAccess = now.Add(time.Minute)
		require.NoError(t, index.Save(ctx, meta))

		loaded, err := index.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, now.Add(time.Minute).Equal(loaded.LastAccess))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := index.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := index.Save(ctx, domain.NewMetadata(sessionID, now, 10*time.Minute))
		require.NoError(t, err)

		err = index.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = index.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = index.Save(ctx, domain.NewMetadata(id1, now, 10*time.Minute))
		_ = index.Save(ctx, domain.NewMetadata(id2, now, 10*time.Minute))

		defer func() {
			_ = index.Delete(ctx, id1)
			_ = index.Delete(ctx, id2)
		}()

		sessions, err := index.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
