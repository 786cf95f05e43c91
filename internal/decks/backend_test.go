package decks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotoba/internal/database"
	dbdecks "github.com/mrlokans/kotoba/internal/database/decks"
)

func TestSelectBackend(t *testing.T) {
	t.Run("headless context gets seeded memory backend without opening", func(t *testing.T) {
		opened := false
		sel := SelectBackend(false, func() (Backend, error) {
			opened = true
			return nil, errors.New("should not be called")
		})

		assert.False(t, opened)
		assert.False(t, sel.Durable)
		assert.NoError(t, sel.Fallback)
		assert.Equal(t, MemoryBackendName, sel.Backend.Name())

		decks, err := sel.Backend.GetAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, decks, 1)
	})

	t.Run("durable storage available", func(t *testing.T) {
		db, err := database.NewDatabase(filepath.Join(t.TempDir(), "kotoba.db"))
		require.NoError(t, err)
		defer db.Close()

		sel := SelectBackend(true, func() (Backend, error) {
			return dbdecks.NewRepository(db.DB), nil
		})

		assert.True(t, sel.Durable)
		assert.Equal(t, dbdecks.BackendName, sel.Backend.Name())

		decks, err := sel.Backend.GetAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, decks, "durable backend is never seeded")
	})

	t.Run("blocked engine degrades to memory", func(t *testing.T) {
		blocked := errors.New("database is locked")
		sel := SelectBackend(true, func() (Backend, error) {
			return nil, blocked
		})

		assert.False(t, sel.Durable)
		assert.ErrorIs(t, sel.Fallback, ErrBackendUnavailable)
		assert.Contains(t, sel.Fallback.Error(), "database is locked")
		assert.Equal(t, MemoryBackendName, sel.Backend.Name())
	})

	t.Run("unwritable path degrades to memory", func(t *testing.T) {
		missingDir := filepath.Join(t.TempDir(), "does", "not", "exist", "kotoba.db")
		sel := SelectBackend(true, func() (Backend, error) {
			db, err := database.NewDatabase(missingDir)
			if err != nil {
				return nil, err
			}
			return dbdecks.NewRepository(db.DB), nil
		})

		assert.False(t, sel.Durable)
		assert.ErrorIs(t, sel.Fallback, ErrBackendUnavailable)
	})
}
