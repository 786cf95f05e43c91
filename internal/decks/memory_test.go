package decks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotoba/internal/entities"
)

func TestNewMemoryBackend_SeedsDemoDeck(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	decks, err := backend.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)

	demo := decks[0]
	assert.Equal(t, uint(1), demo.ID)
	assert.Equal(t, "基础日语词汇", demo.Name)
	require.Len(t, demo.Cards, 3)
	assert.Equal(t, "水", demo.Cards[0].Word)
	assert.Equal(t, []string{"书", "本"}, demo.Cards[1].Meanings)
	assert.Equal(t, "がっこう", demo.Cards[2].Reading)

	id, err := backend.Add(ctx, &entities.Deck{Name: "next"})
	require.NoError(t, err)
	assert.Equal(t, uint(2), id)
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	backend := NewEmptyMemoryBackend()

	deck := &entities.Deck{Name: "copy", Cards: []entities.Card{{ID: 1, Word: "水", Reading: "みず", Meanings: []string{"water"}}}}
	id, err := backend.Add(ctx, deck)
	require.NoError(t, err)

	deck.Cards[0].Meanings[0] = "mutated by caller"

	got, err := backend.Get(ctx, id)
	require.NoError(t, err)
	got.Cards[0].Word = "mutated by reader"

	again, err := backend.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "水", again.Cards[0].Word)
	assert.Equal(t, []string{"water"}, again.Cards[0].Meanings)
}

func TestMemoryBackend_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	backend := NewEmptyMemoryBackend()

	first, err := backend.Add(ctx, &entities.Deck{Name: "a"})
	require.NoError(t, err)
	require.NoError(t, backend.Delete(ctx, first))
	require.NoError(t, backend.Clear(ctx))

	second, err := backend.Add(ctx, &entities.Deck{Name: "b"})
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestMemoryBackend_BulkAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps explicit ids and advances the sequence past them", func(t *testing.T) {
		backend := NewEmptyMemoryBackend()
		batch := []entities.Deck{{ID: 10, Name: "explicit"}, {Name: "implicit"}}

		require.NoError(t, backend.BulkAdd(ctx, batch))
		assert.Equal(t, uint(10), batch[0].ID)
		assert.Equal(t, uint(11), batch[1].ID)

		next, err := backend.Add(ctx, &entities.Deck{Name: "after"})
		require.NoError(t, err)
		assert.Equal(t, uint(12), next)
	})

	t.Run("rejects a taken id without inserting anything", func(t *testing.T) {
		backend := NewEmptyMemoryBackend()
		_, err := backend.Add(ctx, &entities.Deck{Name: "existing"})
		require.NoError(t, err)

		err = backend.BulkAdd(ctx, []entities.Deck{{Name: "fresh"}, {ID: 1, Name: "clash"}})
		require.Error(t, err)

		all, err := backend.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestMemoryBackend_ReplaceAll(t *testing.T) {
	ctx := context.Background()

	t.Run("swaps every deck and keeps the sequence", func(t *testing.T) {
		backend := NewMemoryBackend()
		batch := []entities.Deck{{Name: "implicit"}, {ID: 20, Name: "explicit"}}

		require.NoError(t, backend.ReplaceAll(ctx, batch))
		assert.Equal(t, uint(21), batch[0].ID)

		all, err := backend.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, d := range all {
			assert.NotEqual(t, "基础日语词汇", d.Name)
		}
	})

	t.Run("duplicate ids keep the previous decks", func(t *testing.T) {
		backend := NewMemoryBackend()

		err := backend.ReplaceAll(ctx, []entities.Deck{{ID: 3, Name: "a"}, {ID: 3, Name: "b"}})
		require.Error(t, err)

		all, err := backend.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "基础日语词汇", all[0].Name)

		next, err := backend.Add(ctx, &entities.Deck{Name: "next"})
		require.NoError(t, err)
		assert.Equal(t, uint(2), next, "a rejected batch does not consume ids")
	})
}

func TestMemoryBackend_EmptyCardListsStayEmpty(t *testing.T) {
	ctx := context.Background()
	backend := NewEmptyMemoryBackend()

	id, err := backend.Add(ctx, &entities.Deck{
		Name:  "sparse",
		Cards: []entities.Card{{ID: 1, Word: "学校", Meanings: []string{}, Examples: []entities.Example{}}, {ID: 2, Word: "山"}},
	})
	require.NoError(t, err)

	deck, err := backend.Get(ctx, id)
	require.NoError(t, err)
	for _, card := range deck.Cards {
		assert.Equal(t, []string{}, card.Meanings, card.Word)
		assert.Equal(t, []entities.Example{}, card.Examples, card.Word)
	}
}

func TestMemoryBackend_GetAllOrdering(t *testing.T) {
	ctx := context.Background()
	backend := NewEmptyMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "new", "middle"} {
		offset := map[string]time.Duration{"old": 0, "new": 2 * time.Hour, "middle": time.Hour}[name]
		_, err := backend.Add(ctx, &entities.Deck{Name: name, CreatedAt: base, UpdatedAt: base.Add(offset)})
		require.NoError(t, err, i)
	}
	// same timestamp as "new": the higher id comes first
	_, err := backend.Add(ctx, &entities.Deck{Name: "tie", UpdatedAt: base.Add(2 * time.Hour)})
	require.NoError(t, err)

	decks, err := backend.GetAll(ctx)
	require.NoError(t, err)

	var names []string
	for _, d := range decks {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"tie", "new", "middle", "old"}, names)
}
