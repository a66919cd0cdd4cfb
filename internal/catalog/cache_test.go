package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigswap-bot/internal/domain"
)

func TestCache_CaptureAndResolve(t *testing.T) {
	c := NewCache()
	chatID := int64(100)

	listings := []domain.Listing{
		{ID: "a", EventName: "Concert"},
		{ID: "b", EventName: "Festival"},
		{ID: "c", EventName: "Theatre"},
	}
	c.Capture(chatID, listings)

	t.Run("resolves one-based indices", func(t *testing.T) {
		first, ok := c.Resolve(chatID, 1)
		require.True(t, ok)
		assert.Equal(t, "a", first.ID)

		last, ok := c.Resolve(chatID, 3)
		require.True(t, ok)
		assert.Equal(t, "c", last.ID)
	})

	t.Run("rejects out of range indices", func(t *testing.T) {
		_, ok := c.Resolve(chatID, 0)
		assert.False(t, ok)
		_, ok = c.Resolve(chatID, 4)
		assert.False(t, ok)
		_, ok = c.Resolve(chatID, -1)
		assert.False(t, ok)
	})

	t.Run("unknown chat has no view", func(t *testing.T) {
		_, ok := c.Resolve(999, 1)
		assert.False(t, ok)
	})
}

func TestCache_CaptureReplacesView(t *testing.T) {
	c := NewCache()
	chatID := int64(200)

	c.Capture(chatID, []domain.Listing{{ID: "old-1"}, {ID: "old-2"}})
	c.Capture(chatID, []domain.Listing{{ID: "new-1"}})

	got, ok := c.Resolve(chatID, 1)
	require.True(t, ok)
	assert.Equal(t, "new-1", got.ID)

	// Второй элемент прежнего вида больше недоступен
	_, ok = c.Resolve(chatID, 2)
	assert.False(t, ok)
}

func TestCache_CaptureCopiesSlice(t *testing.T) {
	c := NewCache()
	chatID := int64(300)

	listings := []domain.Listing{{ID: "a"}}
	c.Capture(chatID, listings)

	// Изменение исходного среза не затрагивает снимок
	listings[0].ID = "mutated"

	got, ok := c.Resolve(chatID, 1)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestCache_ViewsAreIndependent(t *testing.T) {
	c := NewCache()

	c.Capture(1, []domain.Listing{{ID: "x"}})
	c.Capture(2, []domain.Listing{{ID: "y"}})

	got, ok := c.Resolve(1, 1)
	require.True(t, ok)
	assert.Equal(t, "x", got.ID)

	got, ok = c.Resolve(2, 1)
	require.True(t, ok)
	assert.Equal(t, "y", got.ID)
}

func TestCache_EmptyCapture(t *testing.T) {
	c := NewCache()
	chatID := int64(400)

	c.Capture(chatID, nil)
	_, ok := c.Resolve(chatID, 1)
	assert.False(t, ok)
}
