package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Connect(t *testing.T) {
	t.Run("pairs buyer with free seller", func(t *testing.T) {
		m := NewMatcher()

		res := m.Connect(1, 2)
		require.Equal(t, Connected, res.Status)

		partner, ok := m.Partner(1)
		require.True(t, ok)
		assert.Equal(t, int64(2), partner)

		partner, ok = m.Partner(2)
		require.True(t, ok)
		assert.Equal(t, int64(1), partner)
	})

	t.Run("queues buyers for busy seller in order", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)

		res := m.Connect(3, 2)
		require.Equal(t, Queued, res.Status)
		assert.Equal(t, 1, res.Position)

		res = m.Connect(4, 2)
		require.Equal(t, Queued, res.Status)
		assert.Equal(t, 2, res.Position)

		// У ожидающих покупателей нет партнера
		_, ok := m.Partner(3)
		assert.False(t, ok)
	})

	t.Run("rejects self purchase", func(t *testing.T) {
		m := NewMatcher()
		res := m.Connect(5, 5)
		assert.Equal(t, SelfPurchase, res.Status)
	})

	t.Run("rejects buyer already in a chat", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)

		res := m.Connect(1, 9)
		assert.Equal(t, BuyerBusy, res.Status)
	})

	t.Run("rejects buyer already waiting in a queue", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)
		m.Connect(3, 2)

		// Вторая очередь для того же покупателя запрещена
		res := m.Connect(3, 7)
		assert.Equal(t, AlreadyQueued, res.Status)

		res = m.Connect(3, 2)
		assert.Equal(t, AlreadyQueued, res.Status)
	})
}

func TestMatcher_Disconnect(t *testing.T) {
	t.Run("tears down both sides", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)

		res := m.Disconnect(1)
		require.True(t, res.WasPaired)
		assert.Equal(t, int64(2), res.Partner)
		assert.Equal(t, int64(2), res.Seller)
		assert.False(t, res.Rematched)

		_, ok := m.Partner(1)
		assert.False(t, ok)
		_, ok = m.Partner(2)
		assert.False(t, ok)
	})

	t.Run("unpaired chat is a no-op", func(t *testing.T) {
		m := NewMatcher()
		res := m.Disconnect(42)
		assert.False(t, res.WasPaired)
	})

	t.Run("buyer disconnect promotes next buyer from queue", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)
		m.Connect(3, 2)
		m.Connect(4, 2)

		res := m.Disconnect(1)
		require.True(t, res.WasPaired)
		require.True(t, res.Rematched)
		assert.Equal(t, int64(3), res.NextBuyer)
		assert.Equal(t, int64(2), res.Seller)

		partner, ok := m.Partner(2)
		require.True(t, ok)
		assert.Equal(t, int64(3), partner)

		// Третий покупатель остался в очереди
		res = m.Disconnect(3)
		require.True(t, res.Rematched)
		assert.Equal(t, int64(4), res.NextBuyer)
	})

	t.Run("seller disconnect drains the seller queue", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)
		m.Connect(3, 2)

		// Чат разорвал продавец, очередь все равно его
		res := m.Disconnect(2)
		require.True(t, res.WasPaired)
		assert.Equal(t, int64(1), res.Partner)
		assert.Equal(t, int64(2), res.Seller)
		require.True(t, res.Rematched)
		assert.Equal(t, int64(3), res.NextBuyer)

		partner, ok := m.Partner(2)
		require.True(t, ok)
		assert.Equal(t, int64(3), partner)
	})

	t.Run("promoted buyer leaves the waiting index", func(t *testing.T) {
		m := NewMatcher()
		m.Connect(1, 2)
		m.Connect(3, 2)

		m.Disconnect(1)
		m.Disconnect(3)

		// После освобождения покупатель снова может вставать в очереди
		res := m.Connect(3, 9)
		assert.Equal(t, Connected, res.Status)
	})
}

func TestMatcher_Stats(t *testing.T) {
	m := NewMatcher()
	assert.Equal(t, Stats{}, m.Stats())

	m.Connect(1, 2)
	m.Connect(3, 4)
	m.Connect(5, 2)
	m.Connect(6, 2)
	m.Connect(7, 4)

	got := m.Stats()
	assert.Equal(t, 2, got.ActivePairs)
	assert.Equal(t, 3, got.WaitingBuyers)
	assert.Equal(t, 2, got.Queues)

	m.Disconnect(1)
	got = m.Stats()
	assert.Equal(t, 2, got.ActivePairs)
	assert.Equal(t, 2, got.WaitingBuyers)
}

func TestMatcher_ConcurrentConnects(t *testing.T) {
	m := NewMatcher()
	const buyers = 50
	sellerChatID := int64(1000)

	var wg sync.WaitGroup
	results := make([]ConnectResult, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Connect(int64(i+1), sellerChatID)
		}(i)
	}
	wg.Wait()

	connected := 0
	queued := 0
	for _, res := range results {
		switch res.Status {
		case Connected:
			connected++
		case Queued:
			queued++
		}
	}

	// Ровно одна пара, остальные в очереди
	assert.Equal(t, 1, connected)
	assert.Equal(t, buyers-1, queued)

	got := m.Stats()
	assert.Equal(t, 1, got.ActivePairs)
	assert.Equal(t, buyers-1, got.WaitingBuyers)
}
