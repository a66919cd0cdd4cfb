// Package catalog хранит последний показанный каждому чату список объявлений,
// чтобы числовые ссылки вида "объявление №3" разрешались в конкретную запись.
package catalog

import (
	"sync"

	"gigswap-bot/internal/domain"
)

// Cache — потокобезопасное in-memory хранилище видов каталога по чатам.
// Вид — снимок последней показанной страницы; он не инвалидируется при
// изменении записей в хранилище, разрешение номера выполняется по снимку.
type Cache struct {
	mu    sync.RWMutex
	views map[int64][]domain.Listing
}

// NewCache создает новый экземпляр Cache.
func NewCache() *Cache {
	return &Cache{
		views: make(map[int64][]domain.Listing),
	}
}

// Capture заменяет вид каталога для чата снимком переданных объявлений.
// Срез копируется: дальнейшие изменения у вызывающего на снимок не влияют.
func (c *Cache) Capture(chatID int64, listings []domain.Listing) {
	view := make([]domain.Listing, len(listings))
	copy(view, listings)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[chatID] = view
}

// Resolve возвращает объявление по номеру, начиная с 1, из последнего
// показанного чату списка. Возвращает false, если вида нет или номер
// выходит за его границы.
func (c *Cache) Resolve(chatID int64, oneBasedIndex int) (domain.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view, ok := c.views[chatID]
	if !ok || oneBasedIndex < 1 || oneBasedIndex > len(view) {
		return domain.Listing{}, false
	}
	return view[oneBasedIndex-1], true
}
