package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gigswap-bot/internal/domain"
)

// MemoryStore — потокобезопасная in-memory реализация Store.
// Используется в тестах и для локального запуска без MongoDB.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int
	listings []domain.Listing
	reviews  []domain.Review
}

// NewMemoryStore создает пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (f ListingFilter) matches(l domain.Listing) bool {
	if f.OwnerChatID != nil && l.OwnerChatID != *f.OwnerChatID {
		return false
	}
	if f.EventName != "" && !strings.Contains(strings.ToLower(l.EventName), strings.ToLower(f.EventName)) {
		return false
	}
	return true
}

// InsertListing сохраняет объявление и присваивает ему порядковый ID.
func (s *MemoryStore) InsertListing(_ context.Context, l domain.Listing) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l.ID = fmt.Sprintf("mem-%d", s.nextID)
	s.listings = append(s.listings, l)
	return l, nil
}

// FindListings возвращает страницу объявлений по фильтру.
func (s *MemoryStore) FindListings(_ context.Context, f ListingFilter, skip, limit int64) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Listing
	for _, l := range s.listings {
		if f.matches(l) {
			matched = append(matched, l)
		}
	}
	return paginate(matched, skip, limit), nil
}

// CountListings возвращает количество объявлений по фильтру.
func (s *MemoryStore) CountListings(_ context.Context, f ListingFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, l := range s.listings {
		if f.matches(l) {
			count++
		}
	}
	return count, nil
}

// DeleteListing удаляет объявление по ID.
func (s *MemoryStore) DeleteListing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listings {
		if l.ID == id {
			s.listings = append(s.listings[:i], s.listings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// FindListingByToken находит объявление по share-токену.
func (s *MemoryStore) FindListingByToken(_ context.Context, token string) (domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.listings {
		if l.ShareToken == token {
			return l, nil
		}
	}
	return domain.Listing{}, ErrNotFound
}

// InsertReview сохраняет отзыв.
func (s *MemoryStore) InsertReview(_ context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews = append(s.reviews, r)
	return nil
}

// FindReviews возвращает страницу отзывов о продавце.
func (s *MemoryStore) FindReviews(_ context.Context, sellerChatID int64, skip, limit int64) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Review
	for _, r := range s.reviews {
		if r.SellerChatID == sellerChatID {
			matched = append(matched, r)
		}
	}
	return paginate(matched, skip, limit), nil
}

// CountReviews возвращает количество отзывов о продавце.
func (s *MemoryStore) CountReviews(_ context.Context, sellerChatID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, r := range s.reviews {
		if r.SellerChatID == sellerChatID {
			count++
		}
	}
	return count, nil
}

// paginate вырезает страницу из среза по skip/limit.
// limit <= 0 означает без ограничения.
func paginate[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	// Копия, чтобы вызывающий не делил память с хранилищем.
	out := make([]T, len(items))
	copy(out, items)
	return out
}
