// Package storage определяет контракт персистентного хранилища объявлений
// и отзывов, а также его реализации (MongoDB и in-memory).
package storage

import (
	"context"
	"errors"

	"gigswap-bot/internal/domain"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует в хранилище.
var ErrNotFound = errors.New("record not found")

// ListingFilter описывает условия выборки объявлений.
// Нулевое значение означает выборку без условий.
type ListingFilter struct {
	// OwnerChatID — точное совпадение по владельцу объявления.
	OwnerChatID *int64
	// EventName — поиск подстроки в названии события без учета регистра.
	EventName string
}

// Store — контракт документного хранилища. Все методы принимают контекст:
// реализации сами отвечают за таймауты и повторные попытки.
type Store interface {
	// InsertListing сохраняет новое объявление и возвращает его с заполненным ID.
	InsertListing(ctx context.Context, l domain.Listing) (domain.Listing, error)
	// FindListings возвращает объявления по фильтру, пропуская skip записей
	// и ограничивая результат limit записями. limit <= 0 означает без ограничения.
	FindListings(ctx context.Context, f ListingFilter, skip, limit int64) ([]domain.Listing, error)
	// CountListings возвращает общее количество объявлений по фильтру.
	CountListings(ctx context.Context, f ListingFilter) (int64, error)
	// DeleteListing удаляет объявление по его ID.
	DeleteListing(ctx context.Context, id string) error
	// FindListingByToken находит объявление по его share-токену.
	// Возвращает ErrNotFound, если токен никому не принадлежит.
	FindListingByToken(ctx context.Context, token string) (domain.Listing, error)

	// InsertReview сохраняет новый отзыв. Повторные вызовы создают отдельные записи.
	InsertReview(ctx context.Context, r domain.Review) error
	// FindReviews возвращает отзывы о продавце, пропуская skip записей
	// и ограничивая результат limit записями. limit <= 0 означает без ограничения.
	FindReviews(ctx context.Context, sellerChatID int64, skip, limit int64) ([]domain.Review, error)
	// CountReviews возвращает общее количество отзывов о продавце.
	CountReviews(ctx context.Context, sellerChatID int64) (int64, error)
}
