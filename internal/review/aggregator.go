// Package review записывает отзывы о продавцах и считает их сводку:
// среднюю оценку и постраничный список.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gigswap-bot/internal/domain"
	"gigswap-bot/internal/storage"
)

// ErrInvalidRating возвращается при оценке вне диапазона 1-5.
var ErrInvalidRating = fmt.Errorf("rating must be between 1 and 5")

// Summary — сводка отзывов о продавце для одной страницы.
type Summary struct {
	// Average — средняя оценка по всем отзывам о продавце, не только по странице.
	Average float64
	// Total — общее количество отзывов.
	Total int64
	// TotalPages — количество страниц при текущем размере страницы.
	TotalPages int
	// Reviews — отзывы запрошенной страницы.
	Reviews []domain.Review
}

// Aggregator считает сводки и записывает новые отзывы.
type Aggregator struct {
	store    storage.Store
	pageSize int
}

// NewAggregator создает Aggregator поверх переданного хранилища.
func NewAggregator(store storage.Store, pageSize int) *Aggregator {
	return &Aggregator{store: store, pageSize: pageSize}
}

// Record сохраняет новый отзыв покупателя о продавце. Идемпотентности нет:
// повторные вызовы создают отдельные записи.
func (a *Aggregator) Record(ctx context.Context, buyerChatID, sellerChatID int64, rating int) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}

	r := domain.Review{
		ID:           uuid.NewString(),
		BuyerChatID:  buyerChatID,
		SellerChatID: sellerChatID,
		Rating:       rating,
		CreatedAt:    time.Now(),
	}
	if err := a.store.InsertReview(ctx, r); err != nil {
		return domain.Review{}, fmt.Errorf("failed to record review: %w", err)
	}
	return r, nil
}

// Summarize возвращает сводку отзывов о продавце для страницы page (с нуля).
// Средняя оценка считается по всем отзывам продавца, а не по окну страницы.
func (a *Aggregator) Summarize(ctx context.Context, sellerChatID int64, page int) (Summary, error) {
	total, err := a.store.CountReviews(ctx, sellerChatID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count reviews: %w", err)
	}

	pageReviews, err := a.store.FindReviews(ctx, sellerChatID, int64(page)*int64(a.pageSize), int64(a.pageSize))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch reviews page: %w", err)
	}

	var average float64
	if total > 0 {
		all, err := a.store.FindReviews(ctx, sellerChatID, 0, 0)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to fetch reviews: %w", err)
		}
		var sum int
		for _, r := range all {
			sum += r.Rating
		}
		average = float64(sum) / float64(len(all))
	}

	return Summary{
		Average:    average,
		Total:      total,
		TotalPages: int((total + int64(a.pageSize) - 1) / int64(a.pageSize)),
		Reviews:    pageReviews,
	}, nil
}
