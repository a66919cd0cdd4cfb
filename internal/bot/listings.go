package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gigswap-bot/internal/domain"
	"gigswap-bot/internal/storage"
)

// formatListing возвращает текстовое представление одного объявления.
func formatListing(l domain.Listing) string {
	var sb strings.Builder
	sb.WriteString("Event Name: " + l.EventName + "\n")
	sb.WriteString("Quantity: " + l.Quantity + "\n")
	sb.WriteString("Event Date: " + l.EventDate + "\n")
	sb.WriteString("Location: " + l.Location + "\n")
	sb.WriteString("Category: " + l.Category + "\n")
	sb.WriteString("Price: " + l.Price + "\n")
	return sb.String()
}

// formatListingPage нумерует объявления страницы, начиная с firstIndex.
func formatListingPage(header string, listings []domain.Listing, firstIndex int) string {
	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	for i, l := range listings {
		sb.WriteString(fmt.Sprintf("%d.\n", firstIndex+i))
		sb.WriteString(formatListing(l))
		sb.WriteString("\n")
	}
	return sb.String()
}

// fetchListingPage загружает одну страницу объявлений вместе с общим
// количеством страниц по данному фильтру.
func (b *Bot) fetchListingPage(ctx context.Context, f storage.ListingFilter, page int) ([]domain.Listing, int, error) {
	pageSize := int64(b.cfg.Marketplace.PageSize)

	listings, err := b.store.FindListings(ctx, f, int64(page)*pageSize, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings page: %w", err)
	}
	total, err := b.store.CountListings(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	return listings, totalPages, nil
}

// listAvailableListings показывает страницу всех объявлений на продажу.
// Показанная страница становится текущим видом каталога этого чата.
func (b *Bot) listAvailableListings(ctx context.Context, chatID int64, page int) {
	listings, totalPages, err := b.fetchListingPage(ctx, storage.ListingFilter{}, page)
	if err != nil {
		b.logger.Error("failed to list available listings", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while loading listings. Please try again later.")
		return
	}

	b.catalog.Capture(chatID, listings)

	if len(listings) == 0 {
		b.reply(chatID, "No tickets are currently available for sale.")
		return
	}

	rows := pageButtonRows(totalPages, "page_")
	rows = append(rows, marketplaceActionRows()...)
	b.replyMarkup(chatID, formatListingPage("Available tickets:", listings, 1), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// filterListings показывает первую страницу объявлений, отфильтрованных
// по подстроке названия события. Фильтр одноразовый: постраничных кнопок нет,
// повторный поиск запускается кнопкой Filter.
func (b *Bot) filterListings(ctx context.Context, chatID int64, query string) {
	f := storage.ListingFilter{EventName: query}

	listings, _, err := b.fetchListingPage(ctx, f, 0)
	if err != nil {
		b.logger.Error("failed to filter listings", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while searching listings. Please try again later.")
		return
	}

	b.catalog.Capture(chatID, listings)

	if len(listings) == 0 {
		b.reply(chatID, "No tickets found for the specified event.")
		return
	}

	b.replyMarkup(chatID, formatListingPage("Filtered tickets:", listings, 1),
		tgbotapi.NewInlineKeyboardMarkup(marketplaceActionRows()...))
}

// listOwnListings показывает страницу объявлений самого пользователя.
// Нумерация сквозная по всем страницам; вид каталога не обновляется.
func (b *Bot) listOwnListings(ctx context.Context, chatID int64, page int) {
	owner := chatID
	listings, totalPages, err := b.fetchListingPage(ctx, storage.ListingFilter{OwnerChatID: &owner}, page)
	if err != nil {
		b.logger.Error("failed to list own listings", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while loading your listings. Please try again later.")
		return
	}

	if len(listings) == 0 {
		b.reply(chatID, "You have no listings.")
		return
	}

	firstIndex := 1 + page*b.cfg.Marketplace.PageSize
	rows := pageButtonRows(totalPages, "mypage_")
	b.replyMarkup(chatID, formatListingPage("Your listings:", listings, firstIndex), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// listOwnListingsForDeletion показывает объявления пользователя с кнопкой
// удаления под каждым.
func (b *Bot) listOwnListingsForDeletion(ctx context.Context, chatID int64, page int) {
	owner := chatID
	listings, totalPages, err := b.fetchListingPage(ctx, storage.ListingFilter{OwnerChatID: &owner}, page)
	if err != nil {
		b.logger.Error("failed to list listings for deletion", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while loading your listings. Please try again later.")
		return
	}

	if len(listings) == 0 {
		b.reply(chatID, "You have no listings.")
		return
	}

	firstIndex := 1 + page*b.cfg.Marketplace.PageSize
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, l := range listings {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Delete Listing %d", firstIndex+i),
				"delete_"+l.ID,
			),
		))
	}
	rows = append(rows, pageButtonRows(totalPages, "delpage_")...)

	b.replyMarkup(chatID, formatListingPage("Your listings:", listings, firstIndex), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// deleteListing удаляет объявление по ID из кнопки под списком /delete.
func (b *Bot) deleteListing(ctx context.Context, chatID int64, listingID string) {
	if err := b.store.DeleteListing(ctx, listingID); err != nil {
		if isNotFound(err) {
			b.reply(chatID, "Listing not found.")
			return
		}
		b.logger.Error("failed to delete listing",
			slog.Int64("chat_id", chatID),
			slog.String("listing_id", listingID),
			slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while deleting the listing. Please try again later.")
		return
	}

	b.logger.Info("listing deleted", slog.Int64("chat_id", chatID), slog.String("listing_id", listingID))
	b.reply(chatID, "Listing deleted successfully.")
}

// showListingByToken показывает детали объявления по share-токену из deep-link.
func (b *Bot) showListingByToken(ctx context.Context, chatID int64, token string) {
	listing, err := b.store.FindListingByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			b.reply(chatID, "Listing not found.")
			return
		}
		b.logger.Error("failed to find listing by token", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while loading the listing. Please try again later.")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Purchase ticket/s", "purchase_"+listing.ShareToken),
		),
	)
	b.replyMarkup(chatID, "Listing Details:\n\n"+formatListing(listing), keyboard)
}

// purchaseByToken соединяет покупателя с продавцом объявления по share-токену.
func (b *Bot) purchaseByToken(ctx context.Context, chatID int64, token string) {
	listing, err := b.store.FindListingByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			b.reply(chatID, "Listing not found.")
			return
		}
		b.logger.Error("failed to find listing by token", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while loading the listing. Please try again later.")
		return
	}
	b.initiatePurchase(chatID, listing)
}

// displayReviews показывает сводку отзывов о продавце: среднюю оценку
// и страницу отзывов с кнопками перехода по страницам.
func (b *Bot) displayReviews(ctx context.Context, chatID, sellerChatID int64, page int) {
	summary, err := b.reviews.Summarize(ctx, sellerChatID, page)
	if err != nil {
		b.logger.Error("failed to summarize reviews",
			slog.Int64("chat_id", chatID),
			slog.Int64("seller_chat_id", sellerChatID),
			slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while loading reviews. Please try again later.")
		return
	}

	if summary.Total == 0 {
		b.reply(chatID, "No reviews found for this seller.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Seller Reviews:\n\n")
	sb.WriteString(fmt.Sprintf("Average Rating: %.2f stars\n\n", summary.Average))
	firstIndex := 1 + page*b.cfg.Marketplace.PageSize
	for i, r := range summary.Reviews {
		sb.WriteString(fmt.Sprintf("%d.\n", firstIndex+i))
		sb.WriteString(fmt.Sprintf("Rating: %d stars\n", r.Rating))
		sb.WriteString(fmt.Sprintf("Date: %s\n\n", r.CreatedAt.Format("02-01-2006 15:04")))
	}

	prefix := fmt.Sprintf("reviews_%d_", sellerChatID)
	rows := pageButtonRows(summary.TotalPages, prefix)
	b.replyMarkup(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// pageButtonRows строит по одной кнопке на каждую страницу результата.
func pageButtonRows(totalPages int, callbackPrefix string) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < totalPages; i++ {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Page %d", i+1), fmt.Sprintf("%s%d", callbackPrefix, i)),
		))
	}
	return rows
}

// marketplaceActionRows строит кнопки действий под списком объявлений.
func marketplaceActionRows() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Filter by Event Name", "filter")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Purchase ticket/s", "purchase")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Share Listing", "share")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("View Reviews", "view_reviews")),
	}
}
