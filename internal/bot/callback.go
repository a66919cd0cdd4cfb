package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gigswap-bot/internal/session"
)

// callbackKind — действие, закодированное в callback-токене кнопки.
type callbackKind int

const (
	cbBuy callbackKind = iota
	cbSell
	cbFilter
	cbPurchasePrompt
	cbSharePrompt
	cbViewReviewsPrompt
	cbPage
	cbMyPage
	cbDelPage
	cbDelete
	cbPurchaseToken
	cbReviewsPage
	cbLeaveReviewYes
	cbLeaveReviewNo
)

// callback — разобранный callback-токен с типизированными аргументами.
type callback struct {
	kind      callbackKind
	page      int
	listingID string
	token     string
	sellerID  int64
}

// parseCallback разбирает callback-токен кнопки. Грамматика токенов
// фиксирована: имя действия и позиционные аргументы, разделенные "_".
func parseCallback(data string) (callback, error) {
	switch data {
	case "buy":
		return callback{kind: cbBuy}, nil
	case "sell":
		return callback{kind: cbSell}, nil
	case "filter":
		return callback{kind: cbFilter}, nil
	case "purchase":
		return callback{kind: cbPurchasePrompt}, nil
	case "share":
		return callback{kind: cbSharePrompt}, nil
	case "view_reviews":
		return callback{kind: cbViewReviewsPrompt}, nil
	case "leave_review_no":
		return callback{kind: cbLeaveReviewNo}, nil
	}

	switch {
	case strings.HasPrefix(data, "page_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "page_"))
		if err != nil || page < 0 {
			return callback{}, fmt.Errorf("invalid page callback %q", data)
		}
		return callback{kind: cbPage, page: page}, nil

	case strings.HasPrefix(data, "mypage_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "mypage_"))
		if err != nil || page < 0 {
			return callback{}, fmt.Errorf("invalid mypage callback %q", data)
		}
		return callback{kind: cbMyPage, page: page}, nil

	case strings.HasPrefix(data, "delpage_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "delpage_"))
		if err != nil || page < 0 {
			return callback{}, fmt.Errorf("invalid delpage callback %q", data)
		}
		return callback{kind: cbDelPage, page: page}, nil

	case strings.HasPrefix(data, "delete_"):
		id := strings.TrimPrefix(data, "delete_")
		if id == "" {
			return callback{}, fmt.Errorf("invalid delete callback %q", data)
		}
		return callback{kind: cbDelete, listingID: id}, nil

	case strings.HasPrefix(data, "purchase_"):
		token := strings.TrimPrefix(data, "purchase_")
		if token == "" {
			return callback{}, fmt.Errorf("invalid purchase callback %q", data)
		}
		return callback{kind: cbPurchaseToken, token: token}, nil

	case strings.HasPrefix(data, "reviews_"):
		parts := strings.Split(strings.TrimPrefix(data, "reviews_"), "_")
		if len(parts) != 2 {
			return callback{}, fmt.Errorf("invalid reviews callback %q", data)
		}
		seller, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return callback{}, fmt.Errorf("invalid seller in reviews callback %q", data)
		}
		page, err := strconv.Atoi(parts[1])
		if err != nil || page < 0 {
			return callback{}, fmt.Errorf("invalid page in reviews callback %q", data)
		}
		return callback{kind: cbReviewsPage, sellerID: seller, page: page}, nil

	case strings.HasPrefix(data, "leave_review_yes_"):
		seller, err := strconv.ParseInt(strings.TrimPrefix(data, "leave_review_yes_"), 10, 64)
		if err != nil {
			return callback{}, fmt.Errorf("invalid leave_review callback %q", data)
		}
		return callback{kind: cbLeaveReviewYes, sellerID: seller}, nil
	}

	return callback{}, fmt.Errorf("unknown callback %q", data)
}

// handleCallbackQuery обрабатывает нажатие inline-кнопки: подтверждает его
// перед Telegram и направляет разобранное действие нужному обработчику.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Подтверждаем нажатие, чтобы кнопка перестала показывать ожидание.
	if _, err := b.requestFunc(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback query", slog.String("error", err.Error()))
	}

	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	cb, err := parseCallback(cq.Data)
	if err != nil {
		b.logger.Warn("unparseable callback", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		return
	}

	switch cb.kind {
	case cbBuy:
		b.listAvailableListings(ctx, chatID, 0)
	case cbSell:
		b.beginSellFlow(chatID)
	case cbFilter:
		b.sessions.Set(chatID, session.State{Kind: session.AwaitingFilterEventName})
		b.reply(chatID, "Please enter the event name to filter by:")
	case cbPurchasePrompt:
		b.sessions.Set(chatID, session.State{Kind: session.AwaitingPurchaseListing})
		b.reply(chatID, "Which listing number are you interested in?")
	case cbSharePrompt:
		b.sessions.Set(chatID, session.State{Kind: session.AwaitingShareListingNumber})
		b.reply(chatID, "Which listing number would you like to share?")
	case cbViewReviewsPrompt:
		b.sessions.Set(chatID, session.State{Kind: session.AwaitingViewReviewListingNumber})
		b.reply(chatID, "Which listing number would you like to view reviews for?")
	case cbPage:
		b.listAvailableListings(ctx, chatID, cb.page)
	case cbMyPage:
		b.listOwnListings(ctx, chatID, cb.page)
	case cbDelPage:
		b.listOwnListingsForDeletion(ctx, chatID, cb.page)
	case cbDelete:
		b.deleteListing(ctx, chatID, cb.listingID)
	case cbPurchaseToken:
		b.purchaseByToken(ctx, chatID, cb.token)
	case cbReviewsPage:
		b.displayReviews(ctx, chatID, cb.sellerID, cb.page)
	case cbLeaveReviewYes:
		b.sessions.Set(chatID, session.State{Kind: session.AwaitingReview, SellerChatID: cb.sellerID})
		b.reply(chatID, "Please leave a review for the seller (1-5 stars):")
	case cbLeaveReviewNo:
		b.reply(chatID, "Thank you! Have a great day.")
	}
}
