// Package bot реализует диспетчер: принимает события Telegram, решает,
// относится ли текст к активному чату-ретранслятору, команде, кнопке или
// диалогу конечного автомата, и формирует исходящие ответы.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"gigswap-bot/internal/catalog"
	"gigswap-bot/internal/domain"
	"gigswap-bot/internal/pkg/config"
	"gigswap-bot/internal/relay"
	"gigswap-bot/internal/review"
	"gigswap-bot/internal/session"
	"gigswap-bot/internal/storage"
)

const (
	startCommand      = "start"
	sellCommand       = "sell"
	buyCommand        = "buy"
	myListingsCommand = "mylistings"
	deleteCommand     = "delete"
	exportCommand     = "export"
	endChatCommand    = "endchat"
)

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      config.Config
	store    storage.Store
	sessions *session.Store
	catalog  *catalog.Cache
	matcher  *relay.Matcher
	reviews  *review.Aggregator
	logger   *slog.Logger

	// sendMessageFunc и requestFunc выделены в поля, чтобы подменять
	// обращения к Telegram API в тестах.
	sendMessageFunc func(msg tgbotapi.Chattable) (tgbotapi.Message, error)
	requestFunc     func(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg config.Config, store storage.Store, sessions *session.Store, cat *catalog.Cache,
	matcher *relay.Matcher, reviews *review.Aggregator, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return &Bot{
		api:             api,
		cfg:             cfg,
		store:           store,
		sessions:        sessions,
		catalog:         cat,
		matcher:         matcher,
		reviews:         reviews,
		logger:          logger,
		sendMessageFunc: api.Send,
		requestFunc:     api.Request,
	}, nil
}

// Start запускает основной цикл обработки обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			switch {
			case update.Message != nil && update.Message.Text != "":
				b.handleMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				b.handleCallbackQuery(ctx, update.CallbackQuery)
			}
		}
	}
}

// handleMessage обрабатывает входящее текстовое сообщение. Приоритет маршрутов
// фиксирован: завершение чата, пересылка внутри активной пары, deep-link,
// команды и только затем свободный текст конечного автомата.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() && msg.Command() == endChatCommand {
		b.handleEndChat(chatID)
		return
	}

	if _, paired := b.matcher.Partner(chatID); paired {
		b.forwardMessage(chatID, msg.Text)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.handleFreeText(ctx, chatID, msg.Text)
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case startCommand:
		if token := msg.CommandArguments(); token != "" {
			b.showListingByToken(ctx, chatID, token)
			return
		}
		b.sendStartMessage(chatID)
	case sellCommand:
		b.beginSellFlow(chatID)
	case buyCommand:
		b.listAvailableListings(ctx, chatID, 0)
	case myListingsCommand:
		b.listOwnListings(ctx, chatID, 0)
	case deleteCommand:
		b.listOwnListingsForDeletion(ctx, chatID, 0)
	case exportCommand:
		b.exportOwnListings(ctx, chatID)
	default:
		b.reply(chatID, "I don't know that command.")
	}
}

// handleFreeText передает свободный текст конечному автомату и превращает
// структурированный результат в ответ пользователю.
func (b *Bot) handleFreeText(ctx context.Context, chatID int64, text string) {
	outcome := b.sessions.Advance(chatID, text)

	switch outcome.Kind {
	case session.OutcomeNone:
		b.reply(chatID, "Please use /sell to start a new listing or /buy to view available listings.")

	case session.OutcomePrompt:
		b.reply(chatID, sellPrompt(outcome.Next.Kind))

	case session.OutcomeInvalidDate:
		b.reply(chatID, "Invalid date format. Please enter the date in the format dd-MM-yyyy (e.g., 31-12-2024).")

	case session.OutcomeDraftComplete:
		b.saveListing(ctx, chatID, outcome)

	case session.OutcomeFilter:
		b.filterListings(ctx, chatID, outcome.Query)

	case session.OutcomeNumericRef:
		b.resolveListingRef(ctx, chatID, outcome.Ref, outcome.RefPurpose)

	case session.OutcomeBadNumericRef:
		// Номер не разобран: состояние сохранено, повторяем вопрос.
		b.reply(chatID, "That doesn't look like a listing number. Please reply with a number from the list.")

	case session.OutcomeReview:
		b.saveReview(ctx, chatID, outcome.SellerChatID, outcome.Rating)

	case session.OutcomeInvalidRating:
		b.reply(chatID, "Invalid rating. Please enter a number between 1 and 5.")
	}
}

// beginSellFlow начинает диалог создания объявления.
func (b *Bot) beginSellFlow(chatID int64) {
	b.sessions.BeginSell(chatID)
	b.reply(chatID, "Please enter the event name:")
}

// saveListing сохраняет заполненный черновик как объявление с новым share-токеном.
func (b *Bot) saveListing(ctx context.Context, chatID int64, outcome session.Outcome) {
	listing := outcome.Draft.Listing(chatID, uuid.NewString(), time.Now())

	saved, err := b.store.InsertListing(ctx, listing)
	if err != nil {
		b.logger.Error("failed to save listing", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while saving your listing. Please try again with /sell.")
		return
	}

	b.logger.Info("listing created",
		slog.Int64("chat_id", chatID),
		slog.String("listing_id", saved.ID),
		slog.String("event_name", saved.EventName))
	b.reply(chatID, "Thanks! Your listing has been saved.")
}

// resolveListingRef разрешает номер объявления из последнего показанного списка
// и выполняет запрошенное действие: покупку, шаринг или просмотр отзывов.
func (b *Bot) resolveListingRef(ctx context.Context, chatID int64, ref int, purpose session.Kind) {
	listing, ok := b.catalog.Resolve(chatID, ref)
	if !ok {
		b.reply(chatID, "Invalid listing number. Please try again.")
		return
	}

	switch purpose {
	case session.AwaitingPurchaseListing:
		b.initiatePurchase(chatID, listing)
	case session.AwaitingShareListingNumber:
		link := fmt.Sprintf("https://t.me/%s?start=%s", b.cfg.Bot.Username, listing.ShareToken)
		b.reply(chatID, "Here is the shareable link for the listing:\n"+link)
	case session.AwaitingViewReviewListingNumber:
		b.displayReviews(ctx, chatID, listing.OwnerChatID, 0)
	}
}

// saveReview записывает отзыв о продавце.
func (b *Bot) saveReview(ctx context.Context, chatID, sellerChatID int64, rating int) {
	if _, err := b.reviews.Record(ctx, chatID, sellerChatID, rating); err != nil {
		b.logger.Error("failed to save review",
			slog.Int64("chat_id", chatID),
			slog.Int64("seller_chat_id", sellerChatID),
			slog.String("error", err.Error()))
		b.reply(chatID, "Something went wrong while saving your review. Please try again.")
		return
	}
	b.reply(chatID, "Thank you for your review!")
}

// initiatePurchase запрашивает у матчера соединение покупателя с продавцом
// и уведомляет обе стороны о результате.
func (b *Bot) initiatePurchase(chatID int64, listing domain.Listing) {
	res := b.matcher.Connect(chatID, listing.OwnerChatID)

	switch res.Status {
	case relay.Connected:
		b.reply(chatID, "You are now connected with the seller. Use /endchat to end the chat.")
		b.reply(listing.OwnerChatID, "Buyer is interested in:\n\n"+formatListing(listing)+
			"\nYou are now connected with the buyer. Use /endchat to end the chat.")
		b.logger.Info("relay connected", slog.Int64("buyer", chatID), slog.Int64("seller", listing.OwnerChatID))
	case relay.Queued:
		b.reply(chatID, "The seller is currently in a chat with another buyer. You have been added to the queue.")
		b.logger.Info("buyer queued",
			slog.Int64("buyer", chatID),
			slog.Int64("seller", listing.OwnerChatID),
			slog.Int("position", res.Position))
	case relay.AlreadyQueued:
		b.reply(chatID, "You are already waiting in a queue for a seller. Please wait for your turn.")
	case relay.BuyerBusy:
		b.reply(chatID, "You are already in an active chat. Use /endchat first.")
	case relay.SelfPurchase:
		b.reply(chatID, "You cannot purchase your own listing.")
	}
}

// forwardMessage пересылает текст второй стороне активной пары без изменений.
func (b *Bot) forwardMessage(chatID int64, text string) {
	partner, ok := b.matcher.Partner(chatID)
	if !ok {
		b.reply(chatID, "You are not in an active chat.")
		return
	}
	b.reply(partner, text)
}

// handleEndChat разрывает активную пару, уведомляет обе стороны, предлагает
// инициатору оставить отзыв и при необходимости соединяет освободившегося
// продавца со следующим покупателем из очереди.
func (b *Bot) handleEndChat(chatID int64) {
	res := b.matcher.Disconnect(chatID)
	if !res.WasPaired {
		b.reply(chatID, "You are not in a chat.")
		return
	}

	b.logger.Info("chat ended", slog.Int64("chat_id", chatID), slog.Int64("partner", res.Partner))

	b.reply(chatID, "Chat ended.")
	b.reply(res.Partner, "The buyer/seller has ended the chat.")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", fmt.Sprintf("leave_review_yes_%d", res.Partner)),
			tgbotapi.NewInlineKeyboardButtonData("No", "leave_review_no"),
		),
	)
	b.replyMarkup(chatID, "Would you like to leave a review for the seller?", keyboard)

	if res.Rematched {
		b.reply(res.Seller, "You are now connected with the next buyer in the queue.")
		b.reply(res.NextBuyer, "You are now connected with the seller. Use /endchat to end the chat.")
		b.logger.Info("relay rematched", slog.Int64("seller", res.Seller), slog.Int64("buyer", res.NextBuyer))
	}
}

// sendStartMessage отправляет приветствие с кнопками Buy/Sell.
func (b *Bot) sendStartMessage(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Buy", "buy"),
			tgbotapi.NewInlineKeyboardButtonData("Sell", "sell"),
		),
	)
	b.replyMarkup(chatID, "Hello! I am a bot that can help you buy and sell tickets.", keyboard)
}

// sellPrompt возвращает вопрос для очередного поля черновика.
func sellPrompt(k session.Kind) string {
	switch k {
	case session.AwaitingQuantity:
		return "How many tickets do you have?"
	case session.AwaitingEventDate:
		return "What is the event date? (e.g., 31-12-2024)"
	case session.AwaitingLocation:
		return "Where is the event located?"
	case session.AwaitingCategory:
		return "What ticket category is it? (e.g., General standing / Cat 2)"
	case session.AwaitingPrice:
		return "What is the price per ticket?"
	default:
		return "Please enter the event name:"
	}
}

// reply отправляет простое текстовое сообщение.
func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// replyMarkup отправляет текстовое сообщение с inline-клавиатурой.
func (b *Bot) replyMarkup(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	b.sendMessage(msg)
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(msg); err != nil {
		// Доставка best-effort: неудачная отправка логируется и не повторяется.
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}

// isNotFound сообщает, является ли ошибка отсутствием записи в хранилище.
func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
