package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gigswap-bot/internal/bot"
	"gigswap-bot/internal/catalog"
	"gigswap-bot/internal/log"
	"gigswap-bot/internal/pkg/config"
	"gigswap-bot/internal/relay"
	"gigswap-bot/internal/review"
	"gigswap-bot/internal/server"
	"gigswap-bot/internal/session"
	"gigswap-bot/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскировкой секретов
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := log.NewMaskedLogger(handler)
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Подключение к хранилищу
	connectCtx, connectCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Mongo.ConnectTimeoutSecs)*time.Second)
	defer connectCancel()

	slog.Info("Connecting to MongoDB...", slog.String("database", cfg.Mongo.Database))
	store, err := storage.NewMongoStore(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database,
		cfg.Mongo.ListingsCollection, cfg.Mongo.ReviewsCollection)
	if err != nil {
		return fmt.Errorf("failed to init mongo store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Error("failed to close mongo store", "error", err)
		}
	}()

	// 5. Инициализация компонентов
	sessions := session.NewStore()
	views := catalog.NewCache()
	matcher := relay.NewMatcher()
	reviews := review.NewAggregator(store, cfg.Marketplace.PageSize)

	b, err := bot.NewBot(*cfg, store, sessions, views, matcher, reviews,
		logger.With(slog.String("component", "bot")))
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	opsServer := server.New(cfg, matcher)

	// 6. Ожидание сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting ops HTTP server", slog.String("addr", cfg.Address()))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops server failed", "error", err)
		}
	}()

	slog.Info("Bot created successfully, starting...")
	go b.Start(ctx)

	<-ctx.Done() // Ожидаем сигнал завершения

	slog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down ops server", "error", err)
	}

	slog.Info("Bot stopped gracefully")
	return nil
}
