// Package server предоставляет эксплуатационный HTTP-сервер бота:
// проверку работоспособности и счетчики активных пар и очередей.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gigswap-bot/internal/pkg/config"
	"gigswap-bot/internal/relay"
)

// Server представляет HTTP-сервер.
type Server struct {
	HTTPServer *http.Server
}

// New создает новый экземпляр Server.
func New(cfg *config.Config, matcher *relay.Matcher) *Server {
	chiRouter := chi.NewRouter()

	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})

	// Счетчики ретранслятора: активные пары и очереди ожидания
	chiRouter.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(matcher.Stats())
	})

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		HTTPServer: httpServer,
	}
}

// ListenAndServe запускает HTTP-сервер.
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down ops HTTP server")
	return s.HTTPServer.Shutdown(ctx)
}
