// Package telegram handles creation of the bot client and registration of
// command handlers.
package telegram

import (
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/bot/handlers"
)

// NewTelegramBot creates a Telegram bot client using the go-telegram/bot
// library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// RegisterHandlers registers every command handler with the bot, applying
// per-handler middleware in declaration order (first is outermost).
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	for name, rh := range registered {
		if rh.Handler == nil {
			log.Warn("Skipping registration for nil handler", "command", name)
			continue
		}

		handler := rh.Handler
		for i := len(rh.Middleware) - 1; i >= 0; i-- {
			handler = rh.Middleware[i](handler)
		}

		b.RegisterHandler(rh.HandlerType, rh.Pattern, rh.MatchType, handler)
		log.Debug("Registered handler", "command", name, "pattern", rh.Pattern)
	}

	log.Info("Registered Telegram handlers", "count", len(registered))
	return nil
}
