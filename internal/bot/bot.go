// Package bot implements lifecycle management and component orchestration:
// the Telegram update listener (polling or webhook) and the sweep scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/config"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
)

// Bot wires the application components and manages their lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     database.Store
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// NewBot creates the orchestrator with all required dependencies.
func NewBot(logger *slog.Logger, cfg *config.Config, store database.Store, tgBot *tgbot.Bot, scheduler *Scheduler) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		store:     store,
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run starts the update listener and scheduler, blocking until the context
// is cancelled or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if b.cfg.Telegram.WebhookURL != "" {
		b.runWebhook(g, gCtx)
	} else {
		g.Go(func() error {
			b.logger.Info("Starting Telegram long-polling listener...")
			b.tgBot.Start(gCtx)
			b.logger.Info("Telegram listener stopped.")

			if gCtx.Err() == nil {
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.logger.Info("Bot running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot stopped gracefully.")
	return nil
}

// runWebhook registers the webhook with Telegram and serves the update
// endpoint over HTTP.
func (b *Bot) runWebhook(g *errgroup.Group, gCtx context.Context) {
	g.Go(func() error {
		_, err := b.tgBot.SetWebhook(gCtx, &tgbot.SetWebhookParams{URL: b.cfg.Telegram.WebhookURL})
		if err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		b.logger.Info("Webhook registered", "url", b.cfg.Telegram.WebhookURL)

		b.tgBot.StartWebhook(gCtx)
		b.logger.Info("Webhook update processor stopped.")
		return nil
	})

	srv := &http.Server{
		Addr:              b.cfg.Telegram.ListenAddr,
		Handler:           b.tgBot.WebhookHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		b.logger.Info("Starting webhook HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
