// Package main contains the entrypoint for the daily tasks bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/bot"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/bot/handlers"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/bot/tasks"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/config"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/logger"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/notify"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/sweep"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/telegram"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/timeparse"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, starts the bot, and handles
// graceful shutdown. Returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "", "Path to configuration file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		log.Error("Failed to resolve timezone", "error", err)
		return 1
	}

	store, err := database.New(ctx, cfg.Database.Driver, cfg.Database.Path,
		cfg.Database.URI, cfg.Database.Name, log)
	if err != nil {
		log.Error("Failed to initialize store", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing store", "error", err)
		}
	}()

	normalizer := timeparse.New(loc, cfg.Scheduler.TimeFormat, cfg.Scheduler.RollForward)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Normalizer: normalizer,
		Location:   loc,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewUnknownCommandHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	notifier := notify.NewTelegramNotifier(tg, cfg.Telegram.Messages.ReminderPrefix)
	sweeper := sweep.New(store, notifier, loc, log)

	taskMap := map[string]tasks.ScheduledTaskFunc{}
	if cfg.Scheduler.Enabled {
		taskMap = tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Sweeper: sweeper})
	} else {
		log.Warn("Scheduler disabled, reminders will not be delivered")
	}

	sched, err := bot.NewScheduler(log, cfg.Scheduler.SweepInterval, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
