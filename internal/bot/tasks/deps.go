// Package tasks defines the scheduled tasks run by the bot's scheduler and
// their registration.
package tasks

import (
	"log/slog"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/sweep"
)

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Sweeper *sweep.Sweeper
}
