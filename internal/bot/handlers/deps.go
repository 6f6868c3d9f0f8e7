// Package handlers contains the Telegram command handlers, their argument
// parsing, and registration metadata.
package handlers

import (
	"log/slog"
	"time"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/config"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/timeparse"
)

// HandlerDeps provides dependencies for the Telegram command handlers.
// Clock is injectable so reminder anchoring can be tested deterministically.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Normalizer *timeparse.Normalizer
	Location   *time.Location
	Clock      func() time.Time
}

func (d HandlerDeps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
