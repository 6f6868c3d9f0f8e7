package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/timeparse"
)

// NewRemindHandler returns the handler for /remind.
func NewRemindHandler(deps HandlerDeps) bot.HandlerFunc {
	return remindHandler{deps}.Handle
}

type remindHandler struct {
	deps HandlerDeps
}

func (h remindHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "remind")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Telegram.Messages

	text, timeStr, ok := SplitRemindArgs(CommandArgs(update.Message.Text))
	if !ok {
		reply(ctx, b, log, chatID, msgs.RemindUsage)
		return
	}

	dueAt, err := h.deps.Normalizer.Normalize(timeStr, h.deps.now())
	if err != nil {
		var parseErr *timeparse.ParseError
		if errors.As(err, &parseErr) {
			// Malformed times are rejected instead of stored.
			reply(ctx, b, log, chatID, msgs.InvalidTime)
			return
		}
		log.ErrorContext(ctx, "Failed to normalize reminder time", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	reminder := database.Reminder{
		ID:    uuid.NewString(),
		Text:  text,
		DueAt: dueAt,
	}
	if err := h.deps.Store.AppendReminder(ctx, chatID, reminder); err != nil {
		log.ErrorContext(ctx, "Failed to append reminder", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "Reminder created", "chat_id", chatID, "reminder_id", reminder.ID, "due_at", dueAt)
	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.ReminderSet, text, timeStr))
}

// NewListRemindersHandler returns the handler for /listreminders.
func NewListRemindersHandler(deps HandlerDeps) bot.HandlerFunc {
	return listRemindersHandler{deps}.Handle
}

type listRemindersHandler struct {
	deps HandlerDeps
}

func (h listRemindersHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "listreminders")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Telegram.Messages

	set, err := h.deps.Store.GetReminderSet(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load reminders", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	if set == nil || len(set.Reminders) == 0 {
		reply(ctx, b, log, chatID, msgs.NoReminders)
		return
	}

	layout := h.deps.Config.Scheduler.TimeFormat
	var sb strings.Builder
	sb.WriteString(msgs.ReminderHeader)
	for _, r := range set.Reminders {
		fmt.Fprintf(&sb, "%s: %s\n", r.DueAt.In(h.deps.Location).Format(layout), r.Text)
	}
	reply(ctx, b, log, chatID, strings.TrimRight(sb.String(), "\n"))
}
