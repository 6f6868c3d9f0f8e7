package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
)

// NewAddTaskHandler returns the handler for /addtask.
func NewAddTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return addTaskHandler{deps}.Handle
}

type addTaskHandler struct {
	deps HandlerDeps
}

func (h addTaskHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "addtask")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Telegram.Messages

	task := CommandArgs(update.Message.Text)
	if task == "" {
		reply(ctx, b, log, chatID, msgs.TaskUsage)
		return
	}

	if err := h.deps.Store.AppendTask(ctx, chatID, task); err != nil {
		log.ErrorContext(ctx, "Failed to append task", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.TaskAdded, task))
}

// NewListTasksHandler returns the handler for /listtasks.
func NewListTasksHandler(deps HandlerDeps) bot.HandlerFunc {
	return listTasksHandler{deps}.Handle
}

type listTasksHandler struct {
	deps HandlerDeps
}

func (h listTasksHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "listtasks")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Telegram.Messages

	tasks, err := h.deps.Store.ListTasks(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tasks", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	if len(tasks) == 0 {
		reply(ctx, b, log, chatID, msgs.NoTasks)
		return
	}

	var sb strings.Builder
	sb.WriteString(msgs.TaskListHeader)
	for i, task := range tasks {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, task)
	}
	reply(ctx, b, log, chatID, strings.TrimRight(sb.String(), "\n"))
}

// NewDeleteTaskHandler returns the handler for /deletetask.
func NewDeleteTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return deleteTaskHandler{deps}.Handle
}

type deleteTaskHandler struct {
	deps HandlerDeps
}

func (h deleteTaskHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "deletetask")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Telegram.Messages

	index, ok := ParseTaskIndex(CommandArgs(update.Message.Text))
	if !ok {
		reply(ctx, b, log, chatID, msgs.InvalidTaskNumber)
		return
	}

	removed, err := h.deps.Store.RemoveTask(ctx, chatID, index)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			reply(ctx, b, log, chatID, msgs.InvalidTaskNumber)
			return
		}
		log.ErrorContext(ctx, "Failed to remove task", "chat_id", chatID, "index", index, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.TaskDeleted, removed))
}

// NewDeleteAllTasksHandler returns the handler for /deletealltasks.
func NewDeleteAllTasksHandler(deps HandlerDeps) bot.HandlerFunc {
	return deleteAllTasksHandler{deps}.Handle
}

type deleteAllTasksHandler struct {
	deps HandlerDeps
}

func (h deleteAllTasksHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "deletealltasks")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Telegram.Messages

	if err := h.deps.Store.ClearTasks(ctx, chatID); err != nil {
		log.ErrorContext(ctx, "Failed to clear tasks", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	reply(ctx, b, log, chatID, msgs.AllTasksDeleted)
}
