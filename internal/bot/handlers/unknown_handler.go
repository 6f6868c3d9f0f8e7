package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewUnknownCommandHandler returns the default handler used for updates no
// registered command matched. It answers unrecognized slash commands with a
// fixed rejection and ignores everything else.
func NewUnknownCommandHandler(deps HandlerDeps) bot.HandlerFunc {
	return unknownCommandHandler{deps}.Handle
}

type unknownCommandHandler struct {
	deps HandlerDeps
}

func (h unknownCommandHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	log := h.deps.Logger.With("handler", "unknown_command")
	command, _, _ := strings.Cut(update.Message.Text, " ")
	log.InfoContext(ctx, "Unknown command", "chat_id", update.Message.Chat.ID, "command", command)

	reply(ctx, b, log, update.Message.Chat.ID, h.deps.Config.Telegram.Messages.UnknownCommand)
}
