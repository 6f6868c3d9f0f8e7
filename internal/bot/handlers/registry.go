package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler bundles everything needed to register one command with
// the Telegram bot.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns the full command map for the bot.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern string, h tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	handlers["/start"] = command("start", NewStartHandler(deps))
	handlers["/addtask"] = command("addtask", NewAddTaskHandler(deps))
	handlers["/listtasks"] = command("listtasks", NewListTasksHandler(deps))
	handlers["/deletetask"] = command("deletetask", NewDeleteTaskHandler(deps))
	handlers["/deletealltasks"] = command("deletealltasks", NewDeleteAllTasksHandler(deps))
	handlers["/remind"] = command("remind", NewRemindHandler(deps))
	handlers["/listreminders"] = command("listreminders", NewListRemindersHandler(deps))

	return handlers
}
