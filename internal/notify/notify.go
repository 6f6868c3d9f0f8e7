// Package notify delivers reminder text to users through the messaging
// channel. Failures are returned as errors and are never fatal to callers.
package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Notifier sends a text delivery to the user identified by chatID.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier delivers reminders as Telegram messages, prefixed with
// the configured reminder template.
type TelegramNotifier struct {
	bot      *bot.Bot
	template string
}

// NewTelegramNotifier wraps a Telegram bot client. template is a fmt string
// with one %s verb for the reminder text (e.g. "Reminder: %s").
func NewTelegramNotifier(b *bot.Bot, template string) *TelegramNotifier {
	return &TelegramNotifier{bot: b, template: template}
}

// Send delivers one reminder message.
func (n *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf(n.template, text),
	})
	if err != nil {
		return fmt.Errorf("failed to send reminder to chat %d: %w", chatID, err)
	}
	return nil
}
