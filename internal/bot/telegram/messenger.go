// Package telegram adapts the Bot API transport to the conversation and
// pipeline interfaces. Nothing outside this package touches tgbotapi types.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const contactButtonLabel = "Share phone number"

// Messenger sends replies through the Bot API. It implements
// conversation.Messenger and pipeline.Replier.
type Messenger struct {
	bot *tgbotapi.BotAPI
}

func NewMessenger(bot *tgbotapi.BotAPI) *Messenger {
	return &Messenger{bot: bot}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := m.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// RequestContact shows a one-time keyboard with a single contact button.
func (m *Messenger) RequestContact(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	kb := tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(contactButtonLabel),
		),
	)
	kb.ResizeKeyboard = true
	msg.ReplyMarkup = kb

	if _, err := m.bot.Send(msg); err != nil {
		return fmt.Errorf("send contact request: %w", err)
	}
	return nil
}

// RemoveKeyboard sends text and takes down any custom keyboard shown earlier.
func (m *Messenger) RemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)

	if _, err := m.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
