package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramProvider delivers notifications to members with a linked
// Telegram chat. Members without one are skipped, not failed.
type TelegramProvider struct {
	b *bot.Bot
}

// NewTelegramProvider creates a Telegram notification provider.
func NewTelegramProvider(apiToken string) (*TelegramProvider, error) {
	op := "notify.NewTelegramProvider"

	b, err := bot.New(apiToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TelegramProvider{b: b}, nil
}

func (p *TelegramProvider) Name() string { return "telegram" }

// Send delivers one message to the recipient's Telegram chat.
func (p *TelegramProvider) Send(ctx context.Context, msg Message) error {
	op := "notify.TelegramProvider.Send"

	if msg.Recipient.TelegramID == 0 {
		return nil
	}

	_, err := p.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Recipient.TelegramID,
		Text:   msg.Subject + "\n\n" + msg.Body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
