package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	if c.MessagesPerSecond <= 0 {
		c.MessagesPerSecond = 25
	}

	return &Bot{
		Bot:     bot,
		Config:  c,
		limiter: rate.NewLimiter(rate.Limit(c.MessagesPerSecond), 1),
	}, nil
}

// SendMessage sends a telegram message, waiting on the outbound rate limiter
// first so concurrent sweep fan-out cannot exceed the provider's per-second
// limit.
func (b *Bot) SendMessage(m Message) error {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return errors.Wrap(err, "rate limiter interrupted")
	}

	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}
