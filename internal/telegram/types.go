package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token string
	Debug bool

	// MessagesPerSecond caps outbound sends. Telegram throttles bots around
	// 30 messages per second; staying under that avoids 429 responses when a
	// sweep fans out many notifications at once.
	MessagesPerSecond float64
}

// Bot telegram interaction client
type Bot struct {
	Bot     *tgbotapi.BotAPI
	Config  BotConfig
	limiter *rate.Limiter
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}
