package telegram

import (
	"coindcx-alert-bot/internal/commands"
	"coindcx-alert-bot/internal/price"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	// APIEndpoint overrides the Bot API URL format, mainly for tests.
	APIEndpoint    string
	QuoteCurrency  string
	// RequestTimeout bounds every Bot API call and /price fetch.
	RequestTimeout time.Duration
}

// Bot telegram interaction client
type Bot struct {
	Bot    *tgbotapi.BotAPI
	Config BotConfig
	store  commands.AlertStore
	feed   price.Feed
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}
