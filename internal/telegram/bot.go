package telegram

import (
	"coindcx-alert-bot/internal/commands"
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/lib/helpers"
	"coindcx-alert-bot/lib/translation"
	"context"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, store commands.AlertStore, feed price.Feed) (*Bot, error) {
	if c.APIEndpoint == "" {
		c.APIEndpoint = tgbotapi.APIEndpoint
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}

	// long polling holds getUpdates open for UpdatesTimeout seconds
	client := &http.Client{Timeout: c.RequestTimeout + time.Duration(c.UpdatesTimeout)*time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(c.Token, c.APIEndpoint, client)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:    bot,
		Config: c,
		store:  store,
		feed:   feed,
	}, nil
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// Stop stops receiving updates and closes the updates channel.
func (b *Bot) Stop() {
	b.Bot.StopReceivingUpdates()
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}

// Notify delivers an alert notification. The Bot API client has no context
// support, so ctx is raced against the send.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- b.SendMessage(Message{ChatID: chatID, Text: text})
	}()

	select {
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "notify chat %d", chatID)
	case err := <-done:
		return err
	}
}

// HandleUpdate processes a command and returns the reply text.
func (b *Bot) HandleUpdate(u tgbotapi.Update) string {
	if u.Message == nil || !u.Message.IsCommand() {
		log.Debugf("ignoring update: %s", spew.Sdump(u))
		return ""
	}

	chatID := u.Message.Chat.ID
	args := u.Message.CommandArguments()
	log.Debugf("received command: %s", u.Message.Command())

	var (
		text string
		err  error
	)

	switch u.Message.Command() {
	case "start", "help":
		text = commands.CommandHelp()
	case "set":
		text, err = commands.CommandSet(b.store, chatID, args, b.Config.QuoteCurrency)
	case "alerts", "list":
		text = commands.CommandList(b.store, chatID)
	case "delete", "del":
		text, err = commands.CommandDelete(b.store, chatID, args)
	case "price", "p":
		ctx, cancel := context.WithTimeout(context.Background(), b.Config.RequestTimeout)
		text, err = commands.CommandPrice(ctx, b.feed, args, b.Config.QuoteCurrency)
		cancel()
	case "source":
		text = helpers.EscapeMarkdownV2(translation.Translate("Prices by CoinDCX public market data"))
	default:
		text = commands.CommandHelp()
	}

	if err != nil {
		log.Debug(err)
	}
	return text
}
