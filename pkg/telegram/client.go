package telegram

import (
	"fmt"
	"strings"

	"golang-news-analyzer/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageRunes is the Telegram limit for one text message.
const maxMessageRunes = 4096

// Notifier sends operator notifications such as batch reports and retry alerts.
type Notifier interface {
	SendMessage(text string) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type client struct {
	bot    sender
	chatID int64
}

// NewClient creates a Notifier that posts to one chat through the bot API.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{bot: bot, chatID: chatID}, nil
}

// SendMessage posts text as Markdown, truncated to the message limit. Report
// lines may carry raw error text that is not valid Markdown, so an entity
// parse failure is retried once as plain text.
func (c *client) SendMessage(text string) error {
	text = utils.Truncate(text, maxMessageRunes)

	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	if err == nil || !strings.Contains(err.Error(), "can't parse entities") {
		return err
	}

	plain := tgbotapi.NewMessage(c.chatID, text)
	_, err = c.bot.Send(plain)
	return err
}

type nopNotifier struct{}

// NewNopNotifier returns a Notifier that drops every message. It is used
// when Telegram is disabled.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) SendMessage(string) error {
	return nil
}
