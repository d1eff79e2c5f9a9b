package telegram

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
	errs []error
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	s.sent = append(s.sent, msg)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func TestClient_SendMessage(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		s := &recordingSender{}
		c := &client{bot: s, chatID: 42}

		require.NoError(t, c.SendMessage("*배치 완료*"))
		require.Len(t, s.sent, 1)
		assert.Equal(t, int64(42), s.sent[0].ChatID)
		assert.Equal(t, tgbotapi.ModeMarkdown, s.sent[0].ParseMode)
	})

	t.Run("falls back to plain text", func(t *testing.T) {
		s := &recordingSender{errs: []error{errors.New("Bad Request: can't parse entities: Can't find end of the entity")}}
		c := &client{bot: s, chatID: 42}

		require.NoError(t, c.SendMessage("news_id_1 failed"))
		require.Len(t, s.sent, 2)
		assert.Empty(t, s.sent[1].ParseMode)
	})

	t.Run("other errors are returned", func(t *testing.T) {
		s := &recordingSender{errs: []error{errors.New("Unauthorized")}}
		c := &client{bot: s, chatID: 42}

		assert.EqualError(t, c.SendMessage("hello"), "Unauthorized")
		assert.Len(t, s.sent, 1)
	})

	t.Run("truncates long messages", func(t *testing.T) {
		s := &recordingSender{}
		c := &client{bot: s, chatID: 42}

		require.NoError(t, c.SendMessage(strings.Repeat("가", maxMessageRunes+100)))
		assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(s.sent[0].Text))
	})
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, NewNopNotifier().SendMessage("ignored"))
}
