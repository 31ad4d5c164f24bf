package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestFromTele_Media(t *testing.T) {
	m := fromTele(&tele.Message{
		ID:     5,
		Chat:   &tele.Chat{ID: 10, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: 10, FirstName: "Ann", Username: "ann"},
		Video:  &tele.Video{File: tele.File{FileID: "vid"}},
	})
	require.NotNil(t, m)
	assert.Equal(t, 5, m.MessageID)
	assert.Equal(t, ChatPrivate, m.Chat.Type)
	assert.Equal(t, User{ID: 10, FirstName: "Ann", Username: "ann"}, m.From)
	assert.Equal(t, "vid", m.Video)
	assert.True(t, m.HasMedia())
}

func TestFromTele_ChannelPostWithoutSender(t *testing.T) {
	m := fromTele(&tele.Message{ID: 1, Chat: &tele.Chat{ID: -100, Type: tele.ChatChannel}, Text: "post"})
	require.NotNil(t, m)
	assert.Equal(t, ChatChannel, m.Chat.Type)
	assert.Zero(t, m.From.ID)
	assert.Nil(t, fromTele(nil))
}

func TestSendOptions(t *testing.T) {
	opts := sendOptions(&SendOptions{
		ParseMode: "HTML",
		Protect:   true,
		Buttons:   [][]Button{{{Text: "go", URL: "https://x"}}, {{Text: "a", Data: "a"}}},
	})
	assert.True(t, opts.Protected)
	assert.Equal(t, tele.ParseMode("HTML"), opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	require.Len(t, opts.ReplyMarkup.InlineKeyboard, 2)
	assert.Equal(t, "https://x", opts.ReplyMarkup.InlineKeyboard[0][0].URL)
	assert.Equal(t, "a", opts.ReplyMarkup.InlineKeyboard[1][0].Data)

	empty := sendOptions(nil)
	assert.False(t, empty.Protected)
	assert.Nil(t, empty.ReplyMarkup)
}

func TestMessage_IsCommand(t *testing.T) {
	assert.True(t, (&Message{Text: "/start abc"}).IsCommand())
	assert.False(t, (&Message{Text: "/"}).IsCommand())
	assert.False(t, (&Message{Text: "hello"}).IsCommand())
}
