package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v4"
)

// Client is the Telegram gateway used by the bot, backed by telebot.
type Client struct {
	bot    *tele.Bot
	log    zerolog.Logger
	serial *serializer
}

// messageEndpoints are the private-chat update kinds forwarded to
// Handler.HandleMessage. Broadcast payloads may be any of them.
var messageEndpoints = []string{
	tele.OnText, tele.OnPhoto, tele.OnVideo, tele.OnDocument, tele.OnAudio,
	tele.OnVoice, tele.OnVideoNote, tele.OnAnimation, tele.OnSticker,
	tele.OnLocation, tele.OnVenue, tele.OnContact, tele.OnPoll, tele.OnDice,
}

func NewClient(token string, pollTimeout time.Duration, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		// Updates are handed to the per-chat serializer in poll order.
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("telegram update failed")
		},
	})
	if err != nil {
		return nil, err
	}
	return &Client{bot: b, log: log, serial: newSerializer()}, nil
}

// Username returns the bot's own username as reported by getMe.
func (c *Client) Username() string {
	if c.bot.Me == nil {
		return ""
	}
	return c.bot.Me.Username
}

// Start registers h and long-polls until ctx is cancelled. Updates of one
// chat reach h one at a time and in order; different chats run concurrently.
// Start returns after in-flight handlers have finished.
func (c *Client) Start(ctx context.Context, h Handler) {
	onMessage := func(tc tele.Context) error {
		if m := fromTele(tc.Message()); m != nil {
			c.serial.Do(m.Chat.ID, func() { h.HandleMessage(ctx, m) })
		}
		return nil
	}
	for _, ep := range messageEndpoints {
		c.bot.Handle(ep, onMessage)
	}
	c.bot.Handle(tele.OnChannelPost, func(tc tele.Context) error {
		if m := fromTele(tc.Message()); m != nil {
			c.serial.Do(m.Chat.ID, func() { h.HandleChannelPost(ctx, m) })
		}
		return nil
	})
	c.bot.Handle(tele.OnCallback, func(tc tele.Context) error {
		cb := tc.Callback()
		if cb == nil || cb.Sender == nil {
			return nil
		}
		out := &Callback{ID: cb.ID, From: fromTeleUser(cb.Sender), Data: cb.Data}
		if cb.Message != nil {
			out.MessageID = cb.Message.ID
			if cb.Message.Chat != nil {
				out.ChatID = cb.Message.Chat.ID
			}
		}
		c.serial.Do(out.From.ID, func() { h.HandleCallback(ctx, out) })
		return nil
	})

	go func() {
		<-ctx.Done()
		c.bot.Stop()
	}()
	c.log.Info().Str("bot", c.Username()).Msg("polling started")
	c.bot.Start()
	c.serial.Wait()
	c.log.Info().Msg("polling stopped")
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (int, error) {
	return c.send(ctx, chatID, text, opts)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, fileID string, opts *SendOptions) (int, error) {
	return c.send(ctx, chatID, &tele.Video{File: tele.File{FileID: fileID}}, opts)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileID string, opts *SendOptions) (int, error) {
	return c.send(ctx, chatID, &tele.Document{File: tele.File{FileID: fileID}}, opts)
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, fileID string, opts *SendOptions) (int, error) {
	return c.send(ctx, chatID, &tele.Audio{File: tele.File{FileID: fileID}}, opts)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID string, opts *SendOptions) (int, error) {
	return c.send(ctx, chatID, &tele.Photo{File: tele.File{FileID: fileID}}, opts)
}

func (c *Client) send(ctx context.Context, chatID int64, what interface{}, opts *SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := c.bot.Send(tele.ChatID(chatID), what, sendOptions(opts))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// CopyMessage re-sends an existing message to another chat without the
// "forwarded from" header.
func (c *Client) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int, opts *SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := c.bot.Copy(tele.ChatID(toChatID), stored(fromChatID, messageID), sendOptions(opts))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Edit(stored(chatID, messageID), text)
	return err
}

// EditButtons replaces the inline keyboard of an existing message.
func (c *Client) EditButtons(ctx context.Context, chatID int64, messageID int, rows [][]Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.EditReplyMarkup(stored(chatID, messageID), markup(rows))
	return err
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.bot.Respond(&tele.Callback{ID: callbackID})
}

// SetCommands registers the bot commands shown in the Telegram UI. A non-zero
// chatID limits them to that chat.
func (c *Client) SetCommands(ctx context.Context, commands []BotCommand, chatID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmds := make([]tele.Command, 0, len(commands))
	for _, cmd := range commands {
		cmds = append(cmds, tele.Command{Text: cmd.Command, Description: cmd.Description})
	}
	if chatID != 0 {
		return c.bot.SetCommands(cmds, tele.CommandScope{Type: tele.CommandScopeChat, ChatID: chatID})
	}
	return c.bot.SetCommands(cmds)
}

func stored(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
}

func sendOptions(opts *SendOptions) *tele.SendOptions {
	out := &tele.SendOptions{}
	if opts == nil {
		return out
	}
	out.ParseMode = tele.ParseMode(opts.ParseMode)
	out.Protected = opts.Protect
	out.ReplyMarkup = markup(opts.Buttons)
	return out
}

func markup(rows [][]Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]tele.InlineButton, 0, len(rows))
	for _, r := range rows {
		row := make([]tele.InlineButton, 0, len(r))
		for _, b := range r {
			row = append(row, tele.InlineButton{Text: b.Text, URL: b.URL, Data: b.Data})
		}
		kb = append(kb, row)
	}
	return &tele.ReplyMarkup{InlineKeyboard: kb}
}

func fromTeleUser(u *tele.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, FirstName: u.FirstName, Username: u.Username}
}

func fromTele(m *tele.Message) *Message {
	if m == nil || m.Chat == nil {
		return nil
	}
	out := &Message{
		MessageID: m.ID,
		Chat:      Chat{ID: m.Chat.ID, Type: string(m.Chat.Type), Username: m.Chat.Username},
		From:      fromTeleUser(m.Sender),
		Text:      m.Text,
	}
	switch {
	case m.Video != nil:
		out.Video = m.Video.FileID
	case m.Document != nil:
		out.Document = m.Document.FileID
	case m.Audio != nil:
		out.Audio = m.Audio.FileID
	case m.Photo != nil:
		out.Photo = m.Photo.FileID
	}
	return out
}
