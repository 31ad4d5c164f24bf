package cmdHandlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/service"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// maxKeyboardRows caps one listing message; Telegram rejects larger inline
// keyboards.
const maxKeyboardRows = 100

const (
	settingButtonName = model.SettingChannelButtonName
	settingButtonURL  = model.SettingChannelButtonURL
)

// handleAllLinkCommand lists every bundle as a button; pressing one returns
// its deep link.
func (c *CmdHandler) handleAllLinkCommand(ctx context.Context, m *telegram.Message) {
	list, err := c.bundles.List(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("list bundles")
		c.sendMessage(ctx, m.Chat.ID, c.messages["store_error"], nil)
		return
	}
	if len(list) == 0 {
		c.sendMessage(ctx, m.Chat.ID, c.messages["list_empty"], nil)
		return
	}

	rows := make([][]telegram.Button, 0, len(list))
	for _, b := range list {
		rows = append(rows, []telegram.Button{{Text: b.Label(), Data: b.Code}})
	}
	chunks := chunkRows(rows, maxKeyboardRows)
	for i, chunk := range chunks {
		header := c.messages["list_header"]
		if len(chunks) > 1 {
			header = fmt.Sprintf("%s (%d/%d)", header, i+1, len(chunks))
		}
		if _, err := c.sendMessage(ctx, m.Chat.ID, header, &telegram.SendOptions{Buttons: chunk}); err != nil {
			return
		}
	}
}

func (c *CmdHandler) handleLinkCallback(ctx context.Context, cb *telegram.Callback) {
	if err := c.tgClient.AnswerCallback(ctx, cb.ID); err != nil {
		c.log.Debug().Err(err).Msg("answer callback")
	}
	code := strings.TrimSpace(cb.Data)
	if code == "" {
		return
	}
	chatID := cb.ChatID
	if chatID == 0 {
		chatID = cb.From.ID
	}
	link := service.DeepLink(c.botUsername(), code)
	c.sendMessage(ctx, chatID, fmt.Sprintf(c.messages["link"], link), nil)
}

func (c *CmdHandler) handleStaticsCommand(ctx context.Context, m *telegram.Message) {
	st, err := c.users.Stats(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("stats")
		c.sendMessage(ctx, m.Chat.ID, c.messages["store_error"], nil)
		return
	}
	c.sendMessage(ctx, m.Chat.ID, formatStats(c.messages["stats"], st), nil)
}

// handleSetSettingCommand starts the two-step conversation that updates
// one channel button setting.
func (c *CmdHandler) handleSetSettingCommand(ctx context.Context, m *telegram.Message, key string) {
	btn, err := c.settings.ChannelButton(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("read channel button")
	}
	c.sessions.Put(m.From.ID, Session{State: StateAwaitingSettingValue, SettingKey: key})
	if key == settingButtonURL {
		c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf(c.messages["ask_btn_url"], btn.URL), nil)
		return
	}
	c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf(c.messages["ask_btn_name"], btn.Name), nil)
}

func (c *CmdHandler) handleSettingValue(ctx context.Context, m *telegram.Message, s Session) {
	var err error
	switch s.SettingKey {
	case settingButtonURL:
		err = c.settings.SetButtonURL(ctx, m.Text)
	default:
		err = c.settings.SetButtonName(ctx, m.Text)
	}

	switch {
	case err == nil:
		c.sessions.Delete(m.From.ID)
		c.log.Info().Str("key", s.SettingKey).Msg("setting updated")
		c.sendMessage(ctx, m.Chat.ID, c.messages["setting_saved"], nil)
	case errors.Is(err, service.ErrInvalidURL):
		c.sessions.Put(m.From.ID, s)
		c.sendMessage(ctx, m.Chat.ID, c.messages["url_invalid"], nil)
	case errors.Is(err, service.ErrEmptyValue):
		c.sessions.Put(m.From.ID, s)
		c.sendMessage(ctx, m.Chat.ID, c.messages["value_empty"], nil)
	default:
		c.sessions.Delete(m.From.ID)
		c.log.Error().Err(err).Str("key", s.SettingKey).Msg("save setting")
		c.sendMessage(ctx, m.Chat.ID, c.messages["store_error"], nil)
	}
}
