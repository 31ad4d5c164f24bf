package cmdHandlers

import (
	"context"

	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// HandleChannelPost attaches the configured link button to every new post
// of a channel the bot administers.
func (c *CmdHandler) HandleChannelPost(ctx context.Context, m *telegram.Message) {
	if m.Chat.Type != telegram.ChatChannel {
		return
	}
	btn, err := c.settings.ChannelButton(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("read channel button, using defaults")
	}
	rows := [][]telegram.Button{{{Text: btn.Name, URL: btn.URL}}}
	if err := c.tgClient.EditButtons(ctx, m.Chat.ID, m.MessageID, rows); err != nil {
		c.log.Warn().Err(err).Int64("chat_id", m.Chat.ID).Str("channel", m.Chat.Username).
			Int("message_id", m.MessageID).Msg("attach channel button")
	}
}
