package cmdHandlers

import (
	"context"

	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

func (c *CmdHandler) handleBroadcastCommand(ctx context.Context, m *telegram.Message) {
	c.sessions.Put(m.From.ID, Session{State: StateAwaitingBroadcastPayload})
	c.sendMessage(ctx, m.Chat.ID, c.messages["ask_broadcast"], nil)
}

// handleBroadcastPayload copies m to every user. The session ends before
// the fan-out starts so the operator is idle again once it finishes.
func (c *CmdHandler) handleBroadcastPayload(ctx context.Context, m *telegram.Message) {
	c.sessions.Delete(m.From.ID)
	if _, err := c.broadcaster.Run(ctx, m.Chat.ID, m.Chat.ID, m.MessageID); err != nil {
		c.log.Error().Err(err).Msg("broadcast")
		c.sendMessage(ctx, m.Chat.ID, c.messages["broadcast_failed"], nil)
	}
}
