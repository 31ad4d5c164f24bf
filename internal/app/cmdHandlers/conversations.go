package cmdHandlers

import (
	"context"

	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

type convState int

const (
	StateIdle convState = iota
	StateCollectingItems
	StateAwaitingTitle
	StateAwaitingCode
	StateAwaitingBroadcastPayload
	StateAwaitingSettingValue
)

func (s convState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollectingItems:
		return "collecting_items"
	case StateAwaitingTitle:
		return "awaiting_title"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAwaitingBroadcastPayload:
		return "awaiting_broadcast_payload"
	case StateAwaitingSettingValue:
		return "awaiting_setting_value"
	}
	return "unknown"
}

// continueConversation feeds a non-command operator message into the
// operator's session. Without a session a qualifying item starts a new
// bundle.
func (c *CmdHandler) continueConversation(ctx context.Context, m *telegram.Message) {
	s, ok := c.sessions.Get(m.From.ID)
	if !ok {
		c.collectItem(ctx, m, Session{State: StateCollectingItems})
		return
	}

	switch s.State {
	case StateCollectingItems:
		c.collectItem(ctx, m, s)
	case StateAwaitingTitle:
		c.handleTitle(ctx, m, s)
	case StateAwaitingCode:
		c.handleCode(ctx, m, s)
	case StateAwaitingBroadcastPayload:
		c.handleBroadcastPayload(ctx, m)
	case StateAwaitingSettingValue:
		c.handleSettingValue(ctx, m, s)
	}
}

// handleCancelCommand discards any conversation in progress.
func (c *CmdHandler) handleCancelCommand(ctx context.Context, m *telegram.Message) {
	if c.sessions.Delete(m.From.ID) {
		c.log.Info().Int64("user_id", m.From.ID).Msg("conversation cancelled")
		c.sendMessage(ctx, m.Chat.ID, c.messages["cancelled"], nil)
		return
	}
	c.sendMessage(ctx, m.Chat.ID, c.messages["nothing_to_cancel"], nil)
}
