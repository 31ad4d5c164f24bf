package cmdHandlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilinovom/linkvault-bot/internal/repository"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// handleStartCommand greets the user or, when the deep link carries a code,
// delivers the matching bundle. It never touches an operator session.
func (c *CmdHandler) handleStartCommand(ctx context.Context, m *telegram.Message, code string) {
	if code == "" {
		c.log.Debug().Int64("user_id", m.From.ID).Msg("start without code")
		c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf(c.messages["welcome"], m.From.FirstName), nil)
		return
	}

	_, err := c.dispatcher.Redeem(ctx, m.Chat.ID, code)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		c.log.Info().Int64("user_id", m.From.ID).Str("code", code).Msg("unknown bundle code")
		c.sendMessage(ctx, m.Chat.ID, c.messages["invalid_link"], nil)
	case errors.Is(err, context.Canceled):
	default:
		c.log.Error().Err(err).Str("code", code).Msg("redeem bundle")
		c.sendMessage(ctx, m.Chat.ID, c.messages["store_error"], nil)
	}
}
