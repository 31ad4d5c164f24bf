package cmdHandlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilinovom/linkvault-bot/internal/repository"
	"github.com/ilinovom/linkvault-bot/internal/service"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// collectItem appends a qualifying message to the pending bundle. Anything
// that is neither supported media nor plain text is ignored.
func (c *CmdHandler) collectItem(ctx context.Context, m *telegram.Message, s Session) {
	item, ok := itemFromMessage(m)
	if !ok {
		return
	}
	s.State = StateCollectingItems
	s.Items = append(s.Items, item)
	c.sessions.Put(m.From.ID, s)
	c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf(c.messages["item_added"], len(s.Items)), nil)
}

func (c *CmdHandler) handleDoneCommand(ctx context.Context, m *telegram.Message) {
	s, ok := c.sessions.Get(m.From.ID)
	if !ok || s.State != StateCollectingItems || len(s.Items) == 0 {
		c.sendMessage(ctx, m.Chat.ID, c.messages["nothing_collected"], nil)
		return
	}
	s.State = StateAwaitingTitle
	c.sessions.Put(m.From.ID, s)
	c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf(c.messages["ask_title"], len(s.Items)), nil)
}

func (c *CmdHandler) handleTitle(ctx context.Context, m *telegram.Message, s Session) {
	if m.HasMedia() || m.Text == "" {
		c.sessions.Put(m.From.ID, s)
		c.sendMessage(ctx, m.Chat.ID, c.messages["title_text_only"], nil)
		return
	}
	s.Title = strings.TrimSpace(m.Text)
	s.State = StateAwaitingCode
	c.sessions.Put(m.From.ID, s)
	c.sendMessage(ctx, m.Chat.ID, c.messages["ask_code"], nil)
}

// handleCode commits the bundle. Invalid codes re-prompt; a taken code ends
// the conversation with the stored bundle left as it was.
func (c *CmdHandler) handleCode(ctx context.Context, m *telegram.Message, s Session) {
	if m.HasMedia() {
		c.sessions.Put(m.From.ID, s)
		c.sendMessage(ctx, m.Chat.ID, c.messages["code_invalid"], nil)
		return
	}
	b, err := c.bundles.Create(ctx, m.Text, s.Title, s.Items)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmptyCode), errors.Is(err, service.ErrCodeWhitespace), errors.Is(err, service.ErrCodeTooLong),
		errors.Is(err, service.ErrCodeCharset):
		c.sessions.Put(m.From.ID, s)
		c.sendMessage(ctx, m.Chat.ID, c.messages["code_invalid"], nil)
		return
	case errors.Is(err, repository.ErrDuplicateCode):
		c.sessions.Delete(m.From.ID)
		c.log.Info().Str("code", strings.TrimSpace(m.Text)).Msg("bundle code already taken")
		c.sendMessage(ctx, m.Chat.ID, c.messages["code_taken"], nil)
		return
	default:
		c.sessions.Put(m.From.ID, s)
		c.log.Error().Err(err).Msg("create bundle")
		c.sendMessage(ctx, m.Chat.ID, c.messages["save_failed"], nil)
		return
	}

	c.sessions.Delete(m.From.ID)
	c.log.Info().Str("code", b.Code).Int("items", len(b.Items)).Msg("bundle created")
	link := service.DeepLink(c.botUsername(), b.Code)
	c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf(c.messages["bundle_created"], link), nil)
}
