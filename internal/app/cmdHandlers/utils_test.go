package cmdHandlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

func TestParseCommand(t *testing.T) {
	cases := []struct{ in, cmd, arg string }{
		{"/start", "/start", ""},
		{"/start promo1", "/start", "promo1"},
		{"/START@vault_bot  promo1 ", "/start", "promo1"},
		{"/cancel@vault_bot", "/cancel", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		cmd, arg := parseCommand(c.in)
		assert.Equal(t, c.cmd, cmd, c.in)
		assert.Equal(t, c.arg, arg, c.in)
	}
}

func TestItemFromMessage(t *testing.T) {
	it, ok := itemFromMessage(&telegram.Message{Video: "v", Text: "caption"})
	assert.True(t, ok)
	assert.Equal(t, model.ContentItem{Kind: model.KindVideo, Payload: "v"}, it)

	it, ok = itemFromMessage(&telegram.Message{Text: "plain"})
	assert.True(t, ok)
	assert.Equal(t, model.KindText, it.Kind)

	_, ok = itemFromMessage(&telegram.Message{Text: "/done"})
	assert.False(t, ok)
	_, ok = itemFromMessage(&telegram.Message{Text: "  "})
	assert.False(t, ok)
}

func TestChunkRows(t *testing.T) {
	rows := make([][]telegram.Button, 250)
	chunks := chunkRows(rows, 100)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[2], 50)
	assert.Empty(t, chunkRows(nil, 100))
}
