package cmdHandlers

import (
	"fmt"
	"strings"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// parseCommand splits "/cmd@bot arg" into a lower-cased command and the
// trimmed argument.
func parseCommand(text string) (cmd, arg string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	cmd, _, _ = strings.Cut(fields[0], "@")
	return strings.ToLower(cmd), strings.Join(fields[1:], " ")
}

// itemFromMessage classifies a message as a bundle item. Commands and
// messages without text or supported media do not qualify.
func itemFromMessage(m *telegram.Message) (model.ContentItem, bool) {
	switch {
	case m.Video != "":
		return model.ContentItem{Kind: model.KindVideo, Payload: m.Video}, true
	case m.Document != "":
		return model.ContentItem{Kind: model.KindDocument, Payload: m.Document}, true
	case m.Audio != "":
		return model.ContentItem{Kind: model.KindAudio, Payload: m.Audio}, true
	case m.Photo != "":
		return model.ContentItem{Kind: model.KindPhoto, Payload: m.Photo}, true
	case m.IsCommand() || strings.TrimSpace(m.Text) == "":
		return model.ContentItem{}, false
	}
	return model.ContentItem{Kind: model.KindText, Payload: m.Text}, true
}

func chunkRows(rows [][]telegram.Button, size int) [][][]telegram.Button {
	var out [][][]telegram.Button
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}

func formatStats(format string, st model.Stats) string {
	return fmt.Sprintf(format, st.TotalUsers, st.UsersToday, st.TotalOpens, st.OpensToday, st.UniqueOpens24, st.TotalBundles)
}
