package telegram

import "context"

// Chat types as reported by Telegram.
const (
	ChatPrivate = "private"
	ChatChannel = "channel"
)

// Message is the platform-neutral view of an inbound Telegram message.
// Only fields the bot uses are kept.
type Message struct {
	MessageID int
	Chat      Chat
	From      User
	Text      string

	// File ids of attached media; at most one is set.
	Video    string
	Document string
	Audio    string
	Photo    string
}

type Chat struct {
	ID       int64
	Type     string
	Username string
}

type User struct {
	ID        int64
	FirstName string
	Username  string
}

// Callback is an inline keyboard button press.
type Callback struct {
	ID        string
	From      User
	ChatID    int64
	MessageID int
	Data      string
}

// IsCommand reports whether the message text is a bot command.
func (m *Message) IsCommand() bool {
	return len(m.Text) > 1 && m.Text[0] == '/'
}

// HasMedia reports whether a supported media attachment is present.
func (m *Message) HasMedia() bool {
	return m.Video != "" || m.Document != "" || m.Audio != "" || m.Photo != ""
}

// Button is an inline keyboard button. Exactly one of URL or Data is used.
type Button struct {
	Text string
	URL  string
	Data string
}

// SendOptions tune an outgoing message.
type SendOptions struct {
	ParseMode string
	// Protect disables forwarding and saving of the sent content.
	Protect bool
	Buttons [][]Button
}

// BotCommand describes a bot command for the Telegram menu.
type BotCommand struct {
	Command     string
	Description string
}

// Handler receives inbound updates from the client.
type Handler interface {
	HandleMessage(ctx context.Context, m *Message)
	HandleCallback(ctx context.Context, cb *Callback)
	HandleChannelPost(ctx context.Context, m *Message)
}
