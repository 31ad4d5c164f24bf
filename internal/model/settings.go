package model

// Setting keys understood by the bot.
const (
	SettingChannelButtonName = "channel_btn_name"
	SettingChannelButtonURL  = "channel_btn_url"
)

// ChannelButton is the link button attached to every channel post.
type ChannelButton struct {
	Name string
	URL  string
}
