package cmdHandlers

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ilinovom/linkvault-bot/internal/config"
	"github.com/ilinovom/linkvault-bot/internal/service"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

const (
	StartCmd     = "/start"
	CancelCmd    = "/cancel"
	DoneCmd      = "/done"
	BroadcastCmd = "/broadcast"
	AllLinkCmd   = "/alllink"
	StaticsCmd   = "/statics"
	SetBtnCmd    = "/setbtn"
	SetURLCmd    = "/seturl"
)

// Messenger is the part of the Telegram gateway the router talks to directly.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error)
	EditButtons(ctx context.Context, chatID int64, messageID int, rows [][]telegram.Button) error
	AnswerCallback(ctx context.Context, callbackID string) error
	SetCommands(ctx context.Context, commands []telegram.BotCommand, chatID int64) error
}

// Services groups the domain services the router drives.
type Services struct {
	Users       *service.UserService
	Bundles     *service.BundleService
	Dispatcher  *service.Dispatcher
	Broadcaster *service.Broadcaster
	Settings    *service.SettingsService
}

type CmdHandler struct {
	cfg         *config.Config
	tgClient    Messenger
	users       *service.UserService
	bundles     *service.BundleService
	dispatcher  *service.Dispatcher
	broadcaster *service.Broadcaster
	settings    *service.SettingsService
	sessions    *SessionStore
	messages    map[string]string
	log         zerolog.Logger
}

var _ telegram.Handler = (*CmdHandler)(nil)

func NewCmdHandler(cfg *config.Config, svc Services, tgClient Messenger, sessions *SessionStore, log zerolog.Logger) *CmdHandler {
	return &CmdHandler{
		cfg:         cfg,
		tgClient:    tgClient,
		users:       svc.Users,
		bundles:     svc.Bundles,
		dispatcher:  svc.Dispatcher,
		broadcaster: svc.Broadcaster,
		settings:    svc.Settings,
		sessions:    sessions,
		messages:    defaultMessages,
		log:         log,
	}
}

// HandleMessage routes a private-chat message. /start and /cancel are open
// to everybody; every other entry point belongs to the operator and is
// silently ignored for anyone else.
func (c *CmdHandler) HandleMessage(ctx context.Context, m *telegram.Message) {
	if m.Chat.Type != telegram.ChatPrivate || m.From.ID == 0 {
		return
	}
	c.touchUser(ctx, m.From)

	cmd, arg := "", ""
	if m.IsCommand() {
		cmd, arg = parseCommand(m.Text)
	}
	switch cmd {
	case StartCmd:
		c.handleStartCommand(ctx, m, arg)
		return
	case CancelCmd:
		c.handleCancelCommand(ctx, m)
		return
	}

	if !c.cfg.IsAdmin(m.From.ID) {
		c.log.Debug().Int64("user_id", m.From.ID).Str("cmd", cmd).Msg("non-operator input ignored")
		return
	}

	switch cmd {
	case BroadcastCmd:
		c.handleBroadcastCommand(ctx, m)
	case AllLinkCmd:
		c.handleAllLinkCommand(ctx, m)
	case StaticsCmd:
		c.handleStaticsCommand(ctx, m)
	case SetBtnCmd:
		c.handleSetSettingCommand(ctx, m, settingButtonName)
	case SetURLCmd:
		c.handleSetSettingCommand(ctx, m, settingButtonURL)
	case DoneCmd:
		c.handleDoneCommand(ctx, m)
	case "":
		c.continueConversation(ctx, m)
	default:
		// A payload awaited by broadcast may be anything, commands included.
		if s, ok := c.sessions.Get(m.From.ID); ok && s.State == StateAwaitingBroadcastPayload {
			c.continueConversation(ctx, m)
			return
		}
		c.log.Debug().Str("cmd", cmd).Msg("unknown command ignored")
	}
}

// HandleCallback answers listing button presses with the bundle deep link.
func (c *CmdHandler) HandleCallback(ctx context.Context, cb *telegram.Callback) {
	c.touchUser(ctx, cb.From)
	if !c.cfg.IsAdmin(cb.From.ID) {
		c.log.Debug().Int64("user_id", cb.From.ID).Msg("non-operator callback ignored")
		return
	}
	c.handleLinkCallback(ctx, cb)
}

func (c *CmdHandler) touchUser(ctx context.Context, u telegram.User) {
	if u.ID == 0 {
		return
	}
	if err := c.users.Touch(ctx, u.ID, u.Username, u.FirstName); err != nil {
		c.log.Warn().Err(err).Int64("user_id", u.ID).Msg("upsert user")
	}
}

// sendMessage wraps the Telegram client and logs failures.
func (c *CmdHandler) sendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error) {
	msgID, err := c.tgClient.SendMessage(ctx, chatID, text, opts)
	if err != nil {
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram send message")
	}
	return msgID, err
}

func (c *CmdHandler) botUsername() string {
	return c.cfg.BotUsername
}

// SetCommands registers the public menu for everybody and the full operator
// menu scoped to the operator's private chat.
func (c *CmdHandler) SetCommands(ctx context.Context) {
	public := []telegram.BotCommand{
		{Command: strings.TrimPrefix(StartCmd, "/"), Description: "Start the bot"},
	}
	if err := c.tgClient.SetCommands(ctx, public, 0); err != nil {
		c.log.Warn().Err(err).Msg("set commands")
	}
	if c.cfg.AdminUserID == 0 {
		return
	}
	operator := []telegram.BotCommand{
		{Command: strings.TrimPrefix(StartCmd, "/"), Description: "Start the bot"},
		{Command: strings.TrimPrefix(AllLinkCmd, "/"), Description: "List all bundles"},
		{Command: strings.TrimPrefix(BroadcastCmd, "/"), Description: "Send a message to every user"},
		{Command: strings.TrimPrefix(StaticsCmd, "/"), Description: "Show usage statistics"},
		{Command: strings.TrimPrefix(SetBtnCmd, "/"), Description: "Set the channel button label"},
		{Command: strings.TrimPrefix(SetURLCmd, "/"), Description: "Set the channel button URL"},
		{Command: strings.TrimPrefix(DoneCmd, "/"), Description: "Finish adding items"},
		{Command: strings.TrimPrefix(CancelCmd, "/"), Description: "Cancel the current action"},
	}
	if err := c.tgClient.SetCommands(ctx, operator, c.cfg.AdminUserID); err != nil {
		c.log.Warn().Err(err).Msg("set operator commands")
	}
}
