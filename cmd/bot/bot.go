package bot

import (
	"github.com/qrstudio/qrstudio-bot/internal/adapters/config"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/redis"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils"
	"github.com/qrstudio/qrstudio-bot/pkg/intele"
	"github.com/qrstudio/qrstudio-bot/pkg/logger"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gomail.v2"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
	"gorm.io/gorm"
)

type Bot struct {
	*tele.Bot
	Layout     *layout.Layout
	DB         *gorm.DB
	Redis      *redis.Client
	SMTPDialer *gomail.Dialer
	Logger     *types.Logger
	Input      *intele.InputManager
	QR         config.QR
	HTTP       config.HTTP
}

func New(config *config.Config) (*Bot, error) {
	lt, err := layout.New("telegram.yml")
	if err != nil {
		return nil, err
	}

	settings := lt.Settings()
	botLogger, err := logger.Named("bot")
	if err != nil {
		return nil, err
	}
	settings.OnError = func(err error, ctx tele.Context) {
		if ctx.Callback() == nil {
			botLogger.Errorf("(user: %d) | Error: %v", ctx.Sender().ID, err)
		} else {
			botLogger.Errorf("(user: %d) | unique: %s | Error: %v", ctx.Sender().ID, ctx.Callback().Unique, err)
		}
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}

	if cmds := lt.Commands(); cmds != nil {
		if err = b.SetCommands(cmds); err != nil {
			return nil, err
		}
	}

	bot := &Bot{
		Bot:    b,
		Layout: lt,
		DB:     config.Database,
		Input: intele.NewInputManager(intele.InputOptions{
			Storage: config.Redis.States,
		}),
		SMTPDialer: config.SMTPDialer,
		Logger:     botLogger,
		Redis:      config.Redis,
		QR:         config.QR,
		HTTP:       config.HTTP,
	}

	return bot, nil
}

// Start attaches the channel log hook if configured, tells admins the bot is
// up and blocks polling updates until Stop is called.
func (b *Bot) Start() {
	logger.Log.Info("Bot starting")

	notifyLogger, err := logger.Named("notify")
	if err != nil {
		logger.Log.Errorf("Failed to create notify logger: %v", err)
		b.Bot.Start()
		return
	}
	notifyService := service.NewNotifyService(b.Bot, b.Layout, notifyLogger)

	if viper.GetBool("settings.logging.log-to-channel") {
		logHook, errHook := notifyService.LogHook(
			viper.GetInt64("settings.logging.channel-id"),
			viper.GetString("settings.logging.locale"),
			zapcore.Level(viper.GetInt("settings.logging.channel-log-level")),
		)
		if errHook != nil {
			logger.Log.Errorf("Failed to create notify log hook: %v", errHook)
		} else {
			logger.SetLogHook(logHook)
		}
	}

	if err = notifyService.NotifyAdmins(utils.AdminIDs(), b.Layout.TextLocale("en", "bot_started")); err != nil {
		logger.Log.Warnf("Failed to notify admins about start: %v", err)
	}

	b.Bot.Start()
}
