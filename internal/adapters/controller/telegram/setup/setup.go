package setup

import (
	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/admin"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/codes"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/history"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/menu"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/middlewares"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/settings"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/start"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils"
	"github.com/spf13/viper"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

func Setup(b *bot.Bot) {
	// Pre-setup and global middlewares
	middle := middlewares.New(b)
	menuHandler := menu.New(b)
	codesHandler := codes.New(b)
	startHandler := start.New(b, codesHandler)
	settingsHandler := settings.New(b)
	historyHandler := history.New(b)
	adminHandler := admin.New(b)

	if viper.GetBool("settings.debug") {
		b.Use(middleware.Logger())
	}
	b.Use(b.Layout.Middleware("en"))
	b.Use(middleware.AutoRespond())
	b.Handle(tele.OnText, b.Input.Handler())
	b.Handle(tele.OnMedia, b.Input.Handler())
	b.Use(middle.ResetInputOnBack)
	b.Use(middle.Registered)

	// Setup handlers
	b.Handle(b.Layout.Callback("core:hide"), menuHandler.Hide)

	//User:
	b.Handle("/start", startHandler.Start)
	b.Handle("/menu", menuHandler.SendMenu)
	b.Handle(b.Layout.Callback("mainMenu:back"), menuHandler.EditMenu)
	b.Handle(b.Layout.Callback("qr:back"), menuHandler.EditMenu)
	codesHandler.CodesSetup(b.Group())
	settingsHandler.SettingsSetup(b.Group())
	historyHandler.HistorySetup(b.Group())

	//Admin:
	adminGroup := b.Group()
	adminGroup.Use(middleware.Whitelist(utils.AdminIDs()...))
	adminHandler.AdminSetup(adminGroup)
}
