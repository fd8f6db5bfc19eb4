package menu

import (
	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

type Handler struct {
	layout *layout.Layout
	logger *types.Logger
}

func New(b *bot.Bot) *Handler {
	return &Handler{
		logger: b.Logger,
		layout: b.Layout,
	}
}

func (h Handler) markup(c tele.Context) (*tele.ReplyMarkup, bool) {
	isAdmin := utils.IsAdmin(c.Sender().ID)

	menuMarkup := h.layout.Markup(c, "mainMenu:menu")
	if isAdmin {
		menuMarkup.InlineKeyboard = append(menuMarkup.InlineKeyboard, []tele.InlineButton{*h.layout.Button(c, "mainMenu:stats").Inline()})
	}
	return menuMarkup, isAdmin
}

func (h Handler) SendMenu(c tele.Context) error {
	menuMarkup, isAdmin := h.markup(c)

	h.logger.Infof("(user: %d) send main menu (isAdmin=%t)", c.Sender().ID, isAdmin)
	return c.Send(
		h.layout.Text(c, "main_menu_text", c.Sender()),
		menuMarkup,
	)
}

func (h Handler) EditMenu(c tele.Context) error {
	menuMarkup, isAdmin := h.markup(c)

	h.logger.Infof("(user: %d) edit main menu (isAdmin=%t)", c.Sender().ID, isAdmin)
	err := c.Edit(
		h.layout.Text(c, "main_menu_text", c.Sender()),
		menuMarkup,
	)
	if err != nil {
		// documents cannot be edited into text
		return h.SendMenu(c)
	}
	return nil
}

func (h Handler) Hide(c tele.Context) error {
	return c.Delete()
}
