package middlewares

import (
	"context"
	"strings"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/pkg/intele"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

type userService interface {
	Register(ctx context.Context, sender *tele.User) (*entity.User, error)
}

type Handler struct {
	layout      *layout.Layout
	logger      *types.Logger
	userService userService
	input       *intele.InputManager
}

func New(b *bot.Bot) *Handler {
	userStorage := postgres.NewUserStorage(b.DB)

	return &Handler{
		layout:      b.Layout,
		logger:      b.Logger,
		userService: service.NewUserService(userStorage, b.QR.Defaults, 0),
		input:       b.Input,
	}
}

// Registered creates the user on first contact and stops banned users.
func (h Handler) Registered(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}

		user, err := h.userService.Register(context.Background(), c.Sender())
		if err != nil {
			h.logger.Errorf("(user: %d) error while registering user: %v", c.Sender().ID, err)
			return c.Send(
				h.layout.Text(c, "technical_issues", err.Error()),
				h.layout.Markup(c, "core:hide"),
			)
		}

		if user.IsBanned {
			h.logger.Debugf("(user: %d) banned user ignored", c.Sender().ID)
			return c.Send(
				h.layout.Text(c, "banned"),
				h.layout.Markup(c, "core:hide"),
			)
		}

		return next(c)
	}
}

// ResetInputOnBack middleware clears the input state when the back button is pressed.
func (h Handler) ResetInputOnBack(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return next(c)
		}

		if c.Callback() != nil {
			if strings.Contains(c.Callback().Data, "back") || strings.Contains(c.Callback().Unique, "back") {
				h.input.Cancel(c.Sender().ID)
			}
		}
		if c.Message() != nil {
			if strings.HasPrefix(c.Message().Text, "/") {
				h.input.Cancel(c.Sender().ID)
			}
		}

		return next(c)
	}
}
