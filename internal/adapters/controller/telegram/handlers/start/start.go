package start

import (
	"strings"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/controller/telegram/handlers/menu"
	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

type qrFlow interface {
	CreateType(c tele.Context, t payload.ContentType) error
}

type Handler struct {
	menuHandler *menu.Handler
	qrFlow      qrFlow
	layout      *layout.Layout
	logger      *types.Logger
}

func New(b *bot.Bot, qrFlow qrFlow) *Handler {
	return &Handler{
		menuHandler: menu.New(b),
		qrFlow:      qrFlow,
		layout:      b.Layout,
		logger:      b.Logger,
	}
}

// Start opens the main menu. A deep link payload "create_<type>" jumps
// straight into creating a code of that type.
func (h *Handler) Start(c tele.Context) error {
	h.logger.Infof("(user: %d) press start button", c.Sender().ID)

	payloadType, data, _ := strings.Cut(c.Message().Payload, "_")
	switch payloadType {
	case "":
		return h.menuHandler.SendMenu(c)
	case "create":
		t := payload.ContentType(data)
		if !t.Valid() {
			return c.Send(
				h.layout.Text(c, "something_went_wrong"),
				h.layout.Markup(c, "core:hide"),
			)
		}
		return h.qrFlow.CreateType(c, t)
	default:
		return c.Send(
			h.layout.Text(c, "something_went_wrong"),
			h.layout.Markup(c, "core:hide"),
		)
	}
}
