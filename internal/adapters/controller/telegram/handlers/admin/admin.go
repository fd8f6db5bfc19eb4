package admin

import (
	"context"
	"errors"
	"strconv"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/validator"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
	"gorm.io/gorm"
)

type adminUserService interface {
	Count(ctx context.Context) (int64, error)
	Ban(ctx context.Context, userID int64) (*entity.User, error)
}

type statsService interface {
	Stats(ctx context.Context) (total, today int64, err error)
}

type Handler struct {
	layout *layout.Layout
	logger *types.Logger

	adminUserService adminUserService
	statsService     statsService
}

func New(b *bot.Bot) *Handler {
	userStorage := postgres.NewUserStorage(b.DB)
	qrCodeStorage := postgres.NewQRCodeStorage(b.DB)
	userService := service.NewUserService(userStorage, b.QR.Defaults, validator.MinContrast)

	return &Handler{
		layout:           b.Layout,
		logger:           b.Logger,
		adminUserService: userService,
		statsService: service.NewQrService(
			qrCodeStorage,
			b.Redis.Renders,
			logo.NewLoader(b.QR.LogosDir),
			userService,
			b.Logger,
			service.QrServiceOptions{Defaults: b.QR.Defaults},
		),
	}
}

func (h Handler) stats(c tele.Context) error {
	h.logger.Infof("(user: %d) get stats", c.Sender().ID)

	usersCount, err := h.adminUserService.Count(context.Background())
	if err != nil {
		h.logger.Errorf("(user: %d) error while count users: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	total, today, err := h.statsService.Stats(context.Background())
	if err != nil {
		h.logger.Errorf("(user: %d) error while count qr codes: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	return c.Send(
		h.layout.Text(c, "stats_text", dto.Stats{
			Users:   usersCount,
			QRCodes: total,
			Today:   today,
		}),
		h.layout.Markup(c, "core:hide"),
	)
}

func (h Handler) banUser(c tele.Context) error {
	_ = c.Delete()
	if c.Message() == nil || c.Message().Payload == "" {
		return c.Send(
			h.layout.Text(c, "invalid_ban_data"),
			h.layout.Markup(c, "core:hide"),
		)
	}
	userID, err := strconv.ParseInt(c.Message().Payload, 10, 64)
	if err != nil {
		return c.Send(
			h.layout.Text(c, "invalid_ban_data"),
			h.layout.Markup(c, "core:hide"),
		)
	}

	h.logger.Infof("(user: %d) attempt ban user: %d", c.Sender().ID, userID)
	if userID == c.Sender().ID {
		return c.Send(
			h.layout.Text(c, "attempt_to_ban_self"),
			h.layout.Markup(c, "core:hide"),
		)
	}
	user, err := h.adminUserService.Ban(context.Background(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Send(
				h.layout.Text(c, "user_not_found", struct {
					ID int64
				}{
					ID: userID,
				}),
				h.layout.Markup(c, "core:hide"),
			)
		}
		h.logger.Errorf("(user: %d) error while ban user: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	key := "user_unbanned"
	if user.IsBanned {
		key = "user_banned"
	}
	h.logger.Infof("(user: %d) %s: %d", c.Sender().ID, key, userID)
	return c.Send(
		h.layout.Text(c, key, struct {
			Name string
			ID   int64
		}{
			Name: user.FirstName,
			ID:   user.ID,
		}),
		h.layout.Markup(c, "core:hide"),
	)
}

func (h Handler) AdminSetup(group *tele.Group) {
	group.Handle(h.layout.Callback("mainMenu:stats"), h.stats)
	group.Handle("/stats", h.stats)
	group.Handle("/ban", h.banUser)
}
