package history

import (
	"bytes"
	"context"
	"errors"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/domain/common/errorz"
	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/validator"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	"github.com/qrstudio/qrstudio-bot/pkg/smtp"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

const historyLimit = 10

type historyService interface {
	History(ctx context.Context, userID int64, limit int) ([]dto.QRHistoryItem, error)
	Resend(ctx context.Context, userID int64, id string) (fileID string, png []byte, err error)
	AttachFileID(ctx context.Context, id, fileID string) error
}

type Handler struct {
	layout *layout.Layout
	logger *types.Logger

	qrService historyService
}

func New(b *bot.Bot) *Handler {
	userStorage := postgres.NewUserStorage(b.DB)
	qrCodeStorage := postgres.NewQRCodeStorage(b.DB)

	return &Handler{
		layout: b.Layout,
		logger: b.Logger,
		qrService: service.NewQrService(
			qrCodeStorage,
			b.Redis.Renders,
			logo.NewLoader(b.QR.LogosDir),
			service.NewUserService(userStorage, b.QR.Defaults, validator.MinContrast),
			b.Logger,
			service.QrServiceOptions{
				Defaults: b.QR.Defaults,
				MinSize:  b.QR.MinSize,
				MaxSize:  b.QR.MaxSize,
				CacheTTL: b.QR.CacheTTL,
			},
		),
	}
}

func (h Handler) list(c tele.Context) error {
	h.logger.Infof("(user: %d) edit qr history", c.Sender().ID)

	items, err := h.qrService.History(context.Background(), c.Sender().ID, historyLimit)
	if err != nil {
		h.logger.Errorf("(user: %d) error while get qr history: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	markup := c.Bot().NewMarkup()
	var rows []tele.Row
	for _, item := range items {
		rows = append(rows, markup.Row(*h.layout.Button(c, "history:item", struct {
			ID      string
			Type    string
			Created string
		}{
			ID:      item.ID,
			Type:    h.layout.Text(c, "type_"+item.ContentType),
			Created: item.CreatedAt.Format("02.01 15:04"),
		})))
	}
	rows = append(rows, markup.Row(*h.layout.Button(c, "mainMenu:back")))
	markup.Inline(rows...)

	text := h.layout.Text(c, "history_text", len(items))
	if len(items) == 0 {
		text = h.layout.Text(c, "history_empty")
	}

	if err = c.Edit(text, markup); err != nil {
		return c.Send(text, markup)
	}
	return nil
}

func (h Handler) item(c tele.Context) error {
	codeID := c.Callback().Data
	h.logger.Infof("(user: %d) resend qr code %s", c.Sender().ID, codeID)

	fileID, png, err := h.qrService.Resend(context.Background(), c.Sender().ID, codeID)
	if err != nil {
		switch {
		case service.IsNotFound(err):
			return c.Send(
				h.layout.Text(c, "qr_not_found"),
				h.layout.Markup(c, "core:hide"),
			)
		case errors.Is(err, errorz.ErrRenderExpired), errors.Is(err, errorz.ErrNoFile):
			return c.Send(
				h.layout.Text(c, "render_expired"),
				h.layout.Markup(c, "core:hide"),
			)
		}
		h.logger.Errorf("(user: %d) error while resend qr code: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	doc := &tele.Document{
		FileName: smtp.AttachmentName,
		MIME:     "image/png",
		Caption:  h.layout.Text(c, "history_resend"),
	}
	if fileID != "" {
		doc.File = tele.File{FileID: fileID}
	} else {
		doc.File = tele.FromReader(bytes.NewReader(png))
	}

	msg, err := c.Bot().Send(c.Recipient(), doc, h.layout.Markup(c, "qr:result", struct {
		ID string
	}{
		ID: codeID,
	}))
	if err != nil {
		return err
	}

	if fileID == "" && msg.Document != nil {
		if err = h.qrService.AttachFileID(context.Background(), codeID, msg.Document.FileID); err != nil {
			h.logger.Warnf("(user: %d) failed to save file id of qr code %s: %v", c.Sender().ID, codeID, err)
		}
	}
	return nil
}

func (h Handler) HistorySetup(group *tele.Group) {
	group.Handle(h.layout.Callback("mainMenu:history"), h.list)
	group.Handle(h.layout.Callback("history:item"), h.item)
}
