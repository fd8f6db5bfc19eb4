package codes

import (
	"bytes"
	"context"
	"errors"
	"html"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/domain/common/errorz"
	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/validator"
	"github.com/qrstudio/qrstudio-bot/pkg/intele"
	"github.com/qrstudio/qrstudio-bot/pkg/intele/collector"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	"github.com/qrstudio/qrstudio-bot/pkg/smtp"
	"github.com/spf13/viper"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

const (
	draftTTL = 30 * time.Minute
	// Telegram allows 1024 characters in a caption, the template needs some of them.
	captionLimit = 800
	skipValue    = "-"
	logoDefault  = "default"
)

type qrService interface {
	Generate(ctx context.Context, userID int64, req dto.QRRequest) (*service.Result, error)
	AttachFileID(ctx context.Context, id, fileID string) error
	Resend(ctx context.Context, userID int64, id string) (fileID string, png []byte, err error)
	Last(ctx context.Context, userID int64) ([]byte, error)
}

type draftStorage interface {
	Get(ctx context.Context, callbackID string, v interface{}) error
	Set(ctx context.Context, v interface{}, expiration time.Duration) (string, error)
	Delete(ctx context.Context, callbackID string)
}

type mailer interface {
	SendQRCode(to, caption string, png []byte) error
}

type Handler struct {
	layout *layout.Layout
	logger *types.Logger
	input  *intele.InputManager

	qrService qrService
	drafts    draftStorage
	mailer    mailer
}

func New(b *bot.Bot) *Handler {
	userStorage := postgres.NewUserStorage(b.DB)
	qrCodeStorage := postgres.NewQRCodeStorage(b.DB)

	userService := service.NewUserService(userStorage, b.QR.Defaults, validator.MinContrast)

	return &Handler{
		layout: b.Layout,
		logger: b.Logger,
		input:  b.Input,
		qrService: service.NewQrService(
			qrCodeStorage,
			b.Redis.Renders,
			logo.NewLoader(b.QR.LogosDir),
			userService,
			b.Logger,
			service.QrServiceOptions{
				Defaults: b.QR.Defaults,
				MinSize:  b.QR.MinSize,
				MaxSize:  b.QR.MaxSize,
				CacheTTL: b.QR.CacheTTL,
			},
		),
		drafts: b.Redis.Callbacks,
		mailer: smtp.NewClient(
			b.SMTPDialer,
			viper.GetString("service.smtp.email"),
			viper.GetString("service.smtp.domain"),
		),
	}
}

func (h Handler) chooseType(c tele.Context) error {
	h.logger.Infof("(user: %d) choose qr content type", c.Sender().ID)

	markup := c.Bot().NewMarkup()
	var (
		rows []tele.Row
		row  tele.Row
	)
	for _, t := range payload.ContentTypes() {
		row = append(row, *h.layout.Button(c, "qr:type", struct {
			Type  string
			Label string
		}{
			Type:  string(t),
			Label: h.layout.Text(c, "type_"+string(t)),
		}))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, markup.Row(*h.layout.Button(c, "mainMenu:back")))
	markup.Inline(rows...)

	if err := c.Edit(h.layout.Text(c, "choose_type"), markup); err != nil {
		return c.Send(h.layout.Text(c, "choose_type"), markup)
	}
	return nil
}

func (h Handler) typeChosen(c tele.Context) error {
	t := payload.ContentType(c.Callback().Data)
	if !t.Valid() {
		return errorz.ErrInvalidCallbackData
	}
	return h.CreateType(c, t)
}

// CreateType asks for every field of t in turn and then offers the logo
// choice. The collected fields wait in the draft storage until a logo is
// picked.
func (h Handler) CreateType(c tele.Context, t payload.ContentType) error {
	h.logger.Infof("(user: %d) create %s qr code", c.Sender().ID, t)

	inputCollector := collector.New()
	if c.Callback() != nil {
		inputCollector.Collect(c.Message())
	}

	fields := make(payload.Fields, len(t.FieldNames()))
	for i, field := range t.FieldNames() {
		value, ok := h.askField(c, inputCollector, field, i > 0)
		if !ok {
			return nil
		}
		fields[field] = value
	}
	_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})

	data, err := payload.EncodeFields(t, fields)
	if err != nil {
		h.logger.Infof("(user: %d) rejected %s payload: %v", c.Sender().ID, t, err)
		return c.Send(
			h.layout.Text(c, "invalid_payload", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	draftID, err := h.drafts.Set(context.Background(), dto.QRRequest{
		Type:   t,
		Fields: fields,
	}, draftTTL)
	if err != nil {
		h.logger.Errorf("(user: %d) error while saving qr draft: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	return c.Send(
		h.layout.Text(c, "choose_logo", struct {
			Payload string
		}{
			Payload: captionPayload(data),
		}),
		h.logoMarkup(c, draftID),
	)
}

// askField prompts for one field until a usable answer arrives. ok is false
// when the dialog was abandoned.
func (h Handler) askField(c tele.Context, inputCollector *collector.Collector, field string, optional bool) (value string, ok bool) {
	prompt := h.layout.Text(c, "input_"+field)
	if optional {
		prompt += "\n\n" + h.layout.Text(c, "input_skip_hint")
	}
	markup := h.fieldMarkup(c, field)

	if c.Callback() != nil && len(inputCollector.Messages()) == 1 && markup.InlineKeyboard != nil {
		// first prompt replaces the type picker
		_ = c.Edit(prompt, markup)
	} else {
		_ = inputCollector.Send(c, prompt, markup)
	}

	for {
		message, canceled, errGet := h.input.Get(context.Background(), c.Sender().ID, 0)
		if message != nil {
			inputCollector.Collect(message)
		}
		switch {
		case canceled:
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true, ExcludeLast: true})
			return "", false
		case errGet != nil:
			h.logger.Errorf("(user: %d) error while input %s: %v", c.Sender().ID, field, errGet)
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			_ = c.Send(
				h.layout.Text(c, "technical_issues", errGet.Error()),
				h.layout.Markup(c, "core:hide"),
			)
			return "", false
		}

		value, ok = h.parseField(c, field, message.Text, optional)
		if ok {
			return value, true
		}
		_ = inputCollector.Send(c,
			h.layout.Text(c, "input_error", prompt),
			markup,
		)
	}
}

func (h Handler) parseField(c tele.Context, field, text string, optional bool) (string, bool) {
	return parseFieldValue(field, text, optional, h.layout.Text(c, "answer_yes"), h.layout.Text(c, "answer_no"))
}

// parseFieldValue turns one answer into a field value. Optional fields are
// skipped with "-"; yes and no are the localized answers for the hidden flag.
func parseFieldValue(field, text string, optional bool, yes, no string) (string, bool) {
	if optional && strings.TrimSpace(text) == skipValue {
		return "", true
	}

	switch field {
	case payload.FieldPlatform:
		platform := payload.SocialPlatform(strings.ToLower(strings.TrimSpace(text)))
		return string(platform), platform.Valid()
	case payload.FieldHidden:
		switch text {
		case yes:
			return "true", true
		case no:
			return "false", true
		}
	}

	return text, text != ""
}

// fieldMarkup offers the known values of choice fields as a reply keyboard.
// Free text fields get a back button instead.
func (h Handler) fieldMarkup(c tele.Context, field string) *tele.ReplyMarkup {
	var choices []string
	switch field {
	case payload.FieldSecurity:
		for _, s := range payload.WiFiSecurities() {
			choices = append(choices, string(s))
		}
	case payload.FieldPlatform:
		for _, p := range payload.SocialPlatforms() {
			choices = append(choices, string(p))
		}
	case payload.FieldHidden:
		choices = []string{h.layout.Text(c, "answer_yes"), h.layout.Text(c, "answer_no")}
	default:
		return h.layout.Markup(c, "qr:back")
	}

	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	var rows []tele.Row
	for i := 0; i < len(choices); i += 3 {
		var row tele.Row
		for _, choice := range choices[i:min(i+3, len(choices))] {
			row = append(row, markup.Text(choice))
		}
		rows = append(rows, row)
	}
	markup.Reply(rows...)
	return markup
}

func (h Handler) logoMarkup(c tele.Context, draftID string) *tele.ReplyMarkup {
	button := func(name, label string) tele.Btn {
		return *h.layout.Button(c, "qr:logo", struct {
			DraftID string
			Logo    string
			Label   string
		}{
			DraftID: draftID,
			Logo:    name,
			Label:   label,
		})
	}

	markup := c.Bot().NewMarkup()
	rows := []tele.Row{
		markup.Row(
			button(logoDefault, h.layout.Text(c, "logo_default")),
			button("none", h.layout.Text(c, "logo_none")),
		),
	}

	var row tele.Row
	for _, l := range logo.All() {
		row = append(row, button(string(l), h.layout.Text(c, "logo_"+string(l))))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, markup.Row(*h.layout.Button(c, "core:hide")))

	markup.Inline(rows...)
	return markup
}

func (h Handler) logoChosen(c tele.Context) error {
	callbackData := strings.Split(c.Callback().Data, " ")
	if len(callbackData) != 2 {
		return errorz.ErrInvalidCallbackData
	}
	draftID, logoName := callbackData[0], callbackData[1]

	var req dto.QRRequest
	err := h.drafts.Get(context.Background(), draftID, &req)
	if err != nil {
		if errors.Is(err, errorz.ErrCallbackExpired) {
			return c.Edit(
				h.layout.Text(c, "draft_expired"),
				h.layout.Markup(c, "core:hide"),
			)
		}
		h.logger.Errorf("(user: %d) error while loading qr draft: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}
	h.drafts.Delete(context.Background(), draftID)

	if logoName != logoDefault {
		req.Logo = logoName
	}

	_ = c.Delete()
	return h.generate(c, req)
}

func (h Handler) generate(c tele.Context, req dto.QRRequest) error {
	res, err := h.qrService.Generate(context.Background(), c.Sender().ID, req)
	if err != nil {
		var validationErr *payload.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Send(
				h.layout.Text(c, "invalid_payload", err.Error()),
				h.layout.Markup(c, "core:hide"),
			)
		case errors.Is(err, qr.ErrInvalidOptions), errors.Is(err, logo.ErrUnknownLogo):
			return c.Send(
				h.layout.Text(c, "render_failed", err.Error()),
				h.layout.Markup(c, "core:hide"),
			)
		}

		h.logger.Errorf("(user: %d) error while generating qr code: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	msg, err := sendPNG(c, res.PNG,
		h.layout.Text(c, "qr_ready", struct {
			Payload string
			Size    int
		}{
			Payload: captionPayload(res.Payload),
			Size:    res.Options.Size,
		}),
		h.layout.Markup(c, "qr:result", struct {
			ID string
		}{
			ID: res.ID,
		}),
	)
	if err != nil {
		return err
	}

	if msg.Document != nil {
		if err = h.qrService.AttachFileID(context.Background(), res.ID, msg.Document.FileID); err != nil {
			h.logger.Warnf("(user: %d) failed to save file id of qr code %s: %v", c.Sender().ID, res.ID, err)
		}
	}
	return nil
}

func (h Handler) email(c tele.Context) error {
	codeID := c.Callback().Data
	h.logger.Infof("(user: %d) email qr code %s", c.Sender().ID, codeID)

	inputCollector := collector.New()
	prompt := h.layout.Text(c, "input_email_address")
	_ = inputCollector.Send(c, prompt, h.layout.Markup(c, "qr:email_back"))

	var address string
	for address == "" {
		message, canceled, errGet := h.input.Get(context.Background(), c.Sender().ID, 0)
		if message != nil {
			inputCollector.Collect(message)
		}
		switch {
		case canceled:
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true, ExcludeLast: true})
			return nil
		case errGet != nil:
			h.logger.Errorf("(user: %d) error while input email: %v", c.Sender().ID, errGet)
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			return c.Send(
				h.layout.Text(c, "technical_issues", errGet.Error()),
				h.layout.Markup(c, "core:hide"),
			)
		case !validator.Email(message.Text, nil):
			_ = inputCollector.Send(c,
				h.layout.Text(c, "invalid_email"),
				h.layout.Markup(c, "qr:email_back"),
			)
		default:
			address = strings.TrimSpace(message.Text)
		}
	}
	_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})

	png, err := h.codePNG(c, codeID)
	if err != nil {
		return h.sendLookupError(c, err)
	}

	if err = h.mailer.SendQRCode(address, h.layout.Text(c, "email_body"), png); err != nil {
		h.logger.Errorf("(user: %d) error while sending qr code by email: %v", c.Sender().ID, err)
		return c.Send(
			h.layout.Text(c, "technical_issues", err.Error()),
			h.layout.Markup(c, "core:hide"),
		)
	}

	h.logger.Infof("(user: %d) qr code %s sent by email", c.Sender().ID, codeID)
	return c.Send(
		h.layout.Text(c, "email_sent", address),
		h.layout.Markup(c, "core:hide"),
	)
}

// codePNG fetches the image of a history entry, downloading it from
// Telegram when only the file id is known.
func (h Handler) codePNG(c tele.Context, codeID string) ([]byte, error) {
	fileID, png, err := h.qrService.Resend(context.Background(), c.Sender().ID, codeID)
	if err != nil {
		return nil, err
	}
	if fileID == "" {
		return png, nil
	}

	reader, err := c.Bot().File(&tele.File{FileID: fileID})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (h Handler) sendLookupError(c tele.Context, err error) error {
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

	h.logger.Errorf("(user: %d) error while loading qr code: %v", c.Sender().ID, err)
	return c.Send(
		h.layout.Text(c, "technical_issues", err.Error()),
		h.layout.Markup(c, "core:hide"),
	)
}

func (h Handler) last(c tele.Context) error {
	h.logger.Infof("(user: %d) send last qr code", c.Sender().ID)

	png, err := h.qrService.Last(context.Background(), c.Sender().ID)
	if err != nil {
		if errors.Is(err, errorz.ErrRenderExpired) {
			return c.Send(
				h.layout.Text(c, "no_last_render"),
				h.layout.Markup(c, "core:hide"),
			)
		}
		return h.sendLookupError(c, err)
	}

	_, err = sendPNG(c, png, h.layout.Text(c, "last_render"), h.layout.Markup(c, "core:hide"))
	return err
}

func (h Handler) hide(c tele.Context) error {
	return c.Delete()
}

func sendPNG(c tele.Context, png []byte, caption string, markup *tele.ReplyMarkup) (*tele.Message, error) {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(png)),
		FileName: smtp.AttachmentName,
		MIME:     "image/png",
		Caption:  caption,
	}
	return c.Bot().Send(c.Recipient(), doc, markup)
}

// captionPayload makes a payload safe to show in an HTML caption.
func captionPayload(data string) string {
	if utf8.RuneCountInString(data) > captionLimit {
		data = string([]rune(data)[:captionLimit]) + "…"
	}
	return html.EscapeString(data)
}

func (h Handler) CodesSetup(group *tele.Group) {
	group.Handle(h.layout.Callback("mainMenu:create"), h.chooseType)
	group.Handle(h.layout.Callback("qr:create_again"), h.chooseType)
	group.Handle(h.layout.Callback("qr:type"), h.typeChosen)
	group.Handle(h.layout.Callback("qr:logo"), h.logoChosen)
	group.Handle(h.layout.Callback("qr:email"), h.email)
	group.Handle(h.layout.Callback("qr:email_back"), h.hide)
	group.Handle(h.layout.Callback("mainMenu:last"), h.last)
}
