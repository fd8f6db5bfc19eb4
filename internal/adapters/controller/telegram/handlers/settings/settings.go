package settings

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/qrstudio/qrstudio-bot/cmd/bot"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/domain/common/errorz"
	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/validator"
	"github.com/qrstudio/qrstudio-bot/pkg/intele"
	"github.com/qrstudio/qrstudio-bot/pkg/intele/collector"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

type settingsUserService interface {
	Get(ctx context.Context, userID int64) (*entity.User, error)
	SetSize(ctx context.Context, userID int64, size int) (*entity.User, error)
	SetForeground(ctx context.Context, userID int64, hex string) (*entity.User, error)
	SetBackground(ctx context.Context, userID int64, hex string) (*entity.User, error)
	SetLevel(ctx context.Context, userID int64, level string) (*entity.User, error)
	SetStyle(ctx context.Context, userID int64, style string) (*entity.User, error)
	SetLogo(ctx context.Context, userID int64, name string) (*entity.User, error)
	ResetSettings(ctx context.Context, userID int64) (*entity.User, error)
}

type Handler struct {
	layout *layout.Layout
	logger *types.Logger
	input  *intele.InputManager

	userService settingsUserService
}

func New(b *bot.Bot) *Handler {
	userStorage := postgres.NewUserStorage(b.DB)

	return &Handler{
		layout:      b.Layout,
		logger:      b.Logger,
		input:       b.Input,
		userService: service.NewUserService(userStorage, b.QR.Defaults, validator.MinContrast),
	}
}

func (h Handler) settingsText(c tele.Context, user *entity.User) string {
	logoName := user.Logo
	if logoName == "" {
		logoName = "none"
	}
	return h.layout.Text(c, "settings_text", struct {
		Size       int
		Foreground string
		Background string
		Level      string
		Style      string
		Logo       string
	}{
		Size:       user.Size,
		Foreground: user.Foreground,
		Background: user.Background,
		Level:      user.Level,
		Style:      user.Style,
		Logo:       h.layout.Text(c, "logo_"+logoName),
	})
}

func (h Handler) settingsMenu(c tele.Context) error {
	h.logger.Infof("(user: %d) edit settings menu", c.Sender().ID)

	user, err := h.userService.Get(context.Background(), c.Sender().ID)
	if err != nil {
		return h.technicalIssues(c, "get user", err)
	}

	return c.Edit(
		h.settingsText(c, user),
		h.layout.Markup(c, "settings:menu"),
	)
}

func (h Handler) sendSettingsMenu(c tele.Context, user *entity.User) error {
	return c.Send(
		h.settingsText(c, user),
		h.layout.Markup(c, "settings:menu"),
	)
}

// inputValue asks for a value until valid accepts it. ok is false when the
// dialog was abandoned.
func (h Handler) inputValue(c tele.Context, promptKey, invalidKey string, promptArg interface{}, valid func(string) bool) (value string, ok bool) {
	inputCollector := collector.New()
	_ = c.Edit(
		h.layout.Text(c, promptKey, promptArg),
		h.layout.Markup(c, "settings:back"),
	)
	inputCollector.Collect(c.Message())

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
			h.logger.Errorf("(user: %d) error while input %s: %v", c.Sender().ID, promptKey, errGet)
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			_ = h.technicalIssues(c, "input "+promptKey, errGet)
			return "", false
		case !valid(message.Text):
			_ = inputCollector.Send(c,
				h.layout.Text(c, invalidKey, promptArg),
				h.layout.Markup(c, "settings:back"),
			)
		default:
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			return strings.TrimSpace(message.Text), true
		}
	}
}

func (h Handler) size(c tele.Context) error {
	h.logger.Infof("(user: %d) change qr size", c.Sender().ID)

	minSize, maxSize := validator.SizeBounds()
	bounds := struct {
		Min int
		Max int
	}{
		Min: minSize,
		Max: maxSize,
	}

	value, ok := h.inputValue(c, "input_size", "invalid_size", bounds, func(s string) bool {
		return validator.QRSize(s, nil)
	})
	if !ok {
		return nil
	}

	size, _ := strconv.Atoi(value)
	user, err := h.userService.SetSize(context.Background(), c.Sender().ID, size)
	if err != nil {
		return h.technicalIssues(c, "set size", err)
	}

	h.logger.Infof("(user: %d) qr size set to %d", c.Sender().ID, size)
	return h.sendSettingsMenu(c, user)
}

func (h Handler) foreground(c tele.Context) error {
	return h.color(c, "foreground", func(u *entity.User) string { return u.Background }, h.userService.SetForeground)
}

func (h Handler) background(c tele.Context) error {
	return h.color(c, "background", func(u *entity.User) string { return u.Foreground }, h.userService.SetBackground)
}

func (h Handler) color(
	c tele.Context,
	which string,
	against func(u *entity.User) string,
	set func(ctx context.Context, userID int64, hex string) (*entity.User, error),
) error {
	h.logger.Infof("(user: %d) change qr %s", c.Sender().ID, which)

	user, err := h.userService.Get(context.Background(), c.Sender().ID)
	if err != nil {
		return h.technicalIssues(c, "get user", err)
	}
	other := against(user)

	value, ok := h.inputValue(c, "input_"+which, "invalid_color", other, func(s string) bool {
		return validator.ColorPair(strings.TrimSpace(s), map[string]interface{}{"other": other})
	})
	if !ok {
		return nil
	}

	user, err = set(context.Background(), c.Sender().ID, value)
	if err != nil {
		if errors.Is(err, service.ErrLowContrast) || errors.Is(err, qr.ErrInvalidOptions) {
			return c.Send(
				h.layout.Text(c, "invalid_color", other),
				h.layout.Markup(c, "settings:back"),
			)
		}
		return h.technicalIssues(c, "set "+which, err)
	}

	h.logger.Infof("(user: %d) qr %s set to %s", c.Sender().ID, which, value)
	return h.sendSettingsMenu(c, user)
}

func (h Handler) choices(c tele.Context, textKey, buttonKey string, values []string) error {
	markup := c.Bot().NewMarkup()
	var (
		rows []tele.Row
		row  tele.Row
	)
	for _, v := range values {
		row = append(row, *h.layout.Button(c, buttonKey, struct {
			Value string
			Label string
		}{
			Value: v,
			Label: h.layout.Text(c, textKey+"_"+strings.ToLower(v)),
		}))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, markup.Row(*h.layout.Button(c, "settings:back")))
	markup.Inline(rows...)

	return c.Edit(h.layout.Text(c, "choose_"+textKey), markup)
}

func (h Handler) level(c tele.Context) error {
	var values []string
	for _, l := range qr.Levels() {
		values = append(values, string(l))
	}
	return h.choices(c, "level", "settings:level_value", values)
}

func (h Handler) style(c tele.Context) error {
	var values []string
	for _, s := range qr.Styles() {
		values = append(values, string(s))
	}
	return h.choices(c, "style", "settings:style_value", values)
}

func (h Handler) logo(c tele.Context) error {
	values := []string{"none"}
	for _, l := range logo.All() {
		values = append(values, string(l))
	}
	return h.choices(c, "logo", "settings:logo_value", values)
}

func (h Handler) setChoice(
	c tele.Context,
	what string,
	valid func(string, map[string]interface{}) bool,
	set func(ctx context.Context, userID int64, value string) (*entity.User, error),
) error {
	value := c.Callback().Data
	if !valid(value, nil) {
		return errorz.ErrInvalidCallbackData
	}

	user, err := set(context.Background(), c.Sender().ID, value)
	if err != nil {
		return h.technicalIssues(c, "set "+what, err)
	}

	h.logger.Infof("(user: %d) qr %s set to %s", c.Sender().ID, what, value)
	return c.Edit(
		h.settingsText(c, user),
		h.layout.Markup(c, "settings:menu"),
	)
}

func (h Handler) levelValue(c tele.Context) error {
	return h.setChoice(c, "level", validator.Level, h.userService.SetLevel)
}

func (h Handler) styleValue(c tele.Context) error {
	return h.setChoice(c, "style", validator.Style, h.userService.SetStyle)
}

func (h Handler) logoValue(c tele.Context) error {
	return h.setChoice(c, "logo", validator.Logo, h.userService.SetLogo)
}

func (h Handler) reset(c tele.Context) error {
	user, err := h.userService.ResetSettings(context.Background(), c.Sender().ID)
	if err != nil {
		return h.technicalIssues(c, "reset settings", err)
	}

	h.logger.Infof("(user: %d) qr settings reset", c.Sender().ID)
	return c.Edit(
		h.settingsText(c, user),
		h.layout.Markup(c, "settings:menu"),
	)
}

func (h Handler) technicalIssues(c tele.Context, action string, err error) error {
	h.logger.Errorf("(user: %d) error while %s: %v", c.Sender().ID, action, err)
	return c.Send(
		h.layout.Text(c, "technical_issues", err.Error()),
		h.layout.Markup(c, "core:hide"),
	)
}

func (h Handler) SettingsSetup(group *tele.Group) {
	group.Handle(h.layout.Callback("mainMenu:settings"), h.settingsMenu)
	group.Handle(h.layout.Callback("settings:back"), h.settingsMenu)
	group.Handle(h.layout.Callback("settings:size"), h.size)
	group.Handle(h.layout.Callback("settings:foreground"), h.foreground)
	group.Handle(h.layout.Callback("settings:background"), h.background)
	group.Handle(h.layout.Callback("settings:level"), h.level)
	group.Handle(h.layout.Callback("settings:level_value"), h.levelValue)
	group.Handle(h.layout.Callback("settings:style"), h.style)
	group.Handle(h.layout.Callback("settings:style_value"), h.styleValue)
	group.Handle(h.layout.Callback("settings:logo"), h.logo)
	group.Handle(h.layout.Callback("settings:logo_value"), h.logoValue)
	group.Handle(h.layout.Callback("settings:reset"), h.reset)
}
