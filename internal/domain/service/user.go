package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	tele "gopkg.in/telebot.v3"
	"gorm.io/gorm"
)

// ErrLowContrast is returned when a colour change would make codes hard to scan.
var ErrLowContrast = errors.New("foreground and background are too similar")

type UserStorage interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	Get(ctx context.Context, id int64) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
	GetWithPagination(ctx context.Context, offset, limit int, order string) ([]entity.User, error)
}

type UserService struct {
	userStorage UserStorage
	defaults    qr.Config
	minContrast float64
}

// NewUserService builds the service. New users start with the render
// settings in defaults.
func NewUserService(userStorage UserStorage, defaults qr.Config, minContrast float64) *UserService {
	return &UserService{
		userStorage: userStorage,
		defaults:    defaults,
		minContrast: minContrast,
	}
}

func (s *UserService) Create(ctx context.Context, user entity.User) (*entity.User, error) {
	if user.Localisation == "" {
		user.Localisation = "en"
	}
	if user.Size == 0 {
		user.Size = s.defaults.Size
	}
	if user.Foreground == "" {
		user.Foreground = qr.Hex(s.defaults.Foreground)
	}
	if user.Background == "" {
		user.Background = qr.Hex(s.defaults.Background)
	}
	if user.Level == "" {
		user.Level = string(s.defaults.Level)
	}
	if user.Style == "" {
		user.Style = string(s.defaults.Style)
	}

	return s.userStorage.Create(ctx, &user)
}

func (s *UserService) Get(ctx context.Context, userID int64) (*entity.User, error) {
	return s.userStorage.Get(ctx, userID)
}

func (s *UserService) Update(ctx context.Context, user *entity.User) (*entity.User, error) {
	return s.userStorage.Update(ctx, user)
}

// Register returns the user behind sender, creating it on first contact and
// keeping the stored username current.
func (s *UserService) Register(ctx context.Context, sender *tele.User) (*entity.User, error) {
	user, err := s.userStorage.Get(ctx, sender.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Create(ctx, entity.User{
			ID:           sender.ID,
			Username:     sender.Username,
			FirstName:    sender.FirstName,
			Localisation: sender.LanguageCode,
		})
	}
	if err != nil {
		return nil, err
	}

	if user.Username != sender.Username || user.FirstName != sender.FirstName {
		user.Username = sender.Username
		user.FirstName = sender.FirstName
		return s.userStorage.Update(ctx, user)
	}
	return user, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userStorage.Count(ctx)
}

func (s *UserService) GetWithPagination(ctx context.Context, offset, limit int, order string) ([]entity.User, error) {
	return s.userStorage.GetWithPagination(ctx, offset, limit, order)
}

// Ban toggles the ban flag of a user.
func (s *UserService) Ban(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := s.userStorage.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsBanned = !user.IsBanned
	return s.userStorage.Update(ctx, user)
}

func (s *UserService) SetSize(ctx context.Context, userID int64, size int) (*entity.User, error) {
	if size <= 0 || size > qr.MaxSize {
		return nil, fmt.Errorf("%w: size %d", qr.ErrInvalidOptions, size)
	}
	return s.modify(ctx, userID, func(u *entity.User) error {
		u.Size = size
		return nil
	})
}

// SetForeground changes the module colour, keeping enough contrast with the
// current background.
func (s *UserService) SetForeground(ctx context.Context, userID int64, hex string) (*entity.User, error) {
	return s.modify(ctx, userID, func(u *entity.User) error {
		fg, err := s.checkContrast(hex, u.Background)
		if err != nil {
			return err
		}
		u.Foreground = fg
		return nil
	})
}

func (s *UserService) SetBackground(ctx context.Context, userID int64, hex string) (*entity.User, error) {
	return s.modify(ctx, userID, func(u *entity.User) error {
		bg, err := s.checkContrast(hex, u.Foreground)
		if err != nil {
			return err
		}
		u.Background = bg
		return nil
	})
}

func (s *UserService) SetLevel(ctx context.Context, userID int64, level string) (*entity.User, error) {
	l := qr.ErrorCorrection(strings.ToUpper(level))
	if l == "" || !l.Valid() {
		return nil, fmt.Errorf("%w: error correction level %q", qr.ErrInvalidOptions, level)
	}
	return s.modify(ctx, userID, func(u *entity.User) error {
		u.Level = string(l)
		return nil
	})
}

func (s *UserService) SetStyle(ctx context.Context, userID int64, style string) (*entity.User, error) {
	st := qr.Style(strings.ToLower(style))
	if st == "" || !st.Valid() {
		return nil, fmt.Errorf("%w: style %q", qr.ErrInvalidOptions, style)
	}
	return s.modify(ctx, userID, func(u *entity.User) error {
		u.Style = string(st)
		return nil
	})
}

// SetLogo sets the default logo. "none" clears it.
func (s *UserService) SetLogo(ctx context.Context, userID int64, name string) (*entity.User, error) {
	l, err := logo.Parse(name)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, userID, func(u *entity.User) error {
		u.Logo = string(l)
		return nil
	})
}

// ResetSettings restores the default render settings.
func (s *UserService) ResetSettings(ctx context.Context, userID int64) (*entity.User, error) {
	return s.modify(ctx, userID, func(u *entity.User) error {
		u.Size = s.defaults.Size
		u.Foreground = qr.Hex(s.defaults.Foreground)
		u.Background = qr.Hex(s.defaults.Background)
		u.Level = string(s.defaults.Level)
		u.Style = string(s.defaults.Style)
		u.Logo = ""
		return nil
	})
}

func (s *UserService) modify(ctx context.Context, userID int64, fn func(u *entity.User) error) (*entity.User, error) {
	user, err := s.userStorage.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = fn(user); err != nil {
		return nil, err
	}
	return s.userStorage.Update(ctx, user)
}

// checkContrast parses hex and compares it with against. It returns hex in
// canonical "#rrggbb" form.
func (s *UserService) checkContrast(hex, against string) (string, error) {
	c, err := qr.ParseColor(hex)
	if err != nil {
		return "", err
	}
	if o, errOther := qr.ParseColor(against); errOther == nil && qr.Contrast(c, o) < s.minContrast {
		return "", ErrLowContrast
	}
	return qr.Hex(c), nil
}
