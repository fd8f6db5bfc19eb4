package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/qrstudio/qrstudio-bot/internal/domain/common/errorz"
	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/location"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	"gorm.io/gorm"
)

type QRCodeStorage interface {
	Create(ctx context.Context, code *entity.QRCode) (*entity.QRCode, error)
	Get(ctx context.Context, userID int64, id string) (*entity.QRCode, error)
	SetFileID(ctx context.Context, id, fileID string) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]entity.QRCode, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, png []byte, ttl time.Duration) error
	SetLast(ctx context.Context, userID int64, key string, ttl time.Duration) error
	Last(ctx context.Context, userID int64) (string, error)
}

type LogoLoader interface {
	Load(l logo.Logo) (image.Image, error)
}

type qrUserService interface {
	Get(ctx context.Context, userID int64) (*entity.User, error)
}

type QrServiceOptions struct {
	// Defaults fills render options neither the request nor the user set.
	Defaults qr.Config
	MinSize  int
	MaxSize  int
	// CacheTTL is how long rendered PNGs stay in the cache. Zero keeps them forever.
	CacheTTL time.Duration
}

// QrService turns requests into PNG codes. It holds no per-request state and
// is shared by the bot and the HTTP API.
type QrService struct {
	storage QRCodeStorage
	cache   RenderCache
	logos   LogoLoader
	users   qrUserService
	logger  *types.Logger
	opts    QrServiceOptions
}

func NewQrService(
	storage QRCodeStorage,
	cache RenderCache,
	logos LogoLoader,
	users qrUserService,
	logger *types.Logger,
	opts QrServiceOptions,
) *QrService {
	if opts.Defaults.Size == 0 {
		opts.Defaults = qr.Default
	}
	if opts.MinSize <= 0 {
		opts.MinSize = 1
	}
	if opts.MaxSize <= 0 || opts.MaxSize > qr.MaxSize {
		opts.MaxSize = qr.MaxSize
	}
	return &QrService{
		storage: storage,
		cache:   cache,
		logos:   logos,
		users:   users,
		logger:  logger,
		opts:    opts,
	}
}

// Result is one rendered code.
type Result struct {
	// ID of the history row, empty for anonymous renders.
	ID       string
	Payload  string
	PNG      []byte
	CacheKey string
	Cached   bool
	Options  Options
}

// Options are the render options after defaults are applied.
type Options struct {
	Size       int
	Foreground string
	Background string
	Level      qr.ErrorCorrection
	Style      qr.Style
	Logo       logo.Logo
}

// Resolve merges req over base and validates the result. Empty request
// fields keep the base value.
func (s *QrService) Resolve(req dto.QRRequest, base Options) (Options, error) {
	opts := base
	if req.Size != 0 {
		opts.Size = req.Size
	}
	if req.Foreground != "" {
		opts.Foreground = req.Foreground
	}
	if req.Background != "" {
		opts.Background = req.Background
	}
	if req.Level != "" {
		opts.Level = qr.ErrorCorrection(strings.ToUpper(req.Level))
	}
	if req.Style != "" {
		opts.Style = qr.Style(strings.ToLower(req.Style))
	}
	if req.Logo != "" {
		l, err := logo.Parse(req.Logo)
		if err != nil {
			return Options{}, err
		}
		opts.Logo = l
	}

	if opts.Size < s.opts.MinSize || opts.Size > s.opts.MaxSize {
		return Options{}, fmt.Errorf("%w: size %d out of range %d..%d",
			qr.ErrInvalidOptions, opts.Size, s.opts.MinSize, s.opts.MaxSize)
	}
	if !opts.Level.Valid() {
		return Options{}, fmt.Errorf("%w: error correction level %q", qr.ErrInvalidOptions, opts.Level)
	}
	if !opts.Style.Valid() {
		return Options{}, fmt.Errorf("%w: style %q", qr.ErrInvalidOptions, opts.Style)
	}
	for _, c := range []*string{&opts.Foreground, &opts.Background} {
		parsed, err := qr.ParseColor(*c)
		if err != nil {
			return Options{}, err
		}
		*c = qr.Hex(parsed)
	}

	return opts, nil
}

// Defaults returns the service-wide render options.
func (s *QrService) Defaults() Options {
	d := s.opts.Defaults
	return Options{
		Size:       d.Size,
		Foreground: qr.Hex(d.Foreground),
		Background: qr.Hex(d.Background),
		Level:      d.Level,
		Style:      d.Style,
	}
}

// UserDefaults returns the render settings stored for a user.
func UserDefaults(u *entity.User) Options {
	return Options{
		Size:       u.Size,
		Foreground: u.Foreground,
		Background: u.Background,
		Level:      qr.ErrorCorrection(u.Level),
		Style:      qr.Style(u.Style),
		Logo:       logo.Logo(u.Logo),
	}
}

// Render encodes and renders req without recording it anywhere except the
// render cache.
func (s *QrService) Render(ctx context.Context, req dto.QRRequest) (*Result, error) {
	opts, err := s.Resolve(req, s.Defaults())
	if err != nil {
		return nil, err
	}
	return s.render(ctx, req, opts)
}

// Generate renders req with the user's settings as defaults, remembers it as
// the user's last render and stores a history row.
func (s *QrService) Generate(ctx context.Context, userID int64, req dto.QRRequest) (*Result, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts, err := s.Resolve(req, UserDefaults(user))
	if err != nil {
		return nil, err
	}

	res, err := s.render(ctx, req, opts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err = s.cache.SetLast(ctx, userID, res.CacheKey, s.opts.CacheTTL); err != nil {
			s.logger.Warnf("(user: %d) failed to remember last render: %v", userID, err)
		}
	}

	code, err := s.storage.Create(ctx, &entity.QRCode{
		UserID:      userID,
		ContentType: string(req.Type),
		Size:        opts.Size,
		Foreground:  opts.Foreground,
		Background:  opts.Background,
		Level:       string(opts.Level),
		Style:       string(opts.Style),
		Logo:        string(opts.Logo),
		CacheKey:    res.CacheKey,
	})
	if err != nil {
		return nil, fmt.Errorf("store qr history: %w", err)
	}
	res.ID = code.ID

	s.logger.Infof("(user: %d) generated %s qr code %s (cached=%t)", userID, req.Type, code.ID, res.Cached)
	return res, nil
}

// Terminal encodes req and renders it as half-block text. The output is
// monochrome: colours, style and logo of req are ignored.
func (s *QrService) Terminal(req dto.QRRequest) (string, error) {
	req.Foreground, req.Background, req.Style, req.Logo = "", "", "", ""
	opts, err := s.Resolve(req, s.Defaults())
	if err != nil {
		return "", err
	}
	data, err := payload.EncodeFields(req.Type, req.Fields)
	if err != nil {
		return "", err
	}
	cfg := qr.Config{Content: data, Size: opts.Size, Level: opts.Level}
	return cfg.Terminal()
}

func (s *QrService) render(ctx context.Context, req dto.QRRequest, opts Options) (*Result, error) {
	data, err := payload.EncodeFields(req.Type, req.Fields)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Payload:  data,
		Options:  opts,
		CacheKey: CacheKey(data, opts),
	}

	if s.cache != nil {
		png, ok, errCache := s.cache.Get(ctx, res.CacheKey)
		if errCache != nil {
			s.logger.Warnf("render cache lookup failed: %v", errCache)
		}
		if ok {
			res.PNG = png
			res.Cached = true
			return res, nil
		}
	}

	logoImage := s.loadLogo(opts.Logo)
	if logoImage == nil && opts.Logo != logo.None {
		// stored as the plain code so a later render can still pick up the logo
		drawn := opts
		drawn.Logo = logo.None
		res.CacheKey = CacheKey(data, drawn)
	}

	fg, _ := qr.ParseColor(opts.Foreground)
	bg, _ := qr.ParseColor(opts.Background)
	cfg := qr.Config{
		Content:    data,
		Size:       opts.Size,
		Foreground: fg,
		Background: bg,
		Level:      opts.Level,
		Style:      opts.Style,
		Logo:       logoImage,
	}

	res.PNG, err = cfg.Generate()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if errCache := s.cache.Set(ctx, res.CacheKey, res.PNG, s.opts.CacheTTL); errCache != nil {
			s.logger.Warnf("render cache store failed: %v", errCache)
		}
	}

	return res, nil
}

// loadLogo returns nil when there is no logo or it cannot be loaded; the
// code is then rendered without one.
func (s *QrService) loadLogo(l logo.Logo) image.Image {
	if l == logo.None || s.logos == nil {
		return nil
	}
	img, err := s.logos.Load(l)
	if err != nil {
		s.logger.Warnf("rendering without logo %s: %v", l, err)
		return nil
	}
	return img
}

// CacheKey identifies a render by payload and options. The payload only
// enters the key through its hash.
func CacheKey(data string, opts Options) string {
	h := sha256.New()
	for _, part := range []string{
		data,
		strconv.Itoa(opts.Size),
		opts.Foreground,
		opts.Background,
		string(opts.Level),
		string(opts.Style),
		string(opts.Logo),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// AttachFileID records the Telegram file id a code was uploaded as.
func (s *QrService) AttachFileID(ctx context.Context, id, fileID string) error {
	return s.storage.SetFileID(ctx, id, fileID)
}

// History returns the newest codes of a user.
func (s *QrService) History(ctx context.Context, userID int64, limit int) ([]dto.QRHistoryItem, error) {
	codes, err := s.storage.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.QRHistoryItem, 0, len(codes))
	for _, code := range codes {
		items = append(items, dto.QRHistoryItem{
			ID:          code.ID,
			ContentType: code.ContentType,
			Size:        code.Size,
			Style:       code.Style,
			Logo:        code.Logo,
			HasFile:     code.FileID != "",
			CreatedAt:   code.CreatedAt.In(location.Location()),
		})
	}
	return items, nil
}

// Resend returns what is needed to send a history entry again: the stored
// Telegram file id if there is one, otherwise the cached PNG.
func (s *QrService) Resend(ctx context.Context, userID int64, id string) (fileID string, png []byte, err error) {
	code, err := s.storage.Get(ctx, userID, id)
	if err != nil {
		return "", nil, err
	}
	if code.FileID != "" {
		return code.FileID, nil, nil
	}
	if s.cache == nil || code.CacheKey == "" {
		return "", nil, errorz.ErrNoFile
	}

	png, ok, err := s.cache.Get(ctx, code.CacheKey)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, errorz.ErrRenderExpired
	}
	return "", png, nil
}

// Last returns the PNG of the user's most recent render.
func (s *QrService) Last(ctx context.Context, userID int64) ([]byte, error) {
	if s.cache == nil {
		return nil, errorz.ErrRenderExpired
	}
	key, err := s.cache.Last(ctx, userID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errorz.ErrRenderExpired
	}

	png, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorz.ErrRenderExpired
	}
	return png, nil
}

// Stats counts generated codes, in total and since midnight.
func (s *QrService) Stats(ctx context.Context) (total, today int64, err error) {
	total, err = s.storage.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	today, err = s.storage.CountSince(ctx, location.StartOfDay(time.Now()))
	if err != nil {
		return 0, 0, err
	}
	return total, today, nil
}

// IsNotFound reports whether err means a missing user or history entry.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
