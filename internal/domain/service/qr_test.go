package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/qrstudio/qrstudio-bot/internal/domain/common/errorz"
	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
	"github.com/qrstudio/qrstudio-bot/pkg/logger"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type qrFixture struct {
	svc   *QrService
	users *memUsers
	codes *memCodes
	cache *memCache
	logos *stubLogos
}

func newQrFixture(t *testing.T) *qrFixture {
	t.Helper()

	f := &qrFixture{
		users: newMemUsers(),
		codes: &memCodes{now: time.Now()},
		cache: newMemCache(),
		logos: &stubLogos{},
	}
	f.svc = NewQrService(f.codes, f.cache, f.logos, f.users, logger.Nop(), QrServiceOptions{
		Defaults: qr.Default,
		MinSize:  100,
		MaxSize:  1000,
		CacheTTL: time.Hour,
	})

	us := NewUserService(f.users, qr.Default, 0.4)
	_, err := us.Create(context.Background(), entity.User{ID: 1, Username: "jane"})
	require.NoError(t, err)

	return f
}

func pngSize(t *testing.T, data []byte) int {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx()
}

func urlRequest(url string) dto.QRRequest {
	return dto.QRRequest{Type: payload.TypeURL, Fields: payload.Fields{payload.FieldURL: url}}
}

func TestRenderUsesDefaults(t *testing.T) {
	f := newQrFixture(t)

	res, err := f.svc.Render(context.Background(), urlRequest("example.com"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", res.Payload)
	assert.Equal(t, 300, pngSize(t, res.PNG))
	assert.Equal(t, qr.LevelH, res.Options.Level)
	assert.Equal(t, "#000000", res.Options.Foreground)
	assert.Empty(t, res.ID)
	assert.False(t, res.Cached)

	again, err := f.svc.Render(context.Background(), urlRequest("example.com"))
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, res.PNG, again.PNG)
}

func TestRenderValidation(t *testing.T) {
	f := newQrFixture(t)
	ctx := context.Background()

	_, err := f.svc.Render(ctx, dto.QRRequest{Type: payload.TypeText, Fields: payload.Fields{payload.FieldText: " "}})
	assert.ErrorIs(t, err, payload.ErrMissingInput)

	req := urlRequest("x.com")
	req.Size = 50
	_, err = f.svc.Render(ctx, req)
	assert.ErrorIs(t, err, qr.ErrInvalidOptions)

	req = urlRequest("x.com")
	req.Foreground = "blue"
	_, err = f.svc.Render(ctx, req)
	assert.ErrorIs(t, err, qr.ErrInvalidOptions)

	req = urlRequest("x.com")
	req.Logo = "myspace"
	_, err = f.svc.Render(ctx, req)
	assert.ErrorIs(t, err, logo.ErrUnknownLogo)

	req = urlRequest("x.com")
	req.Level = "z"
	_, err = f.svc.Render(ctx, req)
	assert.ErrorIs(t, err, qr.ErrInvalidOptions)
}

func TestRenderLogoFailureFallsBack(t *testing.T) {
	f := newQrFixture(t)

	req := urlRequest("x.com")
	req.Logo = "youtube"
	res, err := f.svc.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []logo.Logo{logo.YouTube}, f.logos.calls)
	assert.Equal(t, logo.YouTube, res.Options.Logo)
	assert.NotEmpty(t, res.PNG)
}

func TestRenderRetriesLogoAfterFailure(t *testing.T) {
	f := newQrFixture(t)
	ctx := context.Background()

	plain, err := f.svc.Render(ctx, urlRequest("x.com"))
	require.NoError(t, err)

	req := urlRequest("x.com")
	req.Logo = "website"
	first, err := f.svc.Render(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, plain.CacheKey, first.CacheKey)

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	f.logos.img = img

	second, err := f.svc.Render(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Len(t, f.logos.calls, 2)
	assert.NotEqual(t, first.PNG, second.PNG)

	third, err := f.svc.Render(ctx, req)
	require.NoError(t, err)
	assert.True(t, third.Cached)
	assert.Equal(t, second.PNG, third.PNG)
	assert.Len(t, f.logos.calls, 2)
}

func TestTerminalIgnoresColours(t *testing.T) {
	f := newQrFixture(t)

	req := urlRequest("x.com")
	req.Foreground = "blue"
	req.Style = "stars"
	req.Logo = "youtube"
	text, err := f.svc.Terminal(req)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Empty(t, f.logos.calls)

	req.Level = "z"
	_, err = f.svc.Terminal(req)
	assert.ErrorIs(t, err, qr.ErrInvalidOptions)
}

func TestRenderWithLogo(t *testing.T) {
	f := newQrFixture(t)
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	f.logos.img = img

	plain, err := f.svc.Render(context.Background(), urlRequest("x.com"))
	require.NoError(t, err)

	req := urlRequest("x.com")
	req.Logo = "website"
	withLogo, err := f.svc.Render(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, plain.CacheKey, withLogo.CacheKey)
	assert.NotEqual(t, plain.PNG, withLogo.PNG)
}

func TestGenerateAppliesUserSettings(t *testing.T) {
	f := newQrFixture(t)
	ctx := context.Background()

	us := NewUserService(f.users, qr.Default, 0.4)
	_, err := us.SetSize(ctx, 1, 400)
	require.NoError(t, err)
	_, err = us.SetStyle(ctx, 1, "dots")
	require.NoError(t, err)

	res, err := f.svc.Generate(ctx, 1, urlRequest("example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	assert.Equal(t, 400, pngSize(t, res.PNG))
	assert.Equal(t, qr.StyleDots, res.Options.Style)

	// request fields win over user settings
	req := urlRequest("example.com")
	req.Size = 200
	res2, err := f.svc.Generate(ctx, 1, req)
	require.NoError(t, err)
	assert.Equal(t, 200, pngSize(t, res2.PNG))

	history, err := f.svc.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, res2.ID, history[0].ID)
	assert.Equal(t, "url", history[0].ContentType)
	assert.False(t, history[0].HasFile)

	last, err := f.svc.Last(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, res2.PNG, last)
}

func TestGenerateUnknownUser(t *testing.T) {
	f := newQrFixture(t)
	_, err := f.svc.Generate(context.Background(), 99, urlRequest("x.com"))
	assert.True(t, IsNotFound(err))
}

func TestResend(t *testing.T) {
	f := newQrFixture(t)
	ctx := context.Background()

	res, err := f.svc.Generate(ctx, 1, urlRequest("example.com"))
	require.NoError(t, err)

	fileID, data, err := f.svc.Resend(ctx, 1, res.ID)
	require.NoError(t, err)
	assert.Empty(t, fileID)
	assert.Equal(t, res.PNG, data)

	require.NoError(t, f.svc.AttachFileID(ctx, res.ID, "tg-file"))
	fileID, data, err = f.svc.Resend(ctx, 1, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "tg-file", fileID)
	assert.Nil(t, data)

	_, _, err = f.svc.Resend(ctx, 2, res.ID)
	assert.True(t, IsNotFound(err))

	res2, err := f.svc.Generate(ctx, 1, urlRequest("other.com"))
	require.NoError(t, err)
	delete(f.cache.renders, res2.CacheKey)
	_, _, err = f.svc.Resend(ctx, 1, res2.ID)
	assert.ErrorIs(t, err, errorz.ErrRenderExpired)
}

func TestLastWithoutRenders(t *testing.T) {
	f := newQrFixture(t)
	_, err := f.svc.Last(context.Background(), 1)
	assert.ErrorIs(t, err, errorz.ErrRenderExpired)
}

func TestStats(t *testing.T) {
	f := newQrFixture(t)
	ctx := context.Background()

	for _, u := range []string{"a.com", "b.com"} {
		_, err := f.svc.Generate(ctx, 1, urlRequest(u))
		require.NoError(t, err)
	}

	total, today, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.LessOrEqual(t, today, total)
}

func TestTerminal(t *testing.T) {
	f := newQrFixture(t)

	out, err := f.svc.Terminal(urlRequest("example.com"))
	require.NoError(t, err)
	assert.Contains(t, out, "█")

	_, err = f.svc.Terminal(dto.QRRequest{Type: "fax"})
	assert.ErrorIs(t, err, payload.ErrUnknownContentType)
}

func TestCacheKey(t *testing.T) {
	base := Options{Size: 300, Foreground: "#000000", Background: "#ffffff", Level: qr.LevelH, Style: qr.StyleSquare}

	k1 := CacheKey("a", base)
	assert.Len(t, k1, 64)
	assert.Equal(t, k1, CacheKey("a", base))
	assert.NotContains(t, k1, "a.com")

	other := base
	other.Size = 301
	assert.NotEqual(t, k1, CacheKey("a", other))
	assert.NotEqual(t, k1, CacheKey("b", base))
}

func TestResolveNormalisesColours(t *testing.T) {
	f := newQrFixture(t)
	opts, err := f.svc.Resolve(dto.QRRequest{Foreground: "F00", Level: "m", Style: "DOTS"}, f.svc.Defaults())
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", opts.Foreground)
	assert.Equal(t, qr.LevelM, opts.Level)
	assert.Equal(t, qr.StyleDots, opts.Style)
}
