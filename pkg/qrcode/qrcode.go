package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
)

// MaxSize is the largest image side Generate accepts, in pixels.
const MaxSize = 4096

var (
	ErrInvalidOptions = errors.New("invalid qr options")
	// ErrEncode means the content does not fit in any symbol version.
	ErrEncode = errors.New("cannot encode content")
)

// ErrorCorrection is the QR error correction level.
type ErrorCorrection string

const (
	LevelL ErrorCorrection = "L"
	LevelM ErrorCorrection = "M"
	LevelQ ErrorCorrection = "Q"
	LevelH ErrorCorrection = "H"
)

// Levels lists the correction levels from least to most redundant.
func Levels() []ErrorCorrection {
	return []ErrorCorrection{LevelL, LevelM, LevelQ, LevelH}
}

func (l ErrorCorrection) recoveryLevel() (qrcode.RecoveryLevel, bool) {
	switch l {
	case LevelL:
		return qrcode.Low, true
	case LevelM:
		return qrcode.Medium, true
	case LevelQ:
		return qrcode.High, true
	case LevelH, "":
		return qrcode.Highest, true
	}
	return 0, false
}

// Valid reports whether l is a known level. Empty means H.
func (l ErrorCorrection) Valid() bool {
	_, ok := l.recoveryLevel()
	return ok
}

// Style controls how dark modules are drawn.
type Style string

const (
	StyleSquare Style = "square"
	StyleDots   Style = "dots"
)

// Styles lists the supported module styles.
func Styles() []Style {
	return []Style{StyleSquare, StyleDots}
}

// Valid reports whether s is a known style. Empty means square.
func (s Style) Valid() bool {
	switch s {
	case StyleSquare, StyleDots, "":
		return true
	}
	return false
}

type Config struct {
	Content    string
	Size       int // width and height of the image
	Foreground color.Color
	Background color.Color
	Level      ErrorCorrection
	Style      Style
	Logo       image.Image // drawn in a badge at the centre when set
}

// Generate renders the QR code and returns it as PNG bytes.
func (c *Config) Generate() ([]byte, error) {
	img, err := c.Image()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Image renders the QR code. The image is Size pixels square unless the
// symbol needs more pixels than that, in which case it grows to fit.
func (c *Config) Image() (image.Image, error) {
	qr, err := c.symbol()
	if err != nil {
		return nil, err
	}

	var img image.Image
	switch c.Style {
	case StyleDots:
		img = c.drawDots(qr.Bitmap())
	default:
		img = qr.Image(c.Size)
	}

	if c.Logo != nil {
		dc := gg.NewContextForImage(img)
		drawLogo(dc, c.Logo)
		img = dc.Image()
	}

	return img, nil
}

// Terminal renders the symbol with half-block characters, two modules per
// text row.
func (c *Config) Terminal() (string, error) {
	qr, err := c.symbol()
	if err != nil {
		return "", err
	}
	return qr.ToSmallString(false), nil
}

func (c *Config) symbol() (*qrcode.QRCode, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	level, _ := c.Level.recoveryLevel()
	qr, err := qrcode.New(c.Content, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	qr.ForegroundColor = c.foreground()
	qr.BackgroundColor = c.background()

	return qr, nil
}

func (c *Config) validate() error {
	if c.Size <= 0 || c.Size > MaxSize {
		return fmt.Errorf("%w: size %d out of range 1..%d", ErrInvalidOptions, c.Size, MaxSize)
	}
	if !c.Level.Valid() {
		return fmt.Errorf("%w: error correction level %q", ErrInvalidOptions, c.Level)
	}
	if !c.Style.Valid() {
		return fmt.Errorf("%w: style %q", ErrInvalidOptions, c.Style)
	}
	return nil
}

func (c *Config) foreground() color.Color {
	if c.Foreground == nil {
		return color.Black
	}
	return c.Foreground
}

func (c *Config) background() color.Color {
	if c.Background == nil {
		return color.White
	}
	return c.Background
}

// drawDots draws every dark module as a circle. Finder patterns stay square
// so scanners still lock on to them.
func (c *Config) drawDots(bitmap [][]bool) image.Image {
	modules := len(bitmap)
	size := c.Size
	if size < modules {
		size = modules
	}
	step := float64(size) / float64(modules)

	dc := gg.NewContext(size, size)
	dc.SetColor(c.background())
	dc.Clear()

	dc.SetColor(c.foreground())
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			px := float64(x) * step
			py := float64(y) * step
			if inFinder(x, y, modules) {
				dc.DrawRectangle(px, py, step, step)
			} else {
				dc.DrawCircle(px+step/2, py+step/2, step*0.45)
			}
		}
	}
	dc.Fill()

	return dc.Image()
}

// quietZone is the border go-qrcode adds around the symbol, in modules.
const quietZone = 4

func inFinder(x, y, modules int) bool {
	x -= quietZone
	y -= quietZone
	symbol := modules - 2*quietZone
	if x < 0 || y < 0 || x >= symbol || y >= symbol {
		return false
	}

	left := x < 7
	right := x >= symbol-7
	top := y < 7
	bottom := y >= symbol-7
	return (left && top) || (right && top) || (left && bottom)
}
