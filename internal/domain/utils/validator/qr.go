package validator

import (
	"strconv"
	"strings"

	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	"github.com/spf13/viper"
)

const (
	defaultMinSize = 100
	defaultMaxSize = 2000
	// MinContrast is the smallest lightness difference between foreground
	// and background that still scans reliably.
	MinContrast = 0.4
)

// SizeBounds returns the allowed image side in pixels from settings.qr.
func SizeBounds() (minSize, maxSize int) {
	minSize = viper.GetInt("settings.qr.min-size")
	if minSize <= 0 {
		minSize = defaultMinSize
	}
	maxSize = viper.GetInt("settings.qr.max-size")
	if maxSize <= 0 || maxSize > qr.MaxSize {
		maxSize = defaultMaxSize
	}
	return minSize, maxSize
}

func QRSize(size string, _ map[string]interface{}) bool {
	n, err := strconv.Atoi(strings.TrimSpace(size))
	if err != nil {
		return false
	}
	minSize, maxSize := SizeBounds()
	return n >= minSize && n <= maxSize
}

func HexColor(hex string, _ map[string]interface{}) bool {
	_, err := qr.ParseColor(hex)
	return err == nil
}

// ColorPair checks that a colour parses and contrasts enough with
// params["other"], the colour it will be drawn against.
func ColorPair(hex string, params map[string]interface{}) bool {
	c, err := qr.ParseColor(hex)
	if err != nil {
		return false
	}
	other, ok := params["other"].(string)
	if !ok {
		return true
	}
	o, err := qr.ParseColor(other)
	if err != nil {
		return true
	}
	return qr.Contrast(c, o) >= MinContrast
}

func Level(level string, _ map[string]interface{}) bool {
	return level != "" && qr.ErrorCorrection(strings.ToUpper(level)).Valid()
}

func Style(style string, _ map[string]interface{}) bool {
	return style != "" && qr.Style(strings.ToLower(style)).Valid()
}

func Logo(name string, _ map[string]interface{}) bool {
	_, err := logo.Parse(name)
	return err == nil
}
