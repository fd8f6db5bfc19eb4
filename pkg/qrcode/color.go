package qr

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor reads "#rrggbb" or "#rgb"; the leading '#' is optional.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return nil, fmt.Errorf("%w: color %q", ErrInvalidOptions, s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: color %q", ErrInvalidOptions, s)
	}

	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// Contrast is the difference in CIE lightness of two colours, from 0 (same
// lightness) to 1 (black on white).
func Contrast(a, b color.Color) float64 {
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	la, _, _ := ca.Lab()
	lb, _, _ := cb.Lab()
	if la > lb {
		return la - lb
	}
	return lb - la
}
