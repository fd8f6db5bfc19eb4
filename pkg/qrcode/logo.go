package qr

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

const (
	// LogoScale is the logo side relative to the image side.
	LogoScale = 0.12
	// LogoPadding is the extra diameter of the white badge behind the logo.
	LogoPadding = 8
)

// drawLogo puts logo in a white circular badge with a thin grey outline at
// the centre of dc.
func drawLogo(dc *gg.Context, logo image.Image) {
	size := math.Min(float64(dc.Width()), float64(dc.Height()))
	logoSize := int(math.Floor(size * LogoScale))
	if logoSize < 1 {
		return
	}

	cx := float64(dc.Width()) / 2
	cy := float64(dc.Height()) / 2

	dc.DrawCircle(cx, cy, float64(logoSize+LogoPadding)/2)
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor("#e0e0e0")
	dc.SetLineWidth(1)
	dc.Stroke()

	resized := resize.Resize(uint(logoSize), uint(logoSize), logo, resize.Lanczos3)
	x := (dc.Width() - logoSize) / 2
	y := (dc.Height() - logoSize) / 2
	dc.DrawImage(resized, x, y)
}
