package qr

import "image/color"

// Default matches the generator's initial form state: 300px, black on
// white, highest error correction so a logo can cover the centre.
var Default = Config{
	Size:       300,
	Foreground: color.RGBA{R: 0, G: 0, B: 0, A: 255},
	Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	Level:      LevelH,
	Style:      StyleSquare,
}
