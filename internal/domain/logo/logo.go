// Package logo is the fixed catalogue of centre logos a QR code can carry.
package logo

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
)

var ErrUnknownLogo = errors.New("unknown logo")

type Logo string

const (
	None      Logo = ""
	Facebook  Logo = "facebook"
	Instagram Logo = "instagram"
	LinkedIn  Logo = "linkedin"
	Meetup    Logo = "meetup"
	Website   Logo = "website"
	Discord   Logo = "discord"
	Email     Logo = "email"
	Phone     Logo = "phone"
	WiFi      Logo = "wifi"
	Twitter   Logo = "twitter"
	YouTube   Logo = "youtube"
	TikTok    Logo = "tiktok"
)

// All returns every logo in picker order. None is not included.
func All() []Logo {
	return []Logo{
		Facebook,
		Instagram,
		LinkedIn,
		Meetup,
		Website,
		Discord,
		Email,
		Phone,
		WiFi,
		Twitter,
		YouTube,
		TikTok,
	}
}

// Parse looks a logo up by name, ignoring case. "" and "none" give None.
func Parse(name string) (Logo, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return None, nil
	}
	l := Logo(name)
	if !l.Valid() {
		return None, fmt.Errorf("%w: %q", ErrUnknownLogo, name)
	}
	return l, nil
}

// Valid reports whether l is in the catalogue.
func (l Logo) Valid() bool {
	switch l {
	case Facebook, Instagram, LinkedIn, Meetup, Website, Discord,
		Email, Phone, WiFi, Twitter, YouTube, TikTok:
		return true
	}
	return false
}

// File is the image file name of l inside the logos directory.
func (l Logo) File() string {
	return string(l) + ".png"
}

// Loader reads logo images from a directory.
type Loader struct {
	Dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load decodes the image for l. None yields a nil image and no error.
func (ld *Loader) Load(l Logo) (image.Image, error) {
	if l == None {
		return nil, nil
	}
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogo, string(l))
	}

	img, err := gg.LoadImage(filepath.Join(ld.Dir, l.File()))
	if err != nil {
		return nil, fmt.Errorf("load logo %s: %w", l, err)
	}
	return img, nil
}
