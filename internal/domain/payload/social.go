package payload

import "strings"

// SocialPlatform is a network with a fixed public profile URL.
type SocialPlatform string

const (
	Facebook  SocialPlatform = "facebook"
	Instagram SocialPlatform = "instagram"
	LinkedIn  SocialPlatform = "linkedin"
	Twitter   SocialPlatform = "twitter"
	YouTube   SocialPlatform = "youtube"
	TikTok    SocialPlatform = "tiktok"
)

// SocialPlatforms returns the supported platforms in menu order.
func SocialPlatforms() []SocialPlatform {
	return []SocialPlatform{Facebook, Instagram, LinkedIn, Twitter, YouTube, TikTok}
}

// profilePrefix is the canonical profile URL with the username left off.
func (p SocialPlatform) profilePrefix() (string, bool) {
	switch p {
	case Facebook:
		return "https://facebook.com/", true
	case Instagram:
		return "https://instagram.com/", true
	case LinkedIn:
		return "https://linkedin.com/in/", true
	case Twitter:
		return "https://twitter.com/", true
	case YouTube:
		return "https://youtube.com/@", true
	case TikTok:
		return "https://tiktok.com/@", true
	}
	return "", false
}

// Valid reports whether p is a known platform.
func (p SocialPlatform) Valid() bool {
	_, ok := p.profilePrefix()
	return ok
}

// ProfileURL fills the platform template with username. A single leading
// "@" is dropped first.
func (p SocialPlatform) ProfileURL(username string) (string, bool) {
	prefix, ok := p.profilePrefix()
	if !ok {
		return "", false
	}
	return prefix + strings.TrimPrefix(username, "@"), true
}
