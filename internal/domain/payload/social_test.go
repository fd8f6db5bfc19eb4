package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocialPlatformProfileURL(t *testing.T) {
	want := map[SocialPlatform]string{
		Facebook:  "https://facebook.com/someone",
		Instagram: "https://instagram.com/someone",
		LinkedIn:  "https://linkedin.com/in/someone",
		Twitter:   "https://twitter.com/someone",
		YouTube:   "https://youtube.com/@someone",
		TikTok:    "https://tiktok.com/@someone",
	}

	assert.Len(t, SocialPlatforms(), len(want))
	for _, p := range SocialPlatforms() {
		assert.True(t, p.Valid())

		got, ok := p.ProfileURL("@someone")
		assert.True(t, ok)
		assert.Equal(t, want[p], got)

		got, ok = p.ProfileURL("someone")
		assert.True(t, ok)
		assert.Equal(t, want[p], got)
	}
}

func TestSocialPlatformUnknown(t *testing.T) {
	got, ok := SocialPlatform("Facebook").ProfileURL("x")
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.False(t, SocialPlatform("").Valid())
}
