package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeComponent(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"plain":            "plain",
		"a b":              "a%20b",
		"a+b":              "a%2Bb",
		"-_.!~*'()":        "-_.!~*'()",
		"#$&+,/:;=?@":      "%23%24%26%2B%2C%2F%3A%3B%3D%3F%40",
		"100%":             "100%25",
		"é":                "%C3%A9",
		"日本":               "%E6%97%A5%E6%9C%AC",
		"😀":                "%F0%9F%98%80",
		"line\r\nbreak":    "line%0D%0Abreak",
		"[brackets]{}|\\^": "%5Bbrackets%5D%7B%7D%7C%5C%5E",
	}

	for in, want := range tests {
		assert.Equal(t, want, EscapeComponent(in), "input %q", in)
	}
}
