package textnorm

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var normalizedShape = regexp.MustCompile(`^([a-z0-9]([a-z0-9 ]*[a-z0-9])?)?$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Bitcoin", "bitcoin"},
		{"punctuation", "AI & Machine-Learning!!", "ai  machinelearning"},
		{"url", "check https://example.com/x?y=1 now", "check  now"},
		{"www", "visit www.example.org today", "visit  today"},
		{"uppercase url", "HTTPS://EXAMPLE.COM rocks", "rocks"},
		{"bare http kept", "http", "http"},
		{"whitespace", "  \tSolana\n ", "solana"},
		{"unicode", "café naïve 🚀", "caf nave"},
		{"fragment joins into url", "h.ttpx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_OutputShapeAndIdempotence(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Hello, World!",
		"NFTs are SO back 🔥 https://t.co/abc",
		"www",
		"wwwx",
		"w.w.w.example",
		"Ht-tpS://x",
		"\x00\x01 mixed\tcontrol\r\nchars ",
		"ALL CAPS 123",
		"  leading and trailing  ",
	}

	for _, in := range inputs {
		out := Normalize(in)
		assert.Regexp(t, normalizedShape, out, "input %q", in)
		assert.Equal(t, out, Normalize(out), "not idempotent for %q", in)
	}
}
