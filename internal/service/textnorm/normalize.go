// Package textnorm cleans short text snippets before sentiment scoring.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)http\S+|www\S+`)
	disallowedRune = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
)

// Normalize strips URLs and every character outside ASCII alphanumerics and
// space, lowercases, and trims. The pass repeats until the text stops
// changing, since removing characters can join fragments into a new URL
// token ("h.ttpx" -> "httpx").
func Normalize(text string) string {
	for {
		next := pass(text)
		if next == text {
			return next
		}
		text = next
	}
}

func pass(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = disallowedRune.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ToLower(text))
}
