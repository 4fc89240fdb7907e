package publisher

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DigestLimit is the maximum digest length accepted by the draft API.
const DigestLimit = 120

var tagRe = regexp.MustCompile(`<[^>]+>`)

// ExtractDigest strips markup from the article body and returns the leading
// text, cut at limit bytes without splitting a rune.
func ExtractDigest(html string, limit int) string {
	text := tagRe.ReplaceAllString(html, " ")
	text = strings.Join(strings.Fields(text), " ")

	if len(text) <= limit {
		return text
	}

	cut := text[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return strings.TrimSpace(cut)
}
