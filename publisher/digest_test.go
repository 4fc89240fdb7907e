package publisher

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractDigestStripsMarkup(t *testing.T) {
	html := `<section><h1 style="x">Title</h1><p style="y">First sentence.</p></section>`

	digest := ExtractDigest(html, DigestLimit)

	assert.Equal(t, "Title First sentence.", digest)
}

func TestExtractDigestCollapsesWhitespace(t *testing.T) {
	digest := ExtractDigest("<p>a\n\n  b\t c</p>", DigestLimit)
	assert.Equal(t, "a b c", digest)
}

func TestExtractDigestByteLimit(t *testing.T) {
	long := strings.Repeat("x", 300)
	digest := ExtractDigest("<p>"+long+"</p>", DigestLimit)
	assert.Len(t, digest, DigestLimit)
}

func TestExtractDigestNeverSplitsRunes(t *testing.T) {
	// The leading ASCII byte shifts the 3-byte characters so the limit
	// lands mid-rune.
	long := "a" + strings.Repeat("中", 100)
	digest := ExtractDigest("<p>"+long+"</p>", DigestLimit)

	assert.True(t, utf8.ValidString(digest))
	assert.LessOrEqual(t, len(digest), DigestLimit)
	assert.NotEmpty(t, digest)
}

func TestExtractDigestShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "short", ExtractDigest("short", DigestLimit))
	assert.Equal(t, "", ExtractDigest("", DigestLimit))
}
