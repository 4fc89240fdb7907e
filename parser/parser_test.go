package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByExtension(t *testing.T) {
	p, err := Lookup("doc.md")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownParser{}, p)

	p, err = Lookup("page.HTML")
	require.NoError(t, err)
	assert.IsType(t, &HTMLParser{}, p)
}

func TestLookupUnsupported(t *testing.T) {
	_, err := Lookup("slides.pptx")

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".pptx", unsupported.Ext)
	assert.Contains(t, unsupported.UserMessage(), ".md")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.md"))
	assert.True(t, Supported("a.markdown"))
	assert.True(t, Supported("a.htm"))
	assert.False(t, Supported("a.docx"))
	assert.False(t, Supported("noext"))
}

func TestExtensionsSorted(t *testing.T) {
	exts := Extensions()
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".html")
	assert.IsIncreasing(t, exts)
}
