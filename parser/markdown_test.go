package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMarkdownParse(t *testing.T) {
	path := writeDoc(t, "article.md", "# 我的标题\n\nBody text.\n\n## Second\n\nMore.\n")

	parsed, err := NewMarkdownParser().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "我的标题", parsed.Title)
	assert.Contains(t, parsed.Content, "Body text.")
	assert.Contains(t, parsed.Content, "<h2")
	assert.Equal(t, path, parsed.Metadata["source_file"])
	require.Len(t, parsed.TOC, 2)
	assert.Equal(t, 1, parsed.TOC[0].Level)
	assert.Equal(t, "我的标题", parsed.TOC[0].Text)
	assert.Equal(t, 2, parsed.TOC[1].Level)
}

func TestMarkdownParseTitleFallsBackToFilename(t *testing.T) {
	path := writeDoc(t, "my-article.md", "Just a paragraph, no heading.\n")

	parsed, err := NewMarkdownParser().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "my-article", parsed.Title)
}

func TestMarkdownParseGFMTable(t *testing.T) {
	path := writeDoc(t, "t.md", "# T\n\n| A | B |\n|---|---|\n| 1 | 2 |\n")

	parsed, err := NewMarkdownParser().Parse(path)
	require.NoError(t, err)

	assert.Contains(t, parsed.Content, "<table>")
	assert.Contains(t, parsed.Content, "<th>A</th>")
}

func TestMarkdownParseImageRefs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "# T\n\n![remote](https://example.com/a.png)\n\n![local](./pics/b.png)\n\n![abs](/srv/c.png)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	parsed, err := NewMarkdownParser().Parse(path)
	require.NoError(t, err)

	require.Len(t, parsed.Images, 3)
	assert.Equal(t, "https://example.com/a.png", parsed.Images[0])
	assert.Equal(t, filepath.Join(dir, "pics", "b.png"), parsed.Images[1])
	assert.Equal(t, "/srv/c.png", parsed.Images[2])
}

func TestMarkdownParseMissingFile(t *testing.T) {
	_, err := NewMarkdownParser().Parse("/nonexistent/nope.md")

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Contains(t, readErr.UserMessage(), "/nonexistent/nope.md")
}

func TestMarkdownSupports(t *testing.T) {
	p := NewMarkdownParser()
	assert.True(t, p.Supports("a.md"))
	assert.True(t, p.Supports("A.MARKDOWN"))
	assert.False(t, p.Supports("a.txt"))
}
