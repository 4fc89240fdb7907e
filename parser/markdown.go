package parser

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	titleRe   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	headingRe = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	mdImageRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
)

// MarkdownParser renders Markdown (GFM flavor, tables included) to an HTML
// fragment.
type MarkdownParser struct {
	md goldmark.Markdown
}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

func init() {
	p := NewMarkdownParser()
	Register(".md", p)
	Register(".markdown", p)
}

func (p *MarkdownParser) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func (p *MarkdownParser) Parse(path string) (*ParsedContent, error) {
	slog.Info("parsing markdown", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Reason: err.Error(), Err: err}
	}
	source := string(data)

	var buf bytes.Buffer
	if err := p.md.Convert(data, &buf); err != nil {
		return nil, &ReadError{Path: path, Reason: "markdown conversion failed: " + err.Error(), Err: err}
	}

	title := extractTitle(source)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	images := extractImageRefs(source, filepath.Dir(path))
	toc := extractTOC(source)

	slog.Info("markdown parsed", "title", title, "images", len(images))

	return &ParsedContent{
		Title:   title,
		Content: buf.String(),
		Images:  images,
		Metadata: map[string]string{
			"source_file": path,
			"author":      "",
			"date":        "",
		},
		TOC: toc,
	}, nil
}

// extractTitle returns the first level-one heading, if any.
func extractTitle(source string) string {
	if m := titleRe.FindStringSubmatch(source); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractImageRefs collects ![alt](target) targets in first-seen order.
// Relative targets resolve against the document directory; remote URLs stay
// as written.
func extractImageRefs(source, baseDir string) []string {
	var images []string
	for _, m := range mdImageRe.FindAllStringSubmatch(source, -1) {
		target := strings.TrimSpace(m[1])
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			images = append(images, target)
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}
		images = append(images, target)
	}
	return images
}

func extractTOC(source string) []Heading {
	var toc []Heading
	for _, m := range headingRe.FindAllStringSubmatch(source, -1) {
		toc = append(toc, Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
	}
	return toc
}
