package parser

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLParser accepts prebuilt HTML, e.g. content authored elsewhere and
// styled separately. The body content is used as the fragment.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser { return &HTMLParser{} }

func init() {
	p := NewHTMLParser()
	Register(".html", p)
	Register(".htm", p)
}

func (p *HTMLParser) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func (p *HTMLParser) Parse(path string) (*ParsedContent, error) {
	slog.Info("parsing html", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Reason: err.Error(), Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, &ReadError{Path: path, Reason: "html parse failed: " + err.Error(), Err: err}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	// goquery wraps fragments in html/body; the body inner HTML is the
	// fragment either way.
	content, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(content) == "" {
		content = string(data)
	}

	var images []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			images = append(images, src)
		}
	})

	slog.Info("html parsed", "title", title, "images", len(images))

	return &ParsedContent{
		Title:   title,
		Content: content,
		Images:  images,
		Metadata: map[string]string{
			"source_file": path,
			"author":      "",
			"date":        "",
		},
	}, nil
}
