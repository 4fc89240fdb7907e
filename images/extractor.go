// Package images discovers image references in article sources, materializes
// them locally, uploads them to the WeChat media store, and rewrites the HTML
// to the returned CDN URLs.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Kind classifies where an image reference points.
type Kind string

const (
	KindRemote   Kind = "remote"
	KindAbsolute Kind = "absolute"
	KindRelative Kind = "relative"
)

// Reference is one discovered image. LocalPath, Uploaded, WechatURL and
// MediaID are filled in as preparation and upload proceed; the record is
// mutated in place and discarded once the HTML rewrite is done.
type Reference struct {
	Path      string
	Alt       string
	Kind      Kind
	Index     int
	LocalPath string
	Uploaded  bool
	WechatURL string
	MediaID   string
}

var markdownImageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// Extractor finds image references and downloads remote ones into a temp
// directory.
type Extractor struct {
	tempDir    string
	httpClient *http.Client
}

// NewExtractor creates the temp directory if needed.
func NewExtractor(tempDir string) (*Extractor, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Extractor{
		tempDir:    tempDir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func classify(ref string) Kind {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return KindRemote
	case strings.HasPrefix(ref, "/"):
		return KindAbsolute
	default:
		return KindRelative
	}
}

// ExtractFromMarkdown scans ![alt](target) constructs in first-seen order.
func (e *Extractor) ExtractFromMarkdown(content string) []*Reference {
	var refs []*Reference
	for i, m := range markdownImageRe.FindAllStringSubmatch(content, -1) {
		target := strings.TrimSpace(m[2])
		refs = append(refs, &Reference{
			Path:  target,
			Alt:   m[1],
			Kind:  classify(target),
			Index: i,
		})
	}
	slog.Info("extracted images from markdown", "count", len(refs))
	return refs
}

// ExtractFromHTML collects img src attributes in document order.
func (e *Extractor) ExtractFromHTML(content string) ([]*Reference, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var refs []*Reference
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		alt, _ := s.Attr("alt")
		refs = append(refs, &Reference{
			Path:  src,
			Alt:   alt,
			Kind:  classify(src),
			Index: len(refs),
		})
	})

	slog.Info("extracted images from html", "count", len(refs))
	return refs, nil
}

// ResolveLocalPath maps a non-remote reference to a filesystem path.
// Relative references resolve against basePath, the source document's
// directory. Serialized src attributes percent-encode spaces and non-ASCII
// filenames; the filesystem wants the decoded form.
func (e *Extractor) ResolveLocalPath(ref *Reference, basePath string) string {
	p := ref.Path
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	switch ref.Kind {
	case KindAbsolute:
		return p
	case KindRelative:
		if basePath == "" {
			basePath = "."
		}
		return filepath.Join(basePath, p)
	default:
		return ""
	}
}

// DownloadRemote streams a remote image into the temp directory and returns
// the local path.
func (e *Extractor) DownloadRemote(ctx context.Context, rawURL string) (string, error) {
	slog.Info("downloading remote image", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	localPath := filepath.Join(e.tempDir, e.filenameFor(rawURL))
	file, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("save %s: %w", rawURL, err)
	}

	slog.Info("remote image saved", "path", localPath)
	return localPath, nil
}

// filenameFor derives a destination name from the URL's path component,
// defaulting to a .jpg extension and appending a numeric suffix on
// collision.
func (e *Extractor) filenameFor(rawURL string) string {
	name := "image"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	if path.Ext(name) == "" {
		name += ".jpg"
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(e.tempDir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

// ExtractAndPrepare extracts references from markdown or html content and
// materializes a local file for each. Preparation is best-effort per item: a
// failed download or a missing local file is logged and skipped, leaving the
// record without a LocalPath, and never aborts the siblings. The returned
// path list contains only references that resolved to an existing file.
func (e *Extractor) ExtractAndPrepare(ctx context.Context, content, contentType, basePath string) ([]*Reference, []string, error) {
	var refs []*Reference
	var err error
	if contentType == "html" {
		refs, err = e.ExtractFromHTML(content)
		if err != nil {
			return nil, nil, err
		}
	} else {
		refs = e.ExtractFromMarkdown(content)
	}

	var localPaths []string
	for _, ref := range refs {
		if ref.Kind == KindRemote {
			localPath, err := e.DownloadRemote(ctx, ref.Path)
			if err != nil {
				slog.Error("image download failed, skipping", "url", ref.Path, "err", err)
				continue
			}
			ref.LocalPath = localPath
			localPaths = append(localPaths, localPath)
			continue
		}

		localPath := e.ResolveLocalPath(ref, basePath)
		if _, err := os.Stat(localPath); err != nil {
			slog.Warn("local image not found", "path", localPath)
			continue
		}
		ref.LocalPath = localPath
		localPaths = append(localPaths, localPath)
	}

	return refs, localPaths, nil
}
