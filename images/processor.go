package images

import (
	"context"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"mp_weixin_publisher/wechat"
)

// MediaUploader is the slice of the API client the processor needs.
type MediaUploader interface {
	UploadMedia(ctx context.Context, filePath, mediaType string) (wechat.MediaResult, error)
}

// Processor uploads prepared images to the media store and rewrites the HTML
// to the CDN URLs the platform hands back.
type Processor struct {
	uploader MediaUploader
}

func NewProcessor(uploader MediaUploader) *Processor {
	return &Processor{uploader: uploader}
}

// ProcessImages uploads every reference that has a local file and replaces
// its src occurrences in the HTML. The batch never aborts on a single
// record: missing files, uploads without a returned URL, and upload errors
// are logged and skipped. Records are annotated in place. Returns the
// rewritten HTML and the count of records whose src was actually rewritten.
//
// Records are walked in reverse discovery order; replacement is keyed on the
// exact original path string, so the order does not affect the result.
func (p *Processor) ProcessImages(ctx context.Context, content string, refs []*Reference, mediaType string) (string, int) {
	if len(refs) == 0 {
		slog.Info("no images to process")
		return content, 0
	}

	slog.Info("processing images", "count", len(refs))

	success := 0
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]

		if ref.LocalPath == "" {
			slog.Warn("image has no local file, skipping", "path", ref.Path)
			continue
		}
		if _, err := os.Stat(ref.LocalPath); err != nil {
			slog.Warn("image file missing, skipping", "path", ref.LocalPath)
			continue
		}

		slog.Info("uploading image", "file", filepath.Base(ref.LocalPath),
			"position", len(refs)-i, "total", len(refs))

		result, err := p.uploader.UploadMedia(ctx, ref.LocalPath, mediaType)
		if err != nil {
			slog.Error("image upload failed", "path", ref.Path, "err", err)
			ref.Uploaded = false
			continue
		}
		if result.URL == "" {
			slog.Warn("no url returned for image, skipping rewrite",
				"path", ref.Path, "media_id", result.MediaID)
			continue
		}

		var replaced bool
		content, replaced = replaceImageURL(content, ref.Path, result.URL)
		if !replaced {
			slog.Warn("src not found in html, skipping rewrite", "path", ref.Path)
			continue
		}
		ref.Uploaded = true
		ref.WechatURL = result.URL
		ref.MediaID = result.MediaID
		success++
	}

	slog.Info("image processing done", "success", success, "total", len(refs))
	return content, success
}

// replaceImageURL swaps every occurrence of oldURL appearing as an img src
// value for newURL and reports whether anything matched. The extracted
// reference holds the decoded attribute value while serialized HTML carries
// the entity-escaped spelling ("&" as "&amp;"), so both forms are tried.
func replaceImageURL(content, oldURL, newURL string) (string, bool) {
	keys := []string{oldURL}
	if escaped := html.EscapeString(oldURL); escaped != oldURL {
		keys = append(keys, escaped)
	}

	replaced := false
	for _, key := range keys {
		re := regexp.MustCompile(`(<img[^>]+src=["'])` + regexp.QuoteMeta(key) + `(["'])`)
		content = re.ReplaceAllStringFunc(content, func(m string) string {
			replaced = true
			sub := re.FindStringSubmatch(m)
			return sub[1] + newURL + sub[2]
		})
	}
	return content, replaced
}
