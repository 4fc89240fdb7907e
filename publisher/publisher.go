// Package publisher sequences the pipeline: parse the source document,
// style and wrap its HTML, generate a cover, and either write the result to
// disk (manual mode) or push it through the WeChat API as a draft.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mp_weixin_publisher/config"
	"mp_weixin_publisher/converter"
	"mp_weixin_publisher/cover"
	"mp_weixin_publisher/images"
	"mp_weixin_publisher/parser"
	"mp_weixin_publisher/wechat"
)

// PublishOptions describes one publish run.
type PublishOptions struct {
	File      string
	NoAPI     bool
	Template  string
	CoverType string
	Author    string
	Digest    string
}

// UpdateOptions describes an update of an existing draft.
type UpdateOptions struct {
	MediaID         string
	Source          string
	Author          string
	RegenerateCover bool
}

// Result reports what a publish produced.
type Result struct {
	Mode           string // "manual" or "api"
	Title          string
	HTMLPath       string
	CoverPath      string
	MediaID        string
	ImagesUploaded int
	ImagesTotal    int
}

// Publisher owns the pipeline wiring for one configuration.
type Publisher struct {
	cfg config.AppConfig
}

func New(cfg config.AppConfig) *Publisher {
	return &Publisher{cfg: cfg}
}

func (p *Publisher) theme() converter.Theme {
	theme := converter.DefaultTheme()
	if p.cfg.ThemeColor != "" {
		theme.PrimaryColor = p.cfg.ThemeColor
	}
	return theme
}

// Publish converts the source file and either writes the HTML locally or
// creates a draft via the API. Manual mode is used when requested or when no
// credentials are configured.
func (p *Publisher) Publish(ctx context.Context, opts PublishOptions) (*Result, error) {
	prs, err := parser.Lookup(opts.File)
	if err != nil {
		return nil, err
	}
	parsed, err := prs.Parse(opts.File)
	if err != nil {
		return nil, err
	}
	slog.Info("document parsed", "title", parsed.Title, "images", len(parsed.Images))

	builder := converter.NewHTMLBuilder(p.templateName(opts.Template), p.theme())
	html := builder.Build(parsed)

	coverGen := cover.Select(p.coverMode(opts.CoverType), p.cfg.ThemeColor, p.cfg.TempDir, p.cfg.OpenAIAPIKey)
	coverRes, err := coverGen.Generate(ctx, parsed.Title, parsed.Content)
	if err != nil {
		return nil, fmt.Errorf("generate cover: %w", err)
	}

	if opts.NoAPI || !p.cfg.HasWechatAPI() {
		return p.publishManual(opts.File, parsed, html, coverRes)
	}
	return p.publishAPI(ctx, opts, parsed, html, coverRes)
}

// publishManual writes the styled HTML next to the cover and leaves the
// upload to the operator.
func (p *Publisher) publishManual(sourceFile string, parsed *parser.ParsedContent, html string, coverRes cover.Result) (*Result, error) {
	slog.Info("running in manual mode")

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	htmlPath := filepath.Join(p.cfg.OutputDir, stem+".html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	slog.Info("manual publish done", "html", htmlPath, "cover", coverRes.ImagePath)
	return &Result{
		Mode:      "manual",
		Title:     parsed.Title,
		HTMLPath:  htmlPath,
		CoverPath: coverRes.ImagePath,
	}, nil
}

// publishAPI uploads the cover, processes inline images, and creates the
// draft.
func (p *Publisher) publishAPI(ctx context.Context, opts PublishOptions, parsed *parser.ParsedContent, html string, coverRes cover.Result) (*Result, error) {
	slog.Info("running in API mode")

	client, err := p.newClient()
	if err != nil {
		return nil, err
	}

	thumb, err := client.UploadMedia(ctx, coverRes.ImagePath, "thumb")
	if err != nil {
		return nil, err
	}
	slog.Info("cover uploaded", "media_id", thumb.MediaID)

	html, uploaded, total, err := p.processInlineImages(ctx, client, html, opts.File)
	if err != nil {
		return nil, err
	}

	digest := opts.Digest
	if digest == "" {
		digest = ExtractDigest(html, DigestLimit)
	}

	article := wechat.Article{
		Title:        parsed.Title,
		Author:       opts.Author,
		Digest:       digest,
		Content:      html,
		ThumbMediaID: thumb.MediaID,
	}

	mediaID, err := client.UploadDraft(ctx, []wechat.Article{article})
	if err != nil {
		return nil, err
	}

	slog.Info("draft created", "media_id", mediaID)
	return &Result{
		Mode:           "api",
		Title:          parsed.Title,
		CoverPath:      coverRes.ImagePath,
		MediaID:        mediaID,
		ImagesUploaded: uploaded,
		ImagesTotal:    total,
	}, nil
}

// Update rebuilds the article from a source file and overwrites article 0 of
// an existing draft, optionally with a fresh cover.
func (p *Publisher) Update(ctx context.Context, opts UpdateOptions) error {
	prs, err := parser.Lookup(opts.Source)
	if err != nil {
		return err
	}
	parsed, err := prs.Parse(opts.Source)
	if err != nil {
		return err
	}

	builder := converter.NewHTMLBuilder(p.cfg.TemplateName, p.theme())
	html := builder.Build(parsed)

	client, err := p.newClient()
	if err != nil {
		return err
	}

	html, _, _, err = p.processInlineImages(ctx, client, html, opts.Source)
	if err != nil {
		return err
	}

	article := wechat.Article{
		Title:   parsed.Title,
		Author:  opts.Author,
		Digest:  ExtractDigest(html, DigestLimit),
		Content: html,
	}

	if opts.RegenerateCover {
		slog.Info("regenerating cover")
		coverGen := cover.Select(p.cfg.CoverGenerator, p.cfg.ThemeColor, p.cfg.TempDir, p.cfg.OpenAIAPIKey)
		coverRes, err := coverGen.Generate(ctx, parsed.Title, parsed.Content)
		if err != nil {
			return fmt.Errorf("generate cover: %w", err)
		}
		thumb, err := client.UploadMedia(ctx, coverRes.ImagePath, "thumb")
		if err != nil {
			return err
		}
		article.ThumbMediaID = thumb.MediaID
	}

	if err := client.UpdateDraft(ctx, opts.MediaID, 0, article); err != nil {
		return err
	}
	slog.Info("draft updated", "media_id", opts.MediaID)
	return nil
}

// processInlineImages extracts image references from the built HTML, uploads
// them, and rewrites the links. Best-effort: a partially processed batch is
// still publishable.
func (p *Publisher) processInlineImages(ctx context.Context, client *wechat.Client, html, sourceFile string) (string, int, int, error) {
	extractor, err := images.NewExtractor(p.cfg.TempDir)
	if err != nil {
		return "", 0, 0, err
	}
	refs, _, err := extractor.ExtractAndPrepare(ctx, html, "html", filepath.Dir(sourceFile))
	if err != nil {
		return "", 0, 0, err
	}
	if len(refs) == 0 {
		return html, 0, 0, nil
	}

	processor := images.NewProcessor(client)
	html, uploaded := processor.ProcessImages(ctx, html, refs, "image")
	slog.Info("inline images processed", "uploaded", uploaded, "total", len(refs))
	return html, uploaded, len(refs), nil
}

func (p *Publisher) newClient() (*wechat.Client, error) {
	return wechat.NewClient(wechat.Config{
		AppID:     p.cfg.WechatAppID,
		AppSecret: p.cfg.WechatAppSecret,
		BaseURL:   p.cfg.WechatBaseURL,
	})
}

func (p *Publisher) templateName(override string) string {
	if override != "" {
		return override
	}
	return p.cfg.TemplateName
}

func (p *Publisher) coverMode(override string) string {
	if override != "" {
		return override
	}
	return p.cfg.CoverGenerator
}
