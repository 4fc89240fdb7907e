package cover

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/image/math/fixed"
)

// OpenAIGenerator asks the Images API for an illustration matching the
// title, then composites the title text the same way the stock generator
// does. Only available when an API key is configured; any failure falls back
// to the local template.
type OpenAIGenerator struct {
	APIKey     string
	BaseURL    string
	ThemeColor string
	OutputDir  string
	Width      int
	Height     int

	httpClient *http.Client
	fallback   *TemplateGenerator
}

func NewOpenAIGenerator(apiKey, themeColor, outputDir string) *OpenAIGenerator {
	return &OpenAIGenerator{
		APIKey:     apiKey,
		ThemeColor: themeColor,
		OutputDir:  outputDir,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		fallback:   NewTemplateGenerator(themeColor, outputDir),
	}
}

func (g *OpenAIGenerator) Available() bool { return g.APIKey != "" }

func (g *OpenAIGenerator) Generate(ctx context.Context, title, content string) (Result, error) {
	if !g.Available() {
		return g.fallback.Generate(ctx, title, content)
	}

	slog.Info("generating AI cover", "title", title)

	result, err := g.generateImage(ctx, title)
	if err != nil {
		slog.Warn("AI cover generation failed, falling back to template", "err", err)
		return g.fallback.Generate(ctx, title, content)
	}
	return result, nil
}

func (g *OpenAIGenerator) generateImage(ctx context.Context, title string) (Result, error) {
	opts := []option.RequestOption{option.WithAPIKey(g.APIKey)}
	if g.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(g.BaseURL))
	}
	client := openai.NewClient(opts...)

	prompt := fmt.Sprintf(
		"Wide minimalist cover illustration for an article titled %q. Flat design, soft gradients, no text or lettering.",
		title)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModelDallE3,
		Size:   openai.ImageGenerateParamsSize1792x1024,
	})
	if err != nil {
		return Result{}, fmt.Errorf("images api: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return Result{}, fmt.Errorf("images api returned no image url")
	}
	imageURL := resp.Data[0].URL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Result{}, err
	}
	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("download generated image: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("download generated image: status %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Result{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode generated image: %w", err)
	}

	cover := rescale(src, g.Width, g.Height)
	shadeBottom(cover, 150)

	face := loadTitleFace(48)
	baseline := fixed.I(g.Height - 50)
	drawTitle(cover, title, face, baseline,
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
		color.RGBA{R: 40, G: 40, B: 40, A: 255})

	path, err := saveJPEG(cover, g.OutputDir)
	if err != nil {
		return Result{}, err
	}

	slog.Info("AI cover saved", "path", path)
	return Result{
		ImagePath:  path,
		SourceType: "openai",
		Metadata: map[string]string{
			"title":  title,
			"prompt": prompt,
		},
	}, nil
}
