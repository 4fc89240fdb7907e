package cover

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"golang.org/x/image/math/fixed"

	"mp_weixin_publisher/converter"
)

// TemplateGenerator draws a cover locally: a vertical gradient derived from
// the theme color with the shadowed title centered on it. It is the
// generator of last resort and is always available.
type TemplateGenerator struct {
	ThemeColor string
	OutputDir  string
	Width      int
	Height     int
}

func NewTemplateGenerator(themeColor, outputDir string) *TemplateGenerator {
	return &TemplateGenerator{
		ThemeColor: themeColor,
		OutputDir:  outputDir,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
}

func (g *TemplateGenerator) Available() bool { return true }

func (g *TemplateGenerator) Generate(ctx context.Context, title, content string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	slog.Info("generating template cover", "title", title, "theme_color", g.ThemeColor)

	width, height := g.Width, g.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	g.drawGradient(img)

	face := loadTitleFace(60)
	baseline := fixed.I(height/2) + face.Metrics().Ascent/2
	drawTitle(img, title, face, baseline,
		color.RGBA{R: 51, G: 51, B: 51, A: 255},
		color.RGBA{R: 200, G: 200, B: 200, A: 255})

	path, err := saveJPEG(img, g.OutputDir)
	if err != nil {
		return Result{}, err
	}

	slog.Info("template cover saved", "path", path)
	return Result{
		ImagePath:  path,
		SourceType: "template",
		Metadata: map[string]string{
			"template":    "gradient",
			"title":       title,
			"theme_color": g.ThemeColor,
		},
	}, nil
}

// drawGradient fills the canvas with a top-to-bottom gradient between two
// lightened variants of the theme color.
func (g *TemplateGenerator) drawGradient(img *image.RGBA) {
	topR, topG, topB := hexChannels(converter.Lighten(g.ThemeColor, 85))
	botR, botG, botB := hexChannels(converter.Lighten(g.ThemeColor, 55))

	bounds := img.Bounds()
	height := bounds.Dy()
	for y := 0; y < height; y++ {
		c := color.RGBA{
			R: uint8(topR + (botR-topR)*y/height),
			G: uint8(topG + (botG-topG)*y/height),
			B: uint8(topB + (botB-topB)*y/height),
			A: 255,
		}
		for x := 0; x < bounds.Dx(); x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// hexChannels reads a #rrggbb string, defaulting to a neutral light gray on
// bad input.
func hexChannels(hexColor string) (r, g, b int) {
	s := strings.TrimPrefix(hexColor, "#")
	if len(s) != 6 {
		return 240, 245, 250
	}
	var rr, gg, bb int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rr, &gg, &bb); err != nil {
		return 240, 245, 250
	}
	return rr, gg, bb
}
