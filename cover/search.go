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
	"strings"
	"time"

	"golang.org/x/image/math/fixed"

	_ "image/gif"
	_ "image/png"
)

// Chinese title words mapped to English stock-photo search terms.
var keywordMap = map[string]string{
	"技术":   "technology",
	"开发":   "coding",
	"编程":   "programming",
	"效率":   "productivity",
	"工具":   "tools",
	"办公":   "workspace",
	"微信":   "chat",
	"公众号":  "social",
	"运营":   "business",
	"写作":   "writing",
	"创意":   "creative",
	"设计":   "design",
	"AI":   "artificial intelligence",
	"人工智能": "artificial intelligence",
	"自动化":  "automation",
	"数据":   "data",
	"代码":   "code",
}

// Curated high-resolution stock photos by search term. Kept as direct URLs
// so the generator works without an API key.
var stockImages = map[string]string{
	"artificial intelligence": "https://images.pexels.com/photos/5667950/pexels-photo-5667950.jpeg",
	"technology":              "https://images.pexels.com/photos/373543/pexels-photo-373543.jpeg",
	"coding":                  "https://images.pexels.com/photos/18069857/pexels-photo-18069857.png",
	"workspace":               "https://images.pexels.com/photos/19114196/pexels-photo-19114196.jpeg",
	"data":                    "https://images.pexels.com/photos/17483869/pexels-photo-17483869.jpeg",
	"code":                    "https://images.pexels.com/photos/18068493/pexels-photo-18068493.png",
}

// SearchGenerator builds a cover from a stock photo matched to the title,
// rescaled to cover size with the title drawn over a darkened lower band.
// Any failure falls back to the local template generator.
type SearchGenerator struct {
	ThemeColor string
	OutputDir  string
	Width      int
	Height     int

	httpClient *http.Client
	fallback   *TemplateGenerator
}

func NewSearchGenerator(themeColor, outputDir string) *SearchGenerator {
	return &SearchGenerator{
		ThemeColor: themeColor,
		OutputDir:  outputDir,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		fallback:   NewTemplateGenerator(themeColor, outputDir),
	}
}

func (g *SearchGenerator) Available() bool { return true }

func (g *SearchGenerator) Generate(ctx context.Context, title, content string) (Result, error) {
	keyword := extractKeyword(title)
	slog.Info("searching cover photo", "title", title, "keyword", keyword)

	result, err := g.generateFromStock(ctx, title, keyword)
	if err != nil {
		slog.Warn("cover photo search failed, falling back to template", "err", err)
		return g.fallback.Generate(ctx, title, content)
	}
	return result, nil
}

func (g *SearchGenerator) generateFromStock(ctx context.Context, title, keyword string) (Result, error) {
	imageURL := stockImageURL(keyword)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch stock photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("fetch stock photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode stock photo: %w", err)
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

	slog.Info("stock cover saved", "path", path)
	return Result{
		ImagePath:  path,
		SourceType: "stock_search",
		Metadata: map[string]string{
			"keyword":    keyword,
			"source_url": imageURL,
			"title":      title,
		},
	}, nil
}

// extractKeyword picks the first title word with a known mapping; stock
// search works best with a single English term.
func extractKeyword(title string) string {
	for cn, en := range keywordMap {
		if strings.Contains(title, cn) {
			return en
		}
	}
	for _, word := range strings.Fields(title) {
		w := strings.ToLower(strings.Trim(word, "，。！？、：:,.!?()（）"))
		if _, ok := stockImages[w]; ok {
			return w
		}
	}
	return "technology"
}

func stockImageURL(keyword string) string {
	k := strings.ToLower(strings.TrimSpace(keyword))
	for key, u := range stockImages {
		if strings.Contains(key, k) || strings.Contains(k, key) {
			return u
		}
	}
	return stockImages["technology"]
}
