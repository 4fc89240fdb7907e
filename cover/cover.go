// Package cover produces the 2.35:1 JPEG cover image the draft endpoint
// requires as its thumb. Remote generators always fall back to the local
// template rather than failing a publish.
package cover

import "context"

// Cover dimensions fixed by the platform's cover display convention.
const (
	DefaultWidth  = 1080
	DefaultHeight = 460
)

// Result describes a generated cover file. Every generator writes a local
// file; the API path uploads it as the draft thumb.
type Result struct {
	ImagePath  string
	SourceType string
	Metadata   map[string]string
}

// Generator turns an article title into a cover image file.
type Generator interface {
	Generate(ctx context.Context, title, content string) (Result, error)
	Available() bool
}

// Select picks a generator for the configured mode. "auto" prefers the
// OpenAI generator when a key is present, then stock search; both degrade to
// the local template on failure, so a publish never dies on cover trouble.
func Select(mode, themeColor, outputDir, openaiKey string) Generator {
	switch mode {
	case "template":
		return NewTemplateGenerator(themeColor, outputDir)
	case "search":
		return NewSearchGenerator(themeColor, outputDir)
	case "openai":
		return NewOpenAIGenerator(openaiKey, themeColor, outputDir)
	default: // auto
		if g := NewOpenAIGenerator(openaiKey, themeColor, outputDir); g.Available() {
			return g
		}
		return NewSearchGenerator(themeColor, outputDir)
	}
}
