package converter

import (
	"log/slog"

	"mp_weixin_publisher/parser"
)

// readingPaneWidth is the fixed width of the WeChat reading pane.
const readingPaneWidth = "677px"

// HTMLBuilder styles a parsed document body and wraps it in the fixed-width
// container the WeChat editor expects.
type HTMLBuilder struct {
	templateName string
	styles       *StyleManager
}

// NewHTMLBuilder creates a builder for the given template name and theme.
func NewHTMLBuilder(templateName string, theme Theme) *HTMLBuilder {
	if templateName == "" {
		templateName = "default"
	}
	return &HTMLBuilder{
		templateName: templateName,
		styles:       NewStyleManager(theme),
	}
}

// Build applies inline styles to the parsed content and wraps it. It always
// succeeds; empty input yields just the wrapper.
func (b *HTMLBuilder) Build(parsed *parser.ParsedContent) string {
	styled := b.styles.ApplyInlineStyles(parsed.Content)
	slog.Debug("html built", "template", b.templateName, "title", parsed.Title)
	return `<section style="max-width: ` + readingPaneWidth + `; margin: 0 auto; padding: 20px;">` + styled + `</section>`
}
