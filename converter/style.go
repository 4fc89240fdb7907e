// Package converter turns parsed article HTML into the inline-styled
// fragment the WeChat editor accepts. The editor strips <style> blocks and
// class-based CSS, so every rule has to live on the tag itself.
package converter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Theme holds the named style tokens used to build inline styles.
type Theme struct {
	PrimaryColor string
	TextColor    string
	HeadingColor string
	BorderRadius string
	Spacing      string
}

// DefaultTheme returns the stock WeChat-green theme.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor: "#07c160",
		TextColor:    "#333333",
		HeadingColor: "#000000",
		BorderRadius: "4px",
		Spacing:      "16px",
	}
}

const monoFontStack = "-apple-system, BlinkMacSystemFont, Menlo, Monaco, Consolas, monospace"

var (
	h1Re         = regexp.MustCompile(`<h1>(.+?)</h1>`)
	h2Re         = regexp.MustCompile(`<h2>(.+?)</h2>`)
	pRe          = regexp.MustCompile(`(?s)<p>(.+?)</p>`)
	inlineCodeRe = regexp.MustCompile(`<code>(.+?)</code>`)
	quoteRe      = regexp.MustCompile(`(?s)<blockquote>(.+?)</blockquote>`)
	emptyLiRe    = regexp.MustCompile(`<li>\s*</li>`)
	emptyOlRe    = regexp.MustCompile(`<ol>\s*</ol>`)
)

// StyleManager rewrites a closed set of semantic tags into the same tags
// carrying style attributes derived from the theme.
type StyleManager struct {
	theme Theme
}

// NewStyleManager builds a manager for the given theme. A zero theme falls
// back to DefaultTheme.
func NewStyleManager(theme Theme) *StyleManager {
	if theme == (Theme{}) {
		theme = DefaultTheme()
	}
	return &StyleManager{theme: theme}
}

// Theme returns the active theme.
func (m *StyleManager) Theme() Theme { return m.theme }

// ApplyInlineStyles runs the ordered rewrite passes over an HTML fragment.
// Patterns only match attribute-less opening tags, so applying the result a
// second time is a no-op. Unmatched or malformed HTML passes through.
func (m *StyleManager) ApplyInlineStyles(html string) string {
	html = m.styleHeadings(html)
	html = m.styleParagraphs(html)
	html = m.styleCodeBlocks(html)
	html = m.styleBlockquotes(html)
	html = m.styleTables(html)
	html = cleanupEmptyListItems(html)
	slog.Debug("inline styles applied", "bytes", len(html))
	return html
}

func (m *StyleManager) styleHeadings(html string) string {
	primary := m.theme.PrimaryColor

	// h1 becomes a banner with a gradient from the theme color to its
	// lightened variant.
	h1 := fmt.Sprintf(`<h1 style="font-size: 26px; font-weight: bold; color: #ffffff; margin: 20px 0; padding: 20px 24px; background: linear-gradient(135deg, %s 0%%, %s 100%%); border-radius: 8px; text-shadow: 0 2px 4px rgba(0,0,0,0.1); box-shadow: 0 4px 12px rgba(0,0,0,0.08);">$1</h1>`,
		primary, Lighten(primary, 20))
	html = h1Re.ReplaceAllString(html, h1)

	h2 := fmt.Sprintf(`<h2 style="font-size: 20px; font-weight: bold; color: %s; margin: 18px 0; padding-left: 12px; border-left: 4px solid %s;">$1</h2>`,
		m.theme.HeadingColor, primary)
	return h2Re.ReplaceAllString(html, h2)
}

func (m *StyleManager) styleParagraphs(html string) string {
	p := fmt.Sprintf(`<p style="color: %s; line-height: 1.75; margin: %s 0; font-size: 15px; text-align: justify;">$1</p>`,
		m.theme.TextColor, m.theme.Spacing)
	return pRe.ReplaceAllString(html, p)
}

// 公众号移动端对代码块很不友好：保持 pre 原样、横向滚动，禁止折行。
func (m *StyleManager) styleCodeBlocks(html string) string {
	preStyle := fmt.Sprintf(`background-color: #2d2d2d; color: #f8f8f2; padding: 15px 12px; border-radius: 8px; overflow-x: auto; max-width: 100%%; font-family: %s; font-size: 13px; line-height: 1.6; margin: 16px 0; white-space: pre; word-break: normal; -webkit-overflow-scrolling: touch;`, monoFontStack)

	// The <pre><code> combination is handled before the generic <pre> pass
	// so fenced code gets the dark treatment and the inner code tag goes
	// transparent instead of picking up the inline-code styling.
	html = strings.ReplaceAll(html, "<pre><code",
		`<pre style="`+preStyle+`"><code style="background-color: transparent; color: inherit; padding: 0; font-size: 13px;"`)

	// Bare <pre> without code. Tags rewritten above already carry a style
	// attribute and no longer match the literal form.
	html = strings.ReplaceAll(html, "<pre>", `<pre style="`+preStyle+`">`)

	inline := fmt.Sprintf(`<code style="background-color: #f0f0f0; color: #d63384; padding: 3px 6px; border-radius: %s; font-family: %s; font-size: 14px;">$1</code>`,
		m.theme.BorderRadius, monoFontStack)
	return inlineCodeRe.ReplaceAllString(html, inline)
}

func (m *StyleManager) styleBlockquotes(html string) string {
	q := fmt.Sprintf(`<blockquote style="border-left: 4px solid %s; margin: 16px 0; color: #666; background-color: #f9f9f9; padding: 10px 15px;">$1</blockquote>`,
		m.theme.PrimaryColor)
	return quoteRe.ReplaceAllString(html, q)
}

func (m *StyleManager) styleTables(html string) string {
	primary := m.theme.PrimaryColor
	html = strings.ReplaceAll(html, "<table>",
		`<table style="width: 100%; border-collapse: collapse; margin: 16px 0; font-size: 14px;">`)
	html = strings.ReplaceAll(html, "<th>",
		fmt.Sprintf(`<th style="background-color: %s; color: #ffffff; padding: 10px; text-align: left; font-weight: bold; border: 1px solid %s;">`,
			primary, Darken(primary, 10)))
	return strings.ReplaceAll(html, "<td>",
		fmt.Sprintf(`<td style="padding: 10px; border: 1px solid #e0e0e0; color: %s;">`, m.theme.TextColor))
}

// Upstream markdown renderers mistake emoji digit sequences for ordered-list
// markers and leave empty items behind; drop them and any emptied wrapper.
func cleanupEmptyListItems(html string) string {
	html = emptyLiRe.ReplaceAllString(html, "")
	return emptyOlRe.ReplaceAllString(html, "")
}

// Lighten interpolates each channel of a #rrggbb color toward white by the
// given percentage. Invalid input is returned unchanged.
func Lighten(hexColor string, percent int) string {
	r, g, b, ok := parseHex(hexColor)
	if !ok {
		return hexColor
	}
	r = clamp8(r + (255-r)*percent/100)
	g = clamp8(g + (255-g)*percent/100)
	b = clamp8(b + (255-b)*percent/100)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Darken interpolates each channel of a #rrggbb color toward black by the
// given percentage. Invalid input is returned unchanged.
func Darken(hexColor string, percent int) string {
	r, g, b, ok := parseHex(hexColor)
	if !ok {
		return hexColor
	}
	r = clamp8(r * (100 - percent) / 100)
	g = clamp8(g * (100 - percent) / 100)
	b = clamp8(b * (100 - percent) / 100)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func parseHex(hexColor string) (r, g, b int, ok bool) {
	s := strings.TrimPrefix(hexColor, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	var rr, gg, bb int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rr, &gg, &bb); err != nil {
		return 0, 0, 0, false
	}
	return rr, gg, bb, true
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
