package cover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectExplicitModes(t *testing.T) {
	assert.IsType(t, &TemplateGenerator{}, Select("template", "#07c160", "out", ""))
	assert.IsType(t, &SearchGenerator{}, Select("search", "#07c160", "out", ""))
	assert.IsType(t, &OpenAIGenerator{}, Select("openai", "#07c160", "out", "sk-x"))
}

func TestSelectAutoPrefersOpenAIWithKey(t *testing.T) {
	g := Select("auto", "#07c160", "out", "sk-x")
	assert.IsType(t, &OpenAIGenerator{}, g)
	assert.True(t, g.Available())
}

func TestSelectAutoWithoutKeyUsesSearch(t *testing.T) {
	g := Select("auto", "#07c160", "out", "")
	assert.IsType(t, &SearchGenerator{}, g)
}

func TestOpenAIAvailability(t *testing.T) {
	assert.False(t, NewOpenAIGenerator("", "#07c160", "out").Available())
	assert.True(t, NewOpenAIGenerator("sk-x", "#07c160", "out").Available())
}

func TestExtractKeyword(t *testing.T) {
	assert.Equal(t, "programming", extractKeyword("编程入门指南"))
	assert.Equal(t, "artificial intelligence", extractKeyword("AI 时代"))
	assert.Equal(t, "technology", extractKeyword("完全不相关的标题"))
	assert.Equal(t, "coding", extractKeyword("Weekend coding notes"))
}

func TestStockImageURLAlwaysResolves(t *testing.T) {
	assert.NotEmpty(t, stockImageURL("technology"))
	assert.NotEmpty(t, stockImageURL("artificial intelligence"))
	assert.Equal(t, stockImages["technology"], stockImageURL("no-such-keyword"))
}
