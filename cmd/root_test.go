package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"mp_weixin_publisher/parser"
	"mp_weixin_publisher/wechat"
)

func TestUserMessageHidesErrorChain(t *testing.T) {
	err := fmt.Errorf("draft upload: %w", &wechat.APIError{Code: 40001, Message: "invalid credential"})

	msg := userMessage(err)

	assert.Contains(t, msg, "AppSecret")
	assert.NotContains(t, msg, "draft upload", "wrapping context stays in the log")
	assert.NotContains(t, msg, "invalid credential", "raw platform text stays in the log")
}

func TestUserMessageParserErrors(t *testing.T) {
	err := fmt.Errorf("publish: %w", &parser.UnsupportedTypeError{Path: "deck.pptx", Ext: ".pptx"})

	msg := userMessage(err)

	assert.Contains(t, msg, ".pptx")
	assert.NotContains(t, msg, "publish:")
}

func TestUserMessageFallsBackToErrorText(t *testing.T) {
	err := errors.New("plain failure")
	assert.Equal(t, "plain failure", userMessage(err))
}
