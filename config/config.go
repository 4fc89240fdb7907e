// Package config loads application settings from the environment, with an
// optional .env file in front.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig is the environment-sourced application configuration.
type AppConfig struct {
	// WeChat Official Account credentials. BaseURL is normally empty and
	// only overridden to point at a test double.
	WechatAppID     string
	WechatAppSecret string
	WechatBaseURL   string

	// Cover generation: auto, template, search or openai.
	CoverGenerator string
	OpenAIAPIKey   string

	// Output locations.
	OutputDir string
	TempDir   string

	// Styling.
	TemplateName string
	ThemeColor   string

	// Logging.
	LogLevel string
	LogFile  string
}

// FromEnv loads configuration. A missing env file is not an error; the
// process environment alone is enough.
func FromEnv(envFile string) AppConfig {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file loaded", "path", envFile)
	}

	cfg := AppConfig{
		WechatAppID:     os.Getenv("WECHAT_APP_ID"),
		WechatAppSecret: os.Getenv("WECHAT_APP_SECRET"),
		WechatBaseURL:   os.Getenv("WECHAT_API_BASE_URL"),
		CoverGenerator:  getenv("COVER_GENERATOR", "auto"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OutputDir:       getenv("OUTPUT_DIR", "./output"),
		TempDir:         getenv("TEMP_DIR", "./temp"),
		TemplateName:    getenv("TEMPLATE_NAME", "default"),
		ThemeColor:      getenv("THEME_COLOR", "#07c160"),
		LogLevel:        getenv("LOG_LEVEL", "INFO"),
		LogFile:         os.Getenv("LOG_FILE"),
	}

	slog.Debug("configuration loaded", "output_dir", cfg.OutputDir, "temp_dir", cfg.TempDir)
	return cfg
}

// HasWechatAPI reports whether API mode is possible.
func (c AppConfig) HasWechatAPI() bool {
	return c.WechatAppID != "" && c.WechatAppSecret != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
