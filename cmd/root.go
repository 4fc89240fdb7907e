// Package cmd defines the command line interface.
package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mp_weixin_publisher/config"
	"mp_weixin_publisher/logging"
)

var (
	verbose bool
	envFile string

	cfg config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "mp-weixin",
	Short: "Publish Markdown and HTML documents to a WeChat Official Account",
	Long: `mp-weixin converts Markdown or HTML documents into inline-styled
article HTML for WeChat Official Accounts, generates a cover image, and
uploads the result as a draft through the WeChat API.

Without API credentials it runs in manual mode and writes the converted
HTML to the output directory for copy-and-paste publishing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.FromEnv(envFile)
		level := cfg.LogLevel
		if verbose {
			level = "DEBUG"
		}
		return logging.Setup(level, cfg.LogFile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default .env)")
}

// Execute runs the CLI and exits non-zero on failure. The user sees only the
// friendly message; the full error chain goes to the log.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		color.Red("❌ %s", userMessage(err))
		os.Exit(1)
	}
}

// userMessage prefers the friendly explanation carried by API and parser
// errors over the raw error text.
func userMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
