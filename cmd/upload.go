package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mp_weixin_publisher/wechat"
)

var (
	uploadType   string
	batchPattern string
)

func newAPIClient() (*wechat.Client, error) {
	if !cfg.HasWechatAPI() {
		return nil, fmt.Errorf("WECHAT_APP_ID and WECHAT_APP_SECRET must be set")
	}
	return wechat.NewClient(wechat.Config{
		AppID:     cfg.WechatAppID,
		AppSecret: cfg.WechatAppSecret,
		BaseURL:   cfg.WechatBaseURL,
	})
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a single media file as permanent material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		res, err := client.UploadMedia(cmd.Context(), args[0], uploadType)
		if err != nil {
			return err
		}

		color.Green("✅ uploaded %s", args[0])
		color.Cyan("   media_id: %s", res.MediaID)
		if res.URL != "" {
			color.Cyan("   url:      %s", res.URL)
		}
		return nil
	},
}

var uploadBatchCmd = &cobra.Command{
	Use:   "upload-batch <dir>",
	Short: "Upload every matching file in a directory",
	Long: `Upload every file in a directory matching the pattern. Failures are
reported per file and do not stop the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		matches, err := filepath.Glob(filepath.Join(args[0], batchPattern))
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", batchPattern, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files matching %q in %s", batchPattern, args[0])
		}

		ok := 0
		for _, path := range matches {
			res, err := client.UploadMedia(cmd.Context(), path, uploadType)
			if err != nil {
				slog.Error("upload failed", "file", path, "err", err)
				color.Red("❌ %s: %s", path, userMessage(err))
				continue
			}
			ok++
			color.Green("✅ %s -> %s", path, res.MediaID)
		}

		color.Cyan("uploaded %d/%d files", ok, len(matches))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadType, "type", "image", "media type: image, voice, video or thumb")
	uploadBatchCmd.Flags().StringVar(&uploadType, "type", "image", "media type: image, voice, video or thumb")
	uploadBatchCmd.Flags().StringVar(&batchPattern, "pattern", "*.jpg", "filename glob to match")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(uploadBatchCmd)
}
