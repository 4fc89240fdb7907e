package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mp_weixin_publisher/publisher"
)

var publishOpts publisher.PublishOptions

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Convert a document and create a WeChat draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		publishOpts.File = args[0]

		pub := publisher.New(cfg)
		res, err := pub.Publish(cmd.Context(), publishOpts)
		if err != nil {
			return err
		}

		if res.Mode == "manual" {
			color.Green("✅ converted %q", res.Title)
			color.Cyan("   HTML:  %s", res.HTMLPath)
			color.Cyan("   cover: %s", res.CoverPath)
			color.Yellow("   no API credentials, paste the HTML into the editor yourself")
			return nil
		}

		color.Green("✅ draft created for %q", res.Title)
		color.Cyan("   media_id: %s", res.MediaID)
		if res.ImagesTotal > 0 {
			color.Cyan("   images:   %d/%d uploaded", res.ImagesUploaded, res.ImagesTotal)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishOpts.NoAPI, "no-api", false, "skip the WeChat API and write HTML locally")
	publishCmd.Flags().StringVar(&publishOpts.Template, "template", "", "style template name (default from config)")
	publishCmd.Flags().StringVar(&publishOpts.CoverType, "cover-type", "", "cover generator: auto, template, search or openai")
	publishCmd.Flags().StringVar(&publishOpts.Author, "author", "", "article author")
	publishCmd.Flags().StringVar(&publishOpts.Digest, "digest", "", "article digest (default: extracted from content)")
	rootCmd.AddCommand(publishCmd)
}
