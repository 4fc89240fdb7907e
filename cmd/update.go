package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mp_weixin_publisher/publisher"
)

var updateOpts publisher.UpdateOptions

var updateCmd = &cobra.Command{
	Use:   "update <media_id>",
	Short: "Rebuild an article and overwrite an existing draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		updateOpts.MediaID = args[0]

		pub := publisher.New(cfg)
		if err := pub.Update(cmd.Context(), updateOpts); err != nil {
			return err
		}

		color.Green("✅ draft %s updated", updateOpts.MediaID)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateOpts.Source, "source", "", "source document to rebuild from")
	updateCmd.Flags().StringVar(&updateOpts.Author, "author", "", "article author")
	updateCmd.Flags().BoolVar(&updateOpts.RegenerateCover, "regenerate-cover", false, "generate and upload a new cover")
	updateCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(updateCmd)
}
