package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <media_id>",
	Short: "Show the first article of a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		article, err := client.GetDraft(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if article.Title == "" && article.Content == "" {
			color.Yellow("draft %s has no articles", args[0])
			return nil
		}

		color.Green("✅ draft %s", args[0])
		color.Cyan("   title:   %s", article.Title)
		if article.Author != "" {
			color.Cyan("   author:  %s", article.Author)
		}
		if article.Digest != "" {
			color.Cyan("   digest:  %s", article.Digest)
		}
		color.Cyan("   content: %d bytes", len(article.Content))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
