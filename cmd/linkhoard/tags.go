// ABOUTME: Tags command for listing and suggesting tags
// ABOUTME: Without arguments shows most-used tags; with a prefix shows matches

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags [prefix]",
	Short: "Suggest tags from your bookmarks",
	Long: `Suggest tags from the local cache.

With no arguments, shows the most frequently used tags.
With a prefix, shows tags starting with that prefix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) > 0 {
			prefix = args[0]
		}
		exclude, _ := cmd.Flags().GetStringSlice("exclude")

		tags, err := engine.SearchExistingPostTag(cmd.Context(), prefix, exclude)
		if err != nil {
			return fmt.Errorf("failed to suggest tags: %w", err)
		}

		if len(tags) == 0 {
			fmt.Println("No tags found.")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		for _, tag := range tags {
			fmt.Println(cyan(tag))
		}
		return nil
	},
}

func init() {
	tagsCmd.Flags().StringSlice("exclude", nil, "tags to leave out of the suggestions")
	rootCmd.AddCommand(tagsCmd)
}
