// ABOUTME: Add command for creating or updating a bookmark
// ABOUTME: Writes remotely when connected, queues locally otherwise

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/linkhoard/internal/models"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add or update a bookmark",
	Long:  "Add a bookmark by URL. Adding a URL that already exists replaces it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		post := models.Post{
			URL:         args[0],
			Title:       title,
			Description: description,
			Tags:        tags,
		}
		if title == "" {
			post.Title = args[0]
		}
		if cmd.Flags().Changed("private") {
			private, _ := cmd.Flags().GetBool("private")
			post.Private = &private
		}
		if cmd.Flags().Changed("read-later") {
			readLater, _ := cmd.Flags().GetBool("read-later")
			post.ReadLater = &readLater
		}

		saved, err := engine.Add(cmd.Context(), post)
		if err != nil {
			return fmt.Errorf("failed to add bookmark: %w", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		if saved.Pending != models.Synced {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("%s %s %s\n", green("Saved:"), saved.URL, yellow("(queued for sync)"))
		} else {
			fmt.Printf("%s %s\n", green("Saved:"), saved.URL)
		}
		if len(saved.Tags) > 0 {
			fmt.Printf("  tags: %s\n", strings.Join(saved.Tags, ", "))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("title", "t", "", "bookmark title (defaults to the URL)")
	addCmd.Flags().StringP("description", "d", "", "longer description")
	addCmd.Flags().StringSlice("tag", nil, "tag to apply (repeatable)")
	addCmd.Flags().Bool("private", false, "mark the bookmark private")
	addCmd.Flags().Bool("read-later", false, "flag the bookmark to read later")
	rootCmd.AddCommand(addCmd)
}
