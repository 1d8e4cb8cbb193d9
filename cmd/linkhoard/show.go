// ABOUTME: Show command displaying a single bookmark in detail
// ABOUTME: Falls back to the remote service when the URL is not cached

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/linkhoard/internal/models"
)

var showCmd = &cobra.Command{
	Use:     "show <url>",
	Aliases: []string{"get"},
	Short:   "Show one bookmark",
	Long:    "Show the bookmark for a URL, checking the local cache first and the remote service after.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := engine.GetPost(cmd.Context(), args[0])
		if err != nil {
			var reqErr *models.InvalidRequestError
			if errors.As(err, &reqErr) {
				return fmt.Errorf("no bookmark for %s", args[0])
			}
			return fmt.Errorf("failed to fetch bookmark: %w", err)
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		fmt.Println(cyan(post.Title))
		fmt.Println(post.URL)
		if post.Description != "" {
			fmt.Println(post.Description)
		}
		if len(post.Tags) > 0 {
			fmt.Println(faint(strings.Join(post.Tags, ", ")))
		}
		fmt.Printf("saved:      %s\n", post.Time)
		fmt.Printf("private:    %v\n", post.IsPrivate())
		fmt.Printf("read later: %v\n", post.IsReadLater())
		if post.Pending != models.Synced {
			color.Yellow("pending:    %s", post.Pending)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
