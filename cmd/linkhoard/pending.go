// ABOUTME: Pending command listing bookmarks queued for sync
// ABOUTME: Shows the operation each bookmark is waiting to replay

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/linkhoard/internal/models"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show bookmarks waiting to sync",
	Long:  "List bookmarks with local changes that have not been pushed to the remote service yet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := engine.PendingSyncPosts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list pending bookmarks: %w", err)
		}

		if len(posts) == 0 {
			color.Green("Nothing pending. All changes are synced.")
			return nil
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		for _, post := range posts {
			var op string
			switch post.Pending {
			case models.PendingAdd:
				op = yellow("add   ")
			case models.PendingUpdate:
				op = yellow("update")
			case models.PendingDelete:
				op = red("delete")
			}
			fmt.Printf("%s  %s\n", op, post.URL)
		}

		fmt.Printf("\n%d pending. Run 'linkhoard sync' to push them.\n", len(posts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}
