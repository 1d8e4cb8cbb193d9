// ABOUTME: Sync command replaying queued offline changes
// ABOUTME: Pushes pending adds, updates, and deletes to the remote service

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/linkhoard/internal/models"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending changes to the remote service",
	Long: `Replay bookmarks queued while offline.

Pending adds and updates are re-submitted and pending deletes are
removed on the remote service. Requires connectivity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := engine.PendingSyncPosts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to inspect pending bookmarks: %w", err)
		}
		if len(posts) == 0 {
			color.Green("Nothing to sync.")
			return nil
		}

		fmt.Printf("Syncing %d pending change(s)...\n", len(posts))

		if err := engine.SyncPending(cmd.Context()); err != nil {
			var stateErr *models.InvalidStateError
			if errors.As(err, &stateErr) {
				color.Yellow("Offline. Changes stay queued until connectivity returns.")
				return nil
			}
			return fmt.Errorf("sync failed: %w", err)
		}

		color.Green("Sync complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
