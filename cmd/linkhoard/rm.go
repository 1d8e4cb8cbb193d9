// ABOUTME: Remove command for deleting a bookmark by URL
// ABOUTME: Deletes remotely when connected, queues the deletion otherwise

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/linkhoard/internal/models"
)

var rmCmd = &cobra.Command{
	Use:     "rm <url>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]

		if err := engine.Delete(cmd.Context(), url); err != nil {
			var stateErr *models.InvalidStateError
			if errors.As(err, &stateErr) {
				return fmt.Errorf("nothing to delete: %s is not in the local cache", url)
			}
			return fmt.Errorf("failed to delete bookmark: %w", err)
		}

		red := color.New(color.FgRed).SprintFunc()
		fmt.Printf("%s %s\n", red("Deleted:"), url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
