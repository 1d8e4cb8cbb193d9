// ABOUTME: Clear command for wiping the local bookmark cache
// ABOUTME: Keeps or discards pending changes depending on --all

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local bookmark cache",
	Long: `Delete cached bookmarks from the local database.

By default only synced bookmarks are removed; changes still waiting to
sync are kept. Use --all to discard pending changes too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		if all {
			fmt.Println("This will DELETE all cached bookmarks, including unsynced changes.")
			fmt.Print("Continue? [y/N] ")

			reader := bufio.NewReader(os.Stdin)
			confirmation, _ := reader.ReadString('\n')
			confirmation = strings.TrimSpace(confirmation)

			if confirmation != "y" && confirmation != "Y" {
				fmt.Println("Canceled.")
				return nil
			}

			if err := engine.ClearCache(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			color.Green("Cache cleared.")
			return nil
		}

		if err := engine.ClearSyncedCache(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		color.Green("Synced bookmarks cleared. Pending changes kept.")
		return nil
	},
}

func init() {
	clearCmd.Flags().Bool("all", false, "also discard pending changes")
	rootCmd.AddCommand(clearCmd)
}
