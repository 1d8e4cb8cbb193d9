// ABOUTME: Count command reporting how many bookmarks match a query
// ABOUTME: Runs entirely against the local cache

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count bookmarks matching a query",
	Long:  "Count bookmarks in the local cache matching a search term and tags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		term, _ := cmd.Flags().GetString("search")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		if len(tags) > 3 {
			return fmt.Errorf("at most three tag filters are supported")
		}

		n := engine.GetQueryResultSize(cmd.Context(), term, tags)
		fmt.Println(n)
		return nil
	},
}

func init() {
	countCmd.Flags().StringP("search", "s", "", "full-text search term")
	countCmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable, up to three)")
	rootCmd.AddCommand(countCmd)
}
