// ABOUTME: List command for browsing bookmarks with filtering options
// ABOUTME: Shows an optimistic local snapshot first, then the reconciled one

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/linkhoard/internal/models"
	"github.com/harper/linkhoard/internal/sync"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List bookmarks",
	Long:    "List bookmarks from the local cache, refreshing from the remote service when reachable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		term, _ := cmd.Flags().GetString("search")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		untagged, _ := cmd.Flags().GetBool("untagged")
		private, _ := cmd.Flags().GetBool("private")
		public, _ := cmd.Flags().GetBool("public")
		readLater, _ := cmd.Flags().GetBool("read-later")
		oldest, _ := cmd.Flags().GetBool("oldest")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		forceRefresh, _ := cmd.Flags().GetBool("refresh")

		if private && public {
			return fmt.Errorf("cannot use --private and --public together")
		}
		if len(tags) > 3 {
			return fmt.Errorf("at most three tag filters are supported")
		}

		params := sync.ListParams{
			Term:          term,
			Tags:          tags,
			UntaggedOnly:  untagged,
			ReadLaterOnly: readLater,
			CountLimit:    -1,
			PageLimit:     limit,
			PageOffset:    offset,
			ForceRefresh:  forceRefresh,
		}
		switch {
		case private:
			params.Visibility = models.VisibilityPrivate
		case public:
			params.Visibility = models.VisibilityPublic
		}
		if oldest {
			params.Sort = models.OldestFirst
		}

		var final *models.PostListResult
		for outcome := range engine.GetAllPosts(cmd.Context(), params) {
			if outcome.Err != nil {
				return fmt.Errorf("failed to list bookmarks: %w", outcome.Err)
			}
			final = outcome.Result
		}
		if final == nil {
			return fmt.Errorf("no result produced")
		}

		printPosts(final)
		return nil
	},
}

func printPosts(result *models.PostListResult) {
	visible, hidden := visiblePosts(result.Posts)
	total := result.TotalCount - hidden
	if total <= 0 {
		fmt.Println("No bookmarks found.")
		return
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, post := range visible {
		marker := " "
		switch post.Pending {
		case models.PendingAdd:
			marker = yellow("+")
		case models.PendingUpdate:
			marker = yellow("~")
		}

		fmt.Printf("%s %s\n", marker, cyan(post.Title))
		fmt.Printf("  %s\n", post.URL)
		if len(post.Tags) > 0 {
			fmt.Printf("  %s\n", faint(strings.Join(post.Tags, ", ")))
		}
	}

	status := "up to date"
	if !result.UpToDate {
		status = "may be stale"
	}
	fmt.Printf("\n%d bookmarks (%s)\n", total, status)
}

// visiblePosts drops pending-delete rows, which are logically absent and
// retained only for replay, and reports how many were dropped so the count
// can be adjusted to match.
func visiblePosts(posts []*models.Post) ([]*models.Post, int) {
	visible := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if post.Pending == models.PendingDelete {
			continue
		}
		visible = append(visible, post)
	}
	return visible, len(posts) - len(visible)
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "full-text search term")
	listCmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable, up to three)")
	listCmd.Flags().Bool("untagged", false, "only bookmarks without tags")
	listCmd.Flags().Bool("private", false, "only private bookmarks")
	listCmd.Flags().Bool("public", false, "only public bookmarks")
	listCmd.Flags().Bool("read-later", false, "only read-later bookmarks")
	listCmd.Flags().Bool("oldest", false, "oldest first instead of newest first")
	listCmd.Flags().IntP("limit", "n", 50, "maximum bookmarks to show")
	listCmd.Flags().Int("offset", 0, "bookmarks to skip")
	listCmd.Flags().Bool("refresh", false, "force a full refresh from the remote service")
	rootCmd.AddCommand(listCmd)
}
