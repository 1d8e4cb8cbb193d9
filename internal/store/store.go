// ABOUTME: Storage interface and filter types for the local bookmark cache
// ABOUTME: Defines the contract the sync engine consumes

package store

import (
	"context"

	"github.com/harper/linkhoard/internal/models"
)

// Filter narrows queries over the local cache. Term and Tags must already be
// formatted via FormatTerm/FormatTag; empty slots mean no filter.
type Filter struct {
	Term          string
	Tags          [3]string
	UntaggedOnly  bool
	Visibility    models.Visibility
	ReadLaterOnly bool
}

// Store is the durable, queryable record store keyed by bookmark URL.
// Each write method is individually transactional.
type Store interface {
	// Close closes the store and releases resources.
	Close() error

	// SavePosts upserts the given posts as one atomic batch.
	SavePosts(ctx context.Context, posts []*models.Post) error

	// SaveRemotePosts upserts a batch fetched from the remote, skipping rows
	// that carry a pending-sync marker so queued local edits survive.
	SaveRemotePosts(ctx context.Context, posts []*models.Post) error

	// GetPost retrieves a post by URL, returning nil when absent.
	GetPost(ctx context.Context, url string) (*models.Post, error)

	// DeletePost removes the row for url outright.
	DeletePost(ctx context.Context, url string) error

	// DeletePendingPost removes the row for url only if it carries a
	// pending-sync marker.
	DeletePendingPost(ctx context.Context, url string) error

	// DeleteAllSyncedPosts removes every fully reconciled row, preserving
	// rows with pending local mutations.
	DeleteAllSyncedPosts(ctx context.Context) error

	// DeleteAllPosts clears the cache.
	DeleteAllPosts(ctx context.Context) error

	// CountPosts counts rows matching the filter, up to limit (-1 = no limit).
	CountPosts(ctx context.Context, f Filter, limit int) (int, error)

	// AllPosts returns matching rows ordered by creation time.
	AllPosts(ctx context.Context, f Filter, sort models.SortOrder, limit, offset int) ([]*models.Post, error)

	// SearchTagTokens returns the raw tags column of rows whose tags match
	// the formatted tag expression.
	SearchTagTokens(ctx context.Context, formattedTag string) ([]string, error)

	// AllTags returns the raw tags column of every tagged row, for
	// suggestion mining.
	AllTags(ctx context.Context) ([]string, error)

	// PendingSyncPosts returns every row with a pending-sync marker.
	PendingSyncPosts(ctx context.Context) ([]*models.Post, error)
}
