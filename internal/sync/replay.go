// ABOUTME: Replay of the pending-sync queue once connectivity returns
// ABOUTME: Pending adds/updates go back through Add, pending deletes through Delete

package sync

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harper/linkhoard/internal/models"
)

// SyncPending replays every queued local mutation against the remote.
// Records are independent (one URL each), so they replay concurrently; the
// first failure is returned so the caller can schedule a retry. Rows that
// replay successfully are marked synced even when others fail.
func (e *Engine) SyncPending(ctx context.Context) error {
	if !e.conn.IsConnected() {
		return &models.InvalidStateError{Reason: "cannot replay pending changes while offline"}
	}

	pending, err := e.store.PendingSyncPosts(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, post := range pending {
		g.Go(func() error {
			switch post.Pending {
			case models.PendingAdd, models.PendingUpdate:
				_, err := e.Add(ctx, *post)
				return err
			case models.PendingDelete:
				return e.Delete(ctx, post.URL)
			default:
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		e.log.Warn("pending replay incomplete", zap.Error(err))
		return err
	}
	return nil
}
