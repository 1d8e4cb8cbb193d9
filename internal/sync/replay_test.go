// ABOUTME: Tests for replaying the pending-sync queue
// ABOUTME: Verifies offline refusal and the per-marker replay paths

package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/linkhoard/internal/models"
	"github.com/harper/linkhoard/internal/pinboard"
)

func TestSyncPendingOffline(t *testing.T) {
	env := newTestEnv(t, false)
	seedPost(t, env.store, "https://queued.example", "queued", models.PendingAdd)

	err := env.engine.SyncPending(context.Background())
	var stateErr *models.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	// Queue untouched.
	pending, err := env.engine.PendingSyncPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSyncPendingEmptyQueue(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.engine.SyncPending(context.Background()))
	assert.Zero(t, len(env.remote.addCalls))
	assert.Zero(t, len(env.remote.deleteCalls))
}

func TestSyncPendingReplaysEachMarker(t *testing.T) {
	env := newTestEnv(t, true)
	env.remote.addCode = pinboard.ResultDone
	env.remote.deleteCode = pinboard.ResultDone

	seedPost(t, env.store, "https://add.example", "queued add", models.PendingAdd)
	seedPost(t, env.store, "https://update.example", "queued update", models.PendingUpdate)
	seedPost(t, env.store, "https://delete.example", "queued delete", models.PendingDelete)

	ctx := context.Background()
	require.NoError(t, env.engine.SyncPending(ctx))

	assert.Len(t, env.remote.addCalls, 2)
	assert.Equal(t, []string{"https://delete.example"}, env.remote.deleteCalls)

	pending, err := env.engine.PendingSyncPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "a clean replay drains the queue")

	deleted, err := env.store.GetPost(ctx, "https://delete.example")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	added, err := env.store.GetPost(ctx, "https://add.example")
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, models.Synced, added.Pending)
}

func TestSyncPendingReplaysLargeQueueConcurrently(t *testing.T) {
	env := newTestEnv(t, true)
	env.remote.addCode = pinboard.ResultDone
	env.remote.deleteCode = pinboard.ResultDone

	// Enough rows that the concurrent replay contends on the write lock.
	var queue []*models.Post
	for i := 0; i < 200; i++ {
		pending := models.PendingAdd
		if i%5 == 0 {
			pending = models.PendingDelete
		}
		queue = append(queue, &models.Post{
			URL:     fmt.Sprintf("https://bulk.example/%d", i),
			Title:   fmt.Sprintf("bulk %d", i),
			ID:      fmt.Sprintf("seed-%d", i),
			Time:    "2024-01-01T00:00:00Z",
			Pending: pending,
		})
	}
	ctx := context.Background()
	require.NoError(t, env.store.SavePosts(ctx, queue))

	require.NoError(t, env.engine.SyncPending(ctx))

	pending, err := env.engine.PendingSyncPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "every row replays despite write-lock contention")
	assert.Len(t, env.remote.addCalls, 160)
	assert.Len(t, env.remote.deleteCalls, 40)
}

func TestSyncPendingSurfacesFailures(t *testing.T) {
	env := newTestEnv(t, true)
	env.remote.addErr = errors.New("api down")
	env.remote.deleteCode = pinboard.ResultDone

	seedPost(t, env.store, "https://add.example", "queued add", models.PendingAdd)

	err := env.engine.SyncPending(context.Background())
	require.Error(t, err)

	// The failed record stays queued for the next attempt.
	pending, perr := env.engine.PendingSyncPosts(context.Background())
	require.NoError(t, perr)
	assert.Len(t, pending, 1)
}
