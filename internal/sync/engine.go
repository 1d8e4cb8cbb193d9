// ABOUTME: Offline-first sync engine reconciling the local cache with the remote API
// ABOUTME: Decides local-vs-remote per operation, queues offline writes, and catches up page by page

package sync

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/harper/linkhoard/internal/clock"
	"github.com/harper/linkhoard/internal/connectivity"
	"github.com/harper/linkhoard/internal/models"
	"github.com/harper/linkhoard/internal/pinboard"
	"github.com/harper/linkhoard/internal/prefs"
	"github.com/harper/linkhoard/internal/store"
)

const (
	// apiPageSize is the remote page size for full catch-ups.
	apiPageSize = 10_000

	// malformedObjectThreshold is the slack under apiPageSize within which a
	// page still counts as full. The API occasionally drops malformed
	// objects from a page, so an exact size match would stop too early.
	malformedObjectThreshold = 1_000

	// maxPageOffset is a hard ceiling on pagination, a circuit breaker
	// against runaway crawling when the API misbehaves.
	maxPageOffset = 1_000_000

	// defaultSuggestions caps the tag suggestion set for an empty prefix.
	defaultSuggestions = 20

	updateTimeout = 10 * time.Second
	addTimeout    = 15 * time.Second
)

// Engine orchestrates bookmark reads and writes across the local store and
// the remote API. The local store remains the single source of truth for
// reads; the remote is authoritative for confirmed writes.
type Engine struct {
	store  store.Store
	remote pinboard.Client
	prefs  prefs.Store
	conn   connectivity.Oracle
	clock  clock.Clock
	log    *zap.Logger

	mu          gosync.Mutex
	cancelPages context.CancelFunc
	pages       gosync.WaitGroup
}

// New creates an Engine. A nil logger disables logging.
func New(
	st store.Store,
	remote pinboard.Client,
	pf prefs.Store,
	conn connectivity.Oracle,
	clk clock.Clock,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:  st,
		remote: remote,
		prefs:  pf,
		conn:   conn,
		clock:  clk,
		log:    log,
	}
}

// Wait blocks until any background page fetch has finished. Callers that are
// about to exit should wait so a catch-up is not abandoned halfway.
func (e *Engine) Wait() {
	e.pages.Wait()
}

// Close cancels background work and waits for it to stop.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.cancelPages != nil {
		e.cancelPages()
	}
	e.mu.Unlock()
	e.pages.Wait()
}

// Update queries the remote's last-modified timestamp.
func (e *Engine) Update(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()
	return e.remote.Update(ctx)
}

// Add creates or updates a bookmark. Online, the write goes to the remote
// first and the confirmed result is mirrored locally. Offline, the write is
// stored with a pending marker for later replay.
func (e *Engine) Add(ctx context.Context, post models.Post) (*models.Post, error) {
	if post.ID == "" {
		post.ID = e.clock.NewID()
	}
	if post.Time == "" {
		post.Time = e.clock.Now()
	}

	if e.conn.IsConnected() {
		return e.addRemote(ctx, post)
	}
	return e.addLocal(ctx, post)
}

func (e *Engine) addRemote(ctx context.Context, post models.Post) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, addTimeout)
	defer cancel()

	code, err := e.remote.Add(ctx, pinboard.AddParams{
		URL:         post.URL,
		Title:       post.Title,
		Description: post.Description,
		Private:     post.Private,
		ReadLater:   post.ReadLater,
		Tags:        post.Tags,
		Replace:     true,
	})
	if err != nil {
		return nil, err
	}

	switch code {
	case pinboard.ResultDone:
		// The write is confirmed at the source of truth; clear any queued
		// mutation for this url and mirror the confirmed record.
		if err := e.store.DeletePendingPost(ctx, post.URL); err != nil {
			return nil, err
		}
		post.Pending = models.Synced
		if err := e.store.SavePosts(ctx, []*models.Post{&post}); err != nil {
			return nil, err
		}
		return &post, nil

	case pinboard.ResultItemAlreadyExists:
		// Benign race, e.g. a retried submit. Resolve to the existing record.
		return e.GetPost(ctx, post.URL)

	default:
		return nil, &models.APIRejectionError{Code: string(code)}
	}
}

func (e *Engine) addLocal(ctx context.Context, post models.Post) (*models.Post, error) {
	existing, err := e.store.GetPost(ctx, post.URL)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// Merge over the existing row, keeping its identity and creation
		// time. A repeated offline add stays a net-new record from the
		// remote's perspective, so an ADD marker is never downgraded.
		post.ID = existing.ID
		post.Time = existing.Time
		if existing.Pending == models.Synced {
			post.Pending = models.PendingUpdate
		} else {
			post.Pending = existing.Pending
		}
	} else {
		post.Pending = models.PendingAdd
	}

	if err := e.store.SavePosts(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a bookmark. Online, the remote must confirm before the local
// row is dropped. Offline, the row is marked for deletion and retained so the
// replay can retry without data loss.
func (e *Engine) Delete(ctx context.Context, url string) error {
	if e.conn.IsConnected() {
		return e.deleteRemote(ctx, url)
	}
	return e.deleteLocal(ctx, url)
}

func (e *Engine) deleteRemote(ctx context.Context, url string) error {
	code, err := e.remote.Delete(ctx, url)
	if err != nil {
		return err
	}
	if code != pinboard.ResultDone {
		return &models.APIRejectionError{Code: string(code)}
	}
	return e.store.DeletePost(ctx, url)
}

func (e *Engine) deleteLocal(ctx context.Context, url string) error {
	existing, err := e.store.GetPost(ctx, url)
	if err != nil {
		return err
	}
	if existing == nil {
		return &models.InvalidStateError{
			Reason: fmt.Sprintf("cannot delete %q: not present locally", url),
		}
	}
	existing.Pending = models.PendingDelete
	return e.store.SavePosts(ctx, []*models.Post{existing})
}

// ListParams narrows and pages a list query. Tags holds at most three names.
type ListParams struct {
	Sort          models.SortOrder
	Term          string
	Tags          []string
	UntaggedOnly  bool
	Visibility    models.Visibility
	ReadLaterOnly bool
	CountLimit    int
	PageLimit     int
	PageOffset    int
	ForceRefresh  bool
}

// ListOutcome is one emission of GetAllPosts.
type ListOutcome struct {
	Result *models.PostListResult
	Err    error
}

// GetAllPosts produces at most two results on the returned channel: an
// optimistic local snapshot first, then a reconciled snapshot. Offline it
// emits exactly one result. The channel is closed when the sequence ends;
// an emitted up-to-date result is never followed by another.
func (e *Engine) GetAllPosts(ctx context.Context, p ListParams) <-chan ListOutcome {
	out := make(chan ListOutcome, 2)

	go func() {
		defer close(out)

		local := func(upToDate bool) ListOutcome {
			result, err := e.localData(ctx, p, upToDate)
			return ListOutcome{Result: result, Err: err}
		}

		if !e.conn.IsConnected() {
			out <- local(true)
			return
		}

		out <- local(false)

		lastSeen := e.prefs.LastUpdate()
		remoteLast, err := e.Update(ctx)
		if err != nil {
			// The freshness probe itself failed mid-read. Treat local data
			// as-is rather than failing the whole read; a sentinel "now"
			// guarantees the timestamps cannot match.
			e.log.Warn("freshness check failed, serving local data", zap.Error(err))
			remoteLast = e.clock.Now()
		}

		if !p.ForceRefresh && lastSeen != "" && lastSeen == remoteLast {
			out <- local(true)
			return
		}

		e.refresh(ctx, remoteLast)
		out <- local(true)
	}()

	return out
}

// refresh performs the full catch-up: fetch page 0, replace all fully-synced
// rows, persist the new last-sync marker, and continue in the background when
// more pages may exist. Failures are absorbed; stale-but-present data beats
// no data on the read path.
func (e *Engine) refresh(ctx context.Context, remoteLast string) {
	page, err := e.remote.AllPosts(ctx, 0, apiPageSize)
	if err != nil {
		e.log.Warn("remote page fetch failed", zap.Error(err))
		return
	}

	// Pending rows survive both the wipe and the save so offline edits are
	// never silently discarded by a refresh.
	if err := e.store.DeleteAllSyncedPosts(ctx); err != nil {
		e.log.Warn("clearing synced rows failed", zap.Error(err))
		return
	}
	if err := e.store.SaveRemotePosts(ctx, page); err != nil {
		e.log.Warn("saving fetched page failed", zap.Error(err))
		return
	}
	if err := e.prefs.SetLastUpdate(remoteLast); err != nil {
		e.log.Warn("persisting last sync timestamp failed", zap.Error(err))
	}

	e.startPageFetch(len(page))
}

// startPageFetch launches the background catch-up for pages after the first,
// replacing any catch-up already in flight. It does not block the caller.
func (e *Engine) startPageFetch(initialOffset int) {
	if apiPageSize-initialOffset > malformedObjectThreshold {
		// Short first page: the remote has nothing further.
		return
	}

	e.mu.Lock()
	if e.cancelPages != nil {
		e.cancelPages()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelPages = cancel
	e.pages.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.pages.Done()
		e.fetchAdditionalPages(ctx, initialOffset)
	}()
}

// fetchAdditionalPages walks the remaining pages sequentially. It stops on an
// empty or short page, on any error, or at the hard offset ceiling.
func (e *Engine) fetchAdditionalPages(ctx context.Context, offset int) {
	for offset > 0 && offset < maxPageOffset {
		page, err := e.remote.AllPosts(ctx, offset, apiPageSize)
		if err != nil {
			e.log.Warn("background page fetch failed", zap.Int("offset", offset), zap.Error(err))
			return
		}
		if len(page) == 0 {
			return
		}
		if err := e.store.SaveRemotePosts(ctx, page); err != nil {
			e.log.Warn("saving background page failed", zap.Int("offset", offset), zap.Error(err))
			return
		}
		if apiPageSize-len(page) < malformedObjectThreshold {
			offset += len(page)
		} else {
			return
		}
	}
}

// localData runs the filtered query against the local store. Formatting or
// store failures here are the local query itself failing and do propagate.
func (e *Engine) localData(ctx context.Context, p ListParams, upToDate bool) (*models.PostListResult, error) {
	f, err := buildFilter(p)
	if err != nil {
		return nil, err
	}

	total, err := e.store.CountPosts(ctx, f, p.CountLimit)
	if err != nil {
		return nil, err
	}

	var posts []*models.Post
	if total > 0 {
		posts, err = e.store.AllPosts(ctx, f, p.Sort, p.PageLimit, p.PageOffset)
		if err != nil {
			return nil, err
		}
	}

	return &models.PostListResult{
		Posts:       posts,
		TotalCount:  total,
		UpToDate:    upToDate,
		CanPaginate: p.PageLimit > 0 && len(posts) == p.PageLimit,
	}, nil
}

func buildFilter(p ListParams) (store.Filter, error) {
	f := store.Filter{
		UntaggedOnly:  p.UntaggedOnly,
		Visibility:    p.Visibility,
		ReadLaterOnly: p.ReadLaterOnly,
	}

	term, err := store.FormatTerm(p.Term)
	if err != nil {
		return store.Filter{}, err
	}
	f.Term = term

	if len(p.Tags) > len(f.Tags) {
		return store.Filter{}, &models.InvalidRequestError{
			Reason: fmt.Sprintf("%d tag filters requested, at most %d supported", len(p.Tags), len(f.Tags)),
		}
	}
	for i, tag := range p.Tags {
		if tag == "" {
			continue
		}
		formatted, err := store.FormatTag(tag)
		if err != nil {
			return store.Filter{}, err
		}
		f.Tags[i] = formatted
	}
	return f, nil
}

// GetQueryResultSize counts how many local rows the term and tags match.
// The count is advisory, so every failure collapses to zero.
func (e *Engine) GetQueryResultSize(ctx context.Context, term string, tags []string) int {
	f, err := buildFilter(ListParams{Term: term, Tags: tags})
	if err != nil {
		return 0
	}
	count, err := e.store.CountPosts(ctx, f, -1)
	if err != nil {
		return 0
	}
	return count
}

// GetPost resolves a bookmark by URL, preferring the local row and falling
// back to the remote. When neither side can confirm it, the request is
// invalid.
func (e *Engine) GetPost(ctx context.Context, url string) (*models.Post, error) {
	local, err := e.store.GetPost(ctx, url)
	if err == nil && local != nil {
		return local, nil
	}

	remote, remoteErr := e.remote.GetPost(ctx, url)
	if remoteErr == nil && remote != nil {
		return remote, nil
	}

	return nil, &models.InvalidRequestError{
		Reason: fmt.Sprintf("bookmark %q cannot be confirmed locally or remotely", url),
	}
}

// SearchExistingPostTag suggests tags from historical usage. A non-empty
// prefix returns matching tags sorted alphabetically; an empty prefix returns
// the most used tags. Tags already in currentTags are excluded.
func (e *Engine) SearchExistingPostTag(ctx context.Context, prefix string, currentTags []string) ([]string, error) {
	current := make(map[string]bool, len(currentTags))
	for _, t := range currentTags {
		current[t] = true
	}

	if prefix != "" {
		formatted, err := store.FormatTag(prefix)
		if err != nil {
			return nil, err
		}
		rows, err := e.store.SearchTagTokens(ctx, formatted)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool)
		var matches []string
		for _, row := range rows {
			for _, token := range strings.Fields(html.UnescapeString(row)) {
				if !strings.HasPrefix(strings.ToLower(token), strings.ToLower(prefix)) {
					continue
				}
				if current[token] || seen[token] {
					continue
				}
				seen[token] = true
				matches = append(matches, token)
			}
		}
		sort.Strings(matches)
		return matches, nil
	}

	rows, err := e.store.AllTags(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, row := range rows {
		for _, token := range strings.Fields(html.UnescapeString(row)) {
			counts[token]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for tag := range counts {
		if !current[tag] {
			ranked = append(ranked, tag)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > defaultSuggestions {
		ranked = ranked[:defaultSuggestions]
	}
	return ranked, nil
}

// PendingSyncPosts lists every row still queued for replay.
func (e *Engine) PendingSyncPosts(ctx context.Context) ([]*models.Post, error) {
	return e.store.PendingSyncPosts(ctx)
}

// ClearCache drops every local row.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.store.DeleteAllPosts(ctx)
}

// ClearSyncedCache drops only fully reconciled rows, keeping the pending
// queue intact.
func (e *Engine) ClearSyncedCache(ctx context.Context) error {
	return e.store.DeleteAllSyncedPosts(ctx)
}
