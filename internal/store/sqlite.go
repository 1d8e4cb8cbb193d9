// ABOUTME: SQLite implementation of the local bookmark cache using modernc.org/sqlite (pure Go)
// ABOUTME: FTS5 external-content index over title/description/tags, kept in sync with triggers

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/linkhoard/internal/models"
	_ "modernc.org/sqlite"
)

const (
	literalYes   = "yes"
	literalNo    = "no"
	tagSeparator = " "
)

// SQLite implements Store on an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL keeps reads cheap while a refresh rewrites the table. The busy
	// timeout makes concurrent writers queue on the write lock instead of
	// failing with SQLITE_BUSY; the pending replay fans out writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS posts (
			href TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			hash TEXT NOT NULL,
			time TEXT NOT NULL,
			shared TEXT NOT NULL DEFAULT 'yes',
			toread TEXT NOT NULL DEFAULT 'no',
			tags TEXT NOT NULL DEFAULT '',
			pending_sync TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_posts_shared ON posts(shared);
		CREATE INDEX IF NOT EXISTS idx_posts_toread ON posts(toread);
		CREATE INDEX IF NOT EXISTS idx_posts_pending ON posts(pending_sync);

		-- FTS5 for term and tag search
		CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
			title,
			description,
			tags,
			content=posts,
			content_rowid=rowid
		);

		-- Triggers to keep FTS in sync
		CREATE TRIGGER IF NOT EXISTS posts_ai AFTER INSERT ON posts BEGIN
			INSERT INTO posts_fts(rowid, title, description, tags)
			VALUES (new.rowid, new.title, new.description, new.tags);
		END;

		CREATE TRIGGER IF NOT EXISTS posts_ad AFTER DELETE ON posts BEGIN
			INSERT INTO posts_fts(posts_fts, rowid, title, description, tags)
			VALUES ('delete', old.rowid, old.title, old.description, old.tags);
		END;

		CREATE TRIGGER IF NOT EXISTS posts_au AFTER UPDATE ON posts BEGIN
			INSERT INTO posts_fts(posts_fts, rowid, title, description, tags)
			VALUES ('delete', old.rowid, old.title, old.description, old.tags);
			INSERT INTO posts_fts(rowid, title, description, tags)
			VALUES (new.rowid, new.title, new.description, new.tags);
		END;
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const postColumns = "href, title, description, hash, time, shared, toread, tags, pending_sync"

// SavePosts upserts the batch inside one transaction so a cancelled caller
// never observes a partially applied page.
func (s *SQLite) SavePosts(ctx context.Context, posts []*models.Post) error {
	return s.upsertPosts(ctx, posts, "")
}

// SaveRemotePosts upserts a fetched page but leaves rows carrying a pending
// marker untouched. A queued offline edit's URL normally exists remotely too,
// so an unconditional upsert would replace the edit with remote content.
func (s *SQLite) SaveRemotePosts(ctx context.Context, posts []*models.Post) error {
	return s.upsertPosts(ctx, posts, "WHERE posts.pending_sync = ''")
}

func (s *SQLite) upsertPosts(ctx context.Context, posts []*models.Post, guard string) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.LocalStoreError{Op: "begin save", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(href) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			hash = excluded.hash,
			time = excluded.time,
			shared = excluded.shared,
			toread = excluded.toread,
			tags = excluded.tags,
			pending_sync = excluded.pending_sync
		`+guard)
	if err != nil {
		return &models.LocalStoreError{Op: "prepare save", Err: err}
	}
	defer stmt.Close()

	for _, p := range posts {
		shared := literalYes
		if p.IsPrivate() {
			shared = literalNo
		}
		toread := literalNo
		if p.IsReadLater() {
			toread = literalYes
		}
		_, err := stmt.ExecContext(ctx,
			p.URL, p.Title, p.Description, p.ID, p.Time,
			shared, toread, strings.Join(p.Tags, tagSeparator), p.Pending.String(),
		)
		if err != nil {
			return &models.LocalStoreError{Op: "save post", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.LocalStoreError{Op: "commit save", Err: err}
	}
	return nil
}

// GetPost retrieves a post by URL, returning nil when absent.
func (s *SQLite) GetPost(ctx context.Context, url string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE href = ?", url)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.LocalStoreError{Op: "get post", Err: err}
	}
	return post, nil
}

func (s *SQLite) DeletePost(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE href = ?", url); err != nil {
		return &models.LocalStoreError{Op: "delete post", Err: err}
	}
	return nil
}

func (s *SQLite) DeletePendingPost(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE href = ? AND pending_sync != ''", url)
	if err != nil {
		return &models.LocalStoreError{Op: "delete pending post", Err: err}
	}
	return nil
}

func (s *SQLite) DeleteAllSyncedPosts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE pending_sync = ''"); err != nil {
		return &models.LocalStoreError{Op: "delete synced posts", Err: err}
	}
	return nil
}

func (s *SQLite) DeleteAllPosts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return &models.LocalStoreError{Op: "delete all posts", Err: err}
	}
	return nil
}

// CountPosts counts rows matching the filter, up to limit (-1 = no limit).
func (s *SQLite) CountPosts(ctx context.Context, f Filter, limit int) (int, error) {
	if limit == 0 {
		limit = -1
	}
	where, args := buildWhere(f)
	query := "SELECT COUNT(*) FROM (SELECT hash FROM posts" + where + " LIMIT ?)"
	args = append(args, limit)

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, &models.LocalStoreError{Op: "count posts", Err: err}
	}
	return count, nil
}

// AllPosts returns matching rows ordered by creation time.
func (s *SQLite) AllPosts(ctx context.Context, f Filter, sort models.SortOrder, limit, offset int) ([]*models.Post, error) {
	if limit == 0 {
		limit = -1
	}
	where, args := buildWhere(f)

	order := " ORDER BY time DESC"
	if sort == models.OldestFirst {
		order = " ORDER BY time ASC"
	}

	query := "SELECT " + postColumns + " FROM posts" + where + order + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.LocalStoreError{Op: "query posts", Err: err}
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, &models.LocalStoreError{Op: "scan post", Err: err}
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.LocalStoreError{Op: "iterate posts", Err: err}
	}
	return posts, nil
}

// SearchTagTokens returns the raw tags column of rows whose tags match the
// formatted tag expression.
func (s *SQLite) SearchTagTokens(ctx context.Context, formattedTag string) ([]string, error) {
	return s.stringColumn(ctx, "search tag tokens",
		"SELECT tags FROM posts_fts WHERE tags MATCH ?", formattedTag)
}

// AllTags returns the raw tags column of every tagged row.
func (s *SQLite) AllTags(ctx context.Context) ([]string, error) {
	return s.stringColumn(ctx, "all tags",
		"SELECT tags FROM posts WHERE tags != ''")
}

func (s *SQLite) stringColumn(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.LocalStoreError{Op: op, Err: err}
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, &models.LocalStoreError{Op: op, Err: err}
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.LocalStoreError{Op: op, Err: err}
	}
	return values, nil
}

// PendingSyncPosts returns every row with a pending-sync marker.
func (s *SQLite) PendingSyncPosts(ctx context.Context) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts WHERE pending_sync != ''")
	if err != nil {
		return nil, &models.LocalStoreError{Op: "pending posts", Err: err}
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, &models.LocalStoreError{Op: "scan pending post", Err: err}
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.LocalStoreError{Op: "iterate pending posts", Err: err}
	}
	return posts, nil
}

// buildWhere translates a Filter into a WHERE clause. Term and tag filters go
// through the FTS index by rowid; untagged-only overrides the tag slots.
func buildWhere(f Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Term != "" {
		conds = append(conds, "posts.rowid IN (SELECT rowid FROM posts_fts WHERE posts_fts MATCH ?)")
		args = append(args, f.Term)
	}

	if f.UntaggedOnly {
		conds = append(conds, "posts.tags = ''")
	} else {
		for _, tag := range f.Tags {
			if tag == "" {
				continue
			}
			conds = append(conds, "posts.rowid IN (SELECT rowid FROM posts_fts WHERE tags MATCH ?)")
			args = append(args, tag)
		}
	}

	switch f.Visibility {
	case models.VisibilityPublic:
		conds = append(conds, "posts.shared = '"+literalYes+"'")
	case models.VisibilityPrivate:
		conds = append(conds, "posts.shared = '"+literalNo+"'")
	}

	if f.ReadLaterOnly {
		conds = append(conds, "posts.toread = '"+literalYes+"'")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPost(row scannable) (*models.Post, error) {
	var (
		p       models.Post
		shared  string
		toread  string
		tags    string
		pending string
	)
	err := row.Scan(&p.URL, &p.Title, &p.Description, &p.ID, &p.Time, &shared, &toread, &tags, &pending)
	if err != nil {
		return nil, err
	}

	private := shared == literalNo
	readLater := toread == literalYes
	p.Private = &private
	p.ReadLater = &readLater
	if tags != "" {
		p.Tags = strings.Split(tags, tagSeparator)
	}
	p.Pending = models.ParsePendingSync(pending)
	return &p, nil
}
