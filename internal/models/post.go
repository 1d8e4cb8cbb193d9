// ABOUTME: Bookmark model and the per-record pending-sync state machine
// ABOUTME: Posts are keyed by URL; pending markers queue offline mutations for replay

package models

// PendingSync tracks whether a local row still has to be replayed against the
// remote service. The zero value means the row is fully reconciled.
type PendingSync int

const (
	Synced PendingSync = iota
	PendingAdd
	PendingUpdate
	PendingDelete
)

// String returns the storage literal for the marker. Synced maps to the empty
// string so reconciled rows carry no marker at all.
func (p PendingSync) String() string {
	switch p {
	case PendingAdd:
		return "add"
	case PendingUpdate:
		return "update"
	case PendingDelete:
		return "delete"
	default:
		return ""
	}
}

// ParsePendingSync is the inverse of String. Unknown literals map to Synced.
func ParsePendingSync(s string) PendingSync {
	switch s {
	case "add":
		return PendingAdd
	case "update":
		return PendingUpdate
	case "delete":
		return PendingDelete
	default:
		return Synced
	}
}

// Post represents one bookmark as known to the local cache.
type Post struct {
	URL         string // natural primary key
	Title       string
	Description string
	ID          string // opaque hash, assigned locally before remote confirmation
	Time        string // creation time in the API's textual format
	Private     *bool  // nil = not overridden
	ReadLater   *bool  // nil = not overridden
	Tags        []string
	Pending     PendingSync
}

// IsPrivate resolves the tri-state visibility flag, defaulting to public.
func (p *Post) IsPrivate() bool {
	return p.Private != nil && *p.Private
}

// IsReadLater resolves the tri-state read-later flag, defaulting to false.
func (p *Post) IsReadLater() bool {
	return p.ReadLater != nil && *p.ReadLater
}

// SortOrder selects the ordering of list results by creation time.
type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
)

// Visibility filters list results by the shared flag.
type Visibility int

const (
	VisibilityAny Visibility = iota
	VisibilityPublic
	VisibilityPrivate
)

// PostListResult is one emission of a list query: a local snapshot plus the
// flag saying whether it already reflects the remote's current state.
type PostListResult struct {
	Posts       []*Post
	TotalCount  int
	UpToDate    bool
	CanPaginate bool
}
