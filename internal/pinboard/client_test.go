// ABOUTME: Tests for the Pinboard HTTP client
// ABOUTME: Uses httptest servers to verify params, result codes, and the 414 fallback

package pinboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harper/linkhoard/internal/models"
)

func TestUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/update" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("auth_token") != "user:abc123" {
			t.Errorf("missing auth token, got %q", r.URL.Query().Get("auth_token"))
		}
		if r.URL.Query().Get("format") != "json" {
			t.Error("expected format=json")
		}
		fmt.Fprint(w, `{"update_time":"2024-01-05T12:00:00Z"}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "user:abc123")
	got, err := c.Update(context.Background())
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got != "2024-01-05T12:00:00Z" {
		t.Errorf("expected update time, got %q", got)
	}
}

func TestUpdateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	_, err := c.Update(context.Background())
	if err == nil {
		t.Fatal("expected error on 500")
	}
	var transportErr *models.TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("expected TransportError, got %T", err)
	}
	if transportErr.Endpoint != "posts/update" {
		t.Errorf("expected endpoint posts/update, got %q", transportErr.Endpoint)
	}
}

func TestAddDone(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"result_code":"done"}`)
	}))
	defer srv.Close()

	private := true
	readLater := false
	c := NewHTTPClient(srv.URL, "token")
	code, err := c.Add(context.Background(), AddParams{
		URL:         "https://example.com",
		Title:       "Example",
		Description: "a description",
		Private:     &private,
		ReadLater:   &readLater,
		Tags:        []string{"golang", "web"},
		Replace:     true,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if code != ResultDone {
		t.Errorf("expected done, got %q", code)
	}

	checks := map[string]string{
		"url":         "https://example.com",
		"description": "Example",
		"extended":    "a description",
		"shared":      "no",
		"toread":      "no",
		"tags":        "golang web",
		"replace":     "yes",
	}
	for k, want := range checks {
		if got := gotQuery[k]; len(got) != 1 || got[0] != want {
			t.Errorf("param %s = %v, want %q", k, got, want)
		}
	}
}

func TestAddOmitsUnsetTriState(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"result_code":"done"}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	if _, err := c.Add(context.Background(), AddParams{URL: "https://example.com", Title: "x"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for _, k := range []string{"shared", "toread", "tags", "replace", "extended"} {
		if _, ok := gotQuery[k]; ok {
			t.Errorf("param %s should be absent when unset", k)
		}
	}
}

func TestAddRetriesOn414(t *testing.T) {
	longDescription := strings.Repeat("x", 4000)
	var lengths []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := r.URL.Query().Get("extended")
		lengths = append(lengths, len(ext))
		if len(lengths) == 1 {
			w.WriteHeader(http.StatusRequestURITooLong)
			return
		}
		fmt.Fprint(w, `{"result_code":"done"}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	code, err := c.Add(context.Background(), AddParams{
		URL:         "https://example.com",
		Title:       "Example",
		Description: longDescription,
	})
	if err != nil {
		t.Fatalf("Add should succeed on retry: %v", err)
	}
	if code != ResultDone {
		t.Errorf("expected done, got %q", code)
	}
	if len(lengths) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(lengths))
	}
	if lengths[1] >= lengths[0] {
		t.Errorf("retry should shrink the description: %d -> %d", lengths[0], lengths[1])
	}
}

func TestAddTruncatesTitle(t *testing.T) {
	var gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.URL.Query().Get("description")
		fmt.Fprint(w, `{"result_code":"done"}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	if _, err := c.Add(context.Background(), AddParams{
		URL:   "https://example.com",
		Title: strings.Repeat("t", 300),
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(gotTitle) != 255 {
		t.Errorf("expected title truncated to 255, got %d", len(gotTitle))
	}
}

func TestDeleteResultCodes(t *testing.T) {
	for _, want := range []ResultCode{ResultDone, ResultMissingURL} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("url") != "https://example.com" {
				t.Error("missing url param")
			}
			fmt.Fprintf(w, `{"result_code":%q}`, string(want))
		}))

		c := NewHTTPClient(srv.URL, "token")
		code, err := c.Delete(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if code != want {
			t.Errorf("expected %q, got %q", want, code)
		}
		srv.Close()
	}
}

func TestGetPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"date":"2024-01-05","user":"u","posts":[{
			"href":"https://example.com/a%20b",
			"description":"Example",
			"extended":"notes",
			"hash":"abc",
			"time":"2024-01-05T12:00:00Z",
			"shared":"no",
			"toread":"yes",
			"tags":"zeta alpha"
		}]}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	post, err := c.GetPost(context.Background(), "https://example.com/a b")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if post == nil {
		t.Fatal("expected post, got nil")
	}
	if post.URL != "https://example.com/a b" {
		t.Errorf("href should be decoded, got %q", post.URL)
	}
	if post.Title != "Example" || post.Description != "notes" {
		t.Errorf("unexpected title/description: %q %q", post.Title, post.Description)
	}
	if !post.IsPrivate() || !post.IsReadLater() {
		t.Error("expected private, read-later post")
	}
	if len(post.Tags) != 2 || post.Tags[0] != "alpha" {
		t.Errorf("tags should be sorted, got %v", post.Tags)
	}
}

func TestGetPostAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"date":"2024-01-05","user":"u","posts":[]}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	post, err := c.GetPost(context.Background(), "https://nowhere.example")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if post != nil {
		t.Errorf("expected nil for unknown URL, got %+v", post)
	}
}

func TestAllPostsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/all" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("start") != "100" {
			t.Errorf("expected start=100, got %q", r.URL.Query().Get("start"))
		}
		if r.URL.Query().Get("results") != "50" {
			t.Errorf("expected results=50, got %q", r.URL.Query().Get("results"))
		}
		fmt.Fprint(w, `[
			{"href":"https://one.example","description":"one","hash":"h1","time":"2024-01-01T00:00:00Z","shared":"yes","toread":"no","tags":""},
			{"href":"https://two.example","description":"two","hash":"h2","time":"2024-01-02T00:00:00Z","shared":"yes","toread":"no","tags":"a b"}
		]`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "token")
	posts, err := c.AllPosts(context.Background(), 100, 50)
	if err != nil {
		t.Fatalf("AllPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[1].Tags[0] != "a" {
		t.Errorf("unexpected tags on second post: %v", posts[1].Tags)
	}
}

func TestDecodeHref(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a%20b", "https://example.com/a b"},
		{"https://example.com/c++", "https://example.com/c++"},
		{"https://example.com/100%25", "https://example.com/100%"},
		{"https://example.com/100%", "https://example.com/100%"},
	}
	for _, tt := range tests {
		if got := decodeHref(tt.in); got != tt.want {
			t.Errorf("decodeHref(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModelUnescapesTags(t *testing.T) {
	r := remotePost{
		Href:   "https://example.com",
		Tags:   "c&amp;c tools",
		Shared: "yes",
		Toread: "no",
	}
	post := r.model()
	if len(post.Tags) != 2 || post.Tags[0] != "c&c" {
		t.Errorf("expected HTML entities unescaped, got %v", post.Tags)
	}
}
