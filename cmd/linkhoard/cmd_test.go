// ABOUTME: Tests for CLI commands
// ABOUTME: Tests command structure, flags, and registration

package main

import (
	"testing"

	"github.com/harper/linkhoard/internal/models"
)

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "linkhoard" {
		t.Errorf("expected Use to be 'linkhoard', got %q", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("expected root command to have a short description")
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"db", "offline", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestAddCommand(t *testing.T) {
	if addCmd.Use != "add <url>" {
		t.Errorf("expected Use to be 'add <url>', got %q", addCmd.Use)
	}
	for _, name := range []string{"title", "description", "tag", "private", "read-later"} {
		if addCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestRmCommand(t *testing.T) {
	if rmCmd.Use != "rm <url>" {
		t.Errorf("expected Use to be 'rm <url>', got %q", rmCmd.Use)
	}
	if len(rmCmd.Aliases) == 0 {
		t.Error("expected rm command to have aliases")
	}
}

func TestVisiblePostsHidesPendingDeletes(t *testing.T) {
	posts := []*models.Post{
		{URL: "https://a.example", Title: "kept"},
		{URL: "https://b.example", Title: "going away", Pending: models.PendingDelete},
		{URL: "https://c.example", Title: "queued edit", Pending: models.PendingUpdate},
	}

	visible, hidden := visiblePosts(posts)
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible posts, got %d", len(visible))
	}
	if hidden != 1 {
		t.Errorf("expected 1 hidden post so the footer count matches, got %d", hidden)
	}
	for _, p := range visible {
		if p.Pending == models.PendingDelete {
			t.Errorf("pending-delete row %q should be hidden", p.URL)
		}
	}
}

func TestListCommand(t *testing.T) {
	if listCmd.Use != "list" {
		t.Errorf("expected Use to be 'list', got %q", listCmd.Use)
	}
	if len(listCmd.Aliases) == 0 {
		t.Error("expected list command to have aliases")
	}
	for _, name := range []string{"search", "tag", "untagged", "private", "public", "read-later", "oldest", "limit", "offset", "refresh"} {
		if listCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestCountCommand(t *testing.T) {
	if countCmd.Use != "count" {
		t.Errorf("expected Use to be 'count', got %q", countCmd.Use)
	}
	for _, name := range []string{"search", "tag"} {
		if countCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestTagsCommand(t *testing.T) {
	if tagsCmd.Use != "tags [prefix]" {
		t.Errorf("expected Use to be 'tags [prefix]', got %q", tagsCmd.Use)
	}
	if tagsCmd.Flags().Lookup("exclude") == nil {
		t.Error("expected --exclude flag to exist")
	}
}

func TestClearCommand(t *testing.T) {
	if clearCmd.Use != "clear" {
		t.Errorf("expected Use to be 'clear', got %q", clearCmd.Use)
	}
	if clearCmd.Flags().Lookup("all") == nil {
		t.Error("expected --all flag to exist")
	}
}

func TestShowCommand(t *testing.T) {
	if showCmd.Use != "show <url>" {
		t.Errorf("expected Use to be 'show <url>', got %q", showCmd.Use)
	}
	if len(showCmd.Aliases) == 0 {
		t.Error("expected show command to have aliases")
	}
}

func TestCommandRegistration(t *testing.T) {
	commands := rootCmd.Commands()

	commandNames := make(map[string]bool)
	for _, cmd := range commands {
		commandNames[cmd.Name()] = true
	}

	expectedCommands := []string{
		"add",
		"rm",
		"list",
		"show",
		"count",
		"tags",
		"pending",
		"sync",
		"clear",
		"mcp",
		"version",
	}

	for _, expected := range expectedCommands {
		if !commandNames[expected] {
			t.Errorf("expected command %q to be registered", expected)
		}
	}
}
