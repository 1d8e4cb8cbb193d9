// ABOUTME: MCP tool definitions and handlers for bookmark operations
// ABOUTME: Tools for listing, searching, adding, deleting bookmarks and mining tag suggestions

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/linkhoard/internal/models"
	"github.com/harper/linkhoard/internal/sync"
	"github.com/mark3labs/mcp-go/mcp"
)

// Type definitions for input/output structures

type ListBookmarksInput struct {
	Tags          []string `json:"tags,omitempty"`
	ReadLaterOnly *bool    `json:"read_later_only,omitempty"`
	UntaggedOnly  *bool    `json:"untagged_only,omitempty"`
	Limit         *int     `json:"limit,omitempty"`
	Offset        *int     `json:"offset,omitempty"`
}

type SearchBookmarksInput struct {
	Term  string `json:"term"`
	Limit *int   `json:"limit,omitempty"`
}

type BookmarkOutput struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Private     bool     `json:"private"`
	ReadLater   bool     `json:"read_later"`
	Time        string   `json:"time"`
	PendingSync string   `json:"pending_sync,omitempty"`
}

type ListBookmarksOutput struct {
	Bookmarks  []BookmarkOutput `json:"bookmarks"`
	TotalCount int              `json:"total_count"`
	UpToDate   bool             `json:"up_to_date"`
}

type AddBookmarkInput struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Private     *bool    `json:"private,omitempty"`
	ReadLater   *bool    `json:"read_later,omitempty"`
}

type AddBookmarkOutput struct {
	Bookmark BookmarkOutput `json:"bookmark"`
	Message  string         `json:"message"`
}

type DeleteBookmarkInput struct {
	URL string `json:"url"`
}

type DeleteBookmarkOutput struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type SuggestTagsInput struct {
	Prefix      *string  `json:"prefix,omitempty"`
	CurrentTags []string `json:"current_tags,omitempty"`
}

type SuggestTagsOutput struct {
	Tags []string `json:"tags"`
}

type PendingBookmarksOutput struct {
	Bookmarks []BookmarkOutput `json:"bookmarks"`
	Count     int              `json:"count"`
}

func (s *Server) registerTools() {
	s.registerListBookmarksTool()
	s.registerSearchBookmarksTool()
	s.registerAddBookmarkTool()
	s.registerDeleteBookmarkTool()
	s.registerSuggestTagsTool()
	s.registerPendingBookmarksTool()
}

func (s *Server) registerListBookmarksTool() {
	tool := mcp.Tool{
		Name:        "list_bookmarks",
		Description: "List bookmarks from the local cache, reconciling with the remote service first when reachable. Supports tag filtering (up to three tags), read-later and untagged filters, and pagination. Returns bookmarks with an up_to_date flag saying whether the data reflects the remote's current state.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Filter to bookmarks carrying all of these tags (at most three). Example: ['golang', 'databases']",
				},
				"read_later_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only return bookmarks flagged to read later.",
				},
				"untagged_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only return bookmarks without any tags.",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of bookmarks to return. Default 50.",
				},
				"offset": map[string]interface{}{
					"type":        "number",
					"description": "Number of bookmarks to skip, for pagination.",
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListBookmarks)
}

func (s *Server) registerSearchBookmarksTool() {
	tool := mcp.Tool{
		Name:        "search_bookmarks",
		Description: "Full-text search over bookmark titles, descriptions and tags in the local cache. Multi-word terms match words near each other. Returns matching bookmarks and the total match count.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search term. Example: 'sqlite performance'",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of bookmarks to return. Default 50.",
				},
			},
			Required: []string{"term"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSearchBookmarks)
}

func (s *Server) registerAddBookmarkTool() {
	tool := mcp.Tool{
		Name:        "add_bookmark",
		Description: "Add or update a bookmark. When the remote service is reachable the write is confirmed remotely first; otherwise it is stored locally and queued for replay. The URL is the bookmark's identity: adding an existing URL replaces it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The bookmark URL. Example: 'https://example.com/article'",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "The bookmark title.",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional longer description.",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Optional tags. Example: ['golang', 'testing']",
				},
				"private": map[string]interface{}{
					"type":        "boolean",
					"description": "Optional. Mark the bookmark private.",
				},
				"read_later": map[string]interface{}{
					"type":        "boolean",
					"description": "Optional. Flag the bookmark to read later.",
				},
			},
			Required: []string{"url", "title"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleAddBookmark)
}

func (s *Server) registerDeleteBookmarkTool() {
	tool := mcp.Tool{
		Name:        "delete_bookmark",
		Description: "Delete a bookmark by URL. When the remote service is reachable the delete is confirmed remotely first; otherwise the bookmark must already exist locally and is queued for deletion on the next replay.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The bookmark URL to delete. Must match exactly.",
				},
			},
			Required: []string{"url"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleDeleteBookmark)
}

func (s *Server) registerSuggestTagsTool() {
	tool := mcp.Tool{
		Name:        "suggest_tags",
		Description: "Suggest tags from historical usage. With a prefix, returns tags starting with it sorted alphabetically; without, returns the most used tags. Tags listed in current_tags are excluded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"prefix": map[string]interface{}{
					"type":        "string",
					"description": "Optional tag prefix to complete. Example: 'go'",
				},
				"current_tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Tags already applied, to exclude from suggestions.",
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSuggestTags)
}

func (s *Server) registerPendingBookmarksTool() {
	tool := mcp.Tool{
		Name:        "pending_bookmarks",
		Description: "List bookmarks with local changes still queued for replay against the remote service (offline adds, updates and deletes).",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	s.mcpServer.AddTool(tool, s.handlePendingBookmarks)
}

// Handlers

func (s *Server) handleListBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ListBookmarksInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	params := sync.ListParams{
		Tags:       input.Tags,
		CountLimit: -1,
		PageLimit:  50,
	}
	if input.ReadLaterOnly != nil {
		params.ReadLaterOnly = *input.ReadLaterOnly
	}
	if input.UntaggedOnly != nil {
		params.UntaggedOnly = *input.UntaggedOnly
	}
	if input.Limit != nil {
		params.PageLimit = *input.Limit
	}
	if input.Offset != nil {
		params.PageOffset = *input.Offset
	}

	result, err := lastOutcome(ctx, s.engine, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	return jsonResult(ListBookmarksOutput{
		Bookmarks:  mapBookmarks(result.Posts),
		TotalCount: result.TotalCount,
		UpToDate:   result.UpToDate,
	})
}

func (s *Server) handleSearchBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SearchBookmarksInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.Term == "" {
		return nil, fmt.Errorf("term is required")
	}

	params := sync.ListParams{
		Term:       input.Term,
		CountLimit: -1,
		PageLimit:  50,
	}
	if input.Limit != nil {
		params.PageLimit = *input.Limit
	}

	result, err := lastOutcome(ctx, s.engine, params)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return jsonResult(ListBookmarksOutput{
		Bookmarks:  mapBookmarks(result.Posts),
		TotalCount: result.TotalCount,
		UpToDate:   result.UpToDate,
	})
}

func (s *Server) handleAddBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input AddBookmarkInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.URL == "" || input.Title == "" {
		return nil, fmt.Errorf("url and title are required")
	}

	post := models.Post{
		URL:       input.URL,
		Title:     input.Title,
		Tags:      input.Tags,
		Private:   input.Private,
		ReadLater: input.ReadLater,
	}
	if input.Description != nil {
		post.Description = *input.Description
	}

	saved, err := s.engine.Add(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to add bookmark: %w", err)
	}

	message := "bookmark saved"
	if saved.Pending != models.Synced {
		message = "bookmark saved locally, queued for sync"
	}

	return jsonResult(AddBookmarkOutput{
		Bookmark: mapBookmark(saved),
		Message:  message,
	})
}

func (s *Server) handleDeleteBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input DeleteBookmarkInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	if err := s.engine.Delete(ctx, input.URL); err != nil {
		return nil, fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return jsonResult(DeleteBookmarkOutput{
		Success: true,
		URL:     input.URL,
		Message: "bookmark deleted",
	})
}

func (s *Server) handleSuggestTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SuggestTagsInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	prefix := ""
	if input.Prefix != nil {
		prefix = *input.Prefix
	}

	tags, err := s.engine.SearchExistingPostTag(ctx, prefix, input.CurrentTags)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tags: %w", err)
	}

	return jsonResult(SuggestTagsOutput{Tags: tags})
}

func (s *Server) handlePendingBookmarks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pending, err := s.engine.PendingSyncPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookmarks: %w", err)
	}

	return jsonResult(PendingBookmarksOutput{
		Bookmarks: mapBookmarks(pending),
		Count:     len(pending),
	})
}

// lastOutcome drains the engine's result sequence and keeps the final
// snapshot, which is the reconciled one when the remote was reachable.
func lastOutcome(ctx context.Context, engine *sync.Engine, params sync.ListParams) (*models.PostListResult, error) {
	var result *models.PostListResult
	var firstErr error
	for outcome := range engine.GetAllPosts(ctx, params) {
		if outcome.Err != nil {
			if firstErr == nil {
				firstErr = outcome.Err
			}
			continue
		}
		result = outcome.Result
	}
	if result == nil {
		return nil, firstErr
	}
	return result, nil
}

func mapBookmark(p *models.Post) BookmarkOutput {
	return BookmarkOutput{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Private:     p.IsPrivate(),
		ReadLater:   p.IsReadLater(),
		Time:        p.Time,
		PendingSync: p.Pending.String(),
	}
}

func mapBookmarks(posts []*models.Post) []BookmarkOutput {
	out := make([]BookmarkOutput, len(posts))
	for i, p := range posts {
		out[i] = mapBookmark(p)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
