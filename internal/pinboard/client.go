// ABOUTME: Thin HTTP client for the Pinboard v1 bookmarking API
// ABOUTME: Covers update/add/delete/get/all with result-code parsing and 414 fallback

package pinboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harper/linkhoard/internal/models"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.pinboard.in/v1"

	// textMaxLength caps title and joined tags, matching the API's text type.
	textMaxLength = 255

	// The API abuses GET, so long descriptions can push the request URI over
	// the server's limit. Budget against uriMaxLength first and fall back to
	// uriSafeLength when the server answers 414.
	uriMaxLength  = 3000
	uriSafeLength = 2000
	baseURLLength = 90

	maxResponseSize = 32 * 1024 * 1024
)

// AddParams carries the fields of an add-or-replace request. Private and
// ReadLater are tri-state: nil leaves the server-side default untouched.
type AddParams struct {
	URL         string
	Title       string
	Description string
	Private     *bool
	ReadLater   *bool
	Tags        []string
	Replace     bool
}

// Client is the contract the sync engine consumes.
type Client interface {
	// Update returns the remote's last-modified timestamp.
	Update(ctx context.Context) (string, error)

	// Add creates or replaces a bookmark and reports the API result code.
	Add(ctx context.Context, p AddParams) (ResultCode, error)

	// Delete removes a bookmark and reports the API result code.
	Delete(ctx context.Context, url string) (ResultCode, error)

	// GetPost fetches a single bookmark, returning nil when the remote has
	// no record for the URL.
	GetPost(ctx context.Context, url string) (*models.Post, error)

	// AllPosts fetches one page of bookmarks at the given offset.
	AllPosts(ctx context.Context, offset, limit int) ([]*models.Post, error)
}

// HTTPClient implements Client over HTTPS with token auth.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client for the API at baseURL. The token is the
// Pinboard auth token (user:hex).
func NewHTTPClient(baseURL, token string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) Update(ctx context.Context) (string, error) {
	var dto updateDTO
	if err := c.get(ctx, "posts/update", nil, &dto); err != nil {
		return "", err
	}
	return dto.UpdateTime, nil
}

func (c *HTTPClient) Add(ctx context.Context, p AddParams) (ResultCode, error) {
	title := truncate(p.Title, textMaxLength)
	tags := truncate(joinTags(p.Tags), textMaxLength)

	var shared, toread string
	if p.Private != nil {
		shared = boolLiteral(!*p.Private)
	}
	if p.ReadLater != nil {
		toread = boolLiteral(*p.ReadLater)
	}
	replace := ""
	if p.Replace {
		replace = "yes"
	}

	overhead := baseURLLength + len(p.URL) + len(title) + len(shared) + len(toread) + len(tags) + len(replace)

	add := func(descriptionBudget int) (ResultCode, int, error) {
		params := url.Values{}
		params.Set("url", p.URL)
		params.Set("description", title)
		if p.Description != "" {
			params.Set("extended", truncate(p.Description, descriptionBudget))
		}
		if shared != "" {
			params.Set("shared", shared)
		}
		if toread != "" {
			params.Set("toread", toread)
		}
		if tags != "" {
			params.Set("tags", tags)
		}
		if replace != "" {
			params.Set("replace", replace)
		}

		var dto genericResponseDTO
		status, err := c.getWithStatus(ctx, "posts/add", params, &dto)
		return ResultCode(dto.ResultCode), status, err
	}

	code, status, err := add(uriMaxLength - overhead)
	if err != nil && status == http.StatusRequestURITooLong {
		code, _, err = add(uriSafeLength - overhead)
	}
	return code, err
}

func (c *HTTPClient) Delete(ctx context.Context, postURL string) (ResultCode, error) {
	params := url.Values{}
	params.Set("url", postURL)

	var dto genericResponseDTO
	if err := c.get(ctx, "posts/delete", params, &dto); err != nil {
		return "", err
	}
	return ResultCode(dto.ResultCode), nil
}

func (c *HTTPClient) GetPost(ctx context.Context, postURL string) (*models.Post, error) {
	params := url.Values{}
	params.Set("url", postURL)

	var dto getPostDTO
	if err := c.get(ctx, "posts/get", params, &dto); err != nil {
		return nil, err
	}
	if len(dto.Posts) == 0 {
		return nil, nil
	}
	return dto.Posts[0].model(), nil
}

func (c *HTTPClient) AllPosts(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	params := url.Values{}
	params.Set("start", strconv.Itoa(offset))
	params.Set("results", strconv.Itoa(limit))

	var dto []remotePost
	if err := c.get(ctx, "posts/all", params, &dto); err != nil {
		return nil, err
	}
	return mapPosts(dto), nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	_, err := c.getWithStatus(ctx, endpoint, params, v)
	return err
}

// getWithStatus performs one API GET and decodes the JSON response. The HTTP
// status is returned alongside the error so callers can react to 414.
func (c *HTTPClient) getWithStatus(ctx context.Context, endpoint string, params url.Values, v any) (int, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("auth_token", c.token)
	params.Set("format", "json")

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, &models.TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", "linkhoard/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, &models.TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &models.TransportError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, &models.TransportError{Endpoint: endpoint, Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return resp.StatusCode, &models.TransportError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("decode response: %w", err),
		}
	}
	return resp.StatusCode, nil
}

func boolLiteral(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

func truncate(s string, max int) string {
	if max < 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
