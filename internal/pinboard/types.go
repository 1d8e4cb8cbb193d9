// ABOUTME: Wire types for the Pinboard v1 API and their mapping to domain models
// ABOUTME: Sanitizes remote quirks (encoded hrefs, HTML entities in tags) on the way in

package pinboard

import (
	"html"
	"net/url"
	"sort"
	"strings"

	"github.com/harper/linkhoard/internal/models"
)

// ResultCode is the closed set of outcomes the API reports for writes.
type ResultCode string

const (
	ResultDone              ResultCode = "done"
	ResultItemAlreadyExists ResultCode = "item already exists"
	ResultMissingURL        ResultCode = "missing url"
)

type updateDTO struct {
	UpdateTime string `json:"update_time"`
}

type genericResponseDTO struct {
	ResultCode string `json:"result_code"`
}

type getPostDTO struct {
	Date  string      `json:"date"`
	User  string      `json:"user"`
	Posts []remotePost `json:"posts"`
}

type remotePost struct {
	Href        string `json:"href"`
	Description string `json:"description"` // the bookmark title
	Extended    string `json:"extended"`    // the bookmark description
	Hash        string `json:"hash"`
	Time        string `json:"time"`
	Shared      string `json:"shared"`
	Toread      string `json:"toread"`
	Tags        string `json:"tags"`
}

// guardBareEscapes rewrites any % that does not start a valid escape sequence
// to %25, so hrefs with literal percent signs survive decoding.
func guardBareEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !isHexPair(s, i+1) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHexPair(s string, i int) bool {
	if i+1 >= len(s) {
		return false
	}
	return isHex(s[i]) && isHex(s[i+1])
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// decodeHref undoes the API's URL encoding while preserving literal plus
// signs and stray percent characters.
func decodeHref(href string) string {
	prepared := strings.ReplaceAll(guardBareEscapes(href), "+", "%2B")
	decoded, err := url.QueryUnescape(prepared)
	if err != nil {
		return href
	}
	return decoded
}

func (r *remotePost) model() *models.Post {
	private := r.Shared == "no"
	readLater := r.Toread == "yes"

	var tags []string
	if strings.TrimSpace(r.Tags) != "" {
		tags = strings.Fields(html.UnescapeString(r.Tags))
		sort.Strings(tags)
	}

	return &models.Post{
		URL:         decodeHref(r.Href),
		Title:       r.Description,
		Description: r.Extended,
		ID:          r.Hash,
		Time:        r.Time,
		Private:     &private,
		ReadLater:   &readLater,
		Tags:        tags,
		Pending:     models.Synced,
	}
}

func mapPosts(remote []remotePost) []*models.Post {
	if len(remote) == 0 {
		return nil
	}
	posts := make([]*models.Post, len(remote))
	for i := range remote {
		posts[i] = remote[i].model()
	}
	return posts
}
