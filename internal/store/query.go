// ABOUTME: Query formatting for the FTS5 index
// ABOUTME: Turns free text and tag names into safe MATCH fragments, rejecting unsafe input

package store

import (
	"regexp"
	"strings"

	"github.com/harper/linkhoard/internal/models"
)

// termAllowed is the character set FTS5 tokenizes the way we expect. Anything
// outside it (parentheses, embedded quotes) could break out of the MATCH
// syntax, so such input is rejected instead of silently stripped.
var termAllowed = regexp.MustCompile(`^[A-Za-z0-9 ._\-=#@&]*$`)

// FormatTerm prepares a free-text search term for an FTS5 MATCH expression.
// Each token gets a trailing wildcard and multi-token terms match by
// proximity: "two terms" becomes `NEAR(two* terms*)`.
// A blank term formats to the empty string, meaning no term filter.
func FormatTerm(term string) (string, error) {
	if !termAllowed.MatchString(term) {
		return "", &models.InvalidQueryError{Input: term}
	}

	tokens := strings.Fields(term)
	if len(tokens) == 0 {
		return "", nil
	}
	// Tokens are quoted so punctuation like "." stays out of the bareword
	// grammar; the prefix star must sit outside the quotes.
	for i, token := range tokens {
		tokens[i] = `"` + token + `"*`
	}
	if len(tokens) == 1 {
		return tokens[0], nil
	}
	return "NEAR(" + strings.Join(tokens, " ") + ")", nil
}

// FormatTag prepares a tag name for a MATCH expression against the tags
// column, quoting it as a single phrase with a trailing wildcard: `"tag"*`.
func FormatTag(tag string) (string, error) {
	if strings.ContainsAny(tag, `"()`) {
		return "", &models.InvalidQueryError{Input: tag}
	}
	return `"` + tag + `"*`, nil
}
