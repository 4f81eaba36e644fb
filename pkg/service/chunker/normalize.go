package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// Collapse reduces whitespace runs to single spaces and trims the
// result. Casing is untouched, so the collapsed form is what chunks
// store for display.
func Collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Normalize canonicalizes text for hashing: whitespace collapse plus
// case folding. Deterministic, locale-independent and idempotent. The
// normalized form is a hash basis only and is never stored.
func Normalize(text string) string {
	return strings.ToLower(Collapse(text))
}

// Hash digests the normalized form of the text. Two inputs that
// normalize identically always hash identically.
func Hash(text string) types.ContentHash {
	return types.NewContentHash(Normalize(text))
}

// customEmoji matches chat-platform custom emoji markup like
// <:name:123456> and animated <a:name:123456>.
var customEmoji = regexp.MustCompile(`<a?:[A-Za-z0-9_~]+:[0-9]+>`)

// IsEmoteOnly reports whether the text carries no indexable content:
// empty, or nothing left after stripping custom emoji markup,
// whitespace and punctuation.
func IsEmoteOnly(text string) bool {
	stripped := customEmoji.ReplaceAllString(text, "")
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
