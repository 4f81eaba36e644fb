package types

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// GuildID identifies the chat server a chunk was ingested from.
// Zero means the chunk has no guild scope (e.g. a standalone URL).
type GuildID int64

// ChannelID identifies the channel a chunk was ingested from. Zero
// means no channel scope.
type ChannelID int64

// AuthorID identifies the author of a chat-origin chunk. Zero means
// the chunk did not originate from a chat message.
type AuthorID int64

// MessageID identifies the chat message a chunk was extracted from.
type MessageID int64

// ContentHash is the hex sha256 digest of normalized chunk text. It is
// the deduplication key and the logical primary identity of a chunk.
type ContentHash string

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewContentHash digests the given text as-is. Callers are expected to
// normalize the text first; see the chunker package.
func NewContentHash(normalized string) ContentHash {
	sum := sha256.Sum256([]byte(normalized))
	return ContentHash(hex.EncodeToString(sum[:]))
}

// Validate checks if the ContentHash is a well-formed sha256 hex digest
func (h ContentHash) Validate() error {
	if !hashPattern.MatchString(string(h)) {
		return goerr.New("content hash must be a 64-char hex sha256 digest", goerr.V("hash", h))
	}
	return nil
}

// String returns the string representation of ContentHash
func (h ContentHash) String() string {
	return string(h)
}

// pointNamespace scopes the UUIDs derived from content hashes. The
// vector store only accepts integers or UUIDs as point IDs, so the
// point ID is a UUIDv5 of the hash: deterministic, which makes
// upsert-by-id idempotent for identical content.
var pointNamespace = uuid.MustParse("9f2c1a40-3c34-4bca-9c6e-5b1f6a1f8f27")

// PointID returns the deterministic vector store point ID for the hash
func (h ContentHash) PointID() string {
	return uuid.NewSHA1(pointNamespace, []byte(h)).String()
}
