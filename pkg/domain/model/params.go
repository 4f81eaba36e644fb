package model

// RetrievalParams configures one retrieval call. Values come from the
// external config surface and are passed through per call, never
// cached, so reconfiguration takes effect on the next operation.
type RetrievalParams struct {
	TopK     int
	MinScore float64
	Filter   SearchFilter
}

// Budget holds the ceilings applied when assembling a prompt.
// MaxResponseTokens is passed through to the generator, not enforced
// locally.
type Budget struct {
	MaxContextChars    int
	MaxHistoryMessages int
	MaxRetrievedChunks int
	MaxResponseTokens  int
}

// ChunkingParams configures how ingested text is split
type ChunkingParams struct {
	MaxChunkSize int
	Overlap      int
}

// DefaultChunkingParams mirrors the defaults of the upstream bot
func DefaultChunkingParams() ChunkingParams {
	return ChunkingParams{MaxChunkSize: 1200, Overlap: 120}
}
