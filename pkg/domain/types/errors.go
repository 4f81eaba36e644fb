package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across the pipeline. Callers match with
// errors.Is; goerr values carry the offending identifier so the
// command layer can render a message without exposing indexed content.
var (
	ErrNotFound             = goerr.New("record not found")
	ErrEmbeddingUnavailable = goerr.New("embedding service unavailable")
	ErrStoreUnavailable     = goerr.New("vector store unavailable")
	ErrGenerationFailed     = goerr.New("generation request failed")
	ErrUnsupportedFormat    = goerr.New("unsupported file format")
	ErrUnreachableSource    = goerr.New("source could not be fetched")
)
