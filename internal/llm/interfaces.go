// Package llm provides the extraction oracle integration: completion clients
// for Ollama, OpenAI, and Anthropic, a strict JSON-only PII extraction prompt,
// and a response parser that validates the oracle's output per chunk.
package llm

import (
	"context"
	"errors"
)

// TextGenerator is the interface for LLM text completion.
// The extraction prompt uses single-string completion style (not chat).
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

var (
	// ErrMissingAPIKey indicates a remote provider was selected without
	// credentials. This is a configuration error, not a runtime one.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrExtraction indicates the oracle call itself failed. Extraction
	// errors are recoverable at chunk granularity: callers log and skip
	// the chunk rather than aborting the document scan.
	ErrExtraction = errors.New("extraction failed")

	// ErrSchemaValidation indicates the oracle returned output that does
	// not validate against the expected extraction schema. Like
	// ErrExtraction, it is recoverable at chunk granularity.
	ErrSchemaValidation = errors.New("schema validation failed")
)
