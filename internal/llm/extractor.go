package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/piisweep/piisweep/pkg/types"
)

// Extractor turns document chunks into validated extraction results.
// It rate-limits oracle calls so a scan over many documents doesn't hammer
// the provider, and classifies failures per the chunk-granularity policy:
// an ErrExtraction or ErrSchemaValidation for one chunk is logged and
// skipped by callers, never aborting the document scan.
type Extractor struct {
	client  TextGenerator
	limiter *rate.Limiter
}

// NewExtractor creates an extractor around the given oracle client.
// requestsPerSecond <= 0 disables throttling.
func NewExtractor(client TextGenerator, requestsPerSecond float64) *Extractor {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Extractor{client: client, limiter: limiter}
}

// ExtractChunk sends one chunk of document text to the oracle and returns
// the validated extraction result.
func (e *Extractor) ExtractChunk(ctx context.Context, content string) (*types.ChunkExtraction, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	raw, err := e.client.Complete(ctx, PIIExtractionPrompt(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return ParseExtractionResponse(raw)
}

// Model returns the underlying oracle model name, for logging.
func (e *Extractor) Model() string {
	return e.client.GetModel()
}
