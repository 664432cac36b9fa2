package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeGenerator is a canned TextGenerator for extractor tests.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) GetModel() string { return "fake-model" }

func TestExtractChunk_Success(t *testing.T) {
	gen := &fakeGenerator{response: `{"pii_candidates":[{"value":"a@b.com","pii_type":"Email","confidence":"high"}]}`}
	ex := NewExtractor(gen, 0)

	result, err := ex.ExtractChunk(context.Background(), "contact a@b.com")
	if err != nil {
		t.Fatalf("ExtractChunk failed: %v", err)
	}
	if len(result.PIICandidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.PIICandidates))
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "contact a@b.com") {
		t.Error("expected chunk content to be embedded in the prompt")
	}
}

func TestExtractChunk_OracleFailureIsExtractionError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	ex := NewExtractor(gen, 0)

	_, err := ex.ExtractChunk(context.Background(), "text")
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractChunk_BadOutputIsSchemaValidationError(t *testing.T) {
	gen := &fakeGenerator{response: "I could not find any JSON to give you"}
	ex := NewExtractor(gen, 0)

	_, err := ex.ExtractChunk(context.Background(), "text")
	if !errors.Is(err, ErrSchemaValidation) {
		t.Errorf("expected ErrSchemaValidation, got %v", err)
	}
}

func TestExtractChunk_CancelledContext(t *testing.T) {
	gen := &fakeGenerator{response: "{}"}
	ex := NewExtractor(gen, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ex.ExtractChunk(ctx, "text")
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction for cancelled context, got %v", err)
	}
}
