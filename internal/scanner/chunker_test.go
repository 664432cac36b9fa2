package scanner

import (
	"errors"
	"strings"
	"testing"
)

func TestChunk_ShortContentSingleWindow(t *testing.T) {
	c := &Chunker{ChunkSize: 100, OverlapPercentage: 10}
	chunks, err := c.Chunk("hello world")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "hello world" || chunks[0].StartIndex != 0 || chunks[0].EndIndex != 11 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestChunk_WindowsCoverContentWithExactOverlap(t *testing.T) {
	content := strings.Repeat("a", 250)
	size, overlapPct := 100, 20
	c := &Chunker{ChunkSize: size, OverlapPercentage: overlapPct}

	chunks, err := c.Chunk(content)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	overlap := size * overlapPct / 100
	step := size - overlap

	// Union must cover [0, len) with no gaps.
	if chunks[0].StartIndex != 0 {
		t.Errorf("first window must start at 0, got %d", chunks[0].StartIndex)
	}
	if chunks[len(chunks)-1].EndIndex != len(content) {
		t.Errorf("last window must end at %d, got %d", len(content), chunks[len(chunks)-1].EndIndex)
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.StartIndex != i*step {
			t.Errorf("chunk %d starts at %d, want %d", i, chunk.StartIndex, i*step)
		}
		if i > 0 {
			got := chunks[i-1].EndIndex - chunk.StartIndex
			if i < len(chunks)-1 && got != overlap {
				t.Errorf("windows %d/%d overlap by %d, want %d", i-1, i, got, overlap)
			}
			if got < 0 {
				t.Errorf("gap between windows %d and %d", i-1, i)
			}
		}
	}
}

func TestChunk_ZeroOverlap(t *testing.T) {
	c := &Chunker{ChunkSize: 10, OverlapPercentage: 0}
	chunks, err := c.Chunk(strings.Repeat("x", 25))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[2].StartIndex != 20 || chunks[2].EndIndex != 25 {
		t.Errorf("unexpected final chunk: %+v", chunks[2])
	}
}

func TestChunk_StopsOnceWindowReachesEnd(t *testing.T) {
	// 100 chars, size 100: exactly one window even with overlap configured.
	c := &Chunker{ChunkSize: 100, OverlapPercentage: 50}
	chunks, err := c.Chunk(strings.Repeat("x", 100))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestChunk_InvalidChunkSize(t *testing.T) {
	c := &Chunker{ChunkSize: 0, OverlapPercentage: 10}
	_, err := c.Chunk("text")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestChunk_InvalidOverlap(t *testing.T) {
	for _, pct := range []int{-1, 100, 150} {
		c := &Chunker{ChunkSize: 10, OverlapPercentage: pct}
		if _, err := c.Chunk("text"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("overlap %d: expected ErrInvalidArgument, got %v", pct, err)
		}
	}
}

func TestChunk_HighOverlapStillAdvances(t *testing.T) {
	c := &Chunker{ChunkSize: 10, OverlapPercentage: 99}
	chunks, err := c.Chunk(strings.Repeat("x", 30))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	// floor(10*99/100) = 9, so step is 1: the loop must terminate.
	if len(chunks) != 21 {
		t.Errorf("expected 21 chunks with step 1, got %d", len(chunks))
	}
}
