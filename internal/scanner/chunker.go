// Package scanner reads documents, splits them into overlapping windows,
// drives the extraction oracle per window, and merges per-chunk results into
// one deduplicated record per document.
package scanner

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a caller-supplied parameter is out of range.
var ErrInvalidArgument = errors.New("invalid argument")

// Chunk is one bounded window of a document's text. StartIndex/EndIndex are
// byte offsets into the original content, with the window spanning
// [StartIndex, EndIndex).
type Chunk struct {
	Index      int
	Content    string
	StartIndex int
	EndIndex   int
}

// Chunker splits document text into fixed-size overlapping windows.
type Chunker struct {
	// ChunkSize is the window size in characters. Must be positive.
	ChunkSize int

	// OverlapPercentage is the window overlap in percent. Must be in [0,100).
	OverlapPercentage int
}

// Chunk splits content into overlapping windows. Window starts advance by
// stepSize = ChunkSize - floor(ChunkSize*OverlapPercentage/100); each window
// spans up to ChunkSize characters and chunking stops once a window reaches
// the end of the content. Consecutive windows therefore overlap by exactly
// floor(ChunkSize*OverlapPercentage/100) characters, except possibly the
// final, shorter window.
func (c *Chunker) Chunk(content string) ([]Chunk, error) {
	if c.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidArgument, c.ChunkSize)
	}
	if c.OverlapPercentage < 0 || c.OverlapPercentage >= 100 {
		return nil, fmt.Errorf("%w: overlap percentage must be in [0,100), got %d", ErrInvalidArgument, c.OverlapPercentage)
	}

	// Overlap below 100 guarantees step >= 1, so the loop always advances.
	step := c.ChunkSize - (c.ChunkSize*c.OverlapPercentage)/100

	length := len(content)
	var chunks []Chunk
	for start, i := 0, 0; ; start, i = start+step, i+1 {
		end := start + c.ChunkSize
		if end > length {
			end = length
		}
		chunks = append(chunks, Chunk{
			Index:      i,
			Content:    content[start:end],
			StartIndex: start,
			EndIndex:   end,
		})
		if end >= length {
			break
		}
	}

	return chunks, nil
}
