package scanner

import (
	"strings"

	"github.com/piisweep/piisweep/pkg/types"
)

// MergeChunkExtractions merges the per-chunk extraction results of a single
// document into one combined result.
//
// Candidates are deduplicated on lowercase(value) + "_" + pii_type: the first
// occurrence of a key claims its position in the output order, and a later
// chunk's finding replaces the stored one only when the newcomer has high
// confidence. A later medium/low finding never downgrades an existing entry.
//
// The document's primary identity fields (name/address/phone) are taken from
// the first chunk that reported each of them; they are never merged or
// overwritten by later chunks.
func MergeChunkExtractions(chunks []types.ChunkExtraction) types.ChunkExtraction {
	var merged types.ChunkExtraction

	seen := make(map[string]int) // dedup key -> index into merged.PIICandidates
	for _, chunk := range chunks {
		if merged.Name == "" {
			merged.Name = chunk.Name
		}
		if merged.Address == "" {
			merged.Address = chunk.Address
		}
		if merged.Phone == "" {
			merged.Phone = chunk.Phone
		}

		for _, cand := range chunk.PIICandidates {
			key := strings.ToLower(cand.Value) + "_" + cand.PIIType
			idx, exists := seen[key]
			if !exists {
				seen[key] = len(merged.PIICandidates)
				merged.PIICandidates = append(merged.PIICandidates, cand)
				continue
			}
			if cand.Confidence == types.ConfidenceHigh {
				merged.PIICandidates[idx] = cand
			}
		}
	}

	return merged
}
