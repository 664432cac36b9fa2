package scanner

import (
	"reflect"
	"testing"

	"github.com/piisweep/piisweep/pkg/types"
)

func candidate(value, piiType string, conf types.Confidence) types.PIICandidate {
	return types.PIICandidate{Value: value, PIIType: piiType, Confidence: conf}
}

func TestMergeChunkExtractions_HighConfidenceWins(t *testing.T) {
	lowFirst := []types.ChunkExtraction{
		{PIICandidates: []types.PIICandidate{candidate("X", "SSN", types.ConfidenceLow)}},
		{PIICandidates: []types.PIICandidate{candidate("X", "SSN", types.ConfidenceHigh)}},
	}
	highFirst := []types.ChunkExtraction{
		{PIICandidates: []types.PIICandidate{candidate("X", "SSN", types.ConfidenceHigh)}},
		{PIICandidates: []types.PIICandidate{candidate("X", "SSN", types.ConfidenceLow)}},
	}

	for name, chunks := range map[string][]types.ChunkExtraction{"low then high": lowFirst, "high then low": highFirst} {
		merged := MergeChunkExtractions(chunks)
		if len(merged.PIICandidates) != 1 {
			t.Fatalf("%s: expected 1 candidate, got %d", name, len(merged.PIICandidates))
		}
		if merged.PIICandidates[0].Confidence != types.ConfidenceHigh {
			t.Errorf("%s: expected high confidence to win, got %q", name, merged.PIICandidates[0].Confidence)
		}
	}
}

func TestMergeChunkExtractions_MediumNeverDowngradesHigh(t *testing.T) {
	chunks := []types.ChunkExtraction{
		{PIICandidates: []types.PIICandidate{candidate("X", "SSN", types.ConfidenceHigh)}},
		{PIICandidates: []types.PIICandidate{candidate("X", "SSN", types.ConfidenceMedium)}},
	}
	merged := MergeChunkExtractions(chunks)
	if merged.PIICandidates[0].Confidence != types.ConfidenceHigh {
		t.Errorf("medium overwrote high: %q", merged.PIICandidates[0].Confidence)
	}
}

func TestMergeChunkExtractions_KeyIsLowercaseValuePlusType(t *testing.T) {
	chunks := []types.ChunkExtraction{
		{PIICandidates: []types.PIICandidate{
			candidate("John@Example.com", "Email", types.ConfidenceMedium),
			candidate("john@example.com", "Email", types.ConfidenceLow),
			candidate("john@example.com", "Email Address", types.ConfidenceLow),
		}},
	}
	merged := MergeChunkExtractions(chunks)
	// Case-insensitive on value, case-sensitive on type: two distinct keys.
	if len(merged.PIICandidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(merged.PIICandidates), merged.PIICandidates)
	}
	// First-seen original value is kept for the shared key.
	if merged.PIICandidates[0].Value != "John@Example.com" {
		t.Errorf("expected first-seen value preserved, got %q", merged.PIICandidates[0].Value)
	}
}

func TestMergeChunkExtractions_Idempotent(t *testing.T) {
	chunks := []types.ChunkExtraction{
		{
			Name: "Jane Roe",
			PIICandidates: []types.PIICandidate{
				candidate("123-45-6789", "SSN", types.ConfidenceHigh),
				candidate("a@b.com", "Email", types.ConfidenceMedium),
			},
		},
		{PIICandidates: []types.PIICandidate{candidate("555-0100", "Phone", types.ConfidenceLow)}},
	}

	once := MergeChunkExtractions(chunks)
	twice := MergeChunkExtractions(append(append([]types.ChunkExtraction{}, chunks...), chunks...))

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeChunkExtractions_FirstChunkIdentityWins(t *testing.T) {
	chunks := []types.ChunkExtraction{
		{Name: "", Address: "12 Oak Lane", Phone: ""},
		{Name: "John Doe", Address: "99 Other St", Phone: "555-0100"},
		{Name: "J. Doe", Phone: "555-9999"},
	}
	merged := MergeChunkExtractions(chunks)
	if merged.Name != "John Doe" {
		t.Errorf("expected first reported name, got %q", merged.Name)
	}
	if merged.Address != "12 Oak Lane" {
		t.Errorf("expected first reported address, got %q", merged.Address)
	}
	if merged.Phone != "555-0100" {
		t.Errorf("expected first reported phone, got %q", merged.Phone)
	}
}

func TestMergeChunkExtractions_Empty(t *testing.T) {
	merged := MergeChunkExtractions(nil)
	if len(merged.PIICandidates) != 0 || merged.Name != "" {
		t.Errorf("expected empty merge, got %+v", merged)
	}
}
