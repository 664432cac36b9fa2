package llm

import (
	"errors"
	"testing"

	"github.com/piisweep/piisweep/pkg/types"
)

func TestParseExtractionResponse_CleanJSON(t *testing.T) {
	raw := `{
		"name": "John Doe",
		"address": "12 Oak Lane",
		"phone": "555-0100",
		"pii_candidates": [
			{"value": "123-45-6789", "pii_type": "SSN", "confidence": "high", "context": "SSN: 123-45-6789"}
		]
	}`

	result, err := ParseExtractionResponse(raw)
	if err != nil {
		t.Fatalf("ParseExtractionResponse failed: %v", err)
	}
	if result.Name != "John Doe" {
		t.Errorf("expected name John Doe, got %q", result.Name)
	}
	if len(result.PIICandidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.PIICandidates))
	}
	cand := result.PIICandidates[0]
	if cand.Value != "123-45-6789" || cand.PIIType != "SSN" || cand.Confidence != types.ConfidenceHigh {
		t.Errorf("unexpected candidate: %+v", cand)
	}
}

func TestParseExtractionResponse_MarkdownFences(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"pii_candidates\":[{\"value\":\"a@b.com\",\"pii_type\":\"Email\",\"confidence\":\"medium\"}]}\n```\nDone."

	result, err := ParseExtractionResponse(raw)
	if err != nil {
		t.Fatalf("ParseExtractionResponse failed: %v", err)
	}
	if len(result.PIICandidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.PIICandidates))
	}
	if result.PIICandidates[0].PIIType != "Email" {
		t.Errorf("expected Email type, got %q", result.PIICandidates[0].PIIType)
	}
}

func TestParseExtractionResponse_LeadingProse(t *testing.T) {
	raw := `Sure! The extracted PII is: {"pii_candidates":[{"value":"555-0100","pii_type":"Phone Number","confidence":"high"}]} hope that helps`

	result, err := ParseExtractionResponse(raw)
	if err != nil {
		t.Fatalf("ParseExtractionResponse failed: %v", err)
	}
	if len(result.PIICandidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.PIICandidates))
	}
}

func TestParseExtractionResponse_MalformedJSON(t *testing.T) {
	_, err := ParseExtractionResponse("this is not json at all")
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Errorf("expected ErrSchemaValidation, got %v", err)
	}
}

func TestParseExtractionResponse_SkipsInvalidEntries(t *testing.T) {
	raw := `{"pii_candidates":[
		{"value": "", "pii_type": "SSN", "confidence": "high"},
		{"value": "123-45-6789", "pii_type": "", "confidence": "high"},
		{"value": "123-45-6789", "pii_type": "SSN", "confidence": "certain"},
		{"value": "123-45-6789", "pii_type": "SSN", "confidence": "HIGH"}
	]}`

	result, err := ParseExtractionResponse(raw)
	if err != nil {
		t.Fatalf("ParseExtractionResponse failed: %v", err)
	}
	// Only the last entry survives: confidence is case-normalized, the
	// empty-value, empty-type, and unknown-confidence entries are skipped.
	if len(result.PIICandidates) != 1 {
		t.Fatalf("expected 1 valid candidate, got %d", len(result.PIICandidates))
	}
	if result.PIICandidates[0].Confidence != types.ConfidenceHigh {
		t.Errorf("expected normalized high confidence, got %q", result.PIICandidates[0].Confidence)
	}
}

func TestParseExtractionResponse_EmptyCandidates(t *testing.T) {
	result, err := ParseExtractionResponse(`{"name":"","address":"","phone":"","pii_candidates":[]}`)
	if err != nil {
		t.Fatalf("ParseExtractionResponse failed: %v", err)
	}
	if len(result.PIICandidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(result.PIICandidates))
	}
}

func TestExtractJSON_NestedBracesInsideStrings(t *testing.T) {
	raw := `{"pii_candidates":[{"value":"weird{value}","pii_type":"Note","confidence":"low"}]}`
	got := extractJSON("noise " + raw + " trailing")
	if got != raw {
		t.Errorf("extractJSON mangled braces inside strings:\n got %q\nwant %q", got, raw)
	}
}
