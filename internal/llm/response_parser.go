package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/piisweep/piisweep/pkg/types"
)

// extractJSON extracts the first valid JSON object from a string that may
// contain extra text. This handles cases where LLMs add explanations
// before/after the JSON despite instructions.
func extractJSON(text string) string {
	// Remove common markdown code block markers
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // No JSON found, return as-is and let parser fail
	}

	// Find the matching closing brace, skipping braces inside strings.
	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text // No complete JSON found, return as-is
}

// ParseExtractionResponse parses the oracle's extraction JSON for one chunk
// and filters out invalid candidate entries. Candidates with an empty value,
// an empty type label, or an unrecognized confidence level are skipped
// (logged) rather than failing the entire chunk. Malformed JSON fails the
// chunk with ErrSchemaValidation.
func ParseExtractionResponse(raw string) (*types.ChunkExtraction, error) {
	cleanJSON := extractJSON(raw)

	var response types.ChunkExtraction
	if err := json.Unmarshal([]byte(cleanJSON), &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse extraction JSON: %v", ErrSchemaValidation, err)
	}

	valid := make([]types.PIICandidate, 0, len(response.PIICandidates))
	for _, cand := range response.PIICandidates {
		cand.Value = strings.TrimSpace(cand.Value)
		cand.PIIType = strings.TrimSpace(cand.PIIType)
		cand.Confidence = types.Confidence(strings.ToLower(string(cand.Confidence)))

		if cand.Value == "" || cand.PIIType == "" {
			log.Printf("response_parser: skipping candidate with empty value or type (%q/%q)", cand.Value, cand.PIIType)
			continue
		}
		if !types.IsValidConfidence(string(cand.Confidence)) {
			log.Printf("response_parser: skipping candidate %q with invalid confidence %q", cand.Value, cand.Confidence)
			continue
		}
		valid = append(valid, cand)
	}
	response.PIICandidates = valid

	response.Name = strings.TrimSpace(response.Name)
	response.Address = strings.TrimSpace(response.Address)
	response.Phone = strings.TrimSpace(response.Phone)

	return &response, nil
}
