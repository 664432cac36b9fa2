// Package types defines the shared domain types for PII scanning and
// resolution: candidates reported by the extraction oracle, per-document
// records, and the persisted scan-results corpus format.
package types

import "time"

// Confidence is the oracle-reported certainty for a PII candidate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank returns the ordering of confidence levels (low < medium < high).
// Unknown levels rank below low so they never satisfy a minimum-confidence
// filter.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// IsValidConfidence reports whether s is a recognized confidence level.
func IsValidConfidence(s string) bool {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// PIICandidate is a single piece of PII reported by the extraction oracle.
// PIIType is a free-form label chosen by the oracle, not a closed enum: the
// oracle may invent new categories, which is why the same value can carry
// different labels across chunks and documents. Candidates are immutable
// once created.
type PIICandidate struct {
	Value      string     `json:"value"`
	PIIType    string     `json:"pii_type"`
	Confidence Confidence `json:"confidence"`
	Context    string     `json:"context,omitempty"`
}

// ChunkExtraction is the validated oracle output for one chunk of a document.
// Name/Address/Phone are the chunk's view of the document's primary identity
// fields; they are merged first-chunk-wins at the document level.
type ChunkExtraction struct {
	Name          string         `json:"name,omitempty"`
	Address       string         `json:"address,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	PIICandidates []PIICandidate `json:"pii_candidates"`
}

// IndividualRecord is the per-document scan result: the document's primary
// identity fields plus its deduplicated PII candidates.
type IndividualRecord struct {
	FileName      string         `json:"file_name"`
	FilePath      string         `json:"file_path"`
	Name          string         `json:"name,omitempty"`
	Address       string         `json:"address,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	PIICandidates []PIICandidate `json:"pii_candidates"`
}

// ScanResults is the corpus format produced by a scan run and consumed by
// the resolution engine.
type ScanResults struct {
	Timestamp           time.Time          `json:"timestamp"`
	TotalFilesProcessed int                `json:"total_files_processed"`
	TotalPIIFound       int                `json:"total_pii_found"`
	Files               []IndividualRecord `json:"files"`
}
