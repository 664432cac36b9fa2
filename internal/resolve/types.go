// Package resolve reconciles PII candidates across a scanned corpus. It
// groups occurrences by value and by type, joins documents that share a
// primary identity field, derives a canonical type schema from observed
// label co-occurrence, and flags disagreements as conflicts for review.
//
// The engine never decides ground truth about whether a value is PII; it
// only aggregates what the extraction oracle reported and surfaces
// disagreement among those reports.
package resolve

import (
	"errors"

	"github.com/piisweep/piisweep/pkg/types"
)

var (
	// ErrNotLoaded is returned by Resolve when no corpus has been ingested
	// or ingestion left zero occurrences to resolve.
	ErrNotLoaded = errors.New("no corpus loaded")

	// ErrInvalidArgument is returned for caller misuse, such as loading an
	// empty corpus or passing an unknown confidence threshold.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Options controls ingestion filtering and grouping behavior for one run.
type Options struct {
	// AmbiguousOnly drops high-confidence candidates at ingestion, keeping
	// only findings that need review.
	AmbiguousOnly bool `json:"ambiguous_only"`

	// MinConfidence drops candidates below the threshold (low < medium <
	// high). Empty means no threshold.
	MinConfidence types.Confidence `json:"min_confidence,omitempty"`

	// IncludeHighConfidenceInConflicts controls whether mismatch conflicts
	// whose occurrences are all high confidence are still emitted. Enabled
	// by default.
	IncludeHighConfidenceInConflicts bool `json:"include_high_confidence_in_conflicts"`

	// NormalizeValues trims and lowercases values before they are used as
	// grouping keys. The original string is always kept for display.
	NormalizeValues bool `json:"normalize_values"`
}

// DefaultOptions returns the options used when the caller passes none.
func DefaultOptions() Options {
	return Options{IncludeHighConfidenceInConflicts: true}
}

// Occurrence is a PII candidate tagged with its source document.
type Occurrence struct {
	types.PIICandidate
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
}

// ValueGroup clusters every occurrence of one (normalized) value across the
// corpus, regardless of reported type.
type ValueGroup struct {
	Value               string                   `json:"value"`
	PIITypes            []string                 `json:"pii_types"`
	Contexts            []string                 `json:"contexts"`
	ConfidenceBreakdown map[types.Confidence]int `json:"confidence_breakdown"`
	Files               []string                 `json:"files"`
	Occurrences         []Occurrence             `json:"occurrences"`
	IsAmbiguous         bool                     `json:"is_ambiguous"`
	HasTypeConflict     bool                     `json:"has_type_conflict"`
}

// TypeGroup clusters every occurrence of one type label across the corpus,
// regardless of value.
type TypeGroup struct {
	PIIType             string                   `json:"pii_type"`
	Values              []string                 `json:"values"`
	UniqueValueCount    int                      `json:"unique_value_count"`
	ConfidenceBreakdown map[types.Confidence]int `json:"confidence_breakdown"`
	Files               []string                 `json:"files"`
	Occurrences         []Occurrence             `json:"occurrences"`
	IsAmbiguous         bool                     `json:"is_ambiguous"`
	HasValueConflict    bool                     `json:"has_value_conflict"`
}

// IdentityGroup joins whole documents that share one primary identity field
// value. This is a record-level join, separate from candidate grouping.
type IdentityGroup struct {
	Value string   `json:"value"`
	Field string   `json:"field"` // name, address or phone
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// CanonicalType merges a type label with the labels observed attached to the
// same value somewhere in the corpus. Rebuilt from scratch on every run.
type CanonicalType struct {
	CanonicalType       string                   `json:"canonical_type"`
	AllTypeNames        []string                 `json:"all_type_names"`
	TotalOccurrences    int                      `json:"total_occurrences"`
	UniqueValuesCount   int                      `json:"unique_values_count"`
	ConfidenceBreakdown map[types.Confidence]int `json:"confidence_breakdown"`
	Files               []string                 `json:"files"`
	ValueMatchCount     int                      `json:"value_match_count"`
}

// Conflict kinds.
const (
	ConflictValueTypeMismatch = "value_type_mismatch"
	ConflictTypeValueMismatch = "type_value_mismatch"
	ConflictConfidenceIssue   = "confidence_issue"
)

// Conflict severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Conflict is one flagged disagreement with the occurrences that produced it.
type Conflict struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Severity    string       `json:"severity"`
	Description string       `json:"description"`
	Value       string       `json:"value,omitempty"`
	PIIType     string       `json:"pii_type,omitempty"`
	Occurrences []Occurrence `json:"occurrences"`
	Files       []string     `json:"files"`
}

// Summary gives the run's headline counts.
type Summary struct {
	TotalOccurrences    int            `json:"total_occurrences"`
	TotalValueGroups    int            `json:"total_value_groups"`
	TotalTypeGroups     int            `json:"total_type_groups"`
	TotalIdentityGroups int            `json:"total_identity_groups"`
	TotalCanonicalTypes int            `json:"total_canonical_types"`
	TotalConflicts      int            `json:"total_conflicts"`
	ConflictsBySeverity map[string]int `json:"conflicts_by_severity"`
}

// Resolution is the complete output of one run. Groups from different runs
// must never be merged.
type Resolution struct {
	ValueGroups     []ValueGroup    `json:"value_groups"`
	TypeGroups      []TypeGroup     `json:"type_groups"`
	IdentityGroups  []IdentityGroup `json:"identity_groups"`
	CanonicalSchema []CanonicalType `json:"canonical_schema"`
	Conflicts       []Conflict      `json:"conflicts"`
	Summary         Summary         `json:"summary"`
	Options         Options         `json:"options"`
}
