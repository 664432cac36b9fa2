package resolve

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/piisweep/piisweep/pkg/types"
)

// detectConflicts applies the three emission rules. Conflicts are not
// deduplicated against each other; one run may flag the same occurrences
// under several kinds.
func (e *Engine) detectConflicts(valueGroups []ValueGroup, typeGroups []TypeGroup) []Conflict {
	var conflicts []Conflict

	for _, vg := range valueGroups {
		if !vg.HasTypeConflict {
			continue
		}
		if !e.opts.IncludeHighConfidenceInConflicts && allHigh(vg.Occurrences) {
			continue
		}
		severity := SeverityMedium
		if len(vg.PIITypes) > 2 {
			severity = SeverityHigh
		}
		conflicts = append(conflicts, Conflict{
			ID:       uuid.NewString(),
			Type:     ConflictValueTypeMismatch,
			Severity: severity,
			Description: fmt.Sprintf("value %q was reported under %d different types: %v",
				vg.Value, len(vg.PIITypes), vg.PIITypes),
			Value:       vg.Value,
			Occurrences: vg.Occurrences,
			Files:       vg.Files,
		})
	}

	for _, tg := range typeGroups {
		if !tg.HasValueConflict {
			continue
		}
		if !e.opts.IncludeHighConfidenceInConflicts && allHigh(tg.Occurrences) {
			continue
		}
		severity := SeverityMedium
		if tg.UniqueValueCount > 3 {
			severity = SeverityHigh
		}
		conflicts = append(conflicts, Conflict{
			ID:       uuid.NewString(),
			Type:     ConflictTypeValueMismatch,
			Severity: severity,
			Description: fmt.Sprintf("type %q covers %d distinct values",
				tg.PIIType, tg.UniqueValueCount),
			PIIType:     tg.PIIType,
			Occurrences: tg.Occurrences,
			Files:       tg.Files,
		})
	}

	for _, occ := range e.occurrences {
		if occ.Confidence != types.ConfidenceLow {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ID:       uuid.NewString(),
			Type:     ConflictConfidenceIssue,
			Severity: SeverityLow,
			Description: fmt.Sprintf("low-confidence report of %q as %q in %s",
				occ.Value, occ.PIIType, occ.FileName),
			Value:       occ.Value,
			PIIType:     occ.PIIType,
			Occurrences: []Occurrence{occ},
			Files:       []string{occ.FilePath},
		})
	}

	return conflicts
}

func allHigh(occurrences []Occurrence) bool {
	for _, occ := range occurrences {
		if occ.Confidence != types.ConfidenceHigh {
			return false
		}
	}
	return true
}
