package resolve

import (
	"sort"

	"github.com/piisweep/piisweep/pkg/types"
)

// valueAccum aggregates one value key during the grouping pass.
type valueAccum struct {
	display     string // first-seen original value
	piiTypes    map[string]struct{}
	contexts    []string
	contextSeen map[string]struct{}
	confidence  map[types.Confidence]int
	files       []string
	fileSeen    map[string]struct{}
	occurrences []Occurrence
}

// typeAccum aggregates one type label during the grouping pass.
type typeAccum struct {
	values      []string // first-seen originals, one per distinct value key
	valueSeen   map[string]struct{}
	confidence  map[types.Confidence]int
	files       []string
	fileSeen    map[string]struct{}
	occurrences []Occurrence
}

// buildGroups runs the single grouping pass over all occurrences, then
// finalizes accumulators into sorted, flag-computed groups. Flags are only
// computed here so no partially built group ever reaches a caller.
func (e *Engine) buildGroups() ([]ValueGroup, []TypeGroup) {
	byValue := map[string]*valueAccum{}
	byType := map[string]*typeAccum{}

	for _, occ := range e.occurrences {
		valueKey := e.normalizeKey(occ.Value)

		va := byValue[valueKey]
		if va == nil {
			va = &valueAccum{
				display:     occ.Value,
				piiTypes:    map[string]struct{}{},
				contextSeen: map[string]struct{}{},
				confidence:  map[types.Confidence]int{},
				fileSeen:    map[string]struct{}{},
			}
			byValue[valueKey] = va
		}
		va.piiTypes[occ.PIIType] = struct{}{}
		if occ.Context != "" {
			if _, ok := va.contextSeen[occ.Context]; !ok {
				va.contextSeen[occ.Context] = struct{}{}
				va.contexts = append(va.contexts, occ.Context)
			}
		}
		va.confidence[occ.Confidence]++
		if _, ok := va.fileSeen[occ.FilePath]; !ok {
			va.fileSeen[occ.FilePath] = struct{}{}
			va.files = append(va.files, occ.FilePath)
		}
		va.occurrences = append(va.occurrences, occ)

		ta := byType[occ.PIIType]
		if ta == nil {
			ta = &typeAccum{
				valueSeen:  map[string]struct{}{},
				confidence: map[types.Confidence]int{},
				fileSeen:   map[string]struct{}{},
			}
			byType[occ.PIIType] = ta
		}
		if _, ok := ta.valueSeen[valueKey]; !ok {
			ta.valueSeen[valueKey] = struct{}{}
			ta.values = append(ta.values, occ.Value)
		}
		ta.confidence[occ.Confidence]++
		if _, ok := ta.fileSeen[occ.FilePath]; !ok {
			ta.fileSeen[occ.FilePath] = struct{}{}
			ta.files = append(ta.files, occ.FilePath)
		}
		ta.occurrences = append(ta.occurrences, occ)
	}

	valueGroups := make([]ValueGroup, 0, len(byValue))
	for _, va := range byValue {
		group := ValueGroup{
			Value:               va.display,
			PIITypes:            sortedKeys(va.piiTypes),
			Contexts:            va.contexts,
			ConfidenceBreakdown: va.confidence,
			Files:               va.files,
			Occurrences:         va.occurrences,
		}
		group.HasTypeConflict = len(group.PIITypes) > 1
		group.IsAmbiguous = group.HasTypeConflict || hasNonHigh(va.confidence)
		valueGroups = append(valueGroups, group)
	}
	sort.Slice(valueGroups, func(i, j int) bool { return valueGroups[i].Value < valueGroups[j].Value })

	typeGroups := make([]TypeGroup, 0, len(byType))
	for piiType, ta := range byType {
		group := TypeGroup{
			PIIType:             piiType,
			Values:              ta.values,
			UniqueValueCount:    len(ta.valueSeen),
			ConfidenceBreakdown: ta.confidence,
			Files:               ta.files,
			Occurrences:         ta.occurrences,
		}
		group.HasValueConflict = group.UniqueValueCount > 1
		group.IsAmbiguous = group.HasValueConflict || hasNonHigh(ta.confidence)
		typeGroups = append(typeGroups, group)
	}
	sort.Slice(typeGroups, func(i, j int) bool { return typeGroups[i].PIIType < typeGroups[j].PIIType })

	return valueGroups, typeGroups
}

func hasNonHigh(breakdown map[types.Confidence]int) bool {
	return breakdown[types.ConfidenceMedium] > 0 || breakdown[types.ConfidenceLow] > 0
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
