package resolve

import "sort"

// buildCanonicalSchema collapses type-label synonymy. Every value group
// observed under more than one label contributes an undirected edge between
// each pair of its labels. A type's canonical entry then lists itself plus
// its direct neighbors.
//
// The merge is deliberately one hop: A related to B via one value and B to C
// via another does not pull C into A's entry. Chasing chains would need a
// union-find closure and changes the product meaning of "synonym", so labels
// only merge on direct evidence.
func (e *Engine) buildCanonicalSchema(valueGroups []ValueGroup, typeGroups []TypeGroup) []CanonicalType {
	neighbors := map[string]map[string]struct{}{}
	triggerValues := map[string]map[string]struct{}{}

	for _, vg := range valueGroups {
		if len(vg.PIITypes) < 2 {
			continue
		}
		for _, a := range vg.PIITypes {
			for _, b := range vg.PIITypes {
				if a == b {
					continue
				}
				if neighbors[a] == nil {
					neighbors[a] = map[string]struct{}{}
				}
				neighbors[a][b] = struct{}{}
			}
			if triggerValues[a] == nil {
				triggerValues[a] = map[string]struct{}{}
			}
			triggerValues[a][e.normalizeKey(vg.Value)] = struct{}{}
		}
	}

	schema := make([]CanonicalType, 0, len(typeGroups))
	for _, tg := range typeGroups {
		names := []string{tg.PIIType}
		names = append(names, sortedKeys(neighbors[tg.PIIType])...)
		sort.Strings(names)

		schema = append(schema, CanonicalType{
			CanonicalType:       tg.PIIType,
			AllTypeNames:        names,
			TotalOccurrences:    len(tg.Occurrences),
			UniqueValuesCount:   tg.UniqueValueCount,
			ConfidenceBreakdown: tg.ConfidenceBreakdown,
			Files:               tg.Files,
			ValueMatchCount:     len(triggerValues[tg.PIIType]),
		})
	}
	sort.Slice(schema, func(i, j int) bool { return schema[i].CanonicalType < schema[j].CanonicalType })
	return schema
}
