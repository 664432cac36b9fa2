package resolve

import (
	"fmt"
	"log"
	"strings"

	"github.com/piisweep/piisweep/pkg/types"
)

// identityLexicon names the primary identity fields. A candidate whose type
// label contains one of these (case-insensitive) is excluded from grouping;
// identity is handled at the record level instead.
var identityLexicon = []string{"name", "address", "phone"}

// Engine ingests a scanned corpus and resolves it into groups, a canonical
// schema and conflicts. An engine holds one run's state and is not safe for
// concurrent Resolve calls; use a fresh engine per run.
type Engine struct {
	opts        Options
	loaded      bool
	occurrences []Occurrence
	records     []types.IndividualRecord
}

// NewEngine creates an engine with no corpus loaded.
func NewEngine() *Engine {
	return &Engine{opts: DefaultOptions()}
}

// LoadScanResults ingests a corpus, applying the option filters. Loading a
// new corpus replaces any previously loaded state.
func (e *Engine) LoadScanResults(results *types.ScanResults, opts Options) error {
	if results == nil || len(results.Files) == 0 {
		return fmt.Errorf("%w: corpus has no documents", ErrInvalidArgument)
	}
	if opts.MinConfidence != "" && !types.IsValidConfidence(string(opts.MinConfidence)) {
		return fmt.Errorf("%w: unknown confidence threshold %q", ErrInvalidArgument, opts.MinConfidence)
	}

	e.opts = opts
	e.records = results.Files
	e.occurrences = nil
	e.loaded = true

	dropped := 0
	for _, record := range results.Files {
		for _, cand := range record.PIICandidates {
			if isIdentityType(cand.PIIType) {
				dropped++
				continue
			}
			if e.isOwnIdentityValue(cand.Value, &record) {
				dropped++
				continue
			}
			if opts.AmbiguousOnly && cand.Confidence == types.ConfidenceHigh {
				dropped++
				continue
			}
			if opts.MinConfidence != "" && cand.Confidence.Rank() < opts.MinConfidence.Rank() {
				dropped++
				continue
			}
			e.occurrences = append(e.occurrences, Occurrence{
				PIICandidate: cand,
				FileName:     record.FileName,
				FilePath:     record.FilePath,
			})
		}
	}

	log.Printf("resolve: loaded %d occurrences from %d documents (%d filtered)",
		len(e.occurrences), len(results.Files), dropped)
	return nil
}

// Resolve runs grouping, identity joining, canonical schema construction and
// conflict detection over the loaded corpus.
func (e *Engine) Resolve() (*Resolution, error) {
	if !e.loaded || len(e.occurrences) == 0 {
		return nil, fmt.Errorf("%w: load scan results before resolving", ErrNotLoaded)
	}

	valueGroups, typeGroups := e.buildGroups()
	identityGroups := e.buildIdentityGroups()
	schema := e.buildCanonicalSchema(valueGroups, typeGroups)
	conflicts := e.detectConflicts(valueGroups, typeGroups)

	severities := map[string]int{}
	for _, c := range conflicts {
		severities[c.Severity]++
	}

	return &Resolution{
		ValueGroups:     valueGroups,
		TypeGroups:      typeGroups,
		IdentityGroups:  identityGroups,
		CanonicalSchema: schema,
		Conflicts:       conflicts,
		Summary: Summary{
			TotalOccurrences:    len(e.occurrences),
			TotalValueGroups:    len(valueGroups),
			TotalTypeGroups:     len(typeGroups),
			TotalIdentityGroups: len(identityGroups),
			TotalCanonicalTypes: len(schema),
			TotalConflicts:      len(conflicts),
			ConflictsBySeverity: severities,
		},
		Options: e.opts,
	}, nil
}

// normalizeKey maps a value to its grouping key.
func (e *Engine) normalizeKey(value string) string {
	if e.opts.NormalizeValues {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return value
}

func isIdentityType(piiType string) bool {
	lower := strings.ToLower(piiType)
	for _, field := range identityLexicon {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// isOwnIdentityValue reports whether the value equals one of this record's
// own primary identity fields. The comparison scope is strictly the owning
// record; other documents' identities never filter this one's candidates.
func (e *Engine) isOwnIdentityValue(value string, record *types.IndividualRecord) bool {
	key := e.normalizeKey(value)
	for _, own := range []string{record.Name, record.Address, record.Phone} {
		if own != "" && key == e.normalizeKey(own) {
			return true
		}
	}
	return false
}
