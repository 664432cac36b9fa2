package resolve

import (
	"sort"
	"strings"
)

// Primary identity field names.
const (
	FieldName    = "name"
	FieldAddress = "address"
	FieldPhone   = "phone"
)

// buildIdentityGroups joins raw records (not filtered occurrences) on each
// non-empty primary identity field, so the same individual appearing in
// several documents shows up as one group per shared field value.
func (e *Engine) buildIdentityGroups() []IdentityGroup {
	type identityAccum struct {
		display  string
		files    []string
		fileSeen map[string]struct{}
		count    int
	}

	accums := map[string]*identityAccum{}

	for _, record := range e.records {
		for _, field := range []struct{ name, value string }{
			{FieldName, record.Name},
			{FieldAddress, record.Address},
			{FieldPhone, record.Phone},
		} {
			if field.value == "" {
				continue
			}
			key := field.name + "\x00" + e.normalizeKey(field.value)
			acc := accums[key]
			if acc == nil {
				acc = &identityAccum{display: field.value, fileSeen: map[string]struct{}{}}
				accums[key] = acc
			}
			acc.count++
			if _, ok := acc.fileSeen[record.FilePath]; !ok {
				acc.fileSeen[record.FilePath] = struct{}{}
				acc.files = append(acc.files, record.FilePath)
			}
		}
	}

	groups := make([]IdentityGroup, 0, len(accums))
	for key, acc := range accums {
		groups = append(groups, IdentityGroup{
			Value: acc.display,
			Field: fieldFromKey(key),
			Files: acc.files,
			Count: acc.count,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Field != groups[j].Field {
			return groups[i].Field < groups[j].Field
		}
		return groups[i].Value < groups[j].Value
	})
	return groups
}

func fieldFromKey(key string) string {
	field, _, _ := strings.Cut(key, "\x00")
	return field
}
