package conflict

import (
	"sort"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// Conflict is one logical field with more than one distinct normalized
// value across the submission's documents. The raw fields are carried
// whole; nothing is discarded or auto-picked.
type Conflict struct {
	FieldKey string        `json:"field_key"`
	Values   []string      `json:"values"` // distinct normalized values, sorted
	Fields   []model.Field `json:"fields"` // every conflicting extraction
}

// Detect finds every field key whose extractions disagree after
// normalization. Empty values do not count as a side of a disagreement.
// Results are sorted by field key for stable output.
func Detect(fields []model.Field) []Conflict {
	byKey := model.FieldsByKey(fields)

	var conflicts []Conflict
	for key, group := range byKey {
		distinct := make(map[string]bool)
		var nonEmpty []model.Field
		for _, f := range group {
			if model.ValueEmpty(f.Value) {
				continue
			}
			distinct[model.NormalizeValue(f.Value)] = true
			nonEmpty = append(nonEmpty, f)
		}
		if len(distinct) <= 1 {
			continue
		}

		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)

		conflicts = append(conflicts, Conflict{
			FieldKey: key,
			Values:   values,
			Fields:   nonEmpty,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].FieldKey < conflicts[j].FieldKey
	})
	return conflicts
}
