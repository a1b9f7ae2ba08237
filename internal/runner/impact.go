package runner

import (
	"github.com/gatewayplanning/plancheck/internal/catalog"
	"github.com/gatewayplanning/plancheck/internal/delta"
	"github.com/gatewayplanning/plancheck/internal/model"
)

// ImpactedSubset returns the catalog rules whose keys intersect the
// changeset, in catalog order.
func ImpactedSubset(cs *model.ChangeSet, cat *catalog.Catalog) []model.Rule {
	ids := delta.ImpactedRules(cs, cat)
	rules := make([]model.Rule, 0, len(ids))
	for _, r := range cat.Rules {
		if _, ok := ids[r.ID]; ok {
			rules = append(rules, r)
		}
	}
	return rules
}
