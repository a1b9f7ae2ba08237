package delta

import (
	"github.com/gatewayplanning/plancheck/internal/catalog"
	"github.com/gatewayplanning/plancheck/internal/model"
)

// ImpactedRules returns the ids of every rule whose required field or
// document keys intersect the changeset. This drives targeted
// revalidation: a modification re-runs only the rules its changes could
// affect, not the whole catalog. The check is deliberately conservative —
// any key overlap includes the rule — and modification rules are always
// included since they evaluate the changeset itself.
func ImpactedRules(cs *model.ChangeSet, cat *catalog.Catalog) map[string]struct{} {
	changed := make(map[string]bool)
	for _, key := range cs.Keys() {
		changed[key] = true
	}

	impacted := make(map[string]struct{})
	for _, r := range cat.Rules {
		if r.Category == model.CategoryModification {
			impacted[r.ID] = struct{}{}
			continue
		}
		for _, key := range r.Keys() {
			if changed[key] {
				impacted[r.ID] = struct{}{}
				break
			}
		}
	}
	return impacted
}
