package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// validateConsistency groups the rule's fields by key across documents and
// flags any key whose distinct normalized values number more than one. A
// conflict is never auto-resolved and never a hard fail — disagreement is
// not proof either value is wrong — so the status is always needs_review,
// with every conflicting source in the evidence.
func validateConsistency(rule model.Rule, sctx *SubmissionContext) model.Finding {
	finding := model.Finding{
		RuleID:   rule.ID,
		Severity: rule.Severity,
		Status:   model.StatusPass,
		Message:  "no cross-document conflicts",
	}

	var conflicted []string
	for _, key := range rule.RequiredFields {
		fields := sctx.FieldsFor(key)

		distinct := make(map[string]bool)
		for _, f := range fields {
			if model.ValueEmpty(f.Value) {
				continue
			}
			distinct[model.NormalizeValue(f.Value)] = true
		}
		if len(distinct) <= 1 {
			continue
		}

		conflicted = append(conflicted, key)
		for _, f := range fields {
			if !model.ValueEmpty(f.Value) {
				finding.Evidence = append(finding.Evidence, f.EvidenceRefs()...)
			}
		}
	}

	if len(conflicted) > 0 {
		sort.Strings(conflicted)
		finding.Status = model.StatusNeedsReview
		finding.Message = fmt.Sprintf("conflicting values across documents for: %s", strings.Join(conflicted, ", "))
	}

	return finding
}
