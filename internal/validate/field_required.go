package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// validateFieldRequired checks that every field the rule names is present
// and non-empty. A present field extracted below the confidence threshold
// downgrades the result to needs_review: the value exists but an officer
// should not trust it blindly.
func validateFieldRequired(rule model.Rule, sctx *SubmissionContext) model.Finding {
	finding := model.Finding{
		RuleID:   rule.ID,
		Severity: rule.Severity,
		Status:   model.StatusPass,
	}

	var missing []string
	var lowConfidence []string

	for _, key := range rule.RequiredFields {
		fields := sctx.FieldsFor(key)

		present := false
		confident := false
		for _, f := range fields {
			if model.ValueEmpty(f.Value) {
				continue
			}
			present = true
			finding.Evidence = append(finding.Evidence, f.EvidenceRefs()...)
			if f.Confidence >= sctx.Config.ConfidenceThreshold {
				confident = true
			}
		}

		switch {
		case !present:
			missing = append(missing, key)
		case !confident:
			lowConfidence = append(lowConfidence, key)
		}
	}

	sort.Strings(missing)
	sort.Strings(lowConfidence)

	switch {
	case len(missing) > 0:
		finding.MissingFields = missing
		finding.Status = model.StatusFail
		if rule.Severity == model.SeverityWarning {
			finding.Status = model.StatusNeedsReview
		}
		finding.Message = fmt.Sprintf("required field(s) missing or empty: %s", strings.Join(missing, ", "))
	case len(lowConfidence) > 0:
		finding.Status = model.StatusNeedsReview
		finding.Message = fmt.Sprintf("field(s) extracted below confidence threshold %.2f: %s",
			sctx.Config.ConfidenceThreshold, strings.Join(lowConfidence, ", "))
	default:
		finding.Message = "all required fields present"
	}

	return finding
}
