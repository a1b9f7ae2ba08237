package validate

import (
	"github.com/gatewayplanning/plancheck/internal/model"
)

// validateSpatial is a stub: geometric analysis is not implemented. When a
// submission carries spatial data the rule flags it for manual review
// instead of fabricating a pass; without spatial data the rule does not
// apply.
func validateSpatial(rule model.Rule, sctx *SubmissionContext) model.Finding {
	finding := model.Finding{
		RuleID:   rule.ID,
		Severity: rule.Severity,
	}

	if sctx.Submission.HasSpatialData() {
		finding.Status = model.StatusNeedsReview
		finding.Message = "spatial validation not implemented; geometry present, review manually"
		for _, d := range sctx.Submission.Documents {
			if len(d.SpatialMetrics) > 0 {
				finding.Evidence = append(finding.Evidence, model.EvidenceRef{DocumentID: d.ID})
			}
		}
		return finding
	}

	finding.Status = model.StatusPass
	finding.Message = "not applicable: submission carries no spatial data"
	return finding
}
