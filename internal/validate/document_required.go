package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// validateDocumentRequired checks that the submission's document types
// cover the rule's required set. The finding lists exactly the missing
// types — never types outside the requirement. The evidence lists the
// documents that are present, for audit.
func validateDocumentRequired(rule model.Rule, sctx *SubmissionContext) model.Finding {
	finding := model.Finding{
		RuleID:   rule.ID,
		Severity: rule.Severity,
		Status:   model.StatusPass,
		Message:  "all required documents present",
	}

	var missing []string
	for _, docType := range rule.RequiredDocumentTypes {
		if !sctx.HasDocumentType(docType) {
			missing = append(missing, docType)
		}
	}

	for _, d := range sctx.Submission.Documents {
		finding.Evidence = append(finding.Evidence, model.EvidenceRef{DocumentID: d.ID})
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		finding.MissingDocuments = missing
		finding.Status = model.StatusFail
		if rule.Severity == model.SeverityWarning {
			finding.Status = model.StatusNeedsReview
		}
		finding.Message = fmt.Sprintf("required document type(s) missing: %s", strings.Join(missing, ", "))
	}

	return finding
}
